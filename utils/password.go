package utils

import "golang.org/x/crypto/bcrypt"

// bcryptCost pins the work factor so a library default change cannot
// silently alter hashing cost across deploys.
const bcryptCost = 12

// HashPassword derives the bcrypt hash stored in place of the password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
