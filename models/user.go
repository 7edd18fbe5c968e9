package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account on the platform. Passwords are stored as bcrypt hashes only
// and are never serialized into responses.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:64;not null" json:"username"`
	Fullname     string    `gorm:"size:128;not null" json:"fullname"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Image        string    `gorm:"size:512" json:"image"`
	Bio          string    `gorm:"size:255" json:"bio"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Denormalized counters, maintained inside the same transaction as the
	// rows they count.
	PostCount      int `gorm:"default:0" json:"post_count"`
	FollowerCount  int `gorm:"default:0" json:"follower_count"`
	FollowingCount int `gorm:"default:0" json:"following_count"`

	Posts []Post `gorm:"foreignKey:CreatorID" json:"-"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}

// Follow is one edge of the follower graph. A single row carries both sides
// of the pair: follower_id follows following_id.
type Follow struct {
	FollowerID  uint      `gorm:"primaryKey;autoIncrement:false" json:"follower_id"`
	FollowingID uint      `gorm:"primaryKey;autoIncrement:false" json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}
