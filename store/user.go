package store

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rohanpratim/bookworms/models"
)

func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, wrapErr(err)
	}
	return &user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, wrapErr(err)
	}
	return &user, nil
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	return wrapErr(s.db.WithContext(ctx).Create(user).Error)
}

func (s *Store) UpdateUserFields(ctx context.Context, id uint, fields map[string]any) error {
	fields["updated_at"] = time.Now()
	return wrapErr(s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields).Error)
}

// SearchUsers matches the keyword case-insensitively against username and
// fullname, excluding the requester. No rows is a valid empty result.
func (s *Store) SearchUsers(ctx context.Context, keyword string, excludeID uint) ([]models.User, error) {
	pattern := "%" + strings.ToLower(keyword) + "%"
	var users []models.User
	err := s.db.WithContext(ctx).
		Where("id <> ?", excludeID).
		Where("LOWER(username) LIKE ? OR LOWER(fullname) LIKE ?", pattern, pattern).
		Order("created_at DESC, id DESC").
		Find(&users).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	return users, nil
}

func (s *Store) NewestUsers(ctx context.Context, excludeID uint, limit int) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Where("id <> ?", excludeID).
		Order("id DESC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	return users, nil
}

func (s *Store) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.following_id = ?", userID).
		Order("follows.created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	return users, nil
}

func (s *Store) Following(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Joins("JOIN follows ON follows.following_id = users.id").
		Where("follows.follower_id = ?", userID).
		Order("follows.created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	return users, nil
}

// AddFollow inserts the follow edge with set semantics: an existing pair is
// left untouched and reported as no change.
func (s *Store) AddFollow(ctx context.Context, followerID, followingID uint) (bool, error) {
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Follow{FollowerID: followerID, FollowingID: followingID})
	if res.Error != nil {
		return false, wrapErr(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) RemoveFollow(ctx context.Context, followerID, followingID uint) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return false, wrapErr(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) AddToPostCount(ctx context.Context, userID uint, delta int) error {
	return s.addToUserCounter(ctx, userID, "post_count", delta)
}

func (s *Store) AddToFollowerCount(ctx context.Context, userID uint, delta int) error {
	return s.addToUserCounter(ctx, userID, "follower_count", delta)
}

func (s *Store) AddToFollowingCount(ctx context.Context, userID uint, delta int) error {
	return s.addToUserCounter(ctx, userID, "following_count", delta)
}

func (s *Store) addToUserCounter(ctx context.Context, userID uint, column string, delta int) error {
	return wrapErr(s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta)).Error)
}
