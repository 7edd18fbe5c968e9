package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rohanpratim/bookworms/models"
)

// newestFirst orders comments so the most recent one sits at index 0. The id
// tiebreak keeps same-timestamp comments stable.
func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("comments.created_at DESC, comments.id DESC")
}

func (s *Store) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, wrapErr(err)
	}
	return &post, nil
}

func (s *Store) GetPostWithCreator(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).Preload("Creator").First(&post, id).Error; err != nil {
		return nil, wrapErr(err)
	}
	return &post, nil
}

// GetPostDetail loads a post with its creator and the full comment tree:
// comments newest first, each with author and one-level replies.
func (s *Store) GetPostDetail(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).
		Preload("Creator").
		Preload("Comments", newestFirst).
		Preload("Comments.User").
		Preload("Comments.Replies").
		Preload("Comments.Replies.User").
		First(&post, id).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	return &post, nil
}

func (s *Store) CreatePost(ctx context.Context, post *models.Post) error {
	return wrapErr(s.db.WithContext(ctx).Omit("Creator", "Comments").Create(post).Error)
}

func (s *Store) UpdatePostCaption(ctx context.Context, id uint, caption string) error {
	return wrapErr(s.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		Update("caption", caption).Error)
}

func (s *Store) DeletePost(ctx context.Context, id uint) error {
	return wrapErr(s.db.WithContext(ctx).Delete(&models.Post{}, id).Error)
}

// PurgePostRelations removes every row that hangs off a post: reply rows of
// its comments, the comments, and the like/bookmark memberships. Runs inside
// the same transaction as the post delete.
func (s *Store) PurgePostRelations(ctx context.Context, postID uint) error {
	db := s.db.WithContext(ctx)
	commentIDs := db.Model(&models.Comment{}).Select("id").Where("post_id = ?", postID)
	if err := db.Where("comment_id IN (?)", commentIDs).Delete(&models.CommentReply{}).Error; err != nil {
		return wrapErr(err)
	}
	if err := db.Where("post_id = ?", postID).Delete(&models.Comment{}).Error; err != nil {
		return wrapErr(err)
	}
	if err := db.Where("post_id = ?", postID).Delete(&models.PostLike{}).Error; err != nil {
		return wrapErr(err)
	}
	return wrapErr(db.Where("post_id = ?", postID).Delete(&models.PostBookmark{}).Error)
}

func (s *Store) AllPosts(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.WithContext(ctx).
		Preload("Creator").
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	return posts, nil
}

func (s *Store) PostsByCreator(ctx context.Context, creatorID uint) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Preload("Creator").
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	return posts, nil
}

func (s *Store) PostsBookmarkedBy(ctx context.Context, userID uint) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.WithContext(ctx).
		Joins("JOIN post_bookmarks ON post_bookmarks.post_id = posts.id").
		Where("post_bookmarks.user_id = ?", userID).
		Preload("Creator").
		Order("posts.created_at DESC, posts.id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	return posts, nil
}

// IncrementViewCount bumps the counter in place. Atomic per row, outside any
// transaction.
func (s *Store) IncrementViewCount(ctx context.Context, postID uint) error {
	return wrapErr(s.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error)
}

func (s *Store) AddLike(ctx context.Context, postID, userID uint) (bool, error) {
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.PostLike{PostID: postID, UserID: userID})
	if res.Error != nil {
		return false, wrapErr(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) RemoveLike(ctx context.Context, postID, userID uint) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.PostLike{})
	if res.Error != nil {
		return false, wrapErr(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) AddBookmark(ctx context.Context, postID, userID uint) (bool, error) {
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.PostBookmark{PostID: postID, UserID: userID})
	if res.Error != nil {
		return false, wrapErr(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) RemoveBookmark(ctx context.Context, postID, userID uint) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.PostBookmark{})
	if res.Error != nil {
		return false, wrapErr(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) AddToLikeCount(ctx context.Context, postID uint, delta int) error {
	return s.addToPostCounter(ctx, postID, "like_count", delta)
}

func (s *Store) AddToBookmarkCount(ctx context.Context, postID uint, delta int) error {
	return s.addToPostCounter(ctx, postID, "bookmark_count", delta)
}

func (s *Store) AddToCommentCount(ctx context.Context, postID uint, delta int) error {
	return s.addToPostCounter(ctx, postID, "comment_count", delta)
}

func (s *Store) addToPostCounter(ctx context.Context, postID uint, column string, delta int) error {
	return wrapErr(s.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta)).Error)
}
