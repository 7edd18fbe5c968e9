package store

import (
	"context"

	"github.com/rohanpratim/bookworms/models"
)

func (s *Store) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := s.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, wrapErr(err)
	}
	return &comment, nil
}

func (s *Store) CreateComment(ctx context.Context, comment *models.Comment) error {
	return wrapErr(s.db.WithContext(ctx).Omit("User", "Replies").Create(comment).Error)
}

func (s *Store) DeleteComment(ctx context.Context, id uint) error {
	return wrapErr(s.db.WithContext(ctx).Delete(&models.Comment{}, id).Error)
}

func (s *Store) DeleteCommentReplies(ctx context.Context, commentID uint) error {
	return wrapErr(s.db.WithContext(ctx).
		Where("comment_id = ?", commentID).
		Delete(&models.CommentReply{}).Error)
}

func (s *Store) CreateReply(ctx context.Context, reply *models.CommentReply) error {
	return wrapErr(s.db.WithContext(ctx).Omit("User").Create(reply).Error)
}
