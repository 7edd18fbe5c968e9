package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rohanpratim/bookworms/models"
)

// PostService owns every mutation that touches a post together with a second
// document (its creator's counters, its comments) and the post-side read
// queries. Cross-document writes always run inside one store transaction; a
// failed sub-write aborts the whole unit.
type PostService struct {
	store Store
	log   *zap.SugaredLogger
}

// NewPostService creates a PostService instance.
func NewPostService(store Store, log *zap.SugaredLogger) *PostService {
	return &PostService{store: store, log: log}
}

// Create inserts a post and links it to its creator in one transaction.
// The creator must exist; the returned post carries the creator denormalized
// for immediate echo to the caller.
func (s *PostService) Create(ctx context.Context, creatorID uint, caption string) (*models.Post, error) {
	caption = strings.TrimSpace(caption)
	if caption == "" {
		return nil, fmt.Errorf("%w: caption cannot be empty", ErrInvalidInput)
	}

	creator, err := s.store.GetUser(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	post := &models.Post{CreatorID: creatorID, Caption: caption}
	err = s.store.WithTx(ctx, func(tx Store) error {
		if err := tx.CreatePost(ctx, post); err != nil {
			return err
		}
		return tx.AddToPostCount(ctx, creatorID, 1)
	})
	if err != nil {
		return nil, err
	}

	creator.PostCount++
	post.Creator = *creator
	return post, nil
}

// UpdateCaption changes a post's caption. Owner only.
func (s *PostService) UpdateCaption(ctx context.Context, actorID, postID uint, caption string) (*models.Post, error) {
	caption = strings.TrimSpace(caption)
	if caption == "" {
		return nil, fmt.Errorf("%w: caption cannot be empty", ErrInvalidInput)
	}

	post, err := s.store.GetPostWithCreator(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := AssertOwner(actorID, post.CreatorID); err != nil {
		return nil, err
	}

	if err := s.store.UpdatePostCaption(ctx, postID, caption); err != nil {
		return nil, err
	}
	post.Caption = caption
	return post, nil
}

// Delete removes a post, its dependent rows, and the creator linkage as one
// atomic unit. NotFound is reported before the ownership check runs.
func (s *PostService) Delete(ctx context.Context, actorID, postID uint) error {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if err := AssertOwner(actorID, post.CreatorID); err != nil {
		return err
	}

	return s.store.WithTx(ctx, func(tx Store) error {
		if err := tx.PurgePostRelations(ctx, postID); err != nil {
			return err
		}
		if err := tx.DeletePost(ctx, postID); err != nil {
			return err
		}
		return tx.AddToPostCount(ctx, post.CreatorID, -1)
	})
}

// AddComment inserts a comment and links it to its post in one transaction,
// then re-reads the post with nested author projections for the response.
// Comments are ordered newest first, so the fresh comment lands at index 0.
func (s *PostService) AddComment(ctx context.Context, actorID, postID uint, text string) (*models.Post, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: comment text cannot be empty", ErrInvalidInput)
	}

	if _, err := s.store.GetUser(ctx, actorID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetPost(ctx, postID); err != nil {
		return nil, err
	}

	comment := &models.Comment{PostID: postID, UserID: actorID, Text: text}
	err := s.store.WithTx(ctx, func(tx Store) error {
		if err := tx.CreateComment(ctx, comment); err != nil {
			return err
		}
		return tx.AddToCommentCount(ctx, postID, 1)
	})
	if err != nil {
		return nil, err
	}

	return s.store.GetPostDetail(ctx, postID)
}

// DeleteComment removes a comment and its post linkage. Author only. The
// owning post is returned so callers can invalidate per-creator views.
func (s *PostService) DeleteComment(ctx context.Context, actorID, commentID uint) (*models.Post, error) {
	comment, err := s.store.GetComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if err := AssertOwner(actorID, comment.UserID); err != nil {
		return nil, err
	}
	post, err := s.store.GetPost(ctx, comment.PostID)
	if err != nil {
		return nil, err
	}

	err = s.store.WithTx(ctx, func(tx Store) error {
		if err := tx.DeleteCommentReplies(ctx, commentID); err != nil {
			return err
		}
		if err := tx.DeleteComment(ctx, commentID); err != nil {
			return err
		}
		return tx.AddToCommentCount(ctx, comment.PostID, -1)
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// AddReply attaches a single-level reply to a comment. Replies carry text and
// author only and never nest further.
func (s *PostService) AddReply(ctx context.Context, actorID, commentID uint, text string) (*models.CommentReply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: reply text cannot be empty", ErrInvalidInput)
	}

	actor, err := s.store.GetUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetComment(ctx, commentID); err != nil {
		return nil, err
	}

	reply := &models.CommentReply{CommentID: commentID, UserID: actorID, Text: text}
	if err := s.store.CreateReply(ctx, reply); err != nil {
		return nil, err
	}
	reply.User = *actor
	return reply, nil
}

// Like adds the actor to the post's like set. Idempotent: a repeated like
// changes nothing and bumps no counter. The affected post is returned so
// callers can invalidate per-creator views.
func (s *PostService) Like(ctx context.Context, actorID, postID uint) (*models.Post, error) {
	return s.setMembership(ctx, postID, func(tx Store) (bool, error) {
		return tx.AddLike(ctx, postID, actorID)
	}, func(tx Store) error {
		return tx.AddToLikeCount(ctx, postID, 1)
	})
}

// Unlike removes the actor from the post's like set. Removing an absent
// member is a no-op, not an error.
func (s *PostService) Unlike(ctx context.Context, actorID, postID uint) (*models.Post, error) {
	return s.setMembership(ctx, postID, func(tx Store) (bool, error) {
		return tx.RemoveLike(ctx, postID, actorID)
	}, func(tx Store) error {
		return tx.AddToLikeCount(ctx, postID, -1)
	})
}

// Bookmark adds the actor to the post's bookmark set.
func (s *PostService) Bookmark(ctx context.Context, actorID, postID uint) (*models.Post, error) {
	return s.setMembership(ctx, postID, func(tx Store) (bool, error) {
		return tx.AddBookmark(ctx, postID, actorID)
	}, func(tx Store) error {
		return tx.AddToBookmarkCount(ctx, postID, 1)
	})
}

// Unbookmark removes the actor from the post's bookmark set.
func (s *PostService) Unbookmark(ctx context.Context, actorID, postID uint) (*models.Post, error) {
	return s.setMembership(ctx, postID, func(tx Store) (bool, error) {
		return tx.RemoveBookmark(ctx, postID, actorID)
	}, func(tx Store) error {
		return tx.AddToBookmarkCount(ctx, postID, -1)
	})
}

// setMembership validates the post exists, then applies a set-membership
// change and its counter update in one transaction. The counter only moves
// when the membership actually changed. The validated post is returned.
func (s *PostService) setMembership(ctx context.Context, postID uint, change func(Store) (bool, error), bump func(Store) error) (*models.Post, error) {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	err = s.store.WithTx(ctx, func(tx Store) error {
		changed, err := change(tx)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		return bump(tx)
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// Feed returns all posts, newest first, creators denormalized.
func (s *PostService) Feed(ctx context.Context) ([]models.Post, error) {
	return s.store.AllPosts(ctx)
}

// ByCreator returns a user's posts, newest first.
func (s *PostService) ByCreator(ctx context.Context, creatorID uint) ([]models.Post, error) {
	return s.store.PostsByCreator(ctx, creatorID)
}

// BookmarkedBy returns the posts a user has bookmarked, newest first.
func (s *PostService) BookmarkedBy(ctx context.Context, userID uint) ([]models.Post, error) {
	return s.store.PostsBookmarkedBy(ctx, userID)
}

// ByID returns a post with creator, comments (newest first), comment authors
// and replies. Each detail read bumps the view counter; the bump is a
// non-transactional at-least-once update and a lost increment under
// concurrent reads is accepted.
func (s *PostService) ByID(ctx context.Context, postID uint) (*models.Post, error) {
	post, err := s.store.GetPostDetail(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.store.IncrementViewCount(ctx, postID); err != nil {
		s.log.Warnf("view counter bump failed for post %d: %v", postID, err)
	} else {
		post.ViewCount++
	}
	return post, nil
}
