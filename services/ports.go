package services

import (
	"context"

	"github.com/rohanpratim/bookworms/models"
)

// Store is the entity gateway the services are written against. The gorm
// adapter in the store package implements it; tests substitute an in-memory
// implementation.
//
// Error contract: reads of an absent id return ErrNotFound; any transport or
// driver failure is wrapped in ErrStorageUnavailable. Set-membership writes
// report whether they changed anything so callers can keep denormalized
// counters consistent inside the same transaction.
type Store interface {
	// WithTx runs fn against a transaction-scoped gateway. All writes issued
	// through that gateway commit or roll back as one atomic unit; fn
	// returning an error aborts the transaction.
	WithTx(ctx context.Context, fn func(Store) error) error

	GetUser(ctx context.Context, id uint) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUserFields(ctx context.Context, id uint, fields map[string]any) error
	SearchUsers(ctx context.Context, keyword string, excludeID uint) ([]models.User, error)
	NewestUsers(ctx context.Context, excludeID uint, limit int) ([]models.User, error)
	Followers(ctx context.Context, userID uint) ([]models.User, error)
	Following(ctx context.Context, userID uint) ([]models.User, error)
	AddFollow(ctx context.Context, followerID, followingID uint) (bool, error)
	RemoveFollow(ctx context.Context, followerID, followingID uint) (bool, error)
	AddToPostCount(ctx context.Context, userID uint, delta int) error
	AddToFollowerCount(ctx context.Context, userID uint, delta int) error
	AddToFollowingCount(ctx context.Context, userID uint, delta int) error

	GetPost(ctx context.Context, id uint) (*models.Post, error)
	GetPostWithCreator(ctx context.Context, id uint) (*models.Post, error)
	GetPostDetail(ctx context.Context, id uint) (*models.Post, error)
	CreatePost(ctx context.Context, post *models.Post) error
	UpdatePostCaption(ctx context.Context, id uint, caption string) error
	DeletePost(ctx context.Context, id uint) error
	PurgePostRelations(ctx context.Context, postID uint) error
	AllPosts(ctx context.Context) ([]models.Post, error)
	PostsByCreator(ctx context.Context, creatorID uint) ([]models.Post, error)
	PostsBookmarkedBy(ctx context.Context, userID uint) ([]models.Post, error)
	IncrementViewCount(ctx context.Context, postID uint) error
	AddLike(ctx context.Context, postID, userID uint) (bool, error)
	RemoveLike(ctx context.Context, postID, userID uint) (bool, error)
	AddBookmark(ctx context.Context, postID, userID uint) (bool, error)
	RemoveBookmark(ctx context.Context, postID, userID uint) (bool, error)
	AddToLikeCount(ctx context.Context, postID uint, delta int) error
	AddToBookmarkCount(ctx context.Context, postID uint, delta int) error
	AddToCommentCount(ctx context.Context, postID uint, delta int) error

	GetComment(ctx context.Context, id uint) (*models.Comment, error)
	CreateComment(ctx context.Context, comment *models.Comment) error
	DeleteComment(ctx context.Context, id uint) error
	DeleteCommentReplies(ctx context.Context, commentID uint) error
	CreateReply(ctx context.Context, reply *models.CommentReply) error
}
