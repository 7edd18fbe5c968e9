package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rohanpratim/bookworms/models"
)

// SuggestionLimit is the fixed recency cutoff for the "who to follow" list.
const SuggestionLimit = 5

// Profile is a user's full view with follower/following expansion.
type Profile struct {
	User      models.User   `json:"user"`
	Followers []models.User `json:"followers"`
	Following []models.User `json:"following"`
}

// UserService owns account creation, profile reads, the follow graph, and
// user discovery queries.
type UserService struct {
	store Store
	log   *zap.SugaredLogger
}

// NewUserService creates a UserService instance.
func NewUserService(store Store, log *zap.SugaredLogger) *UserService {
	return &UserService{store: store, log: log}
}

// RegisterInput carries validated signup fields. The password arrives
// already hashed; credential mechanics stay outside the core.
type RegisterInput struct {
	Username     string
	Fullname     string
	Email        string
	PasswordHash string
	Image        string
	Bio          string
}

// Register creates an account after a duplicate-email pre-check. An existing
// email surfaces Conflict before any write is attempted.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Fullname = strings.TrimSpace(in.Fullname)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Username == "" || in.Fullname == "" || in.Email == "" || in.PasswordHash == "" {
		return nil, fmt.Errorf("%w: username, fullname, email and password are required", ErrInvalidInput)
	}

	if _, err := s.store.GetUserByEmail(ctx, in.Email); err == nil {
		return nil, fmt.Errorf("%w: email %s is already registered", ErrConflict, in.Email)
	} else if !IsNotFound(err) {
		return nil, err
	}

	user := &models.User{
		Username:     in.Username,
		Fullname:     in.Fullname,
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		Image:        in.Image,
		Bio:          in.Bio,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ByEmail loads a user for credential verification at the boundary.
func (s *UserService) ByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.store.GetUserByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
}

// Profile returns a user with follower and following lists expanded.
func (s *UserService) Profile(ctx context.Context, userID uint) (*Profile, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	followers, err := s.store.Followers(ctx, userID)
	if err != nil {
		return nil, err
	}
	following, err := s.store.Following(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Profile{User: *user, Followers: followers, Following: following}, nil
}

// ProfileUpdate carries the mutable profile fields.
type ProfileUpdate struct {
	Username string
	Fullname string
	Image    string
	Bio      string
}

// UpdateProfile applies profile changes. Self only.
func (s *UserService) UpdateProfile(ctx context.Context, actorID, userID uint, in ProfileUpdate) (*models.User, error) {
	if err := AssertOwner(actorID, userID); err != nil {
		return nil, err
	}
	in.Username = strings.TrimSpace(in.Username)
	in.Fullname = strings.TrimSpace(in.Fullname)
	if in.Username == "" || in.Fullname == "" {
		return nil, fmt.Errorf("%w: username and fullname cannot be empty", ErrInvalidInput)
	}

	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	fields := map[string]any{
		"username": in.Username,
		"fullname": in.Fullname,
		"image":    in.Image,
		"bio":      in.Bio,
	}
	if err := s.store.UpdateUserFields(ctx, userID, fields); err != nil {
		return nil, err
	}
	return s.store.GetUser(ctx, userID)
}

// Follow records actor → target. Both sides of the pair (the follow edge and
// the two counters) commit in one transaction; a repeated follow is a no-op.
func (s *UserService) Follow(ctx context.Context, actorID, targetID uint) error {
	if actorID == targetID {
		return fmt.Errorf("%w: cannot follow yourself", ErrInvalidInput)
	}
	if _, err := s.store.GetUser(ctx, actorID); err != nil {
		return err
	}
	if _, err := s.store.GetUser(ctx, targetID); err != nil {
		return err
	}

	return s.store.WithTx(ctx, func(tx Store) error {
		added, err := tx.AddFollow(ctx, actorID, targetID)
		if err != nil {
			return err
		}
		if !added {
			return nil
		}
		if err := tx.AddToFollowingCount(ctx, actorID, 1); err != nil {
			return err
		}
		return tx.AddToFollowerCount(ctx, targetID, 1)
	})
}

// Unfollow removes the pair. Removing an absent edge is a no-op.
func (s *UserService) Unfollow(ctx context.Context, actorID, targetID uint) error {
	if actorID == targetID {
		return fmt.Errorf("%w: cannot unfollow yourself", ErrInvalidInput)
	}
	if _, err := s.store.GetUser(ctx, actorID); err != nil {
		return err
	}
	if _, err := s.store.GetUser(ctx, targetID); err != nil {
		return err
	}

	return s.store.WithTx(ctx, func(tx Store) error {
		removed, err := tx.RemoveFollow(ctx, actorID, targetID)
		if err != nil {
			return err
		}
		if !removed {
			return nil
		}
		if err := tx.AddToFollowingCount(ctx, actorID, -1); err != nil {
			return err
		}
		return tx.AddToFollowerCount(ctx, targetID, -1)
	})
}

// Search matches the keyword case-insensitively against username and
// fullname, excluding the requester. An empty result is a valid outcome.
func (s *UserService) Search(ctx context.Context, actorID uint, keyword string) ([]models.User, error) {
	return s.store.SearchUsers(ctx, strings.TrimSpace(keyword), actorID)
}

// Suggestions returns the most recently created users excluding the
// requester.
func (s *UserService) Suggestions(ctx context.Context, excludeID uint) ([]models.User, error) {
	return s.store.NewestUsers(ctx, excludeID, SuggestionLimit)
}

// IsNotFound reports whether err is the NotFound outcome.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
