package services

import (
	"context"

	"github.com/rohanpratim/bookworms/models"
)

// Bootstrap is the view a client needs on session start: the full profile
// plus a suggestion list. Degraded is set when the suggestion query failed
// and an empty list was substituted.
type Bootstrap struct {
	Profile     Profile       `json:"profile"`
	Suggestions []models.User `json:"suggestions"`
	Degraded    bool          `json:"-"`
}

// outcome is the settled result of one independent fetch.
type outcome[T any] struct {
	value T
	err   error
}

// settle runs fn concurrently and delivers its result on the returned
// channel without short-circuiting sibling fetches.
func settle[T any](fn func() (T, error)) <-chan outcome[T] {
	ch := make(chan outcome[T], 1)
	go func() {
		v, err := fn()
		ch <- outcome[T]{value: v, err: err}
	}()
	return ch
}

// Bootstrap issues the profile fetch and the suggestion query concurrently
// and waits for both to settle. The profile is authoritative: its failure
// fails the bootstrap. A suggestion failure is swallowed into a degraded but
// valid result and never fails the bootstrap on its own.
func (s *UserService) Bootstrap(ctx context.Context, userID uint) (*Bootstrap, error) {
	profileCh := settle(func() (*Profile, error) {
		return s.Profile(ctx, userID)
	})
	suggestionsCh := settle(func() ([]models.User, error) {
		return s.Suggestions(ctx, userID)
	})

	profile := <-profileCh
	suggestions := <-suggestionsCh

	if profile.err != nil {
		return nil, profile.err
	}

	out := &Bootstrap{Profile: *profile.value, Suggestions: suggestions.value}
	if suggestions.err != nil {
		s.log.Warnf("bootstrap for user %d degraded, suggestion query failed: %v", userID, suggestions.err)
		out.Suggestions = []models.User{}
		out.Degraded = true
	}
	return out, nil
}
