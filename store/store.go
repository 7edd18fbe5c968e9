package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/rohanpratim/bookworms/services"
)

// Store is the gorm-backed entity gateway. A Store either wraps the shared
// connection pool or, inside WithTx, a single transaction handle; the
// services cannot tell the difference.
type Store struct {
	db *gorm.DB
}

// New creates a gateway over an initialized gorm connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

var _ services.Store = (*Store)(nil)

// WithTx runs fn against a transaction-scoped gateway. The transaction
// commits when fn returns nil and rolls back on error or panic, so no
// partial state from fn is ever observable outside it.
func (s *Store) WithTx(ctx context.Context, fn func(services.Store) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
	if err == nil {
		return nil
	}
	if isDomainError(err) {
		return err
	}
	return fmt.Errorf("%w: transaction failed: %v", services.ErrStorageUnavailable, err)
}

// wrapErr maps driver errors onto the service taxonomy. Absent rows are a
// distinct outcome from transport failures.
func wrapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return services.ErrNotFound
	case isDomainError(err):
		return err
	default:
		return fmt.Errorf("%w: %v", services.ErrStorageUnavailable, err)
	}
}

func isDomainError(err error) bool {
	return errors.Is(err, services.ErrInvalidInput) ||
		errors.Is(err, services.ErrUnauthorized) ||
		errors.Is(err, services.ErrNotFound) ||
		errors.Is(err, services.ErrConflict) ||
		errors.Is(err, services.ErrStorageUnavailable)
}
