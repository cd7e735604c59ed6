package repositories

import (
	"context"

	"github.com/voltafleet/driver_ledger_app/internal/core/domain"
)

// UserRepositoryFacade defines persistence for manager accounts.
type UserRepositoryFacade interface {
	// SaveUser persists a new manager account.
	SaveUser(ctx context.Context, user domain.User) error

	// FindUserByID retrieves a manager by ID.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByEmail retrieves a manager by email address.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
}
