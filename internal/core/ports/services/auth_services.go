package services

import (
	"context"

	"github.com/voltafleet/driver_ledger_app/internal/core/domain"
	"github.com/voltafleet/driver_ledger_app/internal/dto"
)

// AuthSvcFacade authenticates fleet managers. The JWT subject is the actor
// identity recorded on audit entries.
type AuthSvcFacade interface {
	// Login verifies credentials and issues an access token.
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)

	// Register creates a manager account.
	Register(ctx context.Context, req dto.RegisterUserRequest) (*domain.User, error)
}
