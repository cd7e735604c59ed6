package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/voltafleet/driver_ledger_app/internal/apperrors"
	"github.com/voltafleet/driver_ledger_app/internal/core/domain"
	portsrepo "github.com/voltafleet/driver_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/voltafleet/driver_ledger_app/internal/core/ports/services"
	"github.com/voltafleet/driver_ledger_app/internal/dto"
	"github.com/voltafleet/driver_ledger_app/internal/middleware"
	"github.com/voltafleet/driver_ledger_app/internal/platform/config"
	"github.com/voltafleet/driver_ledger_app/internal/utils"
)

// AuthService authenticates fleet managers. The JWT subject is the actor
// identity recorded on audit entries.
type AuthService struct {
	userRepo portsrepo.UserRepositoryFacade
	cfg      *config.Config
}

func NewAuthService(userRepo portsrepo.UserRepositoryFacade, cfg *config.Config) *AuthService {
	return &AuthService{userRepo: userRepo, cfg: cfg}
}

var _ portssvc.AuthSvcFacade = (*AuthService)(nil)

// Login verifies credentials and issues an access token. A wrong email and a
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, err := s.userRepo.FindUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("invalid email or password: %w", apperrors.ErrNotAuthorized)
		}
		return nil, err
	}
	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, fmt.Errorf("invalid email or password: %w", apperrors.ErrNotAuthorized)
	}

	expiresAt := time.Now().Add(s.cfg.JWTExpiryDuration)
	token, err := utils.GenerateJWT(user.UserID, s.cfg.JWTSecret, s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer)
	if err != nil {
		logger.Error("Failed to sign JWT token", slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Manager logged in", slog.String("user_id", user.UserID))
	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		UserID:    user.UserID,
		Name:      user.Name,
	}, nil
}

// Register creates a manager account.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterUserRequest) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		logger.Error("Failed to hash password", slog.String("error", err.Error()))
		return nil, err
	}

	now := time.Now()
	userID := uuid.NewString()
	user := domain.User{
		UserID:       userID,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			logger.Error("Failed to save user", slog.String("error", err.Error()))
		}
		return nil, err
	}

	logger.Info("Manager registered", slog.String("user_id", user.UserID))
	return &user, nil
}
