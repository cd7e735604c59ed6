package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/voltafleet/driver_ledger_app/internal/apperrors"
	"github.com/voltafleet/driver_ledger_app/internal/core/domain"
	portsrepo "github.com/voltafleet/driver_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/voltafleet/driver_ledger_app/internal/core/ports/services"
	"github.com/voltafleet/driver_ledger_app/internal/dto"
	"github.com/voltafleet/driver_ledger_app/internal/middleware"
	"github.com/voltafleet/driver_ledger_app/internal/platform/config"
)

// DriverService manages driver records. Balance fields are never mutated
// here; those paths live on the balance and deduction services.
type DriverService struct {
	driverRepo portsrepo.DriverRepositoryFacade
	ledgerRepo portsrepo.LedgerRepositoryWithTx
	auditRepo  portsrepo.AuditRepositoryFacade
	cfg        *config.Config
}

func NewDriverService(driverRepo portsrepo.DriverRepositoryFacade, ledgerRepo portsrepo.LedgerRepositoryWithTx, auditRepo portsrepo.AuditRepositoryFacade, cfg *config.Config) *DriverService {
	return &DriverService{
		driverRepo: driverRepo,
		ledgerRepo: ledgerRepo,
		auditRepo:  auditRepo,
		cfg:        cfg,
	}
}

var _ portssvc.DriverSvcFacade = (*DriverService)(nil)

// CreateDriver registers a new active driver with configured defaults.
func (s *DriverService) CreateDriver(ctx context.Context, req dto.CreateDriverRequest, actorID string) (*domain.Driver, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	dailyTarget := s.cfg.DailyTargetDefault
	if req.DailyTarget != nil {
		if req.DailyTarget.IsNegative() {
			return nil, fmt.Errorf("%w: daily target must not be negative", apperrors.ErrValidation)
		}
		dailyTarget = *req.DailyTarget
	}
	if req.DepositRequired && !req.InitialDepositAmount.IsPositive() {
		return nil, fmt.Errorf("%w: initial deposit amount must be positive when a deposit is required", apperrors.ErrValidation)
	}
	payoutMode := domain.PayoutFollowGlobal
	if req.PayoutMode != "" {
		payoutMode = domain.PayoutMode(req.PayoutMode)
	}

	now := time.Now()
	driver := domain.Driver{
		DriverID:                        uuid.NewString(),
		Name:                            req.Name,
		Phone:                           req.Phone,
		Status:                          domain.DriverActive,
		CurrentBalance:                  decimal.Zero,
		DailyTarget:                     dailyTarget,
		DepositRequired:                 req.DepositRequired,
		InitialDepositAmount:            req.InitialDepositAmount,
		CurrentDepositBalance:           decimal.Zero,
		AllowTargetDeductionFromDeposit: req.AllowTargetDeductionFromDeposit,
		PayoutMode:                      payoutMode,
		Version:                         1,
		AuditFields:                     newAudit(actorID, now),
	}

	if err := s.driverRepo.SaveDriver(ctx, driver); err != nil {
		logger.Error("Failed to save driver", slog.String("error", err.Error()), slog.String("driver_id", driver.DriverID))
		return nil, err
	}

	logger.Info("Driver created", slog.String("driver_id", driver.DriverID), slog.String("name", driver.Name))
	return &driver, nil
}

// GetDriver retrieves a driver by ID.
func (s *DriverService) GetDriver(ctx context.Context, driverID string) (*domain.Driver, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	driver, err := s.driverRepo.FindDriverByID(ctx, driverID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find driver", slog.String("error", err.Error()), slog.String("driver_id", driverID))
		}
		return nil, err
	}
	return driver, nil
}

// ListDrivers retrieves a paginated list of drivers.
func (s *DriverService) ListDrivers(ctx context.Context, params dto.ListDriversParams) (*dto.ListDriversResponse, error) {
	var status *domain.DriverStatus
	if params.Status != nil {
		st := domain.DriverStatus(*params.Status)
		switch st {
		case domain.DriverActive, domain.DriverExited, domain.DriverArchived:
			status = &st
		default:
			return nil, fmt.Errorf("%w: unknown driver status %q", apperrors.ErrValidation, *params.Status)
		}
	}

	drivers, nextToken, err := s.driverRepo.ListDrivers(ctx, status, params.Limit, params.NextToken)
	if err != nil {
		return nil, err
	}

	resp := dto.ListDriversResponse{
		Drivers:   make([]dto.DriverResponse, len(drivers)),
		NextToken: nextToken,
	}
	for i := range drivers {
		resp.Drivers[i] = dto.ToDriverResponse(&drivers[i])
	}
	return &resp, nil
}

// UpdateDriver updates contact/policy fields.
func (s *DriverService) UpdateDriver(ctx context.Context, driverID string, req dto.UpdateDriverRequest, actorID string) (*domain.Driver, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	for attempt := 0; ; attempt++ {
		driver, err := s.driverRepo.FindDriverByID(ctx, driverID)
		if err != nil {
			return nil, err
		}
		if err := guardMutable(driver); err != nil {
			return nil, err
		}

		if req.Name != nil {
			driver.Name = *req.Name
		}
		if req.Phone != nil {
			driver.Phone = *req.Phone
		}
		if req.DailyTarget != nil {
			if req.DailyTarget.IsNegative() {
				return nil, fmt.Errorf("%w: daily target must not be negative", apperrors.ErrValidation)
			}
			driver.DailyTarget = *req.DailyTarget
		}
		if req.AllowTargetDeductionFromDeposit != nil {
			driver.AllowTargetDeductionFromDeposit = *req.AllowTargetDeductionFromDeposit
		}
		if req.PayoutMode != nil {
			driver.PayoutMode = domain.PayoutMode(*req.PayoutMode)
		}
		driver.LastUpdatedAt = time.Now()
		driver.LastUpdatedBy = actorID

		err = s.driverRepo.UpdateDriver(ctx, *driver)
		if err == nil {
			driver.Version++
			logger.Info("Driver updated", slog.String("driver_id", driverID))
			return driver, nil
		}
		if errors.Is(err, apperrors.ErrConflict) && attempt < maxConflictRetries-1 {
			continue
		}
		return nil, err
	}
}

// ListTransactions retrieves the driver's ledger entries.
func (s *DriverService) ListTransactions(ctx context.Context, driverID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	if _, err := s.driverRepo.FindDriverByID(ctx, driverID); err != nil {
		return nil, err
	}

	filters := portsrepo.LedgerFilters{}
	for _, t := range params.Types {
		filters.Types = append(filters.Types, domain.TransactionType(t))
	}
	if params.PaymentStatus != nil {
		st := domain.PaymentStatus(*params.PaymentStatus)
		filters.PaymentStatus = &st
	}

	from := params.From
	to := params.To
	if to.IsZero() {
		to = time.Now()
	}

	txns, nextToken, err := s.ledgerRepo.ListTransactionsByDriver(ctx, driverID, from, to, filters, params.Limit, params.NextToken)
	if err != nil {
		return nil, err
	}

	return &dto.ListTransactionsResponse{
		Transactions: dto.ToTransactionResponses(txns),
		NextToken:    nextToken,
	}, nil
}

// ListAuditTrail retrieves the driver's audit entries, newest first.
func (s *DriverService) ListAuditTrail(ctx context.Context, driverID string, limit int) ([]domain.AuditEntry, error) {
	if _, err := s.driverRepo.FindDriverByID(ctx, driverID); err != nil {
		return nil, err
	}
	return s.auditRepo.ListAuditEntriesByDriver(ctx, driverID, limit)
}
