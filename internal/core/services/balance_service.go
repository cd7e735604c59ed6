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

// maxConflictRetries bounds the version-conflict retry loop on absolute
// balance writes. Delta writes serialize on the driver row lock and never
// conflict.
const maxConflictRetries = 3

var oneHundred = decimal.NewFromInt(100)

// BalanceService is the target balance engine: fare postings, manager resets
// and the on-demand summary projection.
type BalanceService struct {
	driverRepo portsrepo.DriverRepositoryFacade
	ledgerRepo portsrepo.LedgerRepositoryWithTx
	auditRepo  portsrepo.AuditRepositoryFacade
	cfg        *config.Config
}

func NewBalanceService(driverRepo portsrepo.DriverRepositoryFacade, ledgerRepo portsrepo.LedgerRepositoryWithTx, auditRepo portsrepo.AuditRepositoryFacade, cfg *config.Config) *BalanceService {
	return &BalanceService{
		driverRepo: driverRepo,
		ledgerRepo: ledgerRepo,
		auditRepo:  auditRepo,
		cfg:        cfg,
	}
}

var _ portssvc.BalanceSvcFacade = (*BalanceService)(nil)

// guardMutable rejects ledger mutations against exited or archived drivers.
func guardMutable(d *domain.Driver) error {
	switch d.Status {
	case domain.DriverExited:
		return fmt.Errorf("driver %s has exited: %w", d.DriverID, apperrors.ErrAlreadyExited)
	case domain.DriverArchived:
		return fmt.Errorf("driver %s is archived: %w", d.DriverID, apperrors.ErrAlreadyArchived)
	}
	return nil
}

// ResetTargetBalance overwrites the driver's target balance. Zero is a valid
// reset target. The write is audit-logged, not posted to the ledger.
func (s *BalanceService) ResetTargetBalance(ctx context.Context, driverID string, req dto.ResetBalanceRequest, actorID string) (*domain.Driver, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.NewBalance == nil {
		return nil, fmt.Errorf("%w: newBalance is required", apperrors.ErrValidation)
	}
	if req.Reason == "" {
		return nil, fmt.Errorf("%w: reason is required", apperrors.ErrValidation)
	}

	var driver *domain.Driver
	var oldBalance decimal.Decimal
	for attempt := 0; ; attempt++ {
		d, err := s.driverRepo.FindDriverByID(ctx, driverID)
		if err != nil {
			return nil, err
		}
		if err := guardMutable(d); err != nil {
			return nil, err
		}

		now := time.Now()
		oldBalance = d.CurrentBalance
		d.CurrentBalance = *req.NewBalance
		d.LastUpdatedAt = now
		d.LastUpdatedBy = actorID

		err = s.driverRepo.UpdateDriver(ctx, *d)
		if err == nil {
			d.Version++
			driver = d
			break
		}
		if errors.Is(err, apperrors.ErrConflict) && attempt < maxConflictRetries-1 {
			logger.Warn("Balance reset hit version conflict, retrying", slog.String("driver_id", driverID), slog.Int("attempt", attempt+1))
			continue
		}
		return nil, err
	}

	entry := domain.AuditEntry{
		AuditID:   uuid.NewString(),
		DriverID:  driverID,
		ActorID:   actorID,
		Action:    domain.AuditBalanceReset,
		Detail:    fmt.Sprintf("balance reset from %s to %s: %s", oldBalance.StringFixed(2), req.NewBalance.StringFixed(2), req.Reason),
		CreatedAt: time.Now(),
	}
	if err := s.auditRepo.SaveAuditEntry(ctx, entry); err != nil {
		// The balance write is already committed; log the trail gap
		// instead of failing the reset.
		logger.Error("Failed to save audit entry for balance reset", slog.String("error", err.Error()), slog.String("driver_id", driverID))
	}

	logger.Info("Target balance reset", slog.String("driver_id", driverID), slog.String("new_balance", req.NewBalance.StringFixed(2)))
	return driver, nil
}

// ApplyFareTransaction appends a COMPLETED fare entry and credits the
// driver's target balance by the fare split.
func (s *BalanceService) ApplyFareTransaction(ctx context.Context, driverID string, req dto.FareRequest, actorID string) (*domain.LedgerTransaction, *domain.Driver, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.Amount.IsPositive() {
		return nil, nil, fmt.Errorf("%w: fare amount must be positive", apperrors.ErrValidation)
	}
	farePct := s.cfg.FareSplitPercent
	if req.FarePercentage != nil {
		farePct = *req.FarePercentage
	}
	if farePct.IsNegative() || farePct.GreaterThan(oneHundred) {
		return nil, nil, fmt.Errorf("%w: fare percentage must be between 0 and 100", apperrors.ErrValidation)
	}

	driver, err := s.driverRepo.FindDriverByID(ctx, driverID)
	if err != nil {
		return nil, nil, err
	}
	if err := guardMutable(driver); err != nil {
		return nil, nil, err
	}

	now := time.Now()
	txnDate := now
	if req.TransactionDate != nil {
		txnDate = *req.TransactionDate
	}
	if !s.cfg.WithinOperatingHours(txnDate) {
		logger.Warn("Fare posted outside operating hours", slog.String("driver_id", driverID), slog.Time("transaction_date", txnDate))
	}

	contribution := req.Amount.Mul(farePct).Div(oneHundred).Round(2)

	vehicleID := req.VehicleID
	txn := domain.LedgerTransaction{
		TransactionID:      uuid.NewString(),
		DriverID:           driverID,
		VehicleID:          &vehicleID,
		Amount:             req.Amount,
		TargetContribution: contribution,
		Type:               domain.Fare,
		PaymentStatus:      domain.PaymentCompleted,
		Reference:          req.Reference,
		Description:        req.Description,
		TransactionDate:    txnDate,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}
	if err := txn.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	updated, err := s.ledgerRepo.SaveTransaction(ctx, txn, domain.BalanceChange{TargetDelta: contribution})
	if err != nil {
		middleware.LedgerOperations.WithLabelValues(string(domain.Fare), "error").Inc()
		logger.Error("Failed to save fare transaction", slog.String("error", err.Error()), slog.String("driver_id", driverID))
		return nil, nil, err
	}
	middleware.LedgerOperations.WithLabelValues(string(domain.Fare), "success").Inc()

	logger.Info("Fare applied",
		slog.String("driver_id", driverID),
		slog.String("transaction_id", txn.TransactionID),
		slog.String("contribution", contribution.StringFixed(2)))
	return &txn, updated, nil
}

// ResetConsecutiveMisses zeroes the miss streak, audit-logged.
func (s *BalanceService) ResetConsecutiveMisses(ctx context.Context, driverID string, actorID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	for attempt := 0; ; attempt++ {
		driver, err := s.driverRepo.FindDriverByID(ctx, driverID)
		if err != nil {
			return err
		}
		if err := guardMutable(driver); err != nil {
			return err
		}
		if driver.ConsecutiveMisses == 0 {
			return nil
		}

		driver.ConsecutiveMisses = 0
		driver.LastUpdatedAt = time.Now()
		driver.LastUpdatedBy = actorID

		err = s.driverRepo.UpdateDriver(ctx, *driver)
		if err == nil {
			break
		}
		if errors.Is(err, apperrors.ErrConflict) && attempt < maxConflictRetries-1 {
			continue
		}
		return err
	}

	entry := domain.AuditEntry{
		AuditID:   uuid.NewString(),
		DriverID:  driverID,
		ActorID:   actorID,
		Action:    domain.AuditMissesReset,
		Detail:    "consecutive misses reset to 0",
		CreatedAt: time.Now(),
	}
	if err := s.auditRepo.SaveAuditEntry(ctx, entry); err != nil {
		logger.Error("Failed to save audit entry for misses reset", slog.String("error", err.Error()), slog.String("driver_id", driverID))
	}

	logger.Info("Consecutive misses reset", slog.String("driver_id", driverID))
	return nil
}

// RecordTargetMiss increments the miss streak, capped at the maximum.
func (s *BalanceService) RecordTargetMiss(ctx context.Context, driverID string, actorID string) (*domain.Driver, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	for attempt := 0; ; attempt++ {
		driver, err := s.driverRepo.FindDriverByID(ctx, driverID)
		if err != nil {
			return nil, err
		}
		if err := guardMutable(driver); err != nil {
			return nil, err
		}
		if driver.ConsecutiveMisses >= domain.MaxConsecutiveMisses {
			return driver, nil
		}

		driver.ConsecutiveMisses++
		driver.LastUpdatedAt = time.Now()
		driver.LastUpdatedBy = actorID

		err = s.driverRepo.UpdateDriver(ctx, *driver)
		if err == nil {
			driver.Version++
			logger.Info("Target miss recorded", slog.String("driver_id", driverID), slog.Int("consecutive_misses", driver.ConsecutiveMisses))
			return driver, nil
		}
		if errors.Is(err, apperrors.ErrConflict) && attempt < maxConflictRetries-1 {
			continue
		}
		return nil, err
	}
}

// GetDriverSummary derives the dashboard projection on demand.
func (s *BalanceService) GetDriverSummary(ctx context.Context, driverID string) (*domain.DriverSummary, error) {
	driver, err := s.driverRepo.FindDriverByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	summary := driver.Summarize()
	return &summary, nil
}
