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
	"github.com/voltafleet/driver_ledger_app/internal/middleware"
)

// ReconciliationService independently recomputes driver balances from the
// transaction log to detect drift from the cached value.
type ReconciliationService struct {
	driverRepo portsrepo.DriverRepositoryFacade
	ledgerRepo portsrepo.LedgerRepositoryWithTx
	auditRepo  portsrepo.AuditRepositoryFacade
}

func NewReconciliationService(driverRepo portsrepo.DriverRepositoryFacade, ledgerRepo portsrepo.LedgerRepositoryWithTx, auditRepo portsrepo.AuditRepositoryFacade) *ReconciliationService {
	return &ReconciliationService{
		driverRepo: driverRepo,
		ledgerRepo: ledgerRepo,
		auditRepo:  auditRepo,
	}
}

var _ portssvc.ReconciliationSvcFacade = (*ReconciliationService)(nil)

// ReconcileDriverBalance recomputes the target balance over the period and
// compares it to the stored value. A discrepancy is a reportable result,
// never an error.
func (s *ReconciliationService) ReconcileDriverBalance(ctx context.Context, driverID string, period domain.Period) (*domain.ReconciliationResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !period.From.Before(period.To) {
		return nil, fmt.Errorf("%w: reconciliation period is empty", apperrors.ErrValidation)
	}
	// Clamp the period end so the recomputation runs against a fixed snapshot.
	if now := time.Now(); period.To.After(now) {
		period.To = now
	}

	driver, err := s.driverRepo.FindDriverByID(ctx, driverID)
	if err != nil {
		return nil, err
	}

	calculated, count, err := s.ledgerRepo.SumTargetContributions(ctx, driverID, period)
	if err != nil {
		return nil, err
	}

	result := domain.ReconciliationResult{
		DriverID:          driverID,
		OldBalance:        driver.CurrentBalance,
		CalculatedBalance: calculated,
		Discrepancy:       driver.CurrentBalance.Sub(calculated),
		TransactionsCount: count,
	}
	if !result.Discrepancy.IsZero() {
		logger.Warn("Balance discrepancy detected",
			slog.String("driver_id", driverID),
			slog.String("stored", result.OldBalance.StringFixed(2)),
			slog.String("calculated", calculated.StringFixed(2)))
	}
	return &result, nil
}

// FixDriverBalance reconciles and, when autoFix is set, overwrites the stored
// balance with the calculated one. This is the only path besides an explicit
// reset that may overwrite a stored balance.
func (s *ReconciliationService) FixDriverBalance(ctx context.Context, driverID string, period domain.Period, autoFix bool, actorID string) (*domain.ReconciliationResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	result, err := s.ReconcileDriverBalance(ctx, driverID, period)
	if err != nil {
		return nil, err
	}
	if !autoFix || result.Discrepancy.IsZero() {
		return result, nil
	}

	for attempt := 0; ; attempt++ {
		driver, err := s.driverRepo.FindDriverByID(ctx, driverID)
		if err != nil {
			return nil, err
		}

		driver.CurrentBalance = result.CalculatedBalance
		driver.LastUpdatedAt = time.Now()
		driver.LastUpdatedBy = actorID

		err = s.driverRepo.UpdateDriver(ctx, *driver)
		if err == nil {
			break
		}
		if errors.Is(err, apperrors.ErrConflict) && attempt < maxConflictRetries-1 {
			logger.Warn("Balance fix hit version conflict, retrying", slog.String("driver_id", driverID), slog.Int("attempt", attempt+1))
			continue
		}
		return nil, err
	}

	entry := domain.AuditEntry{
		AuditID:   uuid.NewString(),
		DriverID:  driverID,
		ActorID:   actorID,
		Action:    domain.AuditBalanceFix,
		Detail:    fmt.Sprintf("balance fixed from %s to %s (discrepancy %s over %d transactions)", result.OldBalance.StringFixed(2), result.CalculatedBalance.StringFixed(2), result.Discrepancy.StringFixed(2), result.TransactionsCount),
		CreatedAt: time.Now(),
	}
	if err := s.auditRepo.SaveAuditEntry(ctx, entry); err != nil {
		// The balance overwrite is already committed; log the trail gap
		// instead of failing the fix.
		logger.Error("Failed to save audit entry for balance fix", slog.String("error", err.Error()), slog.String("driver_id", driverID))
	}

	result.Fixed = true
	logger.Info("Driver balance fixed",
		slog.String("driver_id", driverID),
		slog.String("new_balance", result.CalculatedBalance.StringFixed(2)))
	return result, nil
}
