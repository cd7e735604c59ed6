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
	"github.com/voltafleet/driver_ledger_app/internal/middleware"
)

// ExitService runs the terminal driver exit computation and the archival
// lifecycle around it.
type ExitService struct {
	driverRepo portsrepo.DriverRepositoryFacade
	ledgerRepo portsrepo.LedgerRepositoryWithTx
	auditRepo  portsrepo.AuditRepositoryFacade
}

func NewExitService(driverRepo portsrepo.DriverRepositoryFacade, ledgerRepo portsrepo.LedgerRepositoryWithTx, auditRepo portsrepo.AuditRepositoryFacade) *ExitService {
	return &ExitService{
		driverRepo: driverRepo,
		ledgerRepo: ledgerRepo,
		auditRepo:  auditRepo,
	}
}

var _ portssvc.ExitSvcFacade = (*ExitService)(nil)

// ProcessDriverExit computes the deposit refund net of pending deductions,
// records the exit refund entry, releases the assigned vehicle and marks the
// driver exited, atomically. One-time per driver.
func (s *ExitService) ProcessDriverExit(ctx context.Context, driverID string, exitDate time.Time, actorID string) (*domain.Driver, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	for attempt := 0; ; attempt++ {
		driver, err := s.driverRepo.FindDriverByID(ctx, driverID)
		if err != nil {
			return nil, err
		}
		switch driver.Status {
		case domain.DriverExited:
			return nil, fmt.Errorf("driver %s: %w", driverID, apperrors.ErrAlreadyExited)
		case domain.DriverArchived:
			return nil, fmt.Errorf("driver %s: %w", driverID, apperrors.ErrAlreadyArchived)
		}

		pending, err := s.ledgerRepo.SumPendingDeductions(ctx, driverID)
		if err != nil {
			return nil, err
		}
		// Refund is the deposit net of unresolved deductions. It stays signed:
		// a negative value means the driver leaves owing money.
		refund := driver.CurrentDepositBalance.Sub(pending)

		now := time.Now()
		refundTxn := domain.LedgerTransaction{
			TransactionID:   uuid.NewString(),
			DriverID:        driverID,
			Amount:          refund,
			Type:            domain.ExitRefund,
			PaymentStatus:   domain.PaymentPending,
			Description:     fmt.Sprintf("exit refund: deposit %s less pending deductions %s", driver.CurrentDepositBalance.StringFixed(2), pending.StringFixed(2)),
			TransactionDate: exitDate,
			AuditFields:     newAudit(actorID, now),
		}

		releaseVehicleID := driver.AssignedVehicleID
		driver.Status = domain.DriverExited
		driver.ExitDate = &exitDate
		driver.RefundStatus = domain.RefundPending
		driver.RefundAmount = refund
		driver.AssignedVehicleID = nil
		driver.LastUpdatedAt = now
		driver.LastUpdatedBy = actorID

		err = s.ledgerRepo.SaveExit(ctx, *driver, refundTxn, releaseVehicleID)
		if err == nil {
			middleware.LedgerOperations.WithLabelValues(string(domain.ExitRefund), "success").Inc()
			driver.Version++
			logger.Info("Driver exit processed",
				slog.String("driver_id", driverID),
				slog.String("refund_amount", refund.StringFixed(2)),
				slog.String("transaction_id", refundTxn.TransactionID))
			return driver, nil
		}
		if errors.Is(err, apperrors.ErrConflict) && attempt < maxConflictRetries-1 {
			logger.Warn("Exit settlement hit version conflict, retrying", slog.String("driver_id", driverID), slog.Int("attempt", attempt+1))
			continue
		}
		middleware.LedgerOperations.WithLabelValues(string(domain.ExitRefund), "error").Inc()
		logger.Error("Failed to settle driver exit", slog.String("error", err.Error()), slog.String("driver_id", driverID))
		return nil, err
	}
}

// ArchiveDriver moves an exited driver to the read-only archived state.
func (s *ExitService) ArchiveDriver(ctx context.Context, driverID string, actorID string) (*domain.Driver, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	for attempt := 0; ; attempt++ {
		driver, err := s.driverRepo.FindDriverByID(ctx, driverID)
		if err != nil {
			return nil, err
		}
		if driver.Status == domain.DriverArchived {
			return nil, fmt.Errorf("driver %s: %w", driverID, apperrors.ErrAlreadyArchived)
		}
		if driver.Status != domain.DriverExited {
			return nil, fmt.Errorf("%w: only exited drivers can be archived", apperrors.ErrValidation)
		}

		driver.Status = domain.DriverArchived
		driver.LastUpdatedAt = time.Now()
		driver.LastUpdatedBy = actorID

		err = s.driverRepo.UpdateDriver(ctx, *driver)
		if err == nil {
			driver.Version++
			logger.Info("Driver archived", slog.String("driver_id", driverID))
			return driver, nil
		}
		if errors.Is(err, apperrors.ErrConflict) && attempt < maxConflictRetries-1 {
			continue
		}
		return nil, err
	}
}

// RestoreArchivedDriver reverses archival. Target tracking starts fresh; the
// deposit and the transaction history are preserved. The driver re-enters
// rotation only after a new vehicle assignment.
func (s *ExitService) RestoreArchivedDriver(ctx context.Context, driverID string, reason string, actorID string) (*domain.Driver, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if reason == "" {
		return nil, fmt.Errorf("%w: restore reason is required", apperrors.ErrValidation)
	}

	var driver *domain.Driver
	for attempt := 0; ; attempt++ {
		d, err := s.driverRepo.FindDriverByID(ctx, driverID)
		if err != nil {
			return nil, err
		}
		if d.Status != domain.DriverArchived {
			return nil, fmt.Errorf("%w: driver %s is not archived", apperrors.ErrValidation, driverID)
		}

		d.Status = domain.DriverActive
		d.ExitDate = nil
		d.ConsecutiveMisses = 0
		d.CurrentBalance = decimal.Zero
		d.LastUpdatedAt = time.Now()
		d.LastUpdatedBy = actorID

		err = s.driverRepo.UpdateDriver(ctx, *d)
		if err == nil {
			d.Version++
			driver = d
			break
		}
		if errors.Is(err, apperrors.ErrConflict) && attempt < maxConflictRetries-1 {
			continue
		}
		return nil, err
	}

	entry := domain.AuditEntry{
		AuditID:   uuid.NewString(),
		DriverID:  driverID,
		ActorID:   actorID,
		Action:    domain.AuditDriverRestored,
		Detail:    "driver restored from archive: " + reason,
		CreatedAt: time.Now(),
	}
	if err := s.auditRepo.SaveAuditEntry(ctx, entry); err != nil {
		// The restore is already committed; log the trail gap instead
		// of failing it.
		logger.Error("Failed to save audit entry for restore", slog.String("error", err.Error()), slog.String("driver_id", driverID))
	}

	logger.Info("Driver restored from archive", slog.String("driver_id", driverID))
	return driver, nil
}

// UpdateRefundStatus advances the refund workflow.
func (s *ExitService) UpdateRefundStatus(ctx context.Context, driverID string, status domain.RefundStatus, actorID string) (*domain.Driver, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	var driver *domain.Driver
	var oldStatus domain.RefundStatus
	for attempt := 0; ; attempt++ {
		d, err := s.driverRepo.FindDriverByID(ctx, driverID)
		if err != nil {
			return nil, err
		}
		if d.ExitDate == nil {
			return nil, fmt.Errorf("%w: driver %s has no exit refund", apperrors.ErrValidation, driverID)
		}
		if !d.RefundStatus.CanTransitionTo(status) {
			return nil, fmt.Errorf("refund status %s cannot move to %s: %w", d.RefundStatus, status, apperrors.ErrConflict)
		}

		oldStatus = d.RefundStatus
		d.RefundStatus = status
		d.LastUpdatedAt = time.Now()
		d.LastUpdatedBy = actorID

		err = s.driverRepo.UpdateDriver(ctx, *d)
		if err == nil {
			d.Version++
			driver = d
			break
		}
		if errors.Is(err, apperrors.ErrConflict) && attempt < maxConflictRetries-1 {
			continue
		}
		return nil, err
	}

	entry := domain.AuditEntry{
		AuditID:   uuid.NewString(),
		DriverID:  driverID,
		ActorID:   actorID,
		Action:    domain.AuditRefundStatusMove,
		Detail:    fmt.Sprintf("refund status moved from %s to %s", oldStatus, status),
		CreatedAt: time.Now(),
	}
	if err := s.auditRepo.SaveAuditEntry(ctx, entry); err != nil {
		logger.Error("Failed to save audit entry for refund status change", slog.String("error", err.Error()), slog.String("driver_id", driverID))
	}

	logger.Info("Refund status updated", slog.String("driver_id", driverID), slog.String("status", string(status)))
	return driver, nil
}
