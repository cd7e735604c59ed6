package services

import (
	"context"
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

// DeductionService applies deposit movements, deductions and corrections
// under authorization rules, and resolves uncaptured customer payments.
type DeductionService struct {
	driverRepo portsrepo.DriverRepositoryFacade
	ledgerRepo portsrepo.LedgerRepositoryWithTx
	dispatcher portssvc.PaymentDispatcher
	cfg        *config.Config
}

func NewDeductionService(driverRepo portsrepo.DriverRepositoryFacade, ledgerRepo portsrepo.LedgerRepositoryWithTx, dispatcher portssvc.PaymentDispatcher, cfg *config.Config) *DeductionService {
	return &DeductionService{
		driverRepo: driverRepo,
		ledgerRepo: ledgerRepo,
		dispatcher: dispatcher,
		cfg:        cfg,
	}
}

var _ portssvc.DeductionSvcFacade = (*DeductionService)(nil)

func newAudit(actorID string, now time.Time) domain.AuditFields {
	return domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     actorID,
		LastUpdatedAt: now,
		LastUpdatedBy: actorID,
	}
}

// loadMutableDriver fetches a driver and rejects exited/archived ones.
func (s *DeductionService) loadMutableDriver(ctx context.Context, driverID string) (*domain.Driver, error) {
	driver, err := s.driverRepo.FindDriverByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if err := guardMutable(driver); err != nil {
		return nil, err
	}
	return driver, nil
}

// ProcessDepositTopUp credits the driver's security deposit.
func (s *DeductionService) ProcessDepositTopUp(ctx context.Context, driverID string, req dto.DepositTopUpRequest, actorID string) (*portssvc.DepositResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: top-up amount must be positive", apperrors.ErrValidation)
	}
	driver, err := s.loadMutableDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if !driver.DepositRequired {
		return nil, fmt.Errorf("%w: driver %s holds no deposit", apperrors.ErrValidation, driverID)
	}

	now := time.Now()
	txn := domain.LedgerTransaction{
		TransactionID:   uuid.NewString(),
		DriverID:        driverID,
		Amount:          req.Amount,
		Type:            domain.DepositTopUp,
		PaymentStatus:   domain.PaymentCompleted,
		Reference:       req.Reference,
		Description:     req.Description,
		TransactionDate: now,
		AuditFields:     newAudit(actorID, now),
	}

	updated, err := s.ledgerRepo.SaveTransaction(ctx, txn, domain.BalanceChange{DepositDelta: req.Amount})
	if err != nil {
		middleware.LedgerOperations.WithLabelValues(string(domain.DepositTopUp), "error").Inc()
		logger.Error("Failed to save deposit top-up", slog.String("error", err.Error()), slog.String("driver_id", driverID))
		return nil, err
	}
	middleware.LedgerOperations.WithLabelValues(string(domain.DepositTopUp), "success").Inc()

	logger.Info("Deposit topped up", slog.String("driver_id", driverID), slog.String("amount", req.Amount.StringFixed(2)))
	return &portssvc.DepositResult{
		Driver:        updated,
		TransactionID: txn.TransactionID,
		BelowZero:     updated.CurrentDepositBalance.IsNegative(),
	}, nil
}

// ProcessDamageDeduction debits the deposit for vehicle damage. The deposit
// may go negative; the result flags that state instead of clamping.
func (s *DeductionService) ProcessDamageDeduction(ctx context.Context, driverID string, req dto.DamageDeductionRequest, actorID string) (*portssvc.DepositResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: deduction amount must be positive", apperrors.ErrValidation)
	}
	if req.Description == "" {
		return nil, fmt.Errorf("%w: damage description is required", apperrors.ErrValidation)
	}
	driver, err := s.loadMutableDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if !driver.DepositRequired {
		return nil, fmt.Errorf("%w: driver %s holds no deposit", apperrors.ErrValidation, driverID)
	}

	now := time.Now()
	txn := domain.LedgerTransaction{
		TransactionID:   uuid.NewString(),
		DriverID:        driverID,
		VehicleID:       driver.AssignedVehicleID,
		Amount:          req.Amount.Neg(),
		Type:            domain.DamageDeduction,
		PaymentStatus:   domain.PaymentCompleted,
		Reference:       req.Reference,
		Description:     req.Description,
		TransactionDate: now,
		AuditFields:     newAudit(actorID, now),
	}

	updated, err := s.ledgerRepo.SaveTransaction(ctx, txn, domain.BalanceChange{DepositDelta: req.Amount.Neg()})
	if err != nil {
		middleware.LedgerOperations.WithLabelValues(string(domain.DamageDeduction), "error").Inc()
		logger.Error("Failed to save damage deduction", slog.String("error", err.Error()), slog.String("driver_id", driverID))
		return nil, err
	}
	middleware.LedgerOperations.WithLabelValues(string(domain.DamageDeduction), "success").Inc()

	belowZero := updated.CurrentDepositBalance.IsNegative()
	if belowZero {
		logger.Warn("Damage deduction drove deposit below zero",
			slog.String("driver_id", driverID),
			slog.String("deposit_balance", updated.CurrentDepositBalance.StringFixed(2)))
	}
	return &portssvc.DepositResult{
		Driver:        updated,
		TransactionID: txn.TransactionID,
		BelowZero:     belowZero,
	}, nil
}

// ProcessTargetMissDeduction debits the deposit for a missed daily target.
// Only drivers who opted in may be deducted this way.
func (s *DeductionService) ProcessTargetMissDeduction(ctx context.Context, driverID string, req dto.TargetMissDeductionRequest, actorID string) (*portssvc.DepositResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.MissedAmount.IsPositive() {
		return nil, fmt.Errorf("%w: missed amount must be positive", apperrors.ErrValidation)
	}
	driver, err := s.loadMutableDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if !driver.AllowTargetDeductionFromDeposit {
		return nil, fmt.Errorf("driver %s has not opted in to target deductions from deposit: %w", driverID, apperrors.ErrNotAuthorized)
	}

	now := time.Now()
	txn := domain.LedgerTransaction{
		TransactionID:   uuid.NewString(),
		DriverID:        driverID,
		Amount:          req.MissedAmount.Neg(),
		Type:            domain.TargetMissDeduction,
		PaymentStatus:   domain.PaymentCompleted,
		Description:     fmt.Sprintf("daily target missed by %s", req.MissedAmount.StringFixed(2)),
		TransactionDate: now,
		AuditFields:     newAudit(actorID, now),
	}

	updated, err := s.ledgerRepo.SaveTransaction(ctx, txn, domain.BalanceChange{DepositDelta: req.MissedAmount.Neg()})
	if err != nil {
		middleware.LedgerOperations.WithLabelValues(string(domain.TargetMissDeduction), "error").Inc()
		logger.Error("Failed to save target miss deduction", slog.String("error", err.Error()), slog.String("driver_id", driverID))
		return nil, err
	}
	middleware.LedgerOperations.WithLabelValues(string(domain.TargetMissDeduction), "success").Inc()

	logger.Info("Target miss deduction applied", slog.String("driver_id", driverID), slog.String("amount", req.MissedAmount.StringFixed(2)))
	return &portssvc.DepositResult{
		Driver:        updated,
		TransactionID: txn.TransactionID,
		BelowZero:     updated.CurrentDepositBalance.IsNegative(),
	}, nil
}

// CreateAdjustmentTransaction posts a bookkeeping-only correction to the
// target balance. Adjustments never touch the payment dispatcher.
func (s *DeductionService) CreateAdjustmentTransaction(ctx context.Context, driverID string, req dto.AdjustmentRequest, actorID string) (*domain.LedgerTransaction, *domain.Driver, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Amount.IsZero() {
		return nil, nil, fmt.Errorf("%w: adjustment amount must be nonzero", apperrors.ErrValidation)
	}
	if req.Description == "" {
		return nil, nil, fmt.Errorf("%w: adjustment description is required", apperrors.ErrValidation)
	}
	if _, err := s.loadMutableDriver(ctx, driverID); err != nil {
		return nil, nil, err
	}

	now := time.Now()
	txn := domain.LedgerTransaction{
		TransactionID:      uuid.NewString(),
		DriverID:           driverID,
		VehicleID:          req.VehicleID,
		Amount:             req.Amount,
		TargetContribution: req.Amount,
		Type:               domain.Adjustment,
		PaymentStatus:      domain.PaymentCompleted,
		Description:        req.Description,
		TransactionDate:    now,
		AuditFields:        newAudit(actorID, now),
	}

	updated, err := s.ledgerRepo.SaveTransaction(ctx, txn, domain.BalanceChange{TargetDelta: req.Amount})
	if err != nil {
		middleware.LedgerOperations.WithLabelValues(string(domain.Adjustment), "error").Inc()
		logger.Error("Failed to save adjustment", slog.String("error", err.Error()), slog.String("driver_id", driverID))
		return nil, nil, err
	}
	middleware.LedgerOperations.WithLabelValues(string(domain.Adjustment), "success").Inc()

	logger.Info("Adjustment posted", slog.String("driver_id", driverID), slog.String("amount", req.Amount.StringFixed(2)))
	return &txn, updated, nil
}

// ProcessUncapturedPayment resolves a customer payment that bypassed the
// normal fare flow. send_share pays the driver's share out; deposit_share
// credits the full amount to the target balance with no dispatch.
func (s *DeductionService) ProcessUncapturedPayment(ctx context.Context, driverID string, req dto.UncapturedPaymentRequest, actorID string) (*portssvc.UncapturedResult, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive", apperrors.ErrValidation)
	}
	driver, err := s.loadMutableDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if driver.AssignedVehicleID == nil {
		return nil, fmt.Errorf("%w: driver %s has no assigned vehicle", apperrors.ErrValidation, driverID)
	}

	switch req.ActionType {
	case dto.ActionSendShare:
		return s.sendDriverShare(ctx, driver, req, actorID)
	case dto.ActionDepositShare:
		return s.creditFullAmount(ctx, driver, req, actorID)
	default:
		return nil, fmt.Errorf("%w: unknown action type %q", apperrors.ErrValidation, req.ActionType)
	}
}

// sendDriverShare records a PENDING repayment of the driver's fare share and
// dispatches the payout asynchronously when the driver's payout mode allows.
func (s *DeductionService) sendDriverShare(ctx context.Context, driver *domain.Driver, req dto.UncapturedPaymentRequest, actorID string) (*portssvc.UncapturedResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	share := req.Amount.Mul(s.cfg.FareSplitPercent).Div(oneHundred).Round(2)

	now := time.Now()
	txn := domain.LedgerTransaction{
		TransactionID:   uuid.NewString(),
		DriverID:        driver.DriverID,
		VehicleID:       driver.AssignedVehicleID,
		Amount:          share,
		Type:            domain.DriverRepayment,
		PaymentStatus:   domain.PaymentPending,
		Reference:       req.TransactionRef,
		Description:     fmt.Sprintf("driver share of uncaptured payment %s", req.TransactionRef),
		TransactionDate: now,
		AuditFields:     newAudit(actorID, now),
	}

	updated, err := s.ledgerRepo.SaveTransaction(ctx, txn, domain.BalanceChange{})
	if err != nil {
		middleware.LedgerOperations.WithLabelValues(string(domain.DriverRepayment), "error").Inc()
		logger.Error("Failed to save driver repayment", slog.String("error", err.Error()), slog.String("driver_id", driver.DriverID))
		return nil, err
	}
	middleware.LedgerOperations.WithLabelValues(string(domain.DriverRepayment), "success").Inc()

	dispatched := false
	if driver.PayoutMode.InstantPayoutEnabled(s.cfg.InstantPayoutEnabled) {
		dispatched = true
		// Fire and forget: the entry stays PENDING until the provider's
		// settlement callback lands; a dispatch failure marks it FAILED.
		go s.dispatchPayout(context.WithoutCancel(ctx), *driver, txn.TransactionID, share, actorID)
	} else {
		logger.Info("Instant payout disabled, repayment left pending",
			slog.String("driver_id", driver.DriverID),
			slog.String("transaction_id", txn.TransactionID))
	}

	return &portssvc.UncapturedResult{
		Driver:        updated,
		TransactionID: txn.TransactionID,
		Dispatched:    dispatched,
	}, nil
}

func (s *DeductionService) dispatchPayout(ctx context.Context, driver domain.Driver, transactionID string, amount decimal.Decimal, actorID string) {
	logger := middleware.GetLoggerFromCtx(ctx)

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	dispatchID, err := s.dispatcher.InitiatePayout(ctx, driver, amount, driver.Phone)
	if err != nil {
		logger.Error("Payout dispatch failed",
			slog.String("error", err.Error()),
			slog.String("driver_id", driver.DriverID),
			slog.String("transaction_id", transactionID))
		if updErr := s.ledgerRepo.UpdatePaymentStatus(ctx, transactionID, domain.PaymentFailed, actorID, time.Now()); updErr != nil {
			logger.Error("Failed to mark repayment FAILED after dispatch error",
				slog.String("error", updErr.Error()),
				slog.String("transaction_id", transactionID))
		}
		return
	}

	logger.Info("Payout dispatched",
		slog.String("driver_id", driver.DriverID),
		slog.String("transaction_id", transactionID),
		slog.String("dispatch_id", dispatchID))
}

// creditFullAmount credits the whole uncaptured payment to the driver's
// target balance as a COMPLETED fare entry.
func (s *DeductionService) creditFullAmount(ctx context.Context, driver *domain.Driver, req dto.UncapturedPaymentRequest, actorID string) (*portssvc.UncapturedResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now()
	txn := domain.LedgerTransaction{
		TransactionID:      uuid.NewString(),
		DriverID:           driver.DriverID,
		VehicleID:          driver.AssignedVehicleID,
		Amount:             req.Amount,
		TargetContribution: req.Amount,
		Type:               domain.Fare,
		PaymentStatus:      domain.PaymentCompleted,
		Reference:          req.TransactionRef,
		Description:        fmt.Sprintf("uncaptured payment %s credited to target balance", req.TransactionRef),
		TransactionDate:    now,
		AuditFields:        newAudit(actorID, now),
	}

	updated, err := s.ledgerRepo.SaveTransaction(ctx, txn, domain.BalanceChange{TargetDelta: req.Amount})
	if err != nil {
		middleware.LedgerOperations.WithLabelValues(string(domain.Fare), "error").Inc()
		logger.Error("Failed to credit uncaptured payment", slog.String("error", err.Error()), slog.String("driver_id", driver.DriverID))
		return nil, err
	}
	middleware.LedgerOperations.WithLabelValues(string(domain.Fare), "success").Inc()

	logger.Info("Uncaptured payment credited to target balance",
		slog.String("driver_id", driver.DriverID),
		slog.String("transaction_id", txn.TransactionID))
	return &portssvc.UncapturedResult{
		Driver:        updated,
		TransactionID: txn.TransactionID,
		Dispatched:    false,
	}, nil
}

// UpdatePaymentStatus settles a PENDING ledger entry.
func (s *DeductionService) UpdatePaymentStatus(ctx context.Context, transactionID string, status domain.PaymentStatus, actorID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !status.IsTerminal() {
		return fmt.Errorf("%w: status %s is not a terminal payment status", apperrors.ErrValidation, status)
	}
	if err := s.ledgerRepo.UpdatePaymentStatus(ctx, transactionID, status, actorID, time.Now()); err != nil {
		return err
	}
	logger.Info("Payment status updated", slog.String("transaction_id", transactionID), slog.String("status", string(status)))
	return nil
}
