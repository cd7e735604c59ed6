package services

import (
	"context"

	"github.com/voltafleet/driver_ledger_app/internal/core/domain"
	"github.com/voltafleet/driver_ledger_app/internal/dto"
)

// DepositResult reports the deposit balance after a deduction or top-up.
// BelowZero flags a deposit that a damage deduction has driven negative;
// that state is allowed and surfaced, never clamped.
type DepositResult struct {
	Driver        *domain.Driver
	TransactionID string
	BelowZero     bool
}

// UncapturedResult reports the resolution of an uncaptured customer payment.
type UncapturedResult struct {
	Driver        *domain.Driver
	TransactionID string
	Dispatched    bool
}

// DeductionSvcFacade applies deposit movements, deductions and corrections
// under authorization rules.
type DeductionSvcFacade interface {
	// ProcessDepositTopUp credits the deposit; amount must be positive.
	ProcessDepositTopUp(ctx context.Context, driverID string, req dto.DepositTopUpRequest, actorID string) (*DepositResult, error)

	// ProcessDamageDeduction debits the deposit for damage; amount must be
	// positive and the description nonempty.
	ProcessDamageDeduction(ctx context.Context, driverID string, req dto.DamageDeductionRequest, actorID string) (*DepositResult, error)

	// ProcessTargetMissDeduction debits the deposit for a missed target.
	// Fails with apperrors.ErrNotAuthorized unless the driver has opted in.
	ProcessTargetMissDeduction(ctx context.Context, driverID string, req dto.TargetMissDeductionRequest, actorID string) (*DepositResult, error)

	// CreateAdjustmentTransaction posts a bookkeeping-only correction to the
	// target balance. Never calls the payment dispatcher.
	CreateAdjustmentTransaction(ctx context.Context, driverID string, req dto.AdjustmentRequest, actorID string) (*domain.LedgerTransaction, *domain.Driver, error)

	// ProcessUncapturedPayment resolves an uncaptured customer payment in
	// one of two mutually exclusive modes: send_share dispatches the
	// driver's fare share as an outbound payout, deposit_share credits the
	// full amount to the target balance with no dispatch. Fails with
	// apperrors.ErrValidation when the driver has no assigned vehicle.
	ProcessUncapturedPayment(ctx context.Context, driverID string, req dto.UncapturedPaymentRequest, actorID string) (*UncapturedResult, error)

	// UpdatePaymentStatus settles a PENDING ledger entry; the asynchronous
	// status-update path for dispatched payouts.
	UpdatePaymentStatus(ctx context.Context, transactionID string, status domain.PaymentStatus, actorID string) error
}
