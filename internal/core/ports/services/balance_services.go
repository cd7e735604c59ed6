package services

import (
	"context"

	"github.com/voltafleet/driver_ledger_app/internal/core/domain"
	"github.com/voltafleet/driver_ledger_app/internal/dto"
)

// BalanceSvcFacade is the target balance engine: fare postings, manager
// resets, and the on-demand driver summary projection.
type BalanceSvcFacade interface {
	// ResetTargetBalance sets the driver's target balance directly.
	// Manager-only; audit-logged, not posted as a financial transaction.
	// An explicit zero is a valid reset target.
	ResetTargetBalance(ctx context.Context, driverID string, req dto.ResetBalanceRequest, actorID string) (*domain.Driver, error)

	// ApplyFareTransaction appends a COMPLETED fare entry and credits the
	// driver's target balance by the configured fare split. A posting time
	// outside operating hours logs a warning, never fails.
	ApplyFareTransaction(ctx context.Context, driverID string, req dto.FareRequest, actorID string) (*domain.LedgerTransaction, *domain.Driver, error)

	// ResetConsecutiveMisses zeroes the driver's miss streak, audit-logged.
	ResetConsecutiveMisses(ctx context.Context, driverID string, actorID string) error

	// RecordTargetMiss increments the miss streak, capped at the maximum.
	RecordTargetMiss(ctx context.Context, driverID string, actorID string) (*domain.Driver, error)

	// GetDriverSummary computes the dashboard projection on demand.
	GetDriverSummary(ctx context.Context, driverID string) (*domain.DriverSummary, error)
}
