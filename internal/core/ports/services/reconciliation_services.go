package services

import (
	"context"

	"github.com/voltafleet/driver_ledger_app/internal/core/domain"
)

// ReconciliationSvcFacade independently recomputes driver balances from the
// transaction log to detect drift from the cached value.
type ReconciliationSvcFacade interface {
	// ReconcileDriverBalance recomputes the target balance for the period
	// and compares it to the stored value. A discrepancy is a reportable
	// result, never an error.
	ReconcileDriverBalance(ctx context.Context, driverID string, period domain.Period) (*domain.ReconciliationResult, error)

	// FixDriverBalance reconciles and, when autoFix is set, overwrites the
	// stored balance with the calculated one, audit-logged. This is the
	// only path besides an explicit reset that may overwrite a stored
	// balance.
	FixDriverBalance(ctx context.Context, driverID string, period domain.Period, autoFix bool, actorID string) (*domain.ReconciliationResult, error)
}
