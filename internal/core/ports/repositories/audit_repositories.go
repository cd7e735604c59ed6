package repositories

import (
	"context"

	"github.com/voltafleet/driver_ledger_app/internal/core/domain"
)

// AuditRepositoryFacade is the append-only trail of manager-initiated
// bookkeeping events.
type AuditRepositoryFacade interface {
	// SaveAuditEntry appends an audit entry.
	SaveAuditEntry(ctx context.Context, entry domain.AuditEntry) error

	// ListAuditEntriesByDriver retrieves a driver's audit trail, newest
	// first.
	ListAuditEntriesByDriver(ctx context.Context, driverID string, limit int) ([]domain.AuditEntry, error)
}
