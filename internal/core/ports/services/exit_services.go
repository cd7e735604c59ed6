package services

import (
	"context"
	"time"

	"github.com/voltafleet/driver_ledger_app/internal/core/domain"
)

// ExitSvcFacade runs the terminal driver exit computation and the archival
// lifecycle around it.
type ExitSvcFacade interface {
	// ProcessDriverExit computes the deposit refund net of pending
	// deductions, records the exit refund entry, releases the assigned
	// vehicle and marks the driver exited. One-time: a second call fails
	// with apperrors.ErrAlreadyExited.
	ProcessDriverExit(ctx context.Context, driverID string, exitDate time.Time, actorID string) (*domain.Driver, error)

	// ArchiveDriver moves an exited driver to the read-only archived state.
	ArchiveDriver(ctx context.Context, driverID string, actorID string) (*domain.Driver, error)

	// RestoreArchivedDriver reverses archival: clears the exit date, zeroes
	// the miss streak and target balance (restored drivers start target
	// tracking fresh), and preserves deposit and transaction history. The
	// driver needs a new vehicle assignment before re-entering rotation.
	RestoreArchivedDriver(ctx context.Context, driverID string, reason string, actorID string) (*domain.Driver, error)

	// UpdateRefundStatus advances the refund workflow; an illegal
	// transition fails with apperrors.ErrConflict.
	UpdateRefundStatus(ctx context.Context, driverID string, status domain.RefundStatus, actorID string) (*domain.Driver, error)
}
