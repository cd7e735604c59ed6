package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/voltafleet/driver_ledger_app/internal/core/domain"
)

// DriverReader defines read operations for driver data.
type DriverReader interface {
	// FindDriverByID retrieves a specific driver by its unique identifier.
	FindDriverByID(ctx context.Context, driverID string) (*domain.Driver, error)

	// ListDrivers retrieves a paginated list of drivers, optionally filtered
	// by status.
	ListDrivers(ctx context.Context, status *domain.DriverStatus, limit int, nextToken *string) ([]domain.Driver, *string, error)
}

// DriverWriter defines write operations for driver data.
type DriverWriter interface {
	// SaveDriver persists a new driver.
	SaveDriver(ctx context.Context, driver domain.Driver) error

	// UpdateDriver updates an existing driver using optimistic concurrency:
	// the update only applies when the stored version matches
	// driver.Version, and the version is bumped on success. A stale version
	// yields apperrors.ErrConflict.
	UpdateDriver(ctx context.Context, driver domain.Driver) error
}

// DriverTransactionSupport defines operations used inside ledger database
// transactions.
type DriverTransactionSupport interface {
	// FindDriverByIDForUpdate selects a driver and locks its row for the
	// duration of the transaction.
	FindDriverByIDForUpdate(ctx context.Context, tx pgx.Tx, driverID string) (*domain.Driver, error)

	// UpdateDriverInTx writes driver balance fields within a transaction,
	// bumping the version.
	UpdateDriverInTx(ctx context.Context, tx pgx.Tx, driver domain.Driver, userID string, now time.Time) error
}

// DriverRepositoryFacade combines all driver repository interfaces.
type DriverRepositoryFacade interface {
	DriverReader
	DriverWriter
	DriverTransactionSupport
}
