package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/voltafleet/driver_ledger_app/internal/core/domain"
)

// VehicleReader defines read operations for vehicle data.
type VehicleReader interface {
	// FindVehicleByID retrieves a vehicle by its unique identifier.
	FindVehicleByID(ctx context.Context, vehicleID string) (*domain.Vehicle, error)

	// ListVehicles retrieves vehicles, optionally filtered by status.
	ListVehicles(ctx context.Context, status *domain.VehicleStatus, limit int, offset int) ([]domain.Vehicle, error)
}

// VehicleWriter defines write operations for vehicle data.
type VehicleWriter interface {
	// SaveVehicle persists a new vehicle.
	SaveVehicle(ctx context.Context, vehicle domain.Vehicle) error

	// UpdateVehicle updates status, assignment and telemetry fields.
	UpdateVehicle(ctx context.Context, vehicle domain.Vehicle) error

	// AssignVehicle atomically links a vehicle and a driver: the vehicle
	// becomes ASSIGNED to the driver and the driver's assigned vehicle is
	// set, in one database transaction.
	AssignVehicle(ctx context.Context, vehicle domain.Vehicle, driver domain.Driver, userID string, now time.Time) error

	// UnassignVehicle atomically reverts a vehicle to AVAILABLE and clears
	// the driver's side of the link.
	UnassignVehicle(ctx context.Context, vehicleID string, driverID string, userID string, now time.Time) error
}

// VehicleTransactionSupport defines operations used inside composed database
// transactions.
type VehicleTransactionSupport interface {
	// ReleaseVehicleInTx reverts a vehicle to AVAILABLE and clears its
	// driver link within an existing transaction.
	ReleaseVehicleInTx(ctx context.Context, tx pgx.Tx, vehicleID string, userID string, now time.Time) error
}

// VehicleRepositoryFacade combines all vehicle repository interfaces.
type VehicleRepositoryFacade interface {
	VehicleReader
	VehicleWriter
	VehicleTransactionSupport
}
