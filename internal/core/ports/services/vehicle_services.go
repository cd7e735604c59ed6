package services

import (
	"context"

	"github.com/voltafleet/driver_ledger_app/internal/core/domain"
	"github.com/voltafleet/driver_ledger_app/internal/dto"
)

// VehicleSvcFacade is the vehicle state provider consumed by exit and
// assignment flows. Telemetry is fed by an external poller.
type VehicleSvcFacade interface {
	// CreateVehicle registers a vehicle in the fleet.
	CreateVehicle(ctx context.Context, req dto.CreateVehicleRequest, actorID string) (*domain.Vehicle, error)

	// GetVehicle retrieves a vehicle by ID.
	GetVehicle(ctx context.Context, vehicleID string) (*domain.Vehicle, error)

	// ListVehicles retrieves vehicles, optionally filtered by status.
	ListVehicles(ctx context.Context, status *domain.VehicleStatus, limit, offset int) ([]domain.Vehicle, error)

	// SetVehicleStatus sets the operational status.
	SetVehicleStatus(ctx context.Context, vehicleID string, status domain.VehicleStatus, actorID string) (*domain.Vehicle, error)

	// AssignVehicle links an AVAILABLE vehicle to an active driver.
	AssignVehicle(ctx context.Context, vehicleID string, driverID string, actorID string) (*domain.Vehicle, error)

	// UnassignVehicle returns an assigned vehicle to the AVAILABLE pool and
	// clears the driver link.
	UnassignVehicle(ctx context.Context, vehicleID string, actorID string) (*domain.Vehicle, error)

	// UpdateTelemetry records a battery/location report.
	UpdateTelemetry(ctx context.Context, vehicleID string, req dto.TelemetryRequest) (*domain.Vehicle, error)
}
