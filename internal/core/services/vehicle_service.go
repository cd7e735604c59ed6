package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/voltafleet/driver_ledger_app/internal/apperrors"
	"github.com/voltafleet/driver_ledger_app/internal/core/domain"
	portsrepo "github.com/voltafleet/driver_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/voltafleet/driver_ledger_app/internal/core/ports/services"
	"github.com/voltafleet/driver_ledger_app/internal/dto"
	"github.com/voltafleet/driver_ledger_app/internal/middleware"
)

// VehicleService is the vehicle state provider consumed by the exit and
// assignment flows. Telemetry reports come from an external poller.
type VehicleService struct {
	vehicleRepo portsrepo.VehicleRepositoryFacade
	driverRepo  portsrepo.DriverRepositoryFacade
}

func NewVehicleService(vehicleRepo portsrepo.VehicleRepositoryFacade, driverRepo portsrepo.DriverRepositoryFacade) *VehicleService {
	return &VehicleService{
		vehicleRepo: vehicleRepo,
		driverRepo:  driverRepo,
	}
}

var _ portssvc.VehicleSvcFacade = (*VehicleService)(nil)

var validVehicleStatuses = map[domain.VehicleStatus]struct{}{
	domain.VehicleAvailable:   {},
	domain.VehicleAssigned:    {},
	domain.VehicleCharging:    {},
	domain.VehicleMaintenance: {},
	domain.VehicleSubbed:      {},
	domain.VehicleOffline:     {},
}

// CreateVehicle registers a vehicle in the fleet.
func (s *VehicleService) CreateVehicle(ctx context.Context, req dto.CreateVehicleRequest, actorID string) (*domain.Vehicle, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	status := domain.VehicleAvailable
	if req.Status != "" {
		status = domain.VehicleStatus(req.Status)
	}
	if req.BatteryLevel < 0 || req.BatteryLevel > 100 {
		return nil, fmt.Errorf("%w: battery level must be between 0 and 100", apperrors.ErrValidation)
	}

	now := time.Now()
	vehicle := domain.Vehicle{
		VehicleID:    uuid.NewString(),
		Registration: req.Registration,
		Status:       status,
		BatteryLevel: req.BatteryLevel,
		AuditFields:  newAudit(actorID, now),
	}

	if err := s.vehicleRepo.SaveVehicle(ctx, vehicle); err != nil {
		logger.Error("Failed to save vehicle", slog.String("error", err.Error()), slog.String("vehicle_id", vehicle.VehicleID))
		return nil, err
	}

	logger.Info("Vehicle created", slog.String("vehicle_id", vehicle.VehicleID), slog.String("registration", vehicle.Registration))
	return &vehicle, nil
}

// GetVehicle retrieves a vehicle by ID.
func (s *VehicleService) GetVehicle(ctx context.Context, vehicleID string) (*domain.Vehicle, error) {
	return s.vehicleRepo.FindVehicleByID(ctx, vehicleID)
}

// ListVehicles retrieves vehicles, optionally filtered by status.
func (s *VehicleService) ListVehicles(ctx context.Context, status *domain.VehicleStatus, limit, offset int) ([]domain.Vehicle, error) {
	if status != nil {
		if _, ok := validVehicleStatuses[*status]; !ok {
			return nil, fmt.Errorf("%w: unknown vehicle status %q", apperrors.ErrValidation, *status)
		}
	}
	vehicles, err := s.vehicleRepo.ListVehicles(ctx, status, limit, offset)
	if err != nil {
		return nil, err
	}
	if vehicles == nil {
		return []domain.Vehicle{}, nil
	}
	return vehicles, nil
}

// SetVehicleStatus sets the operational status. Assignment transitions go
// through AssignVehicle so both rows stay consistent.
func (s *VehicleService) SetVehicleStatus(ctx context.Context, vehicleID string, status domain.VehicleStatus, actorID string) (*domain.Vehicle, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, ok := validVehicleStatuses[status]; !ok {
		return nil, fmt.Errorf("%w: unknown vehicle status %q", apperrors.ErrValidation, status)
	}
	if status == domain.VehicleAssigned {
		return nil, fmt.Errorf("%w: use the assignment endpoint to assign a vehicle", apperrors.ErrValidation)
	}

	vehicle, err := s.vehicleRepo.FindVehicleByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle.Status == domain.VehicleAssigned {
		return nil, fmt.Errorf("vehicle %s is assigned to a driver: %w", vehicleID, apperrors.ErrConflict)
	}

	vehicle.Status = status
	vehicle.LastUpdatedAt = time.Now()
	vehicle.LastUpdatedBy = actorID

	if err := s.vehicleRepo.UpdateVehicle(ctx, *vehicle); err != nil {
		logger.Error("Failed to update vehicle status", slog.String("error", err.Error()), slog.String("vehicle_id", vehicleID))
		return nil, err
	}

	logger.Info("Vehicle status updated", slog.String("vehicle_id", vehicleID), slog.String("status", string(status)))
	return vehicle, nil
}

// AssignVehicle links an AVAILABLE vehicle to an active driver.
func (s *VehicleService) AssignVehicle(ctx context.Context, vehicleID string, driverID string, actorID string) (*domain.Vehicle, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	vehicle, err := s.vehicleRepo.FindVehicleByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle.Status != domain.VehicleAvailable {
		return nil, fmt.Errorf("vehicle %s is not available: %w", vehicleID, apperrors.ErrConflict)
	}

	driver, err := s.driverRepo.FindDriverByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if err := guardMutable(driver); err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.vehicleRepo.AssignVehicle(ctx, *vehicle, *driver, actorID, now); err != nil {
		if !errors.Is(err, apperrors.ErrConflict) {
			logger.Error("Failed to assign vehicle", slog.String("error", err.Error()), slog.String("vehicle_id", vehicleID), slog.String("driver_id", driverID))
		}
		return nil, err
	}

	vehicle.Status = domain.VehicleAssigned
	vehicle.AssignedDriverID = &driverID
	vehicle.LastUpdatedAt = now
	vehicle.LastUpdatedBy = actorID

	logger.Info("Vehicle assigned", slog.String("vehicle_id", vehicleID), slog.String("driver_id", driverID))
	return vehicle, nil
}

// UnassignVehicle returns a vehicle to the AVAILABLE pool and clears the
// driver link. Exit settlement releases vehicles on its own path.
func (s *VehicleService) UnassignVehicle(ctx context.Context, vehicleID string, actorID string) (*domain.Vehicle, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	vehicle, err := s.vehicleRepo.FindVehicleByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle.Status != domain.VehicleAssigned || vehicle.AssignedDriverID == nil {
		return nil, fmt.Errorf("vehicle %s is not assigned: %w", vehicleID, apperrors.ErrConflict)
	}
	driverID := *vehicle.AssignedDriverID

	now := time.Now()
	if err := s.vehicleRepo.UnassignVehicle(ctx, vehicleID, driverID, actorID, now); err != nil {
		logger.Error("Failed to unassign vehicle", slog.String("error", err.Error()), slog.String("vehicle_id", vehicleID), slog.String("driver_id", driverID))
		return nil, err
	}

	vehicle.Status = domain.VehicleAvailable
	vehicle.AssignedDriverID = nil
	vehicle.LastUpdatedAt = now
	vehicle.LastUpdatedBy = actorID

	logger.Info("Vehicle unassigned", slog.String("vehicle_id", vehicleID), slog.String("driver_id", driverID))
	return vehicle, nil
}

// UpdateTelemetry records a battery/location report.
func (s *VehicleService) UpdateTelemetry(ctx context.Context, vehicleID string, req dto.TelemetryRequest) (*domain.Vehicle, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.BatteryLevel < 0 || req.BatteryLevel > 100 {
		return nil, fmt.Errorf("%w: battery level must be between 0 and 100", apperrors.ErrValidation)
	}

	vehicle, err := s.vehicleRepo.FindVehicleByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	vehicle.BatteryLevel = req.BatteryLevel
	if req.Latitude != nil && req.Longitude != nil {
		vehicle.CurrentLocation = &domain.Location{Latitude: *req.Latitude, Longitude: *req.Longitude}
	}
	vehicle.LastUpdatedAt = time.Now()
	vehicle.LastUpdatedBy = "telemetry"

	if err := s.vehicleRepo.UpdateVehicle(ctx, *vehicle); err != nil {
		logger.Error("Failed to record telemetry", slog.String("error", err.Error()), slog.String("vehicle_id", vehicleID))
		return nil, err
	}
	return vehicle, nil
}
