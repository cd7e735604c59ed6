package dto

import (
	"time"

	"github.com/voltafleet/driver_ledger_app/internal/core/domain"
)

// CreateVehicleRequest registers a vehicle in the fleet.
type CreateVehicleRequest struct {
	Registration string `json:"registration" binding:"required"`
	Status       string `json:"status" binding:"omitempty,oneof=AVAILABLE ASSIGNED CHARGING MAINTENANCE SUBBED OFFLINE"`
	BatteryLevel int    `json:"batteryLevel" binding:"min=0,max=100"`
}

// UpdateVehicleStatusRequest sets the vehicle's operational status.
type UpdateVehicleStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=AVAILABLE ASSIGNED CHARGING MAINTENANCE SUBBED OFFLINE"`
}

// TelemetryRequest carries a battery/location report from the external
// vehicle state provider.
type TelemetryRequest struct {
	BatteryLevel int      `json:"batteryLevel" binding:"min=0,max=100"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}

// AssignVehicleRequest links a vehicle to a driver.
type AssignVehicleRequest struct {
	DriverID string `json:"driverID" binding:"required"`
}

// VehicleResponse defines the data returned for a vehicle.
type VehicleResponse struct {
	VehicleID        string           `json:"vehicleID"`
	Registration     string           `json:"registration"`
	Status           string           `json:"status"`
	AssignedDriverID *string          `json:"assignedDriverID,omitempty"`
	BatteryLevel     int              `json:"batteryLevel"`
	CurrentLocation  *domain.Location `json:"currentLocation,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
	LastUpdatedAt    time.Time        `json:"lastUpdatedAt"`
}

// ToVehicleResponse converts a domain.Vehicle to its DTO.
func ToVehicleResponse(v *domain.Vehicle) VehicleResponse {
	return VehicleResponse{
		VehicleID:        v.VehicleID,
		Registration:     v.Registration,
		Status:           string(v.Status),
		AssignedDriverID: v.AssignedDriverID,
		BatteryLevel:     v.BatteryLevel,
		CurrentLocation:  v.CurrentLocation,
		CreatedAt:        v.CreatedAt,
		LastUpdatedAt:    v.LastUpdatedAt,
	}
}
