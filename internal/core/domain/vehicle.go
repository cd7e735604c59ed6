package domain

// VehicleStatus is the operational state of a fleet vehicle.
type VehicleStatus string

const (
	VehicleAvailable   VehicleStatus = "AVAILABLE"
	VehicleAssigned    VehicleStatus = "ASSIGNED"
	VehicleCharging    VehicleStatus = "CHARGING"
	VehicleMaintenance VehicleStatus = "MAINTENANCE"
	VehicleSubbed      VehicleStatus = "SUBBED"
	VehicleOffline     VehicleStatus = "OFFLINE"
)

// Location is a point reported by the vehicle's telematics unit.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Vehicle is referenced by ledger entries for deduction context and by the
// exit/assignment flows. Telemetry (battery, location) is fed by an external
// provider polling on its own interval.
type Vehicle struct {
	VehicleID        string        `json:"vehicleID"`
	Registration     string        `json:"registration"`
	Status           VehicleStatus `json:"status"`
	AssignedDriverID *string       `json:"assignedDriverID"`
	BatteryLevel     int           `json:"batteryLevel"` // 0..100
	CurrentLocation  *Location     `json:"currentLocation"`
	AuditFields
}
