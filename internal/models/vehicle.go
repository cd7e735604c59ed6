package models

// Vehicle mirrors the vehicles table. Location is stored as nullable
// lat/lng columns.
type Vehicle struct {
	VehicleID        string   `json:"vehicleID"`
	Registration     string   `json:"registration"`
	Status           string   `json:"status"`
	AssignedDriverID *string  `json:"assignedDriverID"`
	BatteryLevel     int      `json:"batteryLevel"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	AuditFields
}
