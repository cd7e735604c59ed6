package mapping

import (
	"github.com/voltafleet/driver_ledger_app/internal/core/domain"
	"github.com/voltafleet/driver_ledger_app/internal/models"
)

// ToModelVehicle converts a domain Vehicle to its model form.
func ToModelVehicle(d domain.Vehicle) models.Vehicle {
	m := models.Vehicle{
		VehicleID:        d.VehicleID,
		Registration:     d.Registration,
		Status:           string(d.Status),
		AssignedDriverID: d.AssignedDriverID,
		BatteryLevel:     d.BatteryLevel,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
	if d.CurrentLocation != nil {
		lat := d.CurrentLocation.Latitude
		lng := d.CurrentLocation.Longitude
		m.Latitude = &lat
		m.Longitude = &lng
	}
	return m
}

// ToDomainVehicle converts a model Vehicle to its domain form.
func ToDomainVehicle(m models.Vehicle) domain.Vehicle {
	d := domain.Vehicle{
		VehicleID:        m.VehicleID,
		Registration:     m.Registration,
		Status:           domain.VehicleStatus(m.Status),
		AssignedDriverID: m.AssignedDriverID,
		BatteryLevel:     m.BatteryLevel,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
	if m.Latitude != nil && m.Longitude != nil {
		d.CurrentLocation = &domain.Location{Latitude: *m.Latitude, Longitude: *m.Longitude}
	}
	return d
}

// ToDomainVehicleSlice converts model vehicles to domain vehicles.
func ToDomainVehicleSlice(ms []models.Vehicle) []domain.Vehicle {
	ds := make([]domain.Vehicle, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainVehicle(m)
	}
	return ds
}
