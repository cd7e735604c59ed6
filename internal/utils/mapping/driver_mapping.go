package mapping

import (
	"github.com/voltafleet/driver_ledger_app/internal/core/domain"
	"github.com/voltafleet/driver_ledger_app/internal/models"
)

// ToModelDriver converts a domain Driver to a model Driver.
func ToModelDriver(d domain.Driver) models.Driver {
	return models.Driver{
		DriverID:                        d.DriverID,
		Name:                            d.Name,
		Phone:                           d.Phone,
		Status:                          string(d.Status),
		CurrentBalance:                  d.CurrentBalance,
		DailyTarget:                     d.DailyTarget,
		ConsecutiveMisses:               d.ConsecutiveMisses,
		DepositRequired:                 d.DepositRequired,
		InitialDepositAmount:            d.InitialDepositAmount,
		CurrentDepositBalance:           d.CurrentDepositBalance,
		AllowTargetDeductionFromDeposit: d.AllowTargetDeductionFromDeposit,
		PayoutMode:                      string(d.PayoutMode),
		ExitDate:                        d.ExitDate,
		RefundStatus:                    string(d.RefundStatus),
		RefundAmount:                    d.RefundAmount,
		AssignedVehicleID:               d.AssignedVehicleID,
		Version:                         d.Version,
		AuditFields:                     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainDriver converts a model Driver to a domain Driver.
func ToDomainDriver(m models.Driver) domain.Driver {
	return domain.Driver{
		DriverID:                        m.DriverID,
		Name:                            m.Name,
		Phone:                           m.Phone,
		Status:                          domain.DriverStatus(m.Status),
		CurrentBalance:                  m.CurrentBalance,
		DailyTarget:                     m.DailyTarget,
		ConsecutiveMisses:               m.ConsecutiveMisses,
		DepositRequired:                 m.DepositRequired,
		InitialDepositAmount:            m.InitialDepositAmount,
		CurrentDepositBalance:           m.CurrentDepositBalance,
		AllowTargetDeductionFromDeposit: m.AllowTargetDeductionFromDeposit,
		PayoutMode:                      domain.PayoutMode(m.PayoutMode),
		ExitDate:                        m.ExitDate,
		RefundStatus:                    domain.RefundStatus(m.RefundStatus),
		RefundAmount:                    m.RefundAmount,
		AssignedVehicleID:               m.AssignedVehicleID,
		Version:                         m.Version,
		AuditFields:                     ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainDriverSlice converts a slice of model Drivers to domain Drivers.
func ToDomainDriverSlice(ms []models.Driver) []domain.Driver {
	ds := make([]domain.Driver, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainDriver(m)
	}
	return ds
}
