package mapping

import (
	"github.com/voltafleet/driver_ledger_app/internal/core/domain"
	"github.com/voltafleet/driver_ledger_app/internal/models"
)

// ToModelTransaction converts a domain LedgerTransaction to its model form.
func ToModelTransaction(d domain.LedgerTransaction) models.LedgerTransaction {
	return models.LedgerTransaction{
		TransactionID:      d.TransactionID,
		DriverID:           d.DriverID,
		VehicleID:          d.VehicleID,
		Amount:             d.Amount,
		TargetContribution: d.TargetContribution,
		Type:               string(d.Type),
		PaymentStatus:      string(d.PaymentStatus),
		Reference:          d.Reference,
		Description:        d.Description,
		TransactionDate:    d.TransactionDate,
		AuditFields:        ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransaction converts a model LedgerTransaction to its domain form.
func ToDomainTransaction(m models.LedgerTransaction) domain.LedgerTransaction {
	return domain.LedgerTransaction{
		TransactionID:      m.TransactionID,
		DriverID:           m.DriverID,
		VehicleID:          m.VehicleID,
		Amount:             m.Amount,
		TargetContribution: m.TargetContribution,
		Type:               domain.TransactionType(m.Type),
		PaymentStatus:      domain.PaymentStatus(m.PaymentStatus),
		Reference:          m.Reference,
		Description:        m.Description,
		TransactionDate:    m.TransactionDate,
		AuditFields:        ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainTransactionSlice converts model transactions to domain transactions.
func ToDomainTransactionSlice(ms []models.LedgerTransaction) []domain.LedgerTransaction {
	ds := make([]domain.LedgerTransaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransaction(m)
	}
	return ds
}
