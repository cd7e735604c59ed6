package mapping

import (
	"github.com/voltafleet/driver_ledger_app/internal/core/domain"
	"github.com/voltafleet/driver_ledger_app/internal/models"
)

// ToModelAuditEntry converts a domain AuditEntry to its model form.
func ToModelAuditEntry(d domain.AuditEntry) models.AuditEntry {
	return models.AuditEntry{
		AuditID:   d.AuditID,
		DriverID:  d.DriverID,
		ActorID:   d.ActorID,
		Action:    string(d.Action),
		Detail:    d.Detail,
		CreatedAt: d.CreatedAt,
	}
}

// ToDomainAuditEntry converts a model AuditEntry to its domain form.
func ToDomainAuditEntry(m models.AuditEntry) domain.AuditEntry {
	return domain.AuditEntry{
		AuditID:   m.AuditID,
		DriverID:  m.DriverID,
		ActorID:   m.ActorID,
		Action:    domain.AuditAction(m.Action),
		Detail:    m.Detail,
		CreatedAt: m.CreatedAt,
	}
}

// ToDomainAuditEntrySlice converts model audit entries to domain entries.
func ToDomainAuditEntrySlice(ms []models.AuditEntry) []domain.AuditEntry {
	ds := make([]domain.AuditEntry, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAuditEntry(m)
	}
	return ds
}
