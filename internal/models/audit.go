package models

import "time"

// AuditEntry mirrors the audit_entries table.
type AuditEntry struct {
	AuditID   string    `json:"auditID"`
	DriverID  string    `json:"driverID"`
	ActorID   string    `json:"actorID"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"createdAt"`
}
