package domain

import "time"

// AuditAction names a manager-initiated bookkeeping event.
type AuditAction string

const (
	AuditBalanceReset     AuditAction = "BALANCE_RESET"
	AuditMissesReset      AuditAction = "MISSES_RESET"
	AuditBalanceFix       AuditAction = "BALANCE_FIX"
	AuditDriverRestored   AuditAction = "DRIVER_RESTORED"
	AuditRefundStatusMove AuditAction = "REFUND_STATUS_CHANGE"
)

// AuditEntry is an append-only, human-readable trail record keyed by driver
// and actor. Balance and miss resets are audited here rather than posted as
// financial transactions.
type AuditEntry struct {
	AuditID   string      `json:"auditID"`
	DriverID  string      `json:"driverID"`
	ActorID   string      `json:"actorID"`
	Action    AuditAction `json:"action"`
	Detail    string      `json:"detail"`
	CreatedAt time.Time   `json:"createdAt"`
}
