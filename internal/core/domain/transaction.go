package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	Fare                TransactionType = "FARE"
	DepositTopUp        TransactionType = "DEPOSIT_TOPUP"
	DamageDeduction     TransactionType = "DAMAGE_DEDUCTION"
	TargetMissDeduction TransactionType = "TARGET_MISS_DEDUCTION"
	Adjustment          TransactionType = "ADJUSTMENT"
	DriverRepayment     TransactionType = "DRIVER_REPAYMENT"
	ExitRefund          TransactionType = "EXIT_REFUND"
)

// CountsTowardTarget reports whether the type contributes to the reconciled
// target balance. Adjustment and DriverRepayment are balance-correcting
// entries, not target progress, and are excluded from recomputation.
func (t TransactionType) CountsTowardTarget() bool {
	return t != Adjustment && t != DriverRepayment
}

// PaymentStatus is the settlement state of a ledger entry.
// Pending -> Completed (normal) or Pending -> Failed; both are terminal.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
)

// IsTerminal reports whether the status permits no further transitions.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentCompleted || s == PaymentFailed
}

// CanTransitionTo reports whether the payment status may move to next.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	return s == PaymentPending && next.IsTerminal()
}

// LedgerTransaction is an immutable, append-only financial record against a
// driver. Once PaymentStatus reaches a terminal state the amount and type
// never change; corrections are posted as new Adjustment entries.
//
// Amount is the signed cash movement in KSH. TargetContribution is the signed
// effect on the driver's target balance and may differ from Amount for split
// fare/deposit entries (deposit-side entries carry zero contribution).
type LedgerTransaction struct {
	TransactionID      string          `json:"transactionID"`
	DriverID           string          `json:"driverID"`
	VehicleID          *string         `json:"vehicleID"`
	Amount             decimal.Decimal `json:"amount"`
	TargetContribution decimal.Decimal `json:"targetContribution"`
	Type               TransactionType `json:"type"`
	PaymentStatus      PaymentStatus   `json:"paymentStatus"`
	Reference          string          `json:"reference"` // external payment code, optional
	Description        string          `json:"description"`
	TransactionDate    time.Time       `json:"transactionDate"`
	AuditFields
}

var validTransactionTypes = map[TransactionType]struct{}{
	Fare:                {},
	DepositTopUp:        {},
	DamageDeduction:     {},
	TargetMissDeduction: {},
	Adjustment:          {},
	DriverRepayment:     {},
	ExitRefund:          {},
}

// Validate checks structural invariants before the entry is appended.
func (t *LedgerTransaction) Validate() error {
	if t.TransactionID == "" {
		return errors.New("transaction ID is required")
	}
	if t.DriverID == "" {
		return errors.New("driver ID is required")
	}
	if _, ok := validTransactionTypes[t.Type]; !ok {
		return errors.New("unknown transaction type")
	}
	// Adjustments may carry any nonzero signed amount; every other type is a
	// real money movement and must be nonzero too.
	if t.Amount.IsZero() {
		return errors.New("transaction amount must be nonzero")
	}
	switch t.PaymentStatus {
	case PaymentPending, PaymentCompleted, PaymentFailed:
	default:
		return errors.New("unknown payment status")
	}
	if t.TransactionDate.IsZero() {
		return errors.New("transaction date is required")
	}
	return nil
}
