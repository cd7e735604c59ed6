package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DriverStatus tracks the driver lifecycle: Active -> Exited -> Archived.
// Archived drivers are read-only; only an explicit restore returns them to Active.
type DriverStatus string

const (
	DriverActive   DriverStatus = "ACTIVE"
	DriverExited   DriverStatus = "EXITED"
	DriverArchived DriverStatus = "ARCHIVED"
)

// RefundStatus tracks the deposit refund computed at driver exit.
type RefundStatus string

const (
	RefundPending   RefundStatus = "PENDING"
	RefundProcessed RefundStatus = "PROCESSED"
	RefundCompleted RefundStatus = "COMPLETED"
	RefundCancelled RefundStatus = "CANCELLED"
)

// refundTransitions enumerates the legal refund status progressions.
var refundTransitions = map[RefundStatus][]RefundStatus{
	RefundPending:   {RefundProcessed, RefundCancelled},
	RefundProcessed: {RefundCompleted, RefundCancelled},
}

// CanTransitionTo reports whether the refund status may move to next.
func (s RefundStatus) CanTransitionTo(next RefundStatus) bool {
	for _, allowed := range refundTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PayoutMode controls whether instant payout dispatch is used for a driver,
// overriding the process-wide default.
type PayoutMode string

const (
	PayoutFollowGlobal PayoutMode = "FOLLOW_GLOBAL"
	PayoutEnable       PayoutMode = "ENABLE"
	PayoutDisable      PayoutMode = "DISABLE"
)

// InstantPayoutEnabled resolves the effective payout setting for this mode
// against the process-wide default.
func (m PayoutMode) InstantPayoutEnabled(globalDefault bool) bool {
	switch m {
	case PayoutEnable:
		return true
	case PayoutDisable:
		return false
	default:
		return globalDefault
	}
}

// Driver is the ledger subject: a fleet driver with a running target balance
// and, when required, a refundable security deposit.
//
// CurrentBalance is a signed running total of target progress in KSH; it is a
// cached value that must stay consistent with the transaction log (the
// reconciliation service verifies this). CurrentDepositBalance is a separate
// ledger and is only meaningful when DepositRequired is true. Damage
// deductions may drive it negative; that state is allowed and surfaced,
// never silently clamped.
type Driver struct {
	DriverID                        string          `json:"driverID"`
	Name                            string          `json:"name"`
	Phone                           string          `json:"phone"`
	Status                          DriverStatus    `json:"status"`
	CurrentBalance                  decimal.Decimal `json:"currentBalance"`
	DailyTarget                     decimal.Decimal `json:"dailyTarget"`
	ConsecutiveMisses               int             `json:"consecutiveMisses"` // 0..3
	DepositRequired                 bool            `json:"depositRequired"`
	InitialDepositAmount            decimal.Decimal `json:"initialDepositAmount"`
	CurrentDepositBalance           decimal.Decimal `json:"currentDepositBalance"`
	AllowTargetDeductionFromDeposit bool            `json:"allowTargetDeductionFromDeposit"`
	PayoutMode                      PayoutMode      `json:"payoutMode"`
	ExitDate                        *time.Time      `json:"exitDate"`
	RefundStatus                    RefundStatus    `json:"refundStatus"`
	RefundAmount                    decimal.Decimal `json:"refundAmount"`
	AssignedVehicleID               *string         `json:"assignedVehicleID"`
	Version                         int64           `json:"version"` // optimistic concurrency token
	AuditFields
}

// IsMutable reports whether ledger mutations may target this driver.
func (d *Driver) IsMutable() bool {
	return d.Status == DriverActive
}

// MaxConsecutiveMisses caps the tracked miss streak.
const MaxConsecutiveMisses = 3

// DriverSummary is a read-only projection computed on demand from the driver
// record; it is never cached.
type DriverSummary struct {
	DriverID              string          `json:"driverID"`
	Name                  string          `json:"name"`
	CurrentBalance        decimal.Decimal `json:"currentBalance"`
	DailyTarget           decimal.Decimal `json:"dailyTarget"`
	LeftToTarget          decimal.Decimal `json:"leftToTarget"`
	TargetProgressPercent decimal.Decimal `json:"targetProgressPercent"`
	DepositBalance        decimal.Decimal `json:"depositBalance"`
	DepositShortfall      decimal.Decimal `json:"depositShortfall"`
	ConsecutiveMisses     int             `json:"consecutiveMisses"`
}

// Summarize derives the dashboard projection for the driver.
func (d *Driver) Summarize() DriverSummary {
	left := d.DailyTarget.Sub(d.CurrentBalance)
	if left.IsNegative() {
		left = decimal.Zero
	}
	progress := decimal.Zero
	if d.DailyTarget.IsPositive() {
		progress = d.CurrentBalance.Div(d.DailyTarget).Mul(decimal.NewFromInt(100)).Round(2)
	}
	shortfall := decimal.Zero
	if d.DepositRequired {
		shortfall = d.InitialDepositAmount.Sub(d.CurrentDepositBalance)
		if shortfall.IsNegative() {
			shortfall = decimal.Zero
		}
	}
	return DriverSummary{
		DriverID:              d.DriverID,
		Name:                  d.Name,
		CurrentBalance:        d.CurrentBalance,
		DailyTarget:           d.DailyTarget,
		LeftToTarget:          left,
		TargetProgressPercent: progress,
		DepositBalance:        d.CurrentDepositBalance,
		DepositShortfall:      shortfall,
		ConsecutiveMisses:     d.ConsecutiveMisses,
	}
}
