package dto

import (
	"github.com/shopspring/decimal"
)

// DepositTopUpRequest credits a driver's security deposit.
type DepositTopUpRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Reference   string          `json:"reference"`
	Description string          `json:"description"`
}

// DamageDeductionRequest debits the deposit for vehicle damage. The deposit
// is allowed to go negative; the response flags that state.
type DamageDeductionRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description" binding:"required"`
	Reference   string          `json:"reference"`
}

// TargetMissDeductionRequest debits the deposit for a missed daily target.
// Only permitted for drivers who have opted in.
type TargetMissDeductionRequest struct {
	MissedAmount decimal.Decimal `json:"missedAmount" binding:"required"`
}

// AdjustmentRequest posts a bookkeeping-only correction. Amount may be
// negative (overpayment correction). Never triggers payment dispatch.
type AdjustmentRequest struct {
	VehicleID   *string         `json:"vehicleID"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description" binding:"required"`
}

// Uncaptured payment action types.
const (
	ActionSendShare    = "send_share"
	ActionDepositShare = "deposit_share"
)

// UncapturedPaymentRequest resolves a customer payment that was not captured
// by the normal fare flow.
type UncapturedPaymentRequest struct {
	TransactionRef string          `json:"transactionRef" binding:"required"` // external payment code
	CustomerPhone  string          `json:"customerPhone" binding:"required"`
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	ActionType     string          `json:"actionType" binding:"required,oneof=send_share deposit_share"`
}

// DepositResponse reports the deposit balance after a deduction or top-up.
type DepositResponse struct {
	DriverID          string          `json:"driverID"`
	NewDepositBalance decimal.Decimal `json:"newDepositBalance"`
	BelowZero         bool            `json:"belowZero"`
	TransactionID     string          `json:"transactionID"`
}

// UncapturedPaymentResponse reports the outcome of an uncaptured payment
// resolution.
type UncapturedPaymentResponse struct {
	DriverID       string          `json:"driverID"`
	TransactionID  string          `json:"transactionID"`
	Amount         decimal.Decimal `json:"amount"`
	ActionType     string          `json:"actionType"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	Dispatched     bool            `json:"dispatched"`
}

// PaymentStatusUpdateRequest settles a pending ledger entry.
type PaymentStatusUpdateRequest struct {
	Status string `json:"status" binding:"required,oneof=COMPLETED FAILED"`
}
