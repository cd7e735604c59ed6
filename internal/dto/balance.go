package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ResetBalanceRequest sets a driver's target balance directly. NewBalance is
// a pointer so an explicit zero is distinguishable from a missing value;
// zero is a valid reset target.
type ResetBalanceRequest struct {
	NewBalance *decimal.Decimal `json:"newBalance" binding:"required"`
	Reason     string           `json:"reason" binding:"required"`
}

// FareRequest posts a fare against a driver's target balance.
type FareRequest struct {
	VehicleID       string           `json:"vehicleID" binding:"required"`
	Amount          decimal.Decimal  `json:"amount" binding:"required"`
	FarePercentage  *decimal.Decimal `json:"farePercentage"` // Optional, falls back to configured split
	Reference       string           `json:"reference"`
	Description     string           `json:"description"`
	TransactionDate *time.Time       `json:"transactionDate"` // Optional, historical postings allowed
}

// BalanceResponse reports a driver's target balance after a mutation.
type BalanceResponse struct {
	DriverID           string          `json:"driverID"`
	CurrentBalance     decimal.Decimal `json:"currentBalance"`
	TargetContribution decimal.Decimal `json:"targetContribution,omitempty"`
	TransactionID      string          `json:"transactionID,omitempty"`
}
