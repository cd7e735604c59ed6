package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/voltafleet/driver_ledger_app/internal/core/domain"
)

// ReconcileRequest bounds a balance recomputation.
type ReconcileRequest struct {
	From    time.Time `json:"from" binding:"required"`
	To      time.Time `json:"to" binding:"required"`
	AutoFix bool      `json:"autoFix"`
}

// ReconciliationResponse reports a recomputation. A nonzero discrepancy is a
// normal outcome, returned with HTTP 200.
type ReconciliationResponse struct {
	DriverID          string          `json:"driverID"`
	OldBalance        decimal.Decimal `json:"oldBalance"`
	CalculatedBalance decimal.Decimal `json:"calculatedBalance"`
	Discrepancy       decimal.Decimal `json:"discrepancy"`
	TransactionsCount int             `json:"transactionsCount"`
	Fixed             bool            `json:"fixed"`
}

// ToReconciliationResponse converts the domain result to its DTO.
func ToReconciliationResponse(r domain.ReconciliationResult) ReconciliationResponse {
	return ReconciliationResponse(r)
}
