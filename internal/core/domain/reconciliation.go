package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Period bounds a reconciliation pass. To is clamped to the time of the call
// so the recomputation runs against a fixed snapshot.
type Period struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// ReconciliationResult reports a driver balance recomputation. A nonzero
// discrepancy is a normal, reportable outcome, not an error.
type ReconciliationResult struct {
	DriverID          string          `json:"driverID"`
	OldBalance        decimal.Decimal `json:"oldBalance"`
	CalculatedBalance decimal.Decimal `json:"calculatedBalance"`
	Discrepancy       decimal.Decimal `json:"discrepancy"`
	TransactionsCount int             `json:"transactionsCount"`
	Fixed             bool            `json:"fixed"`
}
