package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerTransaction mirrors the ledger_transactions table. Rows are
// append-only; terminal payment statuses are never updated in place.
type LedgerTransaction struct {
	TransactionID      string          `json:"transactionID"`
	DriverID           string          `json:"driverID"`
	VehicleID          *string         `json:"vehicleID"`
	Amount             decimal.Decimal `json:"amount"`
	TargetContribution decimal.Decimal `json:"targetContribution"`
	Type               string          `json:"type"`
	PaymentStatus      string          `json:"paymentStatus"`
	Reference          string          `json:"reference"`
	Description        string          `json:"description"`
	TransactionDate    time.Time       `json:"transactionDate"`
	AuditFields
}
