package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/voltafleet/driver_ledger_app/internal/core/domain"
)

// TransactionResponse defines the data returned for a ledger entry.
type TransactionResponse struct {
	TransactionID      string          `json:"transactionID"`
	DriverID           string          `json:"driverID"`
	VehicleID          *string         `json:"vehicleID,omitempty"`
	Amount             decimal.Decimal `json:"amount"`
	TargetContribution decimal.Decimal `json:"targetContribution"`
	Type               string          `json:"type"`
	PaymentStatus      string          `json:"paymentStatus"`
	Reference          string          `json:"reference,omitempty"`
	Description        string          `json:"description,omitempty"`
	TransactionDate    time.Time       `json:"transactionDate"`
	CreatedAt          time.Time       `json:"createdAt"`
	CreatedBy          string          `json:"createdBy"`
}

// ToTransactionResponse converts a domain transaction to its DTO.
func ToTransactionResponse(t domain.LedgerTransaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:      t.TransactionID,
		DriverID:           t.DriverID,
		VehicleID:          t.VehicleID,
		Amount:             t.Amount,
		TargetContribution: t.TargetContribution,
		Type:               string(t.Type),
		PaymentStatus:      string(t.PaymentStatus),
		Reference:          t.Reference,
		Description:        t.Description,
		TransactionDate:    t.TransactionDate,
		CreatedAt:          t.CreatedAt,
		CreatedBy:          t.CreatedBy,
	}
}

// ToTransactionResponses converts a slice of domain transactions.
func ToTransactionResponses(ts []domain.LedgerTransaction) []TransactionResponse {
	out := make([]TransactionResponse, len(ts))
	for i, t := range ts {
		out[i] = ToTransactionResponse(t)
	}
	return out
}

// ListTransactionsParams holds parameters for listing ledger entries.
type ListTransactionsParams struct {
	From          time.Time
	To            time.Time
	Types         []string
	PaymentStatus *string
	Limit         int
	NextToken     *string
}

// ListTransactionsResponse is a paginated page of ledger entries.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}
