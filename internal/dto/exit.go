package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExitRequest starts a driver's one-time exit computation.
type ExitRequest struct {
	ExitDate *time.Time `json:"exitDate"` // Optional, defaults to now
}

// ExitResponse reports the computed refund.
type ExitResponse struct {
	DriverID     string          `json:"driverID"`
	ExitDate     time.Time       `json:"exitDate"`
	RefundAmount decimal.Decimal `json:"refundAmount"`
	RefundStatus string          `json:"refundStatus"`
}

// RestoreRequest reverses a driver's archival.
type RestoreRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// RefundStatusRequest advances the refund workflow.
type RefundStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=PROCESSED COMPLETED CANCELLED"`
}
