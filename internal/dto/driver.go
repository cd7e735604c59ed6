package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/voltafleet/driver_ledger_app/internal/core/domain"
)

// CreateDriverRequest defines the data needed to register a new driver.
type CreateDriverRequest struct {
	Name                            string           `json:"name" binding:"required"`
	Phone                           string           `json:"phone" binding:"required"`
	DailyTarget                     *decimal.Decimal `json:"dailyTarget"` // Optional, falls back to configured default
	DepositRequired                 bool             `json:"depositRequired"`
	InitialDepositAmount            decimal.Decimal  `json:"initialDepositAmount"`
	AllowTargetDeductionFromDeposit bool             `json:"allowTargetDeductionFromDeposit"`
	PayoutMode                      string           `json:"payoutMode" binding:"omitempty,oneof=FOLLOW_GLOBAL ENABLE DISABLE"`
}

// UpdateDriverRequest defines the contact/policy fields a manager may change.
// Balance fields are never updated through this path.
type UpdateDriverRequest struct {
	Name                            *string          `json:"name"`
	Phone                           *string          `json:"phone"`
	DailyTarget                     *decimal.Decimal `json:"dailyTarget"`
	AllowTargetDeductionFromDeposit *bool            `json:"allowTargetDeductionFromDeposit"`
	PayoutMode                      *string          `json:"payoutMode" binding:"omitempty,oneof=FOLLOW_GLOBAL ENABLE DISABLE"`
}

// DriverResponse defines the data returned for a driver.
type DriverResponse struct {
	DriverID                        string          `json:"driverID"`
	Name                            string          `json:"name"`
	Phone                           string          `json:"phone"`
	Status                          string          `json:"status"`
	CurrentBalance                  decimal.Decimal `json:"currentBalance"`
	DailyTarget                     decimal.Decimal `json:"dailyTarget"`
	ConsecutiveMisses               int             `json:"consecutiveMisses"`
	DepositRequired                 bool            `json:"depositRequired"`
	InitialDepositAmount            decimal.Decimal `json:"initialDepositAmount"`
	CurrentDepositBalance           decimal.Decimal `json:"currentDepositBalance"`
	AllowTargetDeductionFromDeposit bool            `json:"allowTargetDeductionFromDeposit"`
	PayoutMode                      string          `json:"payoutMode"`
	ExitDate                        *time.Time      `json:"exitDate,omitempty"`
	RefundStatus                    string          `json:"refundStatus,omitempty"`
	RefundAmount                    decimal.Decimal `json:"refundAmount"`
	AssignedVehicleID               *string         `json:"assignedVehicleID,omitempty"`
	CreatedAt                       time.Time       `json:"createdAt"`
	LastUpdatedAt                   time.Time       `json:"lastUpdatedAt"`
}

// ToDriverResponse converts a domain.Driver to a DriverResponse DTO.
func ToDriverResponse(d *domain.Driver) DriverResponse {
	return DriverResponse{
		DriverID:                        d.DriverID,
		Name:                            d.Name,
		Phone:                           d.Phone,
		Status:                          string(d.Status),
		CurrentBalance:                  d.CurrentBalance,
		DailyTarget:                     d.DailyTarget,
		ConsecutiveMisses:               d.ConsecutiveMisses,
		DepositRequired:                 d.DepositRequired,
		InitialDepositAmount:            d.InitialDepositAmount,
		CurrentDepositBalance:           d.CurrentDepositBalance,
		AllowTargetDeductionFromDeposit: d.AllowTargetDeductionFromDeposit,
		PayoutMode:                      string(d.PayoutMode),
		ExitDate:                        d.ExitDate,
		RefundStatus:                    string(d.RefundStatus),
		RefundAmount:                    d.RefundAmount,
		AssignedVehicleID:               d.AssignedVehicleID,
		CreatedAt:                       d.CreatedAt,
		LastUpdatedAt:                   d.LastUpdatedAt,
	}
}

// DriverSummaryResponse is the on-demand dashboard projection for a driver.
type DriverSummaryResponse struct {
	DriverID              string          `json:"driverID"`
	Name                  string          `json:"name"`
	CurrentBalance        decimal.Decimal `json:"currentBalance"`
	DailyTarget           decimal.Decimal `json:"dailyTarget"`
	LeftToTarget          decimal.Decimal `json:"leftToTarget"`
	TargetProgressPercent decimal.Decimal `json:"targetProgressPercent"`
	DepositBalance        decimal.Decimal `json:"depositBalance"`
	DepositShortfall      decimal.Decimal `json:"depositShortfall"`
	ConsecutiveMisses     int             `json:"consecutiveMisses"`
	Message               *string         `json:"message,omitempty"` // rendered SMS preview, when requested
}

// ToDriverSummaryResponse converts a domain summary to its DTO.
func ToDriverSummaryResponse(s domain.DriverSummary) DriverSummaryResponse {
	return DriverSummaryResponse{
		DriverID:              s.DriverID,
		Name:                  s.Name,
		CurrentBalance:        s.CurrentBalance,
		DailyTarget:           s.DailyTarget,
		LeftToTarget:          s.LeftToTarget,
		TargetProgressPercent: s.TargetProgressPercent,
		DepositBalance:        s.DepositBalance,
		DepositShortfall:      s.DepositShortfall,
		ConsecutiveMisses:     s.ConsecutiveMisses,
	}
}

// ListDriversParams holds parameters for listing drivers.
type ListDriversParams struct {
	Status    *string
	Limit     int
	NextToken *string
}

// ListDriversResponse is a paginated page of drivers.
type ListDriversResponse struct {
	Drivers   []DriverResponse `json:"drivers"`
	NextToken *string          `json:"nextToken,omitempty"`
}
