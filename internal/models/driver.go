package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Driver mirrors the drivers table.
type Driver struct {
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
	ExitDate                        *time.Time      `json:"exitDate"`
	RefundStatus                    string          `json:"refundStatus"`
	RefundAmount                    decimal.Decimal `json:"refundAmount"`
	AssignedVehicleID               *string         `json:"assignedVehicleID"`
	Version                         int64           `json:"version"`
	AuditFields
}
