package domain

import "github.com/shopspring/decimal"

// BalanceChange is the signed effect of a ledger transaction on a driver's
// cached balances. The repository applies it while holding the driver row
// lock, in the same database transaction as the ledger insert.
type BalanceChange struct {
	TargetDelta  decimal.Decimal
	DepositDelta decimal.Decimal
}
