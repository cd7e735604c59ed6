package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/voltafleet/driver_ledger_app/internal/core/domain"
)

// PaymentDispatcher is the outbound, asynchronous payout collaborator. The
// ledger records intent and does not await settlement; completion arrives
// later through the payment status update path.
type PaymentDispatcher interface {
	// InitiatePayout requests an external payout and returns the dispatch
	// identifier. Must not block beyond the context deadline.
	InitiatePayout(ctx context.Context, driver domain.Driver, amount decimal.Decimal, phone string) (string, error)
}
