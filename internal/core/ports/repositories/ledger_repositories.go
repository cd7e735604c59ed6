package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/voltafleet/driver_ledger_app/internal/core/domain"
)

// LedgerFilters narrows a ledger query. Nil fields are ignored.
type LedgerFilters struct {
	Types         []domain.TransactionType
	PaymentStatus *domain.PaymentStatus
}

// LedgerReader defines read operations over the transaction log.
type LedgerReader interface {
	// FindTransactionByID retrieves a single ledger entry.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.LedgerTransaction, error)

	// ListTransactionsByDriver retrieves ledger entries for a driver within
	// [from, to), ascending by (transaction_date, transaction_id), resumable
	// via pagination token.
	ListTransactionsByDriver(ctx context.Context, driverID string, from, to time.Time, filters LedgerFilters, limit int, nextToken *string) ([]domain.LedgerTransaction, *string, error)

	// SumTargetContributions sums target_contribution over COMPLETED entries
	// in the period, excluding types that do not count toward the target.
	// Returns the sum and the number of entries counted.
	SumTargetContributions(ctx context.Context, driverID string, period domain.Period) (decimal.Decimal, int, error)

	// SumPendingDeductions sums the absolute value of PENDING deduction-type
	// entries for a driver; used by the exit refund computation.
	SumPendingDeductions(ctx context.Context, driverID string) (decimal.Decimal, error)
}

// LedgerWriter defines append and settlement operations. The log is
// append-only: entries with a terminal payment status are never modified.
type LedgerWriter interface {
	// SaveTransaction atomically appends a ledger entry and applies the
	// balance change to the driver's cached fields while holding the driver
	// row lock. Either both writes happen or neither does. Returns the
	// driver as updated.
	SaveTransaction(ctx context.Context, txn domain.LedgerTransaction, change domain.BalanceChange) (*domain.Driver, error)

	// UpdatePaymentStatus moves a PENDING entry to a terminal status. Any
	// other transition yields apperrors.ErrConflict.
	UpdatePaymentStatus(ctx context.Context, transactionID string, status domain.PaymentStatus, userID string, now time.Time) error

	// SaveExit atomically appends the exit refund entry, writes the driver's
	// exit fields (version-checked), and releases the named vehicle back to
	// AVAILABLE. A stale driver version yields apperrors.ErrConflict.
	SaveExit(ctx context.Context, driver domain.Driver, refundTxn domain.LedgerTransaction, releaseVehicleID *string) error
}

// LedgerTransactionSupport exposes tx-scoped access for composed atomic
// operations.
type LedgerTransactionSupport interface {
	// SaveTransactionInTx appends a ledger entry within an existing
	// database transaction.
	SaveTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.LedgerTransaction) error
}

// LedgerRepositoryFacade combines all ledger repository interfaces.
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
}

// LedgerRepositoryWithTx extends the facade with transaction capabilities.
type LedgerRepositoryWithTx interface {
	LedgerRepositoryFacade
	LedgerTransactionSupport
	TransactionManager
}
