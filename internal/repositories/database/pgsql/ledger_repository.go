package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/voltafleet/driver_ledger_app/internal/apperrors"
	"github.com/voltafleet/driver_ledger_app/internal/core/domain"
	portsrepo "github.com/voltafleet/driver_ledger_app/internal/core/ports/repositories"
	"github.com/voltafleet/driver_ledger_app/internal/middleware"
	"github.com/voltafleet/driver_ledger_app/internal/models"
	"github.com/voltafleet/driver_ledger_app/internal/utils/mapping"
	"github.com/voltafleet/driver_ledger_app/internal/utils/pagination"
)

type PgxLedgerRepository struct {
	BaseRepository
	driverRepo  *PgxDriverRepository
	vehicleRepo *PgxVehicleRepository
}

// newPgxLedgerRepository creates a new ledger repository. The driver and
// vehicle repositories are used inside composed transactions (balance
// application, exit settlement).
func newPgxLedgerRepository(pool *pgxpool.Pool, driverRepo *PgxDriverRepository, vehicleRepo *PgxVehicleRepository) portsrepo.LedgerRepositoryWithTx {
	return &PgxLedgerRepository{
		BaseRepository: BaseRepository{Pool: pool},
		driverRepo:     driverRepo,
		vehicleRepo:    vehicleRepo,
	}
}

var _ portsrepo.LedgerRepositoryWithTx = (*PgxLedgerRepository)(nil)

const ledgerColumns = `
	transaction_id, driver_id, vehicle_id, amount, target_contribution, type,
	payment_status, reference, description, transaction_date,
	created_at, created_by, last_updated_at, last_updated_by`

func scanTransaction(row pgx.Row) (models.LedgerTransaction, error) {
	var m models.LedgerTransaction
	err := row.Scan(
		&m.TransactionID, &m.DriverID, &m.VehicleID, &m.Amount, &m.TargetContribution, &m.Type,
		&m.PaymentStatus, &m.Reference, &m.Description, &m.TransactionDate,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	return m, err
}

// SaveTransactionInTx appends one ledger entry within an existing transaction.
func (r *PgxLedgerRepository) SaveTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.LedgerTransaction) error {
	m := mapping.ToModelTransaction(txn)

	query := `
		INSERT INTO ledger_transactions (` + ledgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := tx.Exec(ctx, query,
		m.TransactionID, m.DriverID, m.VehicleID, m.Amount, m.TargetContribution, m.Type,
		m.PaymentStatus, m.Reference, m.Description, m.TransactionDate,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: transaction %s", apperrors.ErrDuplicate, m.TransactionID)
		}
		return apperrors.NewAppError(500, "failed to insert ledger transaction "+m.TransactionID, err)
	}
	return nil
}

// SaveTransaction appends a ledger entry and applies its balance change to the
// driver's cached fields in a single database transaction. The driver row is
// locked first, so concurrent appends against the same driver serialize here.
func (r *PgxLedgerRepository) SaveTransaction(ctx context.Context, txn domain.LedgerTransaction, change domain.BalanceChange) (*domain.Driver, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if rbErr := r.Rollback(ctx, tx); rbErr != nil {
			logger.Error("transaction rollback failed", "error", rbErr)
		}
	}()

	driver, err := r.driverRepo.FindDriverByIDForUpdate(ctx, tx, txn.DriverID)
	if err != nil {
		return nil, err
	}

	if err := r.SaveTransactionInTx(ctx, tx, txn); err != nil {
		return nil, err
	}

	driver.CurrentBalance = driver.CurrentBalance.Add(change.TargetDelta)
	driver.CurrentDepositBalance = driver.CurrentDepositBalance.Add(change.DepositDelta)

	if err := r.driverRepo.UpdateDriverInTx(ctx, tx, *driver, txn.CreatedBy, txn.CreatedAt); err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	driver.Version++
	return driver, nil
}

// SaveExit settles a driver's exit: it appends the refund entry, writes the
// driver's exit fields, and frees the assigned vehicle, atomically. The driver
// passed in carries the version the caller computed against; if another writer
// got there first the whole settlement is rolled back with ErrConflict.
func (r *PgxLedgerRepository) SaveExit(ctx context.Context, driver domain.Driver, refundTxn domain.LedgerTransaction, releaseVehicleID *string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if rbErr := r.Rollback(ctx, tx); rbErr != nil {
			logger.Error("transaction rollback failed", "error", rbErr)
		}
	}()

	locked, err := r.driverRepo.FindDriverByIDForUpdate(ctx, tx, driver.DriverID)
	if err != nil {
		return err
	}
	if locked.Version != driver.Version {
		return fmt.Errorf("driver %s: %w", driver.DriverID, apperrors.ErrConflict)
	}

	if err := r.SaveTransactionInTx(ctx, tx, refundTxn); err != nil {
		return err
	}

	if err := r.driverRepo.UpdateDriverInTx(ctx, tx, driver, refundTxn.CreatedBy, refundTxn.CreatedAt); err != nil {
		return err
	}

	if releaseVehicleID != nil {
		if err := r.vehicleRepo.ReleaseVehicleInTx(ctx, tx, *releaseVehicleID, refundTxn.CreatedBy, refundTxn.CreatedAt); err != nil {
			return err
		}
	}

	return r.Commit(ctx, tx)
}

// FindTransactionByID retrieves a single ledger entry.
func (r *PgxLedgerRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.LedgerTransaction, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_transactions WHERE transaction_id = $1;`

	m, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("transaction %s: %w", transactionID, apperrors.ErrNotFound)
		}
		return nil, apperrors.NewAppError(500, "failed to find transaction "+transactionID, err)
	}

	d := mapping.ToDomainTransaction(m)
	return &d, nil
}

// UpdatePaymentStatus moves a PENDING ledger entry to a terminal status. The
// WHERE clause enforces the one legal transition; re-settling a settled entry
// yields ErrConflict.
func (r *PgxLedgerRepository) UpdatePaymentStatus(ctx context.Context, transactionID string, status domain.PaymentStatus, userID string, now time.Time) error {
	if !domain.PaymentPending.CanTransitionTo(status) {
		return fmt.Errorf("%w: payment status %s is not terminal", apperrors.ErrValidation, status)
	}

	query := `
		UPDATE ledger_transactions
		SET payment_status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE transaction_id = $1 AND payment_status = $5;
	`
	tag, err := r.Pool.Exec(ctx, query, transactionID, string(status), now, userID, string(domain.PaymentPending))
	if err != nil {
		return apperrors.NewAppError(500, "failed to update payment status for "+transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		if _, findErr := r.FindTransactionByID(ctx, transactionID); findErr != nil {
			return findErr
		}
		return fmt.Errorf("transaction %s is already settled: %w", transactionID, apperrors.ErrConflict)
	}
	return nil
}

// ListTransactionsByDriver retrieves a driver's ledger entries within
// [from, to), ascending by (transaction_date, transaction_id).
func (r *PgxLedgerRepository) ListTransactionsByDriver(ctx context.Context, driverID string, from, to time.Time, filters portsrepo.LedgerFilters, limit int, nextToken *string) ([]domain.LedgerTransaction, *string, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT ` + ledgerColumns + ` FROM ledger_transactions WHERE driver_id = $1 AND transaction_date >= $2 AND transaction_date < $3`
	args := []interface{}{driverID, from, to}
	argPos := 4

	if len(filters.Types) > 0 {
		types := make([]string, len(filters.Types))
		for i, t := range filters.Types {
			types[i] = string(t)
		}
		query += fmt.Sprintf(" AND type = ANY($%d)", argPos)
		args = append(args, types)
		argPos++
	}
	if filters.PaymentStatus != nil {
		query += fmt.Sprintf(" AND payment_status = $%d", argPos)
		args = append(args, string(*filters.PaymentStatus))
		argPos++
	}

	if nextToken != nil && *nextToken != "" {
		txnDate, txnID, err := pagination.DecodeLedgerToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid pagination token", apperrors.ErrValidation)
		}
		query += fmt.Sprintf(" AND (transaction_date, transaction_id) > ($%d, $%d)", argPos, argPos+1)
		args = append(args, txnDate, txnID)
		argPos += 2
	}

	query += fmt.Sprintf(" ORDER BY transaction_date, transaction_id LIMIT $%d;", argPos)
	args = append(args, limit+1)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to list transactions for driver "+driverID, err)
	}
	defer rows.Close()

	var ms []models.LedgerTransaction
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan transaction row", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed iterating transaction rows", err)
	}

	var token *string
	if len(ms) > limit {
		ms = ms[:limit]
		last := ms[len(ms)-1]
		t := pagination.EncodeLedgerToken(last.TransactionDate, last.TransactionID)
		token = &t
	}

	return mapping.ToDomainTransactionSlice(ms), token, nil
}

// SumTargetContributions recomputes a driver's target balance from the ledger
// over [period.From, period.To), counting COMPLETED entries of types that
// contribute to the target.
func (r *PgxLedgerRepository) SumTargetContributions(ctx context.Context, driverID string, period domain.Period) (decimal.Decimal, int, error) {
	query := `
		SELECT COALESCE(SUM(target_contribution), 0), COUNT(*)
		FROM ledger_transactions
		WHERE driver_id = $1
		  AND transaction_date >= $2 AND transaction_date < $3
		  AND payment_status = $4
		  AND type NOT IN ($5, $6);
	`
	var sum decimal.Decimal
	var count int
	err := r.Pool.QueryRow(ctx, query,
		driverID, period.From, period.To,
		string(domain.PaymentCompleted),
		string(domain.Adjustment), string(domain.DriverRepayment),
	).Scan(&sum, &count)
	if err != nil {
		return decimal.Zero, 0, apperrors.NewAppError(500, "failed to sum target contributions for driver "+driverID, err)
	}
	return sum, count, nil
}

// SumPendingDeductions totals the absolute value of unsettled deduction
// entries for a driver.
func (r *PgxLedgerRepository) SumPendingDeductions(ctx context.Context, driverID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(ABS(amount)), 0)
		FROM ledger_transactions
		WHERE driver_id = $1
		  AND payment_status = $2
		  AND type IN ($3, $4);
	`
	var sum decimal.Decimal
	err := r.Pool.QueryRow(ctx, query,
		driverID, string(domain.PaymentPending),
		string(domain.DamageDeduction), string(domain.TargetMissDeduction),
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, apperrors.NewAppError(500, "failed to sum pending deductions for driver "+driverID, err)
	}
	return sum, nil
}
