package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/voltafleet/driver_ledger_app/internal/apperrors"
	"github.com/voltafleet/driver_ledger_app/internal/core/domain"
	portsrepo "github.com/voltafleet/driver_ledger_app/internal/core/ports/repositories"
	"github.com/voltafleet/driver_ledger_app/internal/models"
	"github.com/voltafleet/driver_ledger_app/internal/utils/mapping"
	"github.com/voltafleet/driver_ledger_app/internal/utils/pagination"
)

type PgxDriverRepository struct {
	BaseRepository
}

// newPgxDriverRepository creates a new repository for driver data.
func newPgxDriverRepository(pool *pgxpool.Pool) *PgxDriverRepository {
	return &PgxDriverRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.DriverRepositoryFacade = (*PgxDriverRepository)(nil)

const driverColumns = `
	driver_id, name, phone, status, current_balance, daily_target,
	consecutive_misses, deposit_required, initial_deposit_amount,
	current_deposit_balance, allow_target_deduction_from_deposit, payout_mode,
	exit_date, refund_status, refund_amount, assigned_vehicle_id, version,
	created_at, created_by, last_updated_at, last_updated_by`

// scanDriver scans one driver row in driverColumns order.
func scanDriver(row pgx.Row) (models.Driver, error) {
	var m models.Driver
	err := row.Scan(
		&m.DriverID, &m.Name, &m.Phone, &m.Status, &m.CurrentBalance, &m.DailyTarget,
		&m.ConsecutiveMisses, &m.DepositRequired, &m.InitialDepositAmount,
		&m.CurrentDepositBalance, &m.AllowTargetDeductionFromDeposit, &m.PayoutMode,
		&m.ExitDate, &m.RefundStatus, &m.RefundAmount, &m.AssignedVehicleID, &m.Version,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	return m, err
}

// SaveDriver inserts a new driver.
func (r *PgxDriverRepository) SaveDriver(ctx context.Context, driver domain.Driver) error {
	m := mapping.ToModelDriver(driver)

	query := `
		INSERT INTO drivers (` + driverColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.DriverID, m.Name, m.Phone, m.Status, m.CurrentBalance, m.DailyTarget,
		m.ConsecutiveMisses, m.DepositRequired, m.InitialDepositAmount,
		m.CurrentDepositBalance, m.AllowTargetDeductionFromDeposit, m.PayoutMode,
		m.ExitDate, m.RefundStatus, m.RefundAmount, m.AssignedVehicleID, m.Version,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: driver %s", apperrors.ErrDuplicate, m.DriverID)
		}
		return apperrors.NewAppError(500, "failed to insert driver "+m.DriverID, err)
	}
	return nil
}

// FindDriverByID retrieves a driver by its ID.
func (r *PgxDriverRepository) FindDriverByID(ctx context.Context, driverID string) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE driver_id = $1;`

	m, err := scanDriver(r.Pool.QueryRow(ctx, query, driverID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("driver %s: %w", driverID, apperrors.ErrNotFound)
		}
		return nil, apperrors.NewAppError(500, "failed to find driver "+driverID, err)
	}

	d := mapping.ToDomainDriver(m)
	return &d, nil
}

// ListDrivers retrieves drivers ordered by creation time, resumable via a
// pagination token of (created_at, driver_id).
func (r *PgxDriverRepository) ListDrivers(ctx context.Context, status *domain.DriverStatus, limit int, nextToken *string) ([]domain.Driver, *string, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT ` + driverColumns + ` FROM drivers WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if status != nil {
		query += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, string(*status))
		argPos++
	}

	if nextToken != nil && *nextToken != "" {
		fields, err := pagination.DecodeMultiFieldToken(*nextToken)
		if err != nil || len(fields) != 2 {
			return nil, nil, fmt.Errorf("%w: invalid pagination token", apperrors.ErrValidation)
		}
		createdAt, err := time.Parse(time.RFC3339Nano, fields[0])
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid pagination token timestamp", apperrors.ErrValidation)
		}
		query += fmt.Sprintf(" AND (created_at, driver_id) > ($%d, $%d)", argPos, argPos+1)
		args = append(args, createdAt, fields[1])
		argPos += 2
	}

	// Fetch one extra row to detect whether another page exists.
	query += fmt.Sprintf(" ORDER BY created_at, driver_id LIMIT $%d;", argPos)
	args = append(args, limit+1)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to list drivers", err)
	}
	defer rows.Close()

	var ms []models.Driver
	for rows.Next() {
		m, err := scanDriver(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan driver row", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed iterating driver rows", err)
	}

	var token *string
	if len(ms) > limit {
		ms = ms[:limit]
		last := ms[len(ms)-1]
		t := pagination.EncodeMultiFieldToken(last.CreatedAt.Format(time.RFC3339Nano), last.DriverID)
		token = &t
	}

	return mapping.ToDomainDriverSlice(ms), token, nil
}

// UpdateDriver writes all mutable driver fields using optimistic
// concurrency: the row must still carry driver.Version. A stale version
// yields ErrConflict so the caller can retry against fresh state.
func (r *PgxDriverRepository) UpdateDriver(ctx context.Context, driver domain.Driver) error {
	m := mapping.ToModelDriver(driver)

	query := `
		UPDATE drivers SET
			name = $2, phone = $3, status = $4, current_balance = $5,
			daily_target = $6, consecutive_misses = $7, deposit_required = $8,
			initial_deposit_amount = $9, current_deposit_balance = $10,
			allow_target_deduction_from_deposit = $11, payout_mode = $12,
			exit_date = $13, refund_status = $14, refund_amount = $15,
			assigned_vehicle_id = $16, version = version + 1,
			last_updated_at = $17, last_updated_by = $18
		WHERE driver_id = $1 AND version = $19;
	`
	tag, err := r.Pool.Exec(ctx, query,
		m.DriverID, m.Name, m.Phone, m.Status, m.CurrentBalance,
		m.DailyTarget, m.ConsecutiveMisses, m.DepositRequired,
		m.InitialDepositAmount, m.CurrentDepositBalance,
		m.AllowTargetDeductionFromDeposit, m.PayoutMode,
		m.ExitDate, m.RefundStatus, m.RefundAmount,
		m.AssignedVehicleID,
		m.LastUpdatedAt, m.LastUpdatedBy,
		m.Version,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update driver "+m.DriverID, err)
	}
	if tag.RowsAffected() == 0 {
		// Either the driver is gone or another writer bumped the version.
		if _, findErr := r.FindDriverByID(ctx, driver.DriverID); findErr != nil {
			return findErr
		}
		return fmt.Errorf("driver %s: %w", driver.DriverID, apperrors.ErrConflict)
	}
	return nil
}

// FindDriverByIDForUpdate selects a driver and locks its row for the
// duration of the transaction.
func (r *PgxDriverRepository) FindDriverByIDForUpdate(ctx context.Context, tx pgx.Tx, driverID string) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE driver_id = $1 FOR UPDATE;`

	m, err := scanDriver(tx.QueryRow(ctx, query, driverID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("driver %s: %w", driverID, apperrors.ErrNotFound)
		}
		return nil, apperrors.NewAppError(500, "failed to lock driver "+driverID, err)
	}

	d := mapping.ToDomainDriver(m)
	return &d, nil
}

// UpdateDriverInTx writes driver balance and lifecycle fields within an
// existing transaction, bumping the version. The caller holds the row lock.
func (r *PgxDriverRepository) UpdateDriverInTx(ctx context.Context, tx pgx.Tx, driver domain.Driver, userID string, now time.Time) error {
	m := mapping.ToModelDriver(driver)

	query := `
		UPDATE drivers SET
			status = $2, current_balance = $3, consecutive_misses = $4,
			current_deposit_balance = $5, exit_date = $6, refund_status = $7,
			refund_amount = $8, assigned_vehicle_id = $9, version = version + 1,
			last_updated_at = $10, last_updated_by = $11
		WHERE driver_id = $1;
	`
	tag, err := tx.Exec(ctx, query,
		m.DriverID, m.Status, m.CurrentBalance, m.ConsecutiveMisses,
		m.CurrentDepositBalance, m.ExitDate, m.RefundStatus,
		m.RefundAmount, m.AssignedVehicleID,
		now, userID,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update driver in tx "+m.DriverID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("driver %s: %w", driver.DriverID, apperrors.ErrNotFound)
	}
	return nil
}
