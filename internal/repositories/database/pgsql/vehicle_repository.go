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
	"github.com/voltafleet/driver_ledger_app/internal/middleware"
	"github.com/voltafleet/driver_ledger_app/internal/models"
	"github.com/voltafleet/driver_ledger_app/internal/utils/mapping"
)

type PgxVehicleRepository struct {
	BaseRepository
	driverRepo *PgxDriverRepository
}

// newPgxVehicleRepository creates a new repository for vehicle data. The
// driver repository is used by the assignment flow, which touches both rows.
func newPgxVehicleRepository(pool *pgxpool.Pool, driverRepo *PgxDriverRepository) *PgxVehicleRepository {
	return &PgxVehicleRepository{
		BaseRepository: BaseRepository{Pool: pool},
		driverRepo:     driverRepo,
	}
}

var _ portsrepo.VehicleRepositoryFacade = (*PgxVehicleRepository)(nil)

const vehicleColumns = `
	vehicle_id, registration, status, assigned_driver_id, battery_level,
	latitude, longitude, created_at, created_by, last_updated_at, last_updated_by`

func scanVehicle(row pgx.Row) (models.Vehicle, error) {
	var m models.Vehicle
	err := row.Scan(
		&m.VehicleID, &m.Registration, &m.Status, &m.AssignedDriverID, &m.BatteryLevel,
		&m.Latitude, &m.Longitude, &m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	return m, err
}

// SaveVehicle inserts a new vehicle.
func (r *PgxVehicleRepository) SaveVehicle(ctx context.Context, vehicle domain.Vehicle) error {
	m := mapping.ToModelVehicle(vehicle)

	query := `
		INSERT INTO vehicles (` + vehicleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.VehicleID, m.Registration, m.Status, m.AssignedDriverID, m.BatteryLevel,
		m.Latitude, m.Longitude, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: vehicle %s", apperrors.ErrDuplicate, m.VehicleID)
		}
		return apperrors.NewAppError(500, "failed to insert vehicle "+m.VehicleID, err)
	}
	return nil
}

// FindVehicleByID retrieves a vehicle by its ID.
func (r *PgxVehicleRepository) FindVehicleByID(ctx context.Context, vehicleID string) (*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE vehicle_id = $1;`

	m, err := scanVehicle(r.Pool.QueryRow(ctx, query, vehicleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("vehicle %s: %w", vehicleID, apperrors.ErrNotFound)
		}
		return nil, apperrors.NewAppError(500, "failed to find vehicle "+vehicleID, err)
	}

	v := mapping.ToDomainVehicle(m)
	return &v, nil
}

// ListVehicles retrieves vehicles ordered by registration.
func (r *PgxVehicleRepository) ListVehicles(ctx context.Context, status *domain.VehicleStatus, limit int, offset int) ([]domain.Vehicle, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + vehicleColumns + ` FROM vehicles`
	args := []interface{}{}
	argPos := 1

	if status != nil {
		query += fmt.Sprintf(" WHERE status = $%d", argPos)
		args = append(args, string(*status))
		argPos++
	}
	query += fmt.Sprintf(" ORDER BY registration LIMIT $%d OFFSET $%d;", argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list vehicles", err)
	}
	defer rows.Close()

	var ms []models.Vehicle
	for rows.Next() {
		m, err := scanVehicle(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan vehicle row", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed iterating vehicle rows", err)
	}

	return mapping.ToDomainVehicleSlice(ms), nil
}

// UpdateVehicle writes status, assignment and telemetry fields.
func (r *PgxVehicleRepository) UpdateVehicle(ctx context.Context, vehicle domain.Vehicle) error {
	m := mapping.ToModelVehicle(vehicle)

	query := `
		UPDATE vehicles SET
			status = $2, assigned_driver_id = $3, battery_level = $4,
			latitude = $5, longitude = $6, last_updated_at = $7, last_updated_by = $8
		WHERE vehicle_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		m.VehicleID, m.Status, m.AssignedDriverID, m.BatteryLevel,
		m.Latitude, m.Longitude, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update vehicle "+m.VehicleID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("vehicle %s: %w", vehicle.VehicleID, apperrors.ErrNotFound)
	}
	return nil
}

// AssignVehicle links a vehicle and a driver in one transaction: the vehicle
// row moves to ASSIGNED and the driver row records the assignment.
func (r *PgxVehicleRepository) AssignVehicle(ctx context.Context, vehicle domain.Vehicle, driver domain.Driver, userID string, now time.Time) error {
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
	if locked.AssignedVehicleID != nil && *locked.AssignedVehicleID != vehicle.VehicleID {
		return fmt.Errorf("driver %s already has vehicle %s: %w", driver.DriverID, *locked.AssignedVehicleID, apperrors.ErrConflict)
	}

	vehicleQuery := `
		UPDATE vehicles SET
			status = $2, assigned_driver_id = $3, last_updated_at = $4, last_updated_by = $5
		WHERE vehicle_id = $1 AND status = $6;
	`
	tag, err := tx.Exec(ctx, vehicleQuery,
		vehicle.VehicleID, string(domain.VehicleAssigned), driver.DriverID, now, userID,
		string(domain.VehicleAvailable),
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to assign vehicle "+vehicle.VehicleID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("vehicle %s is not available: %w", vehicle.VehicleID, apperrors.ErrConflict)
	}

	locked.AssignedVehicleID = &vehicle.VehicleID
	if err := r.driverRepo.UpdateDriverInTx(ctx, tx, *locked, userID, now); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// UnassignVehicle reverts an assigned vehicle to AVAILABLE and clears the
// driver's side of the link in one transaction.
func (r *PgxVehicleRepository) UnassignVehicle(ctx context.Context, vehicleID string, driverID string, userID string, now time.Time) error {
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

	locked, err := r.driverRepo.FindDriverByIDForUpdate(ctx, tx, driverID)
	if err != nil {
		return err
	}

	if err := r.ReleaseVehicleInTx(ctx, tx, vehicleID, userID, now); err != nil {
		return err
	}

	if locked.AssignedVehicleID != nil && *locked.AssignedVehicleID == vehicleID {
		locked.AssignedVehicleID = nil
		if err := r.driverRepo.UpdateDriverInTx(ctx, tx, *locked, userID, now); err != nil {
			return err
		}
	}

	return r.Commit(ctx, tx)
}

// ReleaseVehicleInTx reverts a vehicle to AVAILABLE and clears its driver
// link within an existing transaction.
func (r *PgxVehicleRepository) ReleaseVehicleInTx(ctx context.Context, tx pgx.Tx, vehicleID string, userID string, now time.Time) error {
	query := `
		UPDATE vehicles SET
			status = $2, assigned_driver_id = NULL, last_updated_at = $3, last_updated_by = $4
		WHERE vehicle_id = $1;
	`
	tag, err := tx.Exec(ctx, query, vehicleID, string(domain.VehicleAvailable), now, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to release vehicle "+vehicleID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("vehicle %s: %w", vehicleID, apperrors.ErrNotFound)
	}
	return nil
}
