package pgsql

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/voltafleet/driver_ledger_app/internal/apperrors"
	"github.com/voltafleet/driver_ledger_app/internal/core/domain"
	portsrepo "github.com/voltafleet/driver_ledger_app/internal/core/ports/repositories"
	"github.com/voltafleet/driver_ledger_app/internal/models"
	"github.com/voltafleet/driver_ledger_app/internal/utils/mapping"
)

type PgxAuditRepository struct {
	BaseRepository
}

// newPgxAuditRepository creates a new repository for the audit trail.
func newPgxAuditRepository(pool *pgxpool.Pool) portsrepo.AuditRepositoryFacade {
	return &PgxAuditRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AuditRepositoryFacade = (*PgxAuditRepository)(nil)

// SaveAuditEntry appends an audit entry. The trail is insert-only.
func (r *PgxAuditRepository) SaveAuditEntry(ctx context.Context, entry domain.AuditEntry) error {
	m := mapping.ToModelAuditEntry(entry)

	query := `
		INSERT INTO audit_entries (audit_id, driver_id, actor_id, action, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err := r.Pool.Exec(ctx, query, m.AuditID, m.DriverID, m.ActorID, m.Action, m.Detail, m.CreatedAt)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert audit entry "+m.AuditID, err)
	}
	return nil
}

// ListAuditEntriesByDriver retrieves a driver's audit trail, newest first.
func (r *PgxAuditRepository) ListAuditEntriesByDriver(ctx context.Context, driverID string, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT audit_id, driver_id, actor_id, action, detail, created_at
		FROM audit_entries
		WHERE driver_id = $1
		ORDER BY created_at DESC, audit_id DESC
		LIMIT $2;
	`
	rows, err := r.Pool.Query(ctx, query, driverID, limit)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list audit entries for driver "+driverID, err)
	}
	defer rows.Close()

	var ms []models.AuditEntry
	for rows.Next() {
		var m models.AuditEntry
		if err := rows.Scan(&m.AuditID, &m.DriverID, &m.ActorID, &m.Action, &m.Detail, &m.CreatedAt); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan audit entry row", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed iterating audit entry rows", err)
	}

	return mapping.ToDomainAuditEntrySlice(ms), nil
}
