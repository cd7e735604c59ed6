package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/voltafleet/driver_ledger_app/internal/core/ports/repositories"
)

// NewRepositoryProvider wires the pgsql repositories together. The ledger and
// vehicle repositories receive the concrete driver repository because their
// composed transactions lock and update driver rows directly.
func NewRepositoryProvider(pool *pgxpool.Pool) *portsrepo.RepositoryProvider {
	driverRepo := newPgxDriverRepository(pool)
	vehicleRepo := newPgxVehicleRepository(pool, driverRepo)

	return &portsrepo.RepositoryProvider{
		DriverRepo:  driverRepo,
		LedgerRepo:  newPgxLedgerRepository(pool, driverRepo, vehicleRepo),
		VehicleRepo: vehicleRepo,
		AuditRepo:   newPgxAuditRepository(pool),
		UserRepo:    newPgxUserRepository(pool),
	}
}
