package services

import (
	"context"

	"github.com/voltafleet/driver_ledger_app/internal/core/domain"
	"github.com/voltafleet/driver_ledger_app/internal/dto"
)

// DriverSvcFacade manages driver records. Balance fields are never mutated
// through this interface; those paths live on the balance and deduction
// services.
type DriverSvcFacade interface {
	// CreateDriver registers a new active driver with configured defaults.
	CreateDriver(ctx context.Context, req dto.CreateDriverRequest, actorID string) (*domain.Driver, error)

	// GetDriver retrieves a driver by ID.
	GetDriver(ctx context.Context, driverID string) (*domain.Driver, error)

	// ListDrivers retrieves a paginated list of drivers.
	ListDrivers(ctx context.Context, params dto.ListDriversParams) (*dto.ListDriversResponse, error)

	// UpdateDriver updates contact/policy fields.
	UpdateDriver(ctx context.Context, driverID string, req dto.UpdateDriverRequest, actorID string) (*domain.Driver, error)

	// ListTransactions retrieves the driver's ledger entries.
	ListTransactions(ctx context.Context, driverID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)

	// ListAuditTrail retrieves the driver's audit entries, newest first.
	ListAuditTrail(ctx context.Context, driverID string, limit int) ([]domain.AuditEntry, error)
}
