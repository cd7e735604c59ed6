package services

import (
	portsrepo "github.com/voltafleet/driver_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/voltafleet/driver_ledger_app/internal/core/ports/services"
	"github.com/voltafleet/driver_ledger_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly
// initialized dependencies.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, dispatcher portssvc.PaymentDispatcher) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Auth:           NewAuthService(repos.UserRepo, cfg),
		Driver:         NewDriverService(repos.DriverRepo, repos.LedgerRepo, repos.AuditRepo, cfg),
		Balance:        NewBalanceService(repos.DriverRepo, repos.LedgerRepo, repos.AuditRepo, cfg),
		Deduction:      NewDeductionService(repos.DriverRepo, repos.LedgerRepo, dispatcher, cfg),
		Exit:           NewExitService(repos.DriverRepo, repos.LedgerRepo, repos.AuditRepo),
		Reconciliation: NewReconciliationService(repos.DriverRepo, repos.LedgerRepo, repos.AuditRepo),
		Vehicle:        NewVehicleService(repos.VehicleRepo, repos.DriverRepo),
	}
}
