package repositories

// RepositoryProvider bundles the concrete repositories handed to the service
// container.
type RepositoryProvider struct {
	DriverRepo  DriverRepositoryFacade
	LedgerRepo  LedgerRepositoryWithTx
	VehicleRepo VehicleRepositoryFacade
	AuditRepo   AuditRepositoryFacade
	UserRepo    UserRepositoryFacade
}
