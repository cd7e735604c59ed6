package services

// ServiceContainer bundles the service facades handed to the HTTP handlers.
type ServiceContainer struct {
	Auth           AuthSvcFacade
	Driver         DriverSvcFacade
	Balance        BalanceSvcFacade
	Deduction      DeductionSvcFacade
	Exit           ExitSvcFacade
	Reconciliation ReconciliationSvcFacade
	Vehicle        VehicleSvcFacade
}
