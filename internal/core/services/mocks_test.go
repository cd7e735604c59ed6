package services_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/voltafleet/driver_ledger_app/internal/core/domain"
	portsrepo "github.com/voltafleet/driver_ledger_app/internal/core/ports/repositories"
)

// MockDriverRepository is a mock type for the DriverRepositoryFacade interface
type MockDriverRepository struct {
	mock.Mock
}

func (m *MockDriverRepository) FindDriverByID(ctx context.Context, driverID string) (*domain.Driver, error) {
	args := m.Called(ctx, driverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Driver), args.Error(1)
}

func (m *MockDriverRepository) ListDrivers(ctx context.Context, status *domain.DriverStatus, limit int, nextToken *string) ([]domain.Driver, *string, error) {
	args := m.Called(ctx, status, limit, nextToken)
	var drivers []domain.Driver
	if args.Get(0) != nil {
		drivers = args.Get(0).([]domain.Driver)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return drivers, token, args.Error(2)
}

func (m *MockDriverRepository) SaveDriver(ctx context.Context, driver domain.Driver) error {
	args := m.Called(ctx, driver)
	return args.Error(0)
}

func (m *MockDriverRepository) UpdateDriver(ctx context.Context, driver domain.Driver) error {
	args := m.Called(ctx, driver)
	return args.Error(0)
}

func (m *MockDriverRepository) FindDriverByIDForUpdate(ctx context.Context, tx pgx.Tx, driverID string) (*domain.Driver, error) {
	args := m.Called(ctx, tx, driverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Driver), args.Error(1)
}

func (m *MockDriverRepository) UpdateDriverInTx(ctx context.Context, tx pgx.Tx, driver domain.Driver, userID string, now time.Time) error {
	args := m.Called(ctx, tx, driver, userID, now)
	return args.Error(0)
}

// MockLedgerRepository is a mock type for the LedgerRepositoryWithTx interface
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.LedgerTransaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerTransaction), args.Error(1)
}

func (m *MockLedgerRepository) ListTransactionsByDriver(ctx context.Context, driverID string, from, to time.Time, filters portsrepo.LedgerFilters, limit int, nextToken *string) ([]domain.LedgerTransaction, *string, error) {
	args := m.Called(ctx, driverID, from, to, filters, limit, nextToken)
	var txns []domain.LedgerTransaction
	if args.Get(0) != nil {
		txns = args.Get(0).([]domain.LedgerTransaction)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return txns, token, args.Error(2)
}

func (m *MockLedgerRepository) SumTargetContributions(ctx context.Context, driverID string, period domain.Period) (decimal.Decimal, int, error) {
	args := m.Called(ctx, driverID, period)
	return args.Get(0).(decimal.Decimal), args.Int(1), args.Error(2)
}

func (m *MockLedgerRepository) SumPendingDeductions(ctx context.Context, driverID string) (decimal.Decimal, error) {
	args := m.Called(ctx, driverID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedgerRepository) SaveTransaction(ctx context.Context, txn domain.LedgerTransaction, change domain.BalanceChange) (*domain.Driver, error) {
	args := m.Called(ctx, txn, change)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Driver), args.Error(1)
}

func (m *MockLedgerRepository) UpdatePaymentStatus(ctx context.Context, transactionID string, status domain.PaymentStatus, userID string, now time.Time) error {
	args := m.Called(ctx, transactionID, status, userID, now)
	return args.Error(0)
}

func (m *MockLedgerRepository) SaveExit(ctx context.Context, driver domain.Driver, refundTxn domain.LedgerTransaction, releaseVehicleID *string) error {
	args := m.Called(ctx, driver, refundTxn, releaseVehicleID)
	return args.Error(0)
}

func (m *MockLedgerRepository) SaveTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.LedgerTransaction) error {
	args := m.Called(ctx, tx, txn)
	return args.Error(0)
}

func (m *MockLedgerRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockLedgerRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockLedgerRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// MockAuditRepository is a mock type for the AuditRepositoryFacade interface
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) SaveAuditEntry(ctx context.Context, entry domain.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditRepository) ListAuditEntriesByDriver(ctx context.Context, driverID string, limit int) ([]domain.AuditEntry, error) {
	args := m.Called(ctx, driverID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AuditEntry), args.Error(1)
}

// MockVehicleRepository is a mock type for the VehicleRepositoryFacade interface
type MockVehicleRepository struct {
	mock.Mock
}

func (m *MockVehicleRepository) FindVehicleByID(ctx context.Context, vehicleID string) (*domain.Vehicle, error) {
	args := m.Called(ctx, vehicleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}

func (m *MockVehicleRepository) ListVehicles(ctx context.Context, status *domain.VehicleStatus, limit int, offset int) ([]domain.Vehicle, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Vehicle), args.Error(1)
}

func (m *MockVehicleRepository) SaveVehicle(ctx context.Context, vehicle domain.Vehicle) error {
	args := m.Called(ctx, vehicle)
	return args.Error(0)
}

func (m *MockVehicleRepository) UpdateVehicle(ctx context.Context, vehicle domain.Vehicle) error {
	args := m.Called(ctx, vehicle)
	return args.Error(0)
}

func (m *MockVehicleRepository) AssignVehicle(ctx context.Context, vehicle domain.Vehicle, driver domain.Driver, userID string, now time.Time) error {
	args := m.Called(ctx, vehicle, driver, userID, now)
	return args.Error(0)
}

func (m *MockVehicleRepository) UnassignVehicle(ctx context.Context, vehicleID string, driverID string, userID string, now time.Time) error {
	args := m.Called(ctx, vehicleID, driverID, userID, now)
	return args.Error(0)
}

func (m *MockVehicleRepository) ReleaseVehicleInTx(ctx context.Context, tx pgx.Tx, vehicleID string, userID string, now time.Time) error {
	args := m.Called(ctx, tx, vehicleID, userID, now)
	return args.Error(0)
}

// MockUserRepository is a mock type for the UserRepositoryFacade interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockPaymentDispatcher is a mock type for the PaymentDispatcher interface
type MockPaymentDispatcher struct {
	mock.Mock
}

func (m *MockPaymentDispatcher) InitiatePayout(ctx context.Context, driver domain.Driver, amount decimal.Decimal, phone string) (string, error) {
	args := m.Called(ctx, driver, amount, phone)
	return args.String(0), args.Error(1)
}
