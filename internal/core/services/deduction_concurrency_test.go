package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltafleet/driver_ledger_app/internal/core/domain"
	"github.com/voltafleet/driver_ledger_app/internal/core/services"
	"github.com/voltafleet/driver_ledger_app/internal/dto"
	"github.com/voltafleet/driver_ledger_app/internal/platform/config"
)

// lockingLedgerRepo mimics the row-lock discipline of the database
// repository: a mutex stands in for SELECT ... FOR UPDATE, so concurrent
// balance changes serialize against the driver row instead of clobbering
// each other.
type lockingLedgerRepo struct {
	*MockLedgerRepository
	mu     sync.Mutex
	driver *domain.Driver
	txns   []domain.LedgerTransaction
}

func (r *lockingLedgerRepo) SaveTransaction(ctx context.Context, txn domain.LedgerTransaction, change domain.BalanceChange) (*domain.Driver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.driver.CurrentBalance = r.driver.CurrentBalance.Add(change.TargetDelta)
	r.driver.CurrentDepositBalance = r.driver.CurrentDepositBalance.Add(change.DepositDelta)
	r.txns = append(r.txns, txn)

	updated := *r.driver
	return &updated, nil
}

// lockingDriverRepo reads the shared driver state under the same lock.
type lockingDriverRepo struct {
	*MockDriverRepository
	ledger *lockingLedgerRepo
}

func (r *lockingDriverRepo) FindDriverByID(ctx context.Context, driverID string) (*domain.Driver, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	d := *r.ledger.driver
	return &d, nil
}

func TestProcessDepositTopUp_ConcurrentTopUpsConverge(t *testing.T) {
	driver := depositDriver(decimal.Zero)
	ledgerRepo := &lockingLedgerRepo{MockLedgerRepository: new(MockLedgerRepository), driver: driver}
	driverRepo := &lockingDriverRepo{MockDriverRepository: new(MockDriverRepository), ledger: ledgerRepo}
	cfg := &config.Config{FareSplitPercent: decimal.NewFromInt(50)}
	service := services.NewDeductionService(driverRepo, ledgerRepo, new(MockPaymentDispatcher), cfg)

	var wg sync.WaitGroup
	for _, amount := range []int64{100, 200} {
		wg.Add(1)
		go func(a int64) {
			defer wg.Done()
			req := dto.DepositTopUpRequest{Amount: decimal.NewFromInt(a), Description: "cash top-up"}
			_, err := service.ProcessDepositTopUp(context.Background(), driver.DriverID, req, uuid.NewString())
			assert.NoError(t, err)
		}(amount)
	}
	wg.Wait()

	require.Len(t, ledgerRepo.txns, 2)
	assert.True(t, ledgerRepo.driver.CurrentDepositBalance.Equal(decimal.NewFromInt(300)),
		"deposit should converge to 300, got %s", ledgerRepo.driver.CurrentDepositBalance)
}
