package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/voltafleet/driver_ledger_app/internal/apperrors"
	"github.com/voltafleet/driver_ledger_app/internal/core/domain"
	"github.com/voltafleet/driver_ledger_app/internal/core/services"
	"github.com/voltafleet/driver_ledger_app/internal/dto"
	"github.com/voltafleet/driver_ledger_app/internal/platform/config"
)

// --- Test Suite Setup ---

type BalanceServiceTestSuite struct {
	suite.Suite
	mockDriverRepo *MockDriverRepository
	mockLedgerRepo *MockLedgerRepository
	mockAuditRepo  *MockAuditRepository
	cfg            *config.Config
	service        *services.BalanceService
}

func (suite *BalanceServiceTestSuite) SetupTest() {
	suite.mockDriverRepo = new(MockDriverRepository)
	suite.mockLedgerRepo = new(MockLedgerRepository)
	suite.mockAuditRepo = new(MockAuditRepository)
	suite.cfg = &config.Config{
		DailyTargetDefault:  decimal.NewFromInt(1500),
		FareSplitPercent:    decimal.NewFromInt(50),
		OperatingHoursStart: "05:00",
		OperatingHoursEnd:   "23:00",
	}
	suite.service = services.NewBalanceService(suite.mockDriverRepo, suite.mockLedgerRepo, suite.mockAuditRepo, suite.cfg)
}

func activeDriver(balance decimal.Decimal) *domain.Driver {
	return &domain.Driver{
		DriverID:       uuid.NewString(),
		Name:           "Wanjiku Kamau",
		Phone:          "+254700000001",
		Status:         domain.DriverActive,
		CurrentBalance: balance,
		DailyTarget:    decimal.NewFromInt(1500),
		PayoutMode:     domain.PayoutFollowGlobal,
		RefundStatus:   domain.RefundPending,
		Version:        1,
	}
}

// --- Test Cases ---

func (suite *BalanceServiceTestSuite) TestResetTargetBalance_Success() {
	ctx := context.Background()
	actorID := uuid.NewString()
	driver := activeDriver(decimal.NewFromInt(800))
	newBalance := decimal.NewFromInt(250)
	req := dto.ResetBalanceRequest{NewBalance: &newBalance, Reason: "weekly rollover"}

	suite.mockDriverRepo.On("FindDriverByID", ctx, driver.DriverID).Return(driver, nil).Once()
	suite.mockDriverRepo.On("UpdateDriver", ctx, mock.AnythingOfType("domain.Driver")).Return(nil).Once()
	suite.mockAuditRepo.On("SaveAuditEntry", ctx, mock.MatchedBy(func(e domain.AuditEntry) bool {
		return e.Action == domain.AuditBalanceReset && e.DriverID == driver.DriverID
	})).Return(nil).Once()

	updated, err := suite.service.ResetTargetBalance(ctx, driver.DriverID, req, actorID)

	suite.Require().NoError(err)
	suite.Require().NotNil(updated)
	suite.True(updated.CurrentBalance.Equal(newBalance))
	suite.Equal(int64(2), updated.Version)
	suite.mockDriverRepo.AssertExpectations(suite.T())
	suite.mockAuditRepo.AssertExpectations(suite.T())
}

func (suite *BalanceServiceTestSuite) TestResetTargetBalance_AuditFailureKeepsCommittedReset() {
	ctx := context.Background()
	driver := activeDriver(decimal.NewFromInt(800))
	newBalance := decimal.NewFromInt(250)
	req := dto.ResetBalanceRequest{NewBalance: &newBalance, Reason: "weekly rollover"}

	suite.mockDriverRepo.On("FindDriverByID", ctx, driver.DriverID).Return(driver, nil).Once()
	suite.mockDriverRepo.On("UpdateDriver", ctx, mock.AnythingOfType("domain.Driver")).Return(nil).Once()
	suite.mockAuditRepo.On("SaveAuditEntry", ctx, mock.AnythingOfType("domain.AuditEntry")).Return(fmt.Errorf("audit store down")).Once()

	updated, err := suite.service.ResetTargetBalance(ctx, driver.DriverID, req, uuid.NewString())

	suite.Require().NoError(err)
	suite.Require().NotNil(updated)
	suite.True(updated.CurrentBalance.Equal(newBalance))
	suite.mockAuditRepo.AssertExpectations(suite.T())
}

func (suite *BalanceServiceTestSuite) TestResetTargetBalance_ZeroIsValid() {
	ctx := context.Background()
	driver := activeDriver(decimal.NewFromInt(1200))
	zero := decimal.Zero
	req := dto.ResetBalanceRequest{NewBalance: &zero, Reason: "new day"}

	suite.mockDriverRepo.On("FindDriverByID", ctx, driver.DriverID).Return(driver, nil).Once()
	suite.mockDriverRepo.On("UpdateDriver", ctx, mock.AnythingOfType("domain.Driver")).Return(nil).Once()
	suite.mockAuditRepo.On("SaveAuditEntry", ctx, mock.AnythingOfType("domain.AuditEntry")).Return(nil).Once()

	updated, err := suite.service.ResetTargetBalance(ctx, driver.DriverID, req, uuid.NewString())

	suite.Require().NoError(err)
	suite.True(updated.CurrentBalance.IsZero())
}

func (suite *BalanceServiceTestSuite) TestResetTargetBalance_MissingBalance() {
	ctx := context.Background()
	req := dto.ResetBalanceRequest{Reason: "no amount"}

	_, err := suite.service.ResetTargetBalance(ctx, uuid.NewString(), req, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockDriverRepo.AssertNotCalled(suite.T(), "FindDriverByID")
}

func (suite *BalanceServiceTestSuite) TestResetTargetBalance_MissingReason() {
	ctx := context.Background()
	newBalance := decimal.NewFromInt(100)
	req := dto.ResetBalanceRequest{NewBalance: &newBalance}

	_, err := suite.service.ResetTargetBalance(ctx, uuid.NewString(), req, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *BalanceServiceTestSuite) TestResetTargetBalance_ExitedDriver() {
	ctx := context.Background()
	driver := activeDriver(decimal.Zero)
	driver.Status = domain.DriverExited
	newBalance := decimal.NewFromInt(100)
	req := dto.ResetBalanceRequest{NewBalance: &newBalance, Reason: "too late"}

	suite.mockDriverRepo.On("FindDriverByID", ctx, driver.DriverID).Return(driver, nil).Once()

	_, err := suite.service.ResetTargetBalance(ctx, driver.DriverID, req, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrAlreadyExited)
	suite.mockDriverRepo.AssertNotCalled(suite.T(), "UpdateDriver")
}

func (suite *BalanceServiceTestSuite) TestResetTargetBalance_RetriesOnConflict() {
	ctx := context.Background()
	driver := activeDriver(decimal.NewFromInt(500))
	newBalance := decimal.NewFromInt(0)
	req := dto.ResetBalanceRequest{NewBalance: &newBalance, Reason: "concurrent reset"}

	conflict := fmt.Errorf("stale version: %w", apperrors.ErrConflict)
	suite.mockDriverRepo.On("FindDriverByID", ctx, driver.DriverID).Return(driver, nil).Twice()
	suite.mockDriverRepo.On("UpdateDriver", ctx, mock.AnythingOfType("domain.Driver")).Return(conflict).Once()
	suite.mockDriverRepo.On("UpdateDriver", ctx, mock.AnythingOfType("domain.Driver")).Return(nil).Once()
	suite.mockAuditRepo.On("SaveAuditEntry", ctx, mock.AnythingOfType("domain.AuditEntry")).Return(nil).Once()

	updated, err := suite.service.ResetTargetBalance(ctx, driver.DriverID, req, uuid.NewString())

	suite.Require().NoError(err)
	suite.True(updated.CurrentBalance.IsZero())
	suite.mockDriverRepo.AssertExpectations(suite.T())
}

func (suite *BalanceServiceTestSuite) TestApplyFareTransaction_Success() {
	ctx := context.Background()
	actorID := uuid.NewString()
	driver := activeDriver(decimal.NewFromInt(200))
	req := dto.FareRequest{
		VehicleID: uuid.NewString(),
		Amount:    decimal.NewFromInt(300),
		Reference: "MPESA-QA12345",
	}

	// 50% split of 300 credits 150 to the target balance.
	expectedContribution := decimal.NewFromInt(150)

	suite.mockDriverRepo.On("FindDriverByID", ctx, driver.DriverID).Return(driver, nil).Once()
	updatedDriver := *driver
	updatedDriver.CurrentBalance = driver.CurrentBalance.Add(expectedContribution)
	suite.mockLedgerRepo.On("SaveTransaction", ctx,
		mock.MatchedBy(func(txn domain.LedgerTransaction) bool {
			return txn.Type == domain.Fare &&
				txn.PaymentStatus == domain.PaymentCompleted &&
				txn.TargetContribution.Equal(expectedContribution)
		}),
		mock.MatchedBy(func(change domain.BalanceChange) bool {
			return change.TargetDelta.Equal(expectedContribution) && change.DepositDelta.IsZero()
		}),
	).Return(&updatedDriver, nil).Once()

	txn, result, err := suite.service.ApplyFareTransaction(ctx, driver.DriverID, req, actorID)

	suite.Require().NoError(err)
	suite.Require().NotNil(txn)
	suite.True(txn.TargetContribution.Equal(expectedContribution))
	suite.True(result.CurrentBalance.Equal(decimal.NewFromInt(350)))
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *BalanceServiceTestSuite) TestApplyFareTransaction_CustomPercentage() {
	ctx := context.Background()
	driver := activeDriver(decimal.Zero)
	pct := decimal.NewFromInt(70)
	req := dto.FareRequest{
		VehicleID:      uuid.NewString(),
		Amount:         decimal.NewFromInt(100),
		FarePercentage: &pct,
	}

	suite.mockDriverRepo.On("FindDriverByID", ctx, driver.DriverID).Return(driver, nil).Once()
	suite.mockLedgerRepo.On("SaveTransaction", ctx, mock.MatchedBy(func(txn domain.LedgerTransaction) bool {
		return txn.TargetContribution.Equal(decimal.NewFromInt(70))
	}), mock.AnythingOfType("domain.BalanceChange")).Return(driver, nil).Once()

	txn, _, err := suite.service.ApplyFareTransaction(ctx, driver.DriverID, req, uuid.NewString())

	suite.Require().NoError(err)
	suite.True(txn.TargetContribution.Equal(decimal.NewFromInt(70)))
}

func (suite *BalanceServiceTestSuite) TestApplyFareTransaction_NonPositiveAmount() {
	ctx := context.Background()
	req := dto.FareRequest{VehicleID: uuid.NewString(), Amount: decimal.NewFromInt(-50)}

	_, _, err := suite.service.ApplyFareTransaction(ctx, uuid.NewString(), req, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *BalanceServiceTestSuite) TestApplyFareTransaction_PercentageOutOfRange() {
	ctx := context.Background()
	pct := decimal.NewFromInt(120)
	req := dto.FareRequest{VehicleID: uuid.NewString(), Amount: decimal.NewFromInt(100), FarePercentage: &pct}

	_, _, err := suite.service.ApplyFareTransaction(ctx, uuid.NewString(), req, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *BalanceServiceTestSuite) TestApplyFareTransaction_OutsideOperatingHoursStillPosts() {
	ctx := context.Background()
	driver := activeDriver(decimal.Zero)
	lateNight := time.Date(2026, 3, 10, 2, 30, 0, 0, time.UTC)
	req := dto.FareRequest{
		VehicleID:       uuid.NewString(),
		Amount:          decimal.NewFromInt(200),
		TransactionDate: &lateNight,
	}

	suite.mockDriverRepo.On("FindDriverByID", ctx, driver.DriverID).Return(driver, nil).Once()
	suite.mockLedgerRepo.On("SaveTransaction", ctx, mock.MatchedBy(func(txn domain.LedgerTransaction) bool {
		return txn.TransactionDate.Equal(lateNight)
	}), mock.AnythingOfType("domain.BalanceChange")).Return(driver, nil).Once()

	_, _, err := suite.service.ApplyFareTransaction(ctx, driver.DriverID, req, uuid.NewString())

	// Out-of-hours postings warn but never fail.
	suite.Require().NoError(err)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *BalanceServiceTestSuite) TestRecordTargetMiss_IncrementsAndCaps() {
	ctx := context.Background()
	driver := activeDriver(decimal.Zero)
	driver.ConsecutiveMisses = 2

	suite.mockDriverRepo.On("FindDriverByID", ctx, driver.DriverID).Return(driver, nil).Once()
	suite.mockDriverRepo.On("UpdateDriver", ctx, mock.AnythingOfType("domain.Driver")).Return(nil).Once()

	updated, err := suite.service.RecordTargetMiss(ctx, driver.DriverID, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal(3, updated.ConsecutiveMisses)

	// Already at the cap: no further write happens.
	capped := activeDriver(decimal.Zero)
	capped.ConsecutiveMisses = domain.MaxConsecutiveMisses
	suite.mockDriverRepo.On("FindDriverByID", ctx, capped.DriverID).Return(capped, nil).Once()

	updated, err = suite.service.RecordTargetMiss(ctx, capped.DriverID, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal(domain.MaxConsecutiveMisses, updated.ConsecutiveMisses)
	suite.mockDriverRepo.AssertExpectations(suite.T())
}

func (suite *BalanceServiceTestSuite) TestResetConsecutiveMisses_NoOpAtZero() {
	ctx := context.Background()
	driver := activeDriver(decimal.Zero)

	suite.mockDriverRepo.On("FindDriverByID", ctx, driver.DriverID).Return(driver, nil).Once()

	err := suite.service.ResetConsecutiveMisses(ctx, driver.DriverID, uuid.NewString())

	suite.Require().NoError(err)
	suite.mockDriverRepo.AssertNotCalled(suite.T(), "UpdateDriver")
	suite.mockAuditRepo.AssertNotCalled(suite.T(), "SaveAuditEntry")
}

func (suite *BalanceServiceTestSuite) TestResetConsecutiveMisses_Success() {
	ctx := context.Background()
	driver := activeDriver(decimal.Zero)
	driver.ConsecutiveMisses = 2

	suite.mockDriverRepo.On("FindDriverByID", ctx, driver.DriverID).Return(driver, nil).Once()
	suite.mockDriverRepo.On("UpdateDriver", ctx, mock.MatchedBy(func(d domain.Driver) bool {
		return d.ConsecutiveMisses == 0
	})).Return(nil).Once()
	suite.mockAuditRepo.On("SaveAuditEntry", ctx, mock.MatchedBy(func(e domain.AuditEntry) bool {
		return e.Action == domain.AuditMissesReset
	})).Return(nil).Once()

	err := suite.service.ResetConsecutiveMisses(ctx, driver.DriverID, uuid.NewString())

	suite.Require().NoError(err)
	suite.mockAuditRepo.AssertExpectations(suite.T())
}

func (suite *BalanceServiceTestSuite) TestGetDriverSummary() {
	ctx := context.Background()
	driver := activeDriver(decimal.NewFromInt(600))
	driver.DepositRequired = true
	driver.InitialDepositAmount = decimal.NewFromInt(5000)
	driver.CurrentDepositBalance = decimal.NewFromInt(3500)

	suite.mockDriverRepo.On("FindDriverByID", ctx, driver.DriverID).Return(driver, nil).Once()

	summary, err := suite.service.GetDriverSummary(ctx, driver.DriverID)

	suite.Require().NoError(err)
	suite.True(summary.LeftToTarget.Equal(decimal.NewFromInt(900)))
	suite.True(summary.TargetProgressPercent.Equal(decimal.NewFromInt(40)))
	suite.True(summary.DepositShortfall.Equal(decimal.NewFromInt(1500)))
}

func (suite *BalanceServiceTestSuite) TestGetDriverSummary_NotFound() {
	ctx := context.Background()
	driverID := uuid.NewString()

	suite.mockDriverRepo.On("FindDriverByID", ctx, driverID).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.GetDriverSummary(ctx, driverID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestBalanceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BalanceServiceTestSuite))
}
