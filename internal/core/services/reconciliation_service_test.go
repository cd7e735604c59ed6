package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/voltafleet/driver_ledger_app/internal/apperrors"
	"github.com/voltafleet/driver_ledger_app/internal/core/domain"
	"github.com/voltafleet/driver_ledger_app/internal/core/services"
)

// --- Test Suite Setup ---

type ReconciliationServiceTestSuite struct {
	suite.Suite
	mockDriverRepo *MockDriverRepository
	mockLedgerRepo *MockLedgerRepository
	mockAuditRepo  *MockAuditRepository
	service        *services.ReconciliationService
}

func (suite *ReconciliationServiceTestSuite) SetupTest() {
	suite.mockDriverRepo = new(MockDriverRepository)
	suite.mockLedgerRepo = new(MockLedgerRepository)
	suite.mockAuditRepo = new(MockAuditRepository)
	suite.service = services.NewReconciliationService(suite.mockDriverRepo, suite.mockLedgerRepo, suite.mockAuditRepo)
}

func weekPeriod() domain.Period {
	to := time.Now().Add(-time.Hour)
	return domain.Period{From: to.AddDate(0, 0, -7), To: to}
}

// --- Test Cases ---

func (suite *ReconciliationServiceTestSuite) TestReconcile_NoDiscrepancy() {
	ctx := context.Background()
	driver := activeDriver(decimal.NewFromInt(1200))
	period := weekPeriod()

	suite.mockDriverRepo.On("FindDriverByID", ctx, driver.DriverID).Return(driver, nil).Once()
	suite.mockLedgerRepo.On("SumTargetContributions", ctx, driver.DriverID, period).Return(decimal.NewFromInt(1200), 14, nil).Once()

	result, err := suite.service.ReconcileDriverBalance(ctx, driver.DriverID, period)

	suite.Require().NoError(err)
	suite.True(result.Discrepancy.IsZero())
	suite.Equal(14, result.TransactionsCount)
	suite.False(result.Fixed)
}

func (suite *ReconciliationServiceTestSuite) TestReconcile_DiscrepancyIsReportedNotFailed() {
	ctx := context.Background()
	driver := activeDriver(decimal.NewFromInt(1500))
	period := weekPeriod()

	suite.mockDriverRepo.On("FindDriverByID", ctx, driver.DriverID).Return(driver, nil).Once()
	suite.mockLedgerRepo.On("SumTargetContributions", ctx, driver.DriverID, period).Return(decimal.NewFromInt(1350), 9, nil).Once()

	result, err := suite.service.ReconcileDriverBalance(ctx, driver.DriverID, period)

	suite.Require().NoError(err)
	suite.True(result.Discrepancy.Equal(decimal.NewFromInt(150)))
	suite.True(result.OldBalance.Equal(decimal.NewFromInt(1500)))
	suite.True(result.CalculatedBalance.Equal(decimal.NewFromInt(1350)))
}

func (suite *ReconciliationServiceTestSuite) TestReconcile_EmptyPeriod() {
	ctx := context.Background()
	now := time.Now()
	period := domain.Period{From: now, To: now}

	_, err := suite.service.ReconcileDriverBalance(ctx, uuid.NewString(), period)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockDriverRepo.AssertNotCalled(suite.T(), "FindDriverByID")
}

func (suite *ReconciliationServiceTestSuite) TestReconcile_ClampsFuturePeriodEnd() {
	ctx := context.Background()
	driver := activeDriver(decimal.Zero)
	period := domain.Period{From: time.Now().AddDate(0, 0, -1), To: time.Now().AddDate(0, 0, 7)}

	suite.mockDriverRepo.On("FindDriverByID", ctx, driver.DriverID).Return(driver, nil).Once()
	suite.mockLedgerRepo.On("SumTargetContributions", ctx, driver.DriverID, mock.MatchedBy(func(p domain.Period) bool {
		return !p.To.After(time.Now())
	})).Return(decimal.Zero, 0, nil).Once()

	_, err := suite.service.ReconcileDriverBalance(ctx, driver.DriverID, period)

	suite.Require().NoError(err)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *ReconciliationServiceTestSuite) TestFix_NoAutoFixLeavesBalance() {
	ctx := context.Background()
	driver := activeDriver(decimal.NewFromInt(900))
	period := weekPeriod()

	suite.mockDriverRepo.On("FindDriverByID", ctx, driver.DriverID).Return(driver, nil).Once()
	suite.mockLedgerRepo.On("SumTargetContributions", ctx, driver.DriverID, period).Return(decimal.NewFromInt(700), 5, nil).Once()

	result, err := suite.service.FixDriverBalance(ctx, driver.DriverID, period, false, uuid.NewString())

	suite.Require().NoError(err)
	suite.False(result.Fixed)
	suite.mockDriverRepo.AssertNotCalled(suite.T(), "UpdateDriver")
	suite.mockAuditRepo.AssertNotCalled(suite.T(), "SaveAuditEntry")
}

func (suite *ReconciliationServiceTestSuite) TestFix_AutoFixOverwritesBalance() {
	ctx := context.Background()
	actorID := uuid.NewString()
	driver := activeDriver(decimal.NewFromInt(900))
	period := weekPeriod()

	suite.mockDriverRepo.On("FindDriverByID", ctx, driver.DriverID).Return(driver, nil).Twice()
	suite.mockLedgerRepo.On("SumTargetContributions", ctx, driver.DriverID, period).Return(decimal.NewFromInt(700), 5, nil).Once()
	suite.mockDriverRepo.On("UpdateDriver", ctx, mock.MatchedBy(func(d domain.Driver) bool {
		return d.CurrentBalance.Equal(decimal.NewFromInt(700))
	})).Return(nil).Once()
	suite.mockAuditRepo.On("SaveAuditEntry", ctx, mock.MatchedBy(func(e domain.AuditEntry) bool {
		return e.Action == domain.AuditBalanceFix && e.ActorID == actorID
	})).Return(nil).Once()

	result, err := suite.service.FixDriverBalance(ctx, driver.DriverID, period, true, actorID)

	suite.Require().NoError(err)
	suite.True(result.Fixed)
	suite.True(result.CalculatedBalance.Equal(decimal.NewFromInt(700)))
	suite.mockDriverRepo.AssertExpectations(suite.T())
	suite.mockAuditRepo.AssertExpectations(suite.T())
}

func (suite *ReconciliationServiceTestSuite) TestFix_AuditFailureKeepsCommittedFix() {
	ctx := context.Background()
	driver := activeDriver(decimal.NewFromInt(900))
	period := weekPeriod()

	suite.mockDriverRepo.On("FindDriverByID", ctx, driver.DriverID).Return(driver, nil).Twice()
	suite.mockLedgerRepo.On("SumTargetContributions", ctx, driver.DriverID, period).Return(decimal.NewFromInt(700), 5, nil).Once()
	suite.mockDriverRepo.On("UpdateDriver", ctx, mock.AnythingOfType("domain.Driver")).Return(nil).Once()
	suite.mockAuditRepo.On("SaveAuditEntry", ctx, mock.AnythingOfType("domain.AuditEntry")).Return(errors.New("audit store down")).Once()

	result, err := suite.service.FixDriverBalance(ctx, driver.DriverID, period, true, uuid.NewString())

	suite.Require().NoError(err)
	suite.True(result.Fixed)
	suite.True(result.CalculatedBalance.Equal(decimal.NewFromInt(700)))
	suite.mockAuditRepo.AssertExpectations(suite.T())
}

func (suite *ReconciliationServiceTestSuite) TestFix_AutoFixZeroDiscrepancyIsNoOp() {
	ctx := context.Background()
	driver := activeDriver(decimal.NewFromInt(500))
	period := weekPeriod()

	suite.mockDriverRepo.On("FindDriverByID", ctx, driver.DriverID).Return(driver, nil).Once()
	suite.mockLedgerRepo.On("SumTargetContributions", ctx, driver.DriverID, period).Return(decimal.NewFromInt(500), 3, nil).Once()

	result, err := suite.service.FixDriverBalance(ctx, driver.DriverID, period, true, uuid.NewString())

	suite.Require().NoError(err)
	suite.False(result.Fixed)
	suite.mockDriverRepo.AssertNotCalled(suite.T(), "UpdateDriver")
}

func TestReconciliationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReconciliationServiceTestSuite))
}
