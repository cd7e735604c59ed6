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
)

// --- Test Suite Setup ---

type ExitServiceTestSuite struct {
	suite.Suite
	mockDriverRepo *MockDriverRepository
	mockLedgerRepo *MockLedgerRepository
	mockAuditRepo  *MockAuditRepository
	service        *services.ExitService
}

func (suite *ExitServiceTestSuite) SetupTest() {
	suite.mockDriverRepo = new(MockDriverRepository)
	suite.mockLedgerRepo = new(MockLedgerRepository)
	suite.mockAuditRepo = new(MockAuditRepository)
	suite.service = services.NewExitService(suite.mockDriverRepo, suite.mockLedgerRepo, suite.mockAuditRepo)
}

// --- Test Cases ---

func (suite *ExitServiceTestSuite) TestProcessDriverExit_Success() {
	ctx := context.Background()
	actorID := uuid.NewString()
	exitDate := time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)
	vehicleID := uuid.NewString()
	driver := depositDriver(decimal.NewFromInt(5000))
	driver.AssignedVehicleID = &vehicleID

	suite.mockDriverRepo.On("FindDriverByID", ctx, driver.DriverID).Return(driver, nil).Once()
	suite.mockLedgerRepo.On("SumPendingDeductions", ctx, driver.DriverID).Return(decimal.NewFromInt(1200), nil).Once()
	suite.mockLedgerRepo.On("SaveExit", ctx,
		mock.MatchedBy(func(d domain.Driver) bool {
			return d.Status == domain.DriverExited &&
				d.RefundStatus == domain.RefundPending &&
				d.RefundAmount.Equal(decimal.NewFromInt(3800)) &&
				d.AssignedVehicleID == nil
		}),
		mock.MatchedBy(func(txn domain.LedgerTransaction) bool {
			return txn.Type == domain.ExitRefund &&
				txn.PaymentStatus == domain.PaymentPending &&
				txn.Amount.Equal(decimal.NewFromInt(3800)) &&
				txn.TransactionDate.Equal(exitDate)
		}),
		&vehicleID,
	).Return(nil).Once()

	exited, err := suite.service.ProcessDriverExit(ctx, driver.DriverID, exitDate, actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.DriverExited, exited.Status)
	suite.Require().NotNil(exited.ExitDate)
	suite.True(exited.ExitDate.Equal(exitDate))
	suite.True(exited.RefundAmount.Equal(decimal.NewFromInt(3800)))
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *ExitServiceTestSuite) TestProcessDriverExit_NegativeRefund() {
	ctx := context.Background()
	driver := depositDriver(decimal.NewFromInt(500))

	suite.mockDriverRepo.On("FindDriverByID", ctx, driver.DriverID).Return(driver, nil).Once()
	suite.mockLedgerRepo.On("SumPendingDeductions", ctx, driver.DriverID).Return(decimal.NewFromInt(2000), nil).Once()
	suite.mockLedgerRepo.On("SaveExit", ctx, mock.AnythingOfType("domain.Driver"), mock.MatchedBy(func(txn domain.LedgerTransaction) bool {
		return txn.Amount.Equal(decimal.NewFromInt(-1500))
	}), (*string)(nil)).Return(nil).Once()

	exited, err := suite.service.ProcessDriverExit(ctx, driver.DriverID, time.Now(), uuid.NewString())

	// A negative refund is recorded as-is: the driver leaves owing money.
	suite.Require().NoError(err)
	suite.True(exited.RefundAmount.Equal(decimal.NewFromInt(-1500)))
}

func (suite *ExitServiceTestSuite) TestProcessDriverExit_AlreadyExited() {
	ctx := context.Background()
	driver := depositDriver(decimal.NewFromInt(5000))
	driver.Status = domain.DriverExited

	suite.mockDriverRepo.On("FindDriverByID", ctx, driver.DriverID).Return(driver, nil).Once()

	_, err := suite.service.ProcessDriverExit(ctx, driver.DriverID, time.Now(), uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrAlreadyExited)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "SaveExit")
}

func (suite *ExitServiceTestSuite) TestProcessDriverExit_RetriesOnConflict() {
	ctx := context.Background()
	driver := depositDriver(decimal.NewFromInt(4000))

	conflict := fmt.Errorf("stale version: %w", apperrors.ErrConflict)
	// Each attempt re-reads the driver; return a fresh copy so the first
	// attempt's mutations do not leak into the second.
	first := *driver
	second := *driver
	second.Version = 2
	suite.mockDriverRepo.On("FindDriverByID", ctx, driver.DriverID).Return(&first, nil).Once()
	suite.mockDriverRepo.On("FindDriverByID", ctx, driver.DriverID).Return(&second, nil).Once()
	suite.mockLedgerRepo.On("SumPendingDeductions", ctx, driver.DriverID).Return(decimal.Zero, nil).Twice()
	suite.mockLedgerRepo.On("SaveExit", ctx, mock.AnythingOfType("domain.Driver"), mock.AnythingOfType("domain.LedgerTransaction"), (*string)(nil)).Return(conflict).Once()
	suite.mockLedgerRepo.On("SaveExit", ctx, mock.AnythingOfType("domain.Driver"), mock.AnythingOfType("domain.LedgerTransaction"), (*string)(nil)).Return(nil).Once()

	exited, err := suite.service.ProcessDriverExit(ctx, driver.DriverID, time.Now(), uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal(domain.DriverExited, exited.Status)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *ExitServiceTestSuite) TestArchiveDriver_OnlyExited() {
	ctx := context.Background()
	driver := depositDriver(decimal.Zero)

	suite.mockDriverRepo.On("FindDriverByID", ctx, driver.DriverID).Return(driver, nil).Once()

	_, err := suite.service.ArchiveDriver(ctx, driver.DriverID, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ExitServiceTestSuite) TestArchiveDriver_Success() {
	ctx := context.Background()
	driver := depositDriver(decimal.Zero)
	driver.Status = domain.DriverExited
	now := time.Now()
	driver.ExitDate = &now

	suite.mockDriverRepo.On("FindDriverByID", ctx, driver.DriverID).Return(driver, nil).Once()
	suite.mockDriverRepo.On("UpdateDriver", ctx, mock.MatchedBy(func(d domain.Driver) bool {
		return d.Status == domain.DriverArchived
	})).Return(nil).Once()

	archived, err := suite.service.ArchiveDriver(ctx, driver.DriverID, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal(domain.DriverArchived, archived.Status)
}

func (suite *ExitServiceTestSuite) TestArchiveDriver_AlreadyArchived() {
	ctx := context.Background()
	driver := depositDriver(decimal.Zero)
	driver.Status = domain.DriverArchived

	suite.mockDriverRepo.On("FindDriverByID", ctx, driver.DriverID).Return(driver, nil).Once()

	_, err := suite.service.ArchiveDriver(ctx, driver.DriverID, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrAlreadyArchived)
}

func (suite *ExitServiceTestSuite) TestRestoreArchivedDriver_AuditFailureKeepsCommittedRestore() {
	ctx := context.Background()
	driver := depositDriver(decimal.NewFromInt(2000))
	driver.Status = domain.DriverArchived
	exitDate := time.Now().AddDate(0, -2, 0)
	driver.ExitDate = &exitDate

	suite.mockDriverRepo.On("FindDriverByID", ctx, driver.DriverID).Return(driver, nil).Once()
	suite.mockDriverRepo.On("UpdateDriver", ctx, mock.AnythingOfType("domain.Driver")).Return(nil).Once()
	suite.mockAuditRepo.On("SaveAuditEntry", ctx, mock.AnythingOfType("domain.AuditEntry")).Return(fmt.Errorf("audit store down")).Once()

	restored, err := suite.service.RestoreArchivedDriver(ctx, driver.DriverID, "rehired", uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal(domain.DriverActive, restored.Status)
	suite.mockAuditRepo.AssertExpectations(suite.T())
}

func (suite *ExitServiceTestSuite) TestRestoreArchivedDriver_Success() {
	ctx := context.Background()
	driver := depositDriver(decimal.NewFromInt(2000))
	driver.Status = domain.DriverArchived
	driver.CurrentBalance = decimal.NewFromInt(750)
	driver.ConsecutiveMisses = 3
	exitDate := time.Now().AddDate(0, -2, 0)
	driver.ExitDate = &exitDate

	suite.mockDriverRepo.On("FindDriverByID", ctx, driver.DriverID).Return(driver, nil).Once()
	suite.mockDriverRepo.On("UpdateDriver", ctx, mock.MatchedBy(func(d domain.Driver) bool {
		return d.Status == domain.DriverActive &&
			d.ExitDate == nil &&
			d.ConsecutiveMisses == 0 &&
			d.CurrentBalance.IsZero() &&
			d.CurrentDepositBalance.Equal(decimal.NewFromInt(2000))
	})).Return(nil).Once()
	suite.mockAuditRepo.On("SaveAuditEntry", ctx, mock.MatchedBy(func(e domain.AuditEntry) bool {
		return e.Action == domain.AuditDriverRestored
	})).Return(nil).Once()

	restored, err := suite.service.RestoreArchivedDriver(ctx, driver.DriverID, "rehired for the Kisumu fleet", uuid.NewString())

	// Target tracking starts fresh; the deposit survives the restore.
	suite.Require().NoError(err)
	suite.Equal(domain.DriverActive, restored.Status)
	suite.True(restored.CurrentBalance.IsZero())
	suite.True(restored.CurrentDepositBalance.Equal(decimal.NewFromInt(2000)))
	suite.mockAuditRepo.AssertExpectations(suite.T())
}

func (suite *ExitServiceTestSuite) TestRestoreArchivedDriver_MissingReason() {
	ctx := context.Background()

	_, err := suite.service.RestoreArchivedDriver(ctx, uuid.NewString(), "", uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockDriverRepo.AssertNotCalled(suite.T(), "FindDriverByID")
}

func (suite *ExitServiceTestSuite) TestRestoreArchivedDriver_NotArchived() {
	ctx := context.Background()
	driver := depositDriver(decimal.Zero)

	suite.mockDriverRepo.On("FindDriverByID", ctx, driver.DriverID).Return(driver, nil).Once()

	_, err := suite.service.RestoreArchivedDriver(ctx, driver.DriverID, "typo", uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ExitServiceTestSuite) TestUpdateRefundStatus_IllegalTransition() {
	ctx := context.Background()
	driver := depositDriver(decimal.Zero)
	driver.Status = domain.DriverExited
	now := time.Now()
	driver.ExitDate = &now
	driver.RefundStatus = domain.RefundCompleted

	suite.mockDriverRepo.On("FindDriverByID", ctx, driver.DriverID).Return(driver, nil).Once()

	_, err := suite.service.UpdateRefundStatus(ctx, driver.DriverID, domain.RefundPending, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockDriverRepo.AssertNotCalled(suite.T(), "UpdateDriver")
}

func (suite *ExitServiceTestSuite) TestUpdateRefundStatus_NoExit() {
	ctx := context.Background()
	driver := depositDriver(decimal.Zero)

	suite.mockDriverRepo.On("FindDriverByID", ctx, driver.DriverID).Return(driver, nil).Once()

	_, err := suite.service.UpdateRefundStatus(ctx, driver.DriverID, domain.RefundProcessed, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ExitServiceTestSuite) TestUpdateRefundStatus_Success() {
	ctx := context.Background()
	driver := depositDriver(decimal.Zero)
	driver.Status = domain.DriverExited
	now := time.Now()
	driver.ExitDate = &now
	driver.RefundStatus = domain.RefundPending

	suite.mockDriverRepo.On("FindDriverByID", ctx, driver.DriverID).Return(driver, nil).Once()
	suite.mockDriverRepo.On("UpdateDriver", ctx, mock.MatchedBy(func(d domain.Driver) bool {
		return d.RefundStatus == domain.RefundProcessed
	})).Return(nil).Once()
	suite.mockAuditRepo.On("SaveAuditEntry", ctx, mock.MatchedBy(func(e domain.AuditEntry) bool {
		return e.Action == domain.AuditRefundStatusMove
	})).Return(nil).Once()

	updated, err := suite.service.UpdateRefundStatus(ctx, driver.DriverID, domain.RefundProcessed, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal(domain.RefundProcessed, updated.RefundStatus)
	suite.mockAuditRepo.AssertExpectations(suite.T())
}

func TestExitServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ExitServiceTestSuite))
}
