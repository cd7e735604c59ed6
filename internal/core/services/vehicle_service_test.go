package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/voltafleet/driver_ledger_app/internal/apperrors"
	"github.com/voltafleet/driver_ledger_app/internal/core/domain"
	"github.com/voltafleet/driver_ledger_app/internal/core/services"
	"github.com/voltafleet/driver_ledger_app/internal/dto"
)

// --- Test Suite Setup ---

type VehicleServiceTestSuite struct {
	suite.Suite
	mockVehicleRepo *MockVehicleRepository
	mockDriverRepo  *MockDriverRepository
	service         *services.VehicleService
}

func (suite *VehicleServiceTestSuite) SetupTest() {
	suite.mockVehicleRepo = new(MockVehicleRepository)
	suite.mockDriverRepo = new(MockDriverRepository)
	suite.service = services.NewVehicleService(suite.mockVehicleRepo, suite.mockDriverRepo)
}

func availableVehicle() *domain.Vehicle {
	return &domain.Vehicle{
		VehicleID:    uuid.NewString(),
		Registration: "KMFB 123A",
		Status:       domain.VehicleAvailable,
		BatteryLevel: 85,
	}
}

// --- Test Cases ---

func (suite *VehicleServiceTestSuite) TestCreateVehicle_DefaultsToAvailable() {
	ctx := context.Background()
	req := dto.CreateVehicleRequest{Registration: "KMFB 456B", BatteryLevel: 90}

	suite.mockVehicleRepo.On("SaveVehicle", ctx, mock.MatchedBy(func(v domain.Vehicle) bool {
		return v.Status == domain.VehicleAvailable && v.Registration == "KMFB 456B"
	})).Return(nil).Once()

	created, err := suite.service.CreateVehicle(ctx, req, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal(domain.VehicleAvailable, created.Status)
	suite.mockVehicleRepo.AssertExpectations(suite.T())
}

func (suite *VehicleServiceTestSuite) TestSetVehicleStatus_RejectsAssignedTarget() {
	ctx := context.Background()

	_, err := suite.service.SetVehicleStatus(ctx, uuid.NewString(), domain.VehicleAssigned, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockVehicleRepo.AssertNotCalled(suite.T(), "UpdateVehicle")
}

func (suite *VehicleServiceTestSuite) TestSetVehicleStatus_AssignedVehicleConflict() {
	ctx := context.Background()
	vehicle := availableVehicle()
	vehicle.Status = domain.VehicleAssigned
	driverID := uuid.NewString()
	vehicle.AssignedDriverID = &driverID

	suite.mockVehicleRepo.On("FindVehicleByID", ctx, vehicle.VehicleID).Return(vehicle, nil).Once()

	_, err := suite.service.SetVehicleStatus(ctx, vehicle.VehicleID, domain.VehicleMaintenance, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *VehicleServiceTestSuite) TestSetVehicleStatus_Success() {
	ctx := context.Background()
	vehicle := availableVehicle()

	suite.mockVehicleRepo.On("FindVehicleByID", ctx, vehicle.VehicleID).Return(vehicle, nil).Once()
	suite.mockVehicleRepo.On("UpdateVehicle", ctx, mock.MatchedBy(func(v domain.Vehicle) bool {
		return v.Status == domain.VehicleCharging
	})).Return(nil).Once()

	updated, err := suite.service.SetVehicleStatus(ctx, vehicle.VehicleID, domain.VehicleCharging, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal(domain.VehicleCharging, updated.Status)
}

func (suite *VehicleServiceTestSuite) TestAssignVehicle_NotAvailable() {
	ctx := context.Background()
	vehicle := availableVehicle()
	vehicle.Status = domain.VehicleMaintenance

	suite.mockVehicleRepo.On("FindVehicleByID", ctx, vehicle.VehicleID).Return(vehicle, nil).Once()

	_, err := suite.service.AssignVehicle(ctx, vehicle.VehicleID, uuid.NewString(), uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockVehicleRepo.AssertNotCalled(suite.T(), "AssignVehicle")
}

func (suite *VehicleServiceTestSuite) TestAssignVehicle_ExitedDriverRejected() {
	ctx := context.Background()
	vehicle := availableVehicle()
	driver := activeDriver(decimal.Zero)
	driver.Status = domain.DriverExited

	suite.mockVehicleRepo.On("FindVehicleByID", ctx, vehicle.VehicleID).Return(vehicle, nil).Once()
	suite.mockDriverRepo.On("FindDriverByID", ctx, driver.DriverID).Return(driver, nil).Once()

	_, err := suite.service.AssignVehicle(ctx, vehicle.VehicleID, driver.DriverID, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrAlreadyExited)
}

func (suite *VehicleServiceTestSuite) TestAssignVehicle_Success() {
	ctx := context.Background()
	vehicle := availableVehicle()
	driver := activeDriver(decimal.Zero)

	suite.mockVehicleRepo.On("FindVehicleByID", ctx, vehicle.VehicleID).Return(vehicle, nil).Once()
	suite.mockDriverRepo.On("FindDriverByID", ctx, driver.DriverID).Return(driver, nil).Once()
	suite.mockVehicleRepo.On("AssignVehicle", ctx, mock.AnythingOfType("domain.Vehicle"), mock.AnythingOfType("domain.Driver"), mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil).Once()

	assigned, err := suite.service.AssignVehicle(ctx, vehicle.VehicleID, driver.DriverID, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal(domain.VehicleAssigned, assigned.Status)
	suite.Require().NotNil(assigned.AssignedDriverID)
	suite.Equal(driver.DriverID, *assigned.AssignedDriverID)
}

func (suite *VehicleServiceTestSuite) TestUnassignVehicle_Success() {
	ctx := context.Background()
	vehicle := availableVehicle()
	vehicle.Status = domain.VehicleAssigned
	driverID := uuid.NewString()
	vehicle.AssignedDriverID = &driverID

	suite.mockVehicleRepo.On("FindVehicleByID", ctx, vehicle.VehicleID).Return(vehicle, nil).Once()
	suite.mockVehicleRepo.On("UnassignVehicle", ctx, vehicle.VehicleID, driverID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil).Once()

	released, err := suite.service.UnassignVehicle(ctx, vehicle.VehicleID, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal(domain.VehicleAvailable, released.Status)
	suite.Nil(released.AssignedDriverID)
	suite.mockVehicleRepo.AssertExpectations(suite.T())
}

func (suite *VehicleServiceTestSuite) TestUnassignVehicle_NotAssigned() {
	ctx := context.Background()
	vehicle := availableVehicle()

	suite.mockVehicleRepo.On("FindVehicleByID", ctx, vehicle.VehicleID).Return(vehicle, nil).Once()

	_, err := suite.service.UnassignVehicle(ctx, vehicle.VehicleID, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockVehicleRepo.AssertNotCalled(suite.T(), "UnassignVehicle")
}

func (suite *VehicleServiceTestSuite) TestUpdateTelemetry() {
	ctx := context.Background()
	vehicle := availableVehicle()
	lat, lng := -1.2921, 36.8219
	req := dto.TelemetryRequest{BatteryLevel: 42, Latitude: &lat, Longitude: &lng}

	suite.mockVehicleRepo.On("FindVehicleByID", ctx, vehicle.VehicleID).Return(vehicle, nil).Once()
	suite.mockVehicleRepo.On("UpdateVehicle", ctx, mock.MatchedBy(func(v domain.Vehicle) bool {
		return v.BatteryLevel == 42 && v.CurrentLocation != nil && v.LastUpdatedBy == "telemetry"
	})).Return(nil).Once()

	updated, err := suite.service.UpdateTelemetry(ctx, vehicle.VehicleID, req)

	suite.Require().NoError(err)
	suite.Equal(42, updated.BatteryLevel)
	suite.Require().NotNil(updated.CurrentLocation)
	suite.InDelta(-1.2921, updated.CurrentLocation.Latitude, 0.0001)
}

func (suite *VehicleServiceTestSuite) TestUpdateTelemetry_BatteryOutOfRange() {
	ctx := context.Background()
	req := dto.TelemetryRequest{BatteryLevel: 120}

	_, err := suite.service.UpdateTelemetry(ctx, uuid.NewString(), req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func TestVehicleServiceTestSuite(t *testing.T) {
	suite.Run(t, new(VehicleServiceTestSuite))
}
