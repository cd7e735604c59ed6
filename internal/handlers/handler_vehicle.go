package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/voltafleet/driver_ledger_app/internal/core/domain"
	portssvc "github.com/voltafleet/driver_ledger_app/internal/core/ports/services"
	"github.com/voltafleet/driver_ledger_app/internal/dto"
	"github.com/voltafleet/driver_ledger_app/internal/middleware"
)

type vehicleHandler struct {
	vehicleService portssvc.VehicleSvcFacade
}

// registerVehicleRoutes registers the fleet vehicle routes.
func registerVehicleRoutes(rg *gin.RouterGroup, vehicleService portssvc.VehicleSvcFacade) {
	h := &vehicleHandler{vehicleService: vehicleService}

	vehicles := rg.Group("/vehicles")
	{
		vehicles.POST("", h.createVehicle)
		vehicles.GET("", h.listVehicles)
		vehicles.GET("/:id", h.getVehicle)
		vehicles.PUT("/:id/status", h.setStatus)
		vehicles.POST("/:id/assign", h.assignVehicle)
		vehicles.POST("/:id/unassign", h.unassignVehicle)
		vehicles.PUT("/:id/telemetry", h.updateTelemetry)
	}
}

// createVehicle godoc
// @Summary Register a vehicle
// @Tags vehicles
// @Accept json
// @Produce json
// @Param vehicle body dto.CreateVehicleRequest true "Vehicle details"
// @Success 201 {object} dto.VehicleResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Registration already exists"
// @Security BearerAuth
// @Router /vehicles [post]
func (h *vehicleHandler) createVehicle(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := actorID(c)
	if !ok {
		return
	}

	vehicle, err := h.vehicleService.CreateVehicle(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to create vehicle")
		return
	}

	c.JSON(http.StatusCreated, dto.ToVehicleResponse(vehicle))
}

// getVehicle godoc
// @Summary Get a vehicle
// @Tags vehicles
// @Produce json
// @Param id path string true "Vehicle ID"
// @Success 200 {object} dto.VehicleResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /vehicles/{id} [get]
func (h *vehicleHandler) getVehicle(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	vehicle, err := h.vehicleService.GetVehicle(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "Failed to get vehicle")
		return
	}

	c.JSON(http.StatusOK, dto.ToVehicleResponse(vehicle))
}

// listVehicles godoc
// @Summary List vehicles
// @Tags vehicles
// @Produce json
// @Param status query string false "Filter by status"
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} dto.VehicleResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /vehicles [get]
func (h *vehicleHandler) listVehicles(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var status *domain.VehicleStatus
	if s := c.Query("status"); s != "" {
		st := domain.VehicleStatus(s)
		status = &st
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	vehicles, err := h.vehicleService.ListVehicles(c.Request.Context(), status, limit, offset)
	if err != nil {
		respondError(c, logger, err, "Failed to list vehicles")
		return
	}

	resp := make([]dto.VehicleResponse, len(vehicles))
	for i := range vehicles {
		resp[i] = dto.ToVehicleResponse(&vehicles[i])
	}
	c.JSON(http.StatusOK, resp)
}

// setStatus godoc
// @Summary Set a vehicle's operational status
// @Description Assignment transitions go through the assign endpoint.
// @Tags vehicles
// @Accept json
// @Produce json
// @Param id path string true "Vehicle ID"
// @Param status body dto.UpdateVehicleStatusRequest true "Target status"
// @Success 200 {object} dto.VehicleResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Vehicle is assigned"
// @Security BearerAuth
// @Router /vehicles/{id}/status [put]
func (h *vehicleHandler) setStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.UpdateVehicleStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := actorID(c)
	if !ok {
		return
	}

	vehicle, err := h.vehicleService.SetVehicleStatus(c.Request.Context(), c.Param("id"), domain.VehicleStatus(req.Status), actor)
	if err != nil {
		respondError(c, logger, err, "Failed to set vehicle status")
		return
	}

	c.JSON(http.StatusOK, dto.ToVehicleResponse(vehicle))
}

// assignVehicle godoc
// @Summary Assign a vehicle to a driver
// @Description Links an AVAILABLE vehicle to an active driver atomically.
// @Tags vehicles
// @Accept json
// @Produce json
// @Param id path string true "Vehicle ID"
// @Param assignment body dto.AssignVehicleRequest true "Driver to assign"
// @Success 200 {object} dto.VehicleResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Vehicle not available or driver already assigned"
// @Security BearerAuth
// @Router /vehicles/{id}/assign [post]
func (h *vehicleHandler) assignVehicle(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.AssignVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := actorID(c)
	if !ok {
		return
	}

	vehicle, err := h.vehicleService.AssignVehicle(c.Request.Context(), c.Param("id"), req.DriverID, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to assign vehicle")
		return
	}

	c.JSON(http.StatusOK, dto.ToVehicleResponse(vehicle))
}

// unassignVehicle godoc
// @Summary Unassign a vehicle
// @Description Returns an assigned vehicle to the AVAILABLE pool and clears the driver link.
// @Tags vehicles
// @Produce json
// @Param id path string true "Vehicle ID"
// @Success 200 {object} dto.VehicleResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Vehicle is not assigned"
// @Security BearerAuth
// @Router /vehicles/{id}/unassign [post]
func (h *vehicleHandler) unassignVehicle(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := actorID(c)
	if !ok {
		return
	}

	vehicle, err := h.vehicleService.UnassignVehicle(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		respondError(c, logger, err, "Failed to unassign vehicle")
		return
	}

	c.JSON(http.StatusOK, dto.ToVehicleResponse(vehicle))
}

// updateTelemetry godoc
// @Summary Record a telemetry report
// @Description Battery and location report from the external vehicle state provider.
// @Tags vehicles
// @Accept json
// @Produce json
// @Param id path string true "Vehicle ID"
// @Param telemetry body dto.TelemetryRequest true "Telemetry report"
// @Success 200 {object} dto.VehicleResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /vehicles/{id}/telemetry [put]
func (h *vehicleHandler) updateTelemetry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.TelemetryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	vehicle, err := h.vehicleService.UpdateTelemetry(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, logger, err, "Failed to record telemetry")
		return
	}

	c.JSON(http.StatusOK, dto.ToVehicleResponse(vehicle))
}
