package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/voltafleet/driver_ledger_app/internal/core/domain"
	portssvc "github.com/voltafleet/driver_ledger_app/internal/core/ports/services"
	"github.com/voltafleet/driver_ledger_app/internal/dto"
	"github.com/voltafleet/driver_ledger_app/internal/middleware"
)

type exitHandler struct {
	exitService portssvc.ExitSvcFacade
}

// registerExitRoutes registers the driver exit and archival lifecycle routes.
func registerExitRoutes(rg *gin.RouterGroup, exitService portssvc.ExitSvcFacade) {
	h := &exitHandler{exitService: exitService}

	drivers := rg.Group("/drivers")
	{
		drivers.POST("/:id/exit", h.processExit)
		drivers.POST("/:id/archive", h.archiveDriver)
		drivers.POST("/:id/restore", h.restoreDriver)
		drivers.PUT("/:id/refund-status", h.updateRefundStatus)
	}
}

// processExit godoc
// @Summary Process a driver's exit
// @Description One-time: computes the deposit refund net of pending deductions, releases the vehicle and marks the driver exited.
// @Tags exit
// @Accept json
// @Produce json
// @Param id path string true "Driver ID"
// @Param exit body dto.ExitRequest false "Exit date (defaults to now)"
// @Success 200 {object} dto.ExitResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Driver already exited or archived"
// @Security BearerAuth
// @Router /drivers/{id}/exit [post]
func (h *exitHandler) processExit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ExitRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := actorID(c)
	if !ok {
		return
	}

	exitDate := time.Now()
	if req.ExitDate != nil {
		exitDate = *req.ExitDate
	}

	driver, err := h.exitService.ProcessDriverExit(c.Request.Context(), c.Param("id"), exitDate, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to process driver exit")
		return
	}

	c.JSON(http.StatusOK, dto.ExitResponse{
		DriverID:     driver.DriverID,
		ExitDate:     *driver.ExitDate,
		RefundAmount: driver.RefundAmount,
		RefundStatus: string(driver.RefundStatus),
	})
}

// archiveDriver godoc
// @Summary Archive an exited driver
// @Tags exit
// @Produce json
// @Param id path string true "Driver ID"
// @Success 200 {object} dto.DriverResponse
// @Failure 400 {object} ErrorResponse "Driver has not exited"
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Already archived"
// @Security BearerAuth
// @Router /drivers/{id}/archive [post]
func (h *exitHandler) archiveDriver(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := actorID(c)
	if !ok {
		return
	}

	driver, err := h.exitService.ArchiveDriver(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		respondError(c, logger, err, "Failed to archive driver")
		return
	}

	c.JSON(http.StatusOK, dto.ToDriverResponse(driver))
}

// restoreDriver godoc
// @Summary Restore an archived driver
// @Description Clears the exit date and restarts target tracking; deposit and history are preserved.
// @Tags exit
// @Accept json
// @Produce json
// @Param id path string true "Driver ID"
// @Param restore body dto.RestoreRequest true "Restore reason"
// @Success 200 {object} dto.DriverResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /drivers/{id}/restore [post]
func (h *exitHandler) restoreDriver(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.RestoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := actorID(c)
	if !ok {
		return
	}

	driver, err := h.exitService.RestoreArchivedDriver(c.Request.Context(), c.Param("id"), req.Reason, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to restore driver")
		return
	}

	c.JSON(http.StatusOK, dto.ToDriverResponse(driver))
}

// updateRefundStatus godoc
// @Summary Advance a driver's refund workflow
// @Description PENDING to PROCESSED to COMPLETED, or CANCELLED from either; illegal moves conflict.
// @Tags exit
// @Accept json
// @Produce json
// @Param id path string true "Driver ID"
// @Param status body dto.RefundStatusRequest true "Target refund status"
// @Success 200 {object} dto.DriverResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Illegal transition"
// @Security BearerAuth
// @Router /drivers/{id}/refund-status [put]
func (h *exitHandler) updateRefundStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.RefundStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := actorID(c)
	if !ok {
		return
	}

	driver, err := h.exitService.UpdateRefundStatus(c.Request.Context(), c.Param("id"), domain.RefundStatus(req.Status), actor)
	if err != nil {
		respondError(c, logger, err, "Failed to update refund status")
		return
	}

	c.JSON(http.StatusOK, dto.ToDriverResponse(driver))
}
