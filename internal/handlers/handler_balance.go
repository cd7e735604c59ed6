package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/voltafleet/driver_ledger_app/internal/core/ports/services"
	"github.com/voltafleet/driver_ledger_app/internal/dto"
	"github.com/voltafleet/driver_ledger_app/internal/middleware"
)

type balanceHandler struct {
	balanceService portssvc.BalanceSvcFacade
}

// registerBalanceRoutes registers the target balance mutation routes.
func registerBalanceRoutes(rg *gin.RouterGroup, balanceService portssvc.BalanceSvcFacade) {
	h := &balanceHandler{balanceService: balanceService}

	drivers := rg.Group("/drivers")
	{
		drivers.POST("/:id/balance/reset", h.resetBalance)
		drivers.POST("/:id/fares", h.applyFare)
		drivers.POST("/:id/misses", h.recordMiss)
		drivers.DELETE("/:id/misses", h.resetMisses)
	}
}

// resetBalance godoc
// @Summary Reset a driver's target balance
// @Description Manager-only absolute write; audit-logged, not posted to the ledger. Zero is a valid target.
// @Tags balance
// @Accept json
// @Produce json
// @Param id path string true "Driver ID"
// @Param reset body dto.ResetBalanceRequest true "New balance and reason"
// @Success 200 {object} dto.BalanceResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /drivers/{id}/balance/reset [post]
func (h *balanceHandler) resetBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ResetBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for resetBalance", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := actorID(c)
	if !ok {
		return
	}

	driver, err := h.balanceService.ResetTargetBalance(c.Request.Context(), c.Param("id"), req, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to reset balance")
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{
		DriverID:       driver.DriverID,
		CurrentBalance: driver.CurrentBalance,
	})
}

// applyFare godoc
// @Summary Post a fare against a driver's target
// @Description Appends a COMPLETED fare entry; the driver's target balance is credited by the fare split.
// @Tags balance
// @Accept json
// @Produce json
// @Param id path string true "Driver ID"
// @Param fare body dto.FareRequest true "Fare details"
// @Success 201 {object} dto.BalanceResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /drivers/{id}/fares [post]
func (h *balanceHandler) applyFare(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.FareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := actorID(c)
	if !ok {
		return
	}

	txn, driver, err := h.balanceService.ApplyFareTransaction(c.Request.Context(), c.Param("id"), req, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to apply fare")
		return
	}

	c.JSON(http.StatusCreated, dto.BalanceResponse{
		DriverID:           driver.DriverID,
		CurrentBalance:     driver.CurrentBalance,
		TargetContribution: txn.TargetContribution,
		TransactionID:      txn.TransactionID,
	})
}

// recordMiss godoc
// @Summary Record a missed daily target
// @Description Increments the consecutive miss streak, capped at the maximum.
// @Tags balance
// @Produce json
// @Param id path string true "Driver ID"
// @Success 200 {object} dto.DriverResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /drivers/{id}/misses [post]
func (h *balanceHandler) recordMiss(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := actorID(c)
	if !ok {
		return
	}

	driver, err := h.balanceService.RecordTargetMiss(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		respondError(c, logger, err, "Failed to record target miss")
		return
	}

	c.JSON(http.StatusOK, dto.ToDriverResponse(driver))
}

// resetMisses godoc
// @Summary Reset a driver's miss streak
// @Description Zeroes the consecutive miss count, audit-logged.
// @Tags balance
// @Produce json
// @Param id path string true "Driver ID"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /drivers/{id}/misses [delete]
func (h *balanceHandler) resetMisses(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := actorID(c)
	if !ok {
		return
	}

	if err := h.balanceService.ResetConsecutiveMisses(c.Request.Context(), c.Param("id"), actor); err != nil {
		respondError(c, logger, err, "Failed to reset misses")
		return
	}

	c.Status(http.StatusNoContent)
}
