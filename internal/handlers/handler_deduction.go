package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voltafleet/driver_ledger_app/internal/core/domain"
	portssvc "github.com/voltafleet/driver_ledger_app/internal/core/ports/services"
	"github.com/voltafleet/driver_ledger_app/internal/dto"
	"github.com/voltafleet/driver_ledger_app/internal/middleware"
)

type deductionHandler struct {
	deductionService portssvc.DeductionSvcFacade
}

// registerDeductionRoutes registers deposit movement, correction and payment
// settlement routes.
func registerDeductionRoutes(rg *gin.RouterGroup, deductionService portssvc.DeductionSvcFacade) {
	h := &deductionHandler{deductionService: deductionService}

	drivers := rg.Group("/drivers")
	{
		drivers.POST("/:id/deposit/topup", h.depositTopUp)
		drivers.POST("/:id/deductions/damage", h.damageDeduction)
		drivers.POST("/:id/deductions/target-miss", h.targetMissDeduction)
		drivers.POST("/:id/adjustments", h.createAdjustment)
		drivers.POST("/:id/uncaptured-payments", h.uncapturedPayment)
	}

	transactions := rg.Group("/transactions")
	{
		transactions.PUT("/:id/payment-status", h.updatePaymentStatus)
	}
}

func toDepositResponse(driverID string, res *portssvc.DepositResult) dto.DepositResponse {
	return dto.DepositResponse{
		DriverID:          driverID,
		NewDepositBalance: res.Driver.CurrentDepositBalance,
		BelowZero:         res.BelowZero,
		TransactionID:     res.TransactionID,
	}
}

// depositTopUp godoc
// @Summary Top up a driver's security deposit
// @Tags deductions
// @Accept json
// @Produce json
// @Param id path string true "Driver ID"
// @Param topup body dto.DepositTopUpRequest true "Top-up details"
// @Success 201 {object} dto.DepositResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /drivers/{id}/deposit/topup [post]
func (h *deductionHandler) depositTopUp(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.DepositTopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := actorID(c)
	if !ok {
		return
	}

	res, err := h.deductionService.ProcessDepositTopUp(c.Request.Context(), c.Param("id"), req, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to top up deposit")
		return
	}

	c.JSON(http.StatusCreated, toDepositResponse(c.Param("id"), res))
}

// damageDeduction godoc
// @Summary Deduct vehicle damage from the deposit
// @Description The deposit may go negative; the response flags that state.
// @Tags deductions
// @Accept json
// @Produce json
// @Param id path string true "Driver ID"
// @Param deduction body dto.DamageDeductionRequest true "Damage details"
// @Success 201 {object} dto.DepositResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /drivers/{id}/deductions/damage [post]
func (h *deductionHandler) damageDeduction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.DamageDeductionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := actorID(c)
	if !ok {
		return
	}

	res, err := h.deductionService.ProcessDamageDeduction(c.Request.Context(), c.Param("id"), req, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to apply damage deduction")
		return
	}

	c.JSON(http.StatusCreated, toDepositResponse(c.Param("id"), res))
}

// targetMissDeduction godoc
// @Summary Deduct a missed target from the deposit
// @Description Only permitted for drivers who opted in to target deductions.
// @Tags deductions
// @Accept json
// @Produce json
// @Param id path string true "Driver ID"
// @Param deduction body dto.TargetMissDeductionRequest true "Missed amount"
// @Success 201 {object} dto.DepositResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse "Driver has not opted in"
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /drivers/{id}/deductions/target-miss [post]
func (h *deductionHandler) targetMissDeduction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.TargetMissDeductionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := actorID(c)
	if !ok {
		return
	}

	res, err := h.deductionService.ProcessTargetMissDeduction(c.Request.Context(), c.Param("id"), req, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to apply target miss deduction")
		return
	}

	c.JSON(http.StatusCreated, toDepositResponse(c.Param("id"), res))
}

// createAdjustment godoc
// @Summary Post a bookkeeping correction
// @Description Signed amount applied to the target balance; never dispatches a payout.
// @Tags deductions
// @Accept json
// @Produce json
// @Param id path string true "Driver ID"
// @Param adjustment body dto.AdjustmentRequest true "Adjustment details"
// @Success 201 {object} dto.BalanceResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /drivers/{id}/adjustments [post]
func (h *deductionHandler) createAdjustment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.AdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := actorID(c)
	if !ok {
		return
	}

	txn, driver, err := h.deductionService.CreateAdjustmentTransaction(c.Request.Context(), c.Param("id"), req, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to post adjustment")
		return
	}

	c.JSON(http.StatusCreated, dto.BalanceResponse{
		DriverID:           driver.DriverID,
		CurrentBalance:     driver.CurrentBalance,
		TargetContribution: txn.TargetContribution,
		TransactionID:      txn.TransactionID,
	})
}

// uncapturedPayment godoc
// @Summary Resolve an uncaptured customer payment
// @Description send_share pays out the driver's fare share; deposit_share credits the full amount to the target balance.
// @Tags deductions
// @Accept json
// @Produce json
// @Param id path string true "Driver ID"
// @Param payment body dto.UncapturedPaymentRequest true "Payment details and action"
// @Success 201 {object} dto.UncapturedPaymentResponse
// @Failure 400 {object} ErrorResponse "Includes drivers with no assigned vehicle"
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /drivers/{id}/uncaptured-payments [post]
func (h *deductionHandler) uncapturedPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.UncapturedPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := actorID(c)
	if !ok {
		return
	}

	res, err := h.deductionService.ProcessUncapturedPayment(c.Request.Context(), c.Param("id"), req, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to resolve uncaptured payment")
		return
	}

	c.JSON(http.StatusCreated, dto.UncapturedPaymentResponse{
		DriverID:       res.Driver.DriverID,
		TransactionID:  res.TransactionID,
		Amount:         req.Amount,
		ActionType:     req.ActionType,
		CurrentBalance: res.Driver.CurrentBalance,
		Dispatched:     res.Dispatched,
	})
}

// updatePaymentStatus godoc
// @Summary Settle a pending ledger entry
// @Description Moves a PENDING entry to COMPLETED or FAILED; the async settlement path for dispatched payouts.
// @Tags transactions
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID"
// @Param status body dto.PaymentStatusUpdateRequest true "Terminal status"
// @Success 204 "No Content"
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Entry already settled"
// @Security BearerAuth
// @Router /transactions/{id}/payment-status [put]
func (h *deductionHandler) updatePaymentStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.PaymentStatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := actorID(c)
	if !ok {
		return
	}

	err := h.deductionService.UpdatePaymentStatus(c.Request.Context(), c.Param("id"), domain.PaymentStatus(req.Status), actor)
	if err != nil {
		respondError(c, logger, err, "Failed to update payment status")
		return
	}

	c.Status(http.StatusNoContent)
}
