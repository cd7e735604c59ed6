package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voltafleet/driver_ledger_app/internal/core/domain"
	portssvc "github.com/voltafleet/driver_ledger_app/internal/core/ports/services"
	"github.com/voltafleet/driver_ledger_app/internal/dto"
	"github.com/voltafleet/driver_ledger_app/internal/middleware"
)

type reconciliationHandler struct {
	reconciliationService portssvc.ReconciliationSvcFacade
}

// registerReconciliationRoutes registers the balance recomputation routes.
func registerReconciliationRoutes(rg *gin.RouterGroup, reconciliationService portssvc.ReconciliationSvcFacade) {
	h := &reconciliationHandler{reconciliationService: reconciliationService}

	drivers := rg.Group("/drivers")
	{
		drivers.POST("/:id/reconcile", h.reconcile)
	}
}

// reconcile godoc
// @Summary Reconcile a driver's target balance
// @Description Recomputes the balance from the ledger over the period. A discrepancy is reported with 200; autoFix overwrites the stored balance.
// @Tags reconciliation
// @Accept json
// @Produce json
// @Param id path string true "Driver ID"
// @Param period body dto.ReconcileRequest true "Period and autoFix flag"
// @Success 200 {object} dto.ReconciliationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /drivers/{id}/reconcile [post]
func (h *reconciliationHandler) reconcile(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := actorID(c)
	if !ok {
		return
	}

	period := domain.Period{From: req.From, To: req.To}
	result, err := h.reconciliationService.FixDriverBalance(c.Request.Context(), c.Param("id"), period, req.AutoFix, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to reconcile balance")
		return
	}

	c.JSON(http.StatusOK, dto.ToReconciliationResponse(*result))
}
