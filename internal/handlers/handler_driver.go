package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/voltafleet/driver_ledger_app/internal/core/ports/services"
	"github.com/voltafleet/driver_ledger_app/internal/dto"
	"github.com/voltafleet/driver_ledger_app/internal/middleware"
	"github.com/voltafleet/driver_ledger_app/internal/utils/messaging"
)

type driverHandler struct {
	driverService  portssvc.DriverSvcFacade
	balanceService portssvc.BalanceSvcFacade
}

// registerDriverRoutes registers routes for driver records and their
// read-only projections.
func registerDriverRoutes(rg *gin.RouterGroup, driverService portssvc.DriverSvcFacade, balanceService portssvc.BalanceSvcFacade) {
	h := &driverHandler{driverService: driverService, balanceService: balanceService}

	drivers := rg.Group("/drivers")
	{
		drivers.POST("", h.createDriver)
		drivers.GET("", h.listDrivers)
		drivers.GET("/:id", h.getDriver)
		drivers.PUT("/:id", h.updateDriver)
		drivers.GET("/:id/summary", h.getDriverSummary)
		drivers.GET("/:id/transactions", h.listTransactions)
		drivers.GET("/:id/audit", h.listAuditTrail)
	}
}

// createDriver godoc
// @Summary Register a new driver
// @Description Registers a new active driver with configured defaults.
// @Tags drivers
// @Accept json
// @Produce json
// @Param driver body dto.CreateDriverRequest true "Driver details"
// @Success 201 {object} dto.DriverResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /drivers [post]
func (h *driverHandler) createDriver(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createDriver", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := actorID(c)
	if !ok {
		return
	}

	driver, err := h.driverService.CreateDriver(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to create driver")
		return
	}

	c.JSON(http.StatusCreated, dto.ToDriverResponse(driver))
}

// getDriver godoc
// @Summary Get a driver
// @Tags drivers
// @Produce json
// @Param id path string true "Driver ID"
// @Success 200 {object} dto.DriverResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /drivers/{id} [get]
func (h *driverHandler) getDriver(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	driver, err := h.driverService.GetDriver(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "Failed to get driver")
		return
	}

	c.JSON(http.StatusOK, dto.ToDriverResponse(driver))
}

// listDrivers godoc
// @Summary List drivers
// @Tags drivers
// @Produce json
// @Param status query string false "Filter by status (ACTIVE/EXITED/ARCHIVED)"
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListDriversResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /drivers [get]
func (h *driverHandler) listDrivers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	params := dto.ListDriversParams{Limit: 20}
	if s := c.Query("status"); s != "" {
		params.Status = &s
	}
	if l := c.Query("limit"); l != "" {
		limit, err := strconv.Atoi(l)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid limit"})
			return
		}
		params.Limit = limit
	}
	if t := c.Query("nextToken"); t != "" {
		params.NextToken = &t
	}

	resp, err := h.driverService.ListDrivers(c.Request.Context(), params)
	if err != nil {
		respondError(c, logger, err, "Failed to list drivers")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// updateDriver godoc
// @Summary Update driver contact/policy fields
// @Description Balance fields are never updated through this endpoint.
// @Tags drivers
// @Accept json
// @Produce json
// @Param id path string true "Driver ID"
// @Param driver body dto.UpdateDriverRequest true "Fields to update"
// @Success 200 {object} dto.DriverResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /drivers/{id} [put]
func (h *driverHandler) updateDriver(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.UpdateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := actorID(c)
	if !ok {
		return
	}

	driver, err := h.driverService.UpdateDriver(c.Request.Context(), c.Param("id"), req, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to update driver")
		return
	}

	c.JSON(http.StatusOK, dto.ToDriverResponse(driver))
}

// getDriverSummary godoc
// @Summary Get the driver dashboard summary
// @Description Computes the target progress projection on demand.
// @Tags drivers
// @Produce json
// @Param id path string true "Driver ID"
// @Param template query string false "SMS template with {placeholder} fields; the rendered message is returned alongside the summary"
// @Success 200 {object} dto.DriverSummaryResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /drivers/{id}/summary [get]
func (h *driverHandler) getDriverSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	summary, err := h.balanceService.GetDriverSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "Failed to get driver summary")
		return
	}

	resp := dto.ToDriverSummaryResponse(*summary)
	if template := c.Query("template"); template != "" {
		msg := messaging.Render(template, messaging.SummaryFields(*summary))
		resp.Message = &msg
	}

	c.JSON(http.StatusOK, resp)
}

// listTransactions godoc
// @Summary List a driver's ledger entries
// @Tags drivers
// @Produce json
// @Param id path string true "Driver ID"
// @Param from query string false "Period start (RFC3339)"
// @Param to query string false "Period end (RFC3339), defaults to now"
// @Param type query []string false "Filter by transaction type"
// @Param paymentStatus query string false "Filter by payment status"
// @Param limit query int false "Page size" default(50)
// @Param nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /drivers/{id}/transactions [get]
func (h *driverHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	params := dto.ListTransactionsParams{Limit: 50}
	if f := c.Query("from"); f != "" {
		from, err := time.Parse(time.RFC3339, f)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid from timestamp"})
			return
		}
		params.From = from
	}
	if t := c.Query("to"); t != "" {
		to, err := time.Parse(time.RFC3339, t)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid to timestamp"})
			return
		}
		params.To = to
	}
	params.Types = c.QueryArray("type")
	if s := c.Query("paymentStatus"); s != "" {
		params.PaymentStatus = &s
	}
	if l := c.Query("limit"); l != "" {
		limit, err := strconv.Atoi(l)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid limit"})
			return
		}
		params.Limit = limit
	}
	if t := c.Query("nextToken"); t != "" {
		params.NextToken = &t
	}

	resp, err := h.driverService.ListTransactions(c.Request.Context(), c.Param("id"), params)
	if err != nil {
		respondError(c, logger, err, "Failed to list transactions")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// listAuditTrail godoc
// @Summary List a driver's audit trail
// @Tags drivers
// @Produce json
// @Param id path string true "Driver ID"
// @Param limit query int false "Maximum entries" default(50)
// @Success 200 {array} domain.AuditEntry
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /drivers/{id}/audit [get]
func (h *driverHandler) listAuditTrail(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	limit := 50
	if l := c.Query("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid limit"})
			return
		}
		limit = parsed
	}

	entries, err := h.driverService.ListAuditTrail(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		respondError(c, logger, err, "Failed to list audit trail")
		return
	}

	c.JSON(http.StatusOK, entries)
}
