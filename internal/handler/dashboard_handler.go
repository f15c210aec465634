package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kudiapp/kudi-backend/internal/middleware"
	"github.com/kudiapp/kudi-backend/internal/service"
)

// DashboardHandler handles dashboard summary HTTP requests
type DashboardHandler struct {
	calculationService *service.CalculationService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(calculationService *service.CalculationService) *DashboardHandler {
	return &DashboardHandler{calculationService: calculationService}
}

// GetNetWorth handles GET /api/v1/dashboard/net-worth
func (h *DashboardHandler) GetNetWorth(c echo.Context) error {
	userID := middleware.GetUserID(c)

	summary, err := h.calculationService.GetNetWorth(c.Request().Context(), userID)
	if err != nil {
		return RespondDomainError(c, err, "Failed to compute net worth")
	}

	return c.JSON(http.StatusOK, summary)
}

// GetCashFlow handles GET /api/v1/dashboard/cash-flow. Year and month query
// parameters default to the current calendar month.
func (h *DashboardHandler) GetCashFlow(c echo.Context) error {
	userID := middleware.GetUserID(c)

	now := time.Now().UTC()
	year := now.Year()
	month := now.Month()

	if raw := c.QueryParam("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1970 || parsed > 9999 {
			return NewValidationError(c, "Invalid year", nil)
		}
		year = parsed
	}
	if raw := c.QueryParam("month"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 12 {
			return NewValidationError(c, "Invalid month", nil)
		}
		month = time.Month(parsed)
	}

	flow, err := h.calculationService.GetMonthlyCashFlow(c.Request().Context(), userID, year, month)
	if err != nil {
		return RespondDomainError(c, err, "Failed to compute cash flow")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"year":  year,
		"month": int(month),
		"flow":  flow,
	})
}
