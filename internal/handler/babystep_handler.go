package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/kudiapp/kudi-backend/internal/middleware"
	"github.com/kudiapp/kudi-backend/internal/service"
)

// BabyStepHandler handles Baby Steps progress HTTP requests
type BabyStepHandler struct {
	babyStepService *service.BabyStepService
}

// NewBabyStepHandler creates a new BabyStepHandler
func NewBabyStepHandler(babyStepService *service.BabyStepService) *BabyStepHandler {
	return &BabyStepHandler{babyStepService: babyStepService}
}

// SetStepActiveRequest represents the body for toggling a manual step
type SetStepActiveRequest struct {
	Active bool `json:"active"`
}

// SetMonthsOfExpensesRequest represents the body for tuning the step 3 target
type SetMonthsOfExpensesRequest struct {
	Months int `json:"months"`
}

// GetProgress handles GET /api/v1/baby-steps. Progress is recalculated on
// every read, so a user with no record yet gets a fresh one.
func (h *BabyStepHandler) GetProgress(c echo.Context) error {
	userID := middleware.GetUserID(c)

	progress, err := h.babyStepService.GetProgress(c.Request().Context(), userID)
	if err != nil {
		return RespondDomainError(c, err, "Failed to get progress")
	}

	return c.JSON(http.StatusOK, progress)
}

// Recalculate handles POST /api/v1/baby-steps/recalculate
func (h *BabyStepHandler) Recalculate(c echo.Context) error {
	userID := middleware.GetUserID(c)

	progress, err := h.babyStepService.Recalculate(c.Request().Context(), userID)
	if err != nil {
		return RespondDomainError(c, err, "Failed to recalculate progress")
	}

	return c.JSON(http.StatusOK, progress)
}

// SetStepActive handles PUT /api/v1/baby-steps/:step/active for steps 4-7
func (h *BabyStepHandler) SetStepActive(c echo.Context) error {
	userID := middleware.GetUserID(c)

	step, err := strconv.Atoi(c.Param("step"))
	if err != nil {
		return NewValidationError(c, "Invalid step number", nil)
	}

	var req SetStepActiveRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	progress, err := h.babyStepService.SetStepActive(c.Request().Context(), userID, step, req.Active)
	if err != nil {
		return RespondDomainError(c, err, "Failed to update step")
	}

	return c.JSON(http.StatusOK, progress)
}

// SetMonthsOfExpenses handles PUT /api/v1/baby-steps/months-of-expenses
func (h *BabyStepHandler) SetMonthsOfExpenses(c echo.Context) error {
	userID := middleware.GetUserID(c)

	var req SetMonthsOfExpensesRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	progress, err := h.babyStepService.SetMonthsOfExpenses(c.Request().Context(), userID, req.Months)
	if err != nil {
		return RespondDomainError(c, err, "Failed to update months of expenses")
	}

	return c.JSON(http.StatusOK, progress)
}

// GetSmallestDebt handles GET /api/v1/baby-steps/smallest-debt
func (h *BabyStepHandler) GetSmallestDebt(c echo.Context) error {
	userID := middleware.GetUserID(c)

	debt, err := h.babyStepService.GetSmallestDebt(c.Request().Context(), userID)
	if err != nil {
		return RespondDomainError(c, err, "Failed to find smallest debt")
	}

	return c.JSON(http.StatusOK, debt)
}

// GetGazelleIntensity handles GET /api/v1/baby-steps/gazelle-intensity
func (h *BabyStepHandler) GetGazelleIntensity(c echo.Context) error {
	userID := middleware.GetUserID(c)

	intensity, err := h.babyStepService.GetGazelleIntensity(c.Request().Context(), userID)
	if err != nil {
		return RespondDomainError(c, err, "Failed to compute gazelle intensity")
	}

	return c.JSON(http.StatusOK, intensity)
}
