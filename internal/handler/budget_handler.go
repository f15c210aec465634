package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/kudiapp/kudi-backend/internal/domain"
	"github.com/kudiapp/kudi-backend/internal/middleware"
	"github.com/kudiapp/kudi-backend/internal/service"
)

// BudgetHandler handles budget-related HTTP requests
type BudgetHandler struct {
	budgetService *service.BudgetService
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService *service.BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// CreateBudgetRequest represents the create budget request body
type CreateBudgetRequest struct {
	CategoryID       string `json:"categoryId"`
	Amount           string `json:"amount"`
	Period           string `json:"period"`
	PeriodKey        string `json:"periodKey"`
	CarryOverEnabled bool   `json:"carryOverEnabled"`
}

// UpdateBudgetRequest represents the update budget request body
type UpdateBudgetRequest struct {
	Amount           *string `json:"amount,omitempty"`
	CarryOverEnabled *bool   `json:"carryOverEnabled,omitempty"`
}

// CreateBudget handles POST /api/v1/budgets
func (h *BudgetHandler) CreateBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)

	var req CreateBudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return NewValidationError(c, "Invalid categoryId", []ValidationError{
			{Field: "categoryId", Message: "Must be a valid UUID"},
		})
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid amount"},
		})
	}

	input := service.CreateBudgetInput{
		CategoryID:       categoryID,
		Amount:           amount,
		Period:           domain.BudgetPeriod(req.Period),
		PeriodKey:        req.PeriodKey,
		CarryOverEnabled: req.CarryOverEnabled,
	}

	budget, err := h.budgetService.CreateBudget(c.Request().Context(), userID, input)
	if err != nil {
		return RespondDomainError(c, err, "Failed to create budget")
	}

	return c.JSON(http.StatusCreated, budget)
}

// GetBudgets handles GET /api/v1/budgets. An optional periodKey query
// parameter narrows the list to one period.
func (h *BudgetHandler) GetBudgets(c echo.Context) error {
	userID := middleware.GetUserID(c)

	budgets, err := h.budgetService.GetBudgets(c.Request().Context(), userID, c.QueryParam("periodKey"))
	if err != nil {
		return RespondDomainError(c, err, "Failed to list budgets")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"data": budgets})
}

// GetBudget handles GET /api/v1/budgets/:id
func (h *BudgetHandler) GetBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	budget, err := h.budgetService.GetBudget(c.Request().Context(), userID, id)
	if err != nil {
		return RespondDomainError(c, err, "Failed to get budget")
	}

	return c.JSON(http.StatusOK, budget)
}

// GetBudgetStatus handles GET /api/v1/budgets/status. The periodKey query
// parameter selects the period, e.g. 2026-09 or 2026-W36.
func (h *BudgetHandler) GetBudgetStatus(c echo.Context) error {
	userID := middleware.GetUserID(c)

	periodKey := c.QueryParam("periodKey")
	if periodKey == "" {
		return NewValidationError(c, "periodKey query parameter is required", nil)
	}

	statuses, err := h.budgetService.GetBudgetStatus(c.Request().Context(), userID, periodKey)
	if err != nil {
		return RespondDomainError(c, err, "Failed to compute budget status")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"periodKey": periodKey,
		"data":      statuses,
	})
}

// UpdateBudget handles PUT /api/v1/budgets/:id
func (h *BudgetHandler) UpdateBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	var req UpdateBudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input := service.UpdateBudgetInput{CarryOverEnabled: req.CarryOverEnabled}
	if req.Amount != nil {
		amount, err := parseAmount(*req.Amount)
		if err != nil {
			return NewValidationError(c, "Invalid amount", []ValidationError{
				{Field: "amount", Message: "Must be a valid amount"},
			})
		}
		input.Amount = &amount
	}

	budget, err := h.budgetService.UpdateBudget(c.Request().Context(), userID, id, input)
	if err != nil {
		return RespondDomainError(c, err, "Failed to update budget")
	}

	return c.JSON(http.StatusOK, budget)
}

// DeleteBudget handles DELETE /api/v1/budgets/:id
func (h *BudgetHandler) DeleteBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	if err := h.budgetService.DeleteBudget(c.Request().Context(), userID, id); err != nil {
		return RespondDomainError(c, err, "Failed to delete budget")
	}

	return c.NoContent(http.StatusNoContent)
}
