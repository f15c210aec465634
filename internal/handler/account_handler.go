package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/kudiapp/kudi-backend/internal/domain"
	"github.com/kudiapp/kudi-backend/internal/middleware"
	"github.com/kudiapp/kudi-backend/internal/service"
)

// AccountHandler handles account-related HTTP requests
type AccountHandler struct {
	accountService *service.AccountService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// CreateAccountRequest represents the create account request body.
// Amounts arrive as display strings and are parsed into subunits.
type CreateAccountRequest struct {
	Name              string                    `json:"name"`
	Subtype           string                    `json:"subtype"`
	Currency          string                    `json:"currency,omitempty"`
	Icon              string                    `json:"icon,omitempty"`
	Color             string                    `json:"color,omitempty"`
	IncludeInTotal    *bool                     `json:"includeInTotal,omitempty"`
	InitialBalance    string                    `json:"initialBalance,omitempty"`
	Order             int32                     `json:"order,omitempty"`
	Notes             *string                   `json:"notes,omitempty"`
	CreditCardDetails *domain.CreditCardDetails `json:"creditCardDetails,omitempty"`
	LoanDetails       *domain.LoanDetails       `json:"loanDetails,omitempty"`
	SinkingFunds      []domain.SinkingFund      `json:"sinkingFunds,omitempty"`
}

// UpdateAccountRequest represents the update account request body
type UpdateAccountRequest struct {
	Name              *string                   `json:"name,omitempty"`
	Subtype           *string                   `json:"subtype,omitempty"`
	Balance           *int64                    `json:"balance,omitempty"`
	Currency          *string                   `json:"currency,omitempty"`
	Icon              *string                   `json:"icon,omitempty"`
	Color             *string                   `json:"color,omitempty"`
	IncludeInTotal    *bool                     `json:"includeInTotal,omitempty"`
	Order             *int32                    `json:"order,omitempty"`
	Notes             *string                   `json:"notes,omitempty"`
	CreditCardDetails *domain.CreditCardDetails `json:"creditCardDetails,omitempty"`
	LoanDetails       *domain.LoanDetails       `json:"loanDetails,omitempty"`
	SinkingFunds      []domain.SinkingFund      `json:"sinkingFunds,omitempty"`
}

// CreateAccount handles POST /api/v1/accounts
func (h *AccountHandler) CreateAccount(c echo.Context) error {
	userID := middleware.GetUserID(c)

	var req CreateAccountRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	var initialBalance int64
	if req.InitialBalance != "" {
		var err error
		initialBalance, err = parseAmount(req.InitialBalance)
		if err != nil {
			return NewValidationError(c, "Invalid initial balance", []ValidationError{
				{Field: "initialBalance", Message: "Must be a valid amount"},
			})
		}
	}

	input := service.CreateAccountInput{
		Name:              req.Name,
		Subtype:           domain.AccountSubtype(req.Subtype),
		Currency:          req.Currency,
		Icon:              req.Icon,
		Color:             req.Color,
		IncludeInTotal:    req.IncludeInTotal,
		InitialBalance:    initialBalance,
		Order:             req.Order,
		Notes:             req.Notes,
		CreditCardDetails: req.CreditCardDetails,
		LoanDetails:       req.LoanDetails,
		SinkingFunds:      req.SinkingFunds,
	}

	account, err := h.accountService.CreateAccount(c.Request().Context(), userID, input)
	if err != nil {
		return RespondDomainError(c, err, "Failed to create account")
	}

	return c.JSON(http.StatusCreated, account)
}

// GetAccounts handles GET /api/v1/accounts
func (h *AccountHandler) GetAccounts(c echo.Context) error {
	userID := middleware.GetUserID(c)
	includeInactive := c.QueryParam("includeInactive") == "true"

	accounts, err := h.accountService.GetAccounts(c.Request().Context(), userID, includeInactive)
	if err != nil {
		return RespondDomainError(c, err, "Failed to list accounts")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"data": accounts})
}

// GetAccount handles GET /api/v1/accounts/:id
func (h *AccountHandler) GetAccount(c echo.Context) error {
	userID := middleware.GetUserID(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid account ID", nil)
	}

	account, err := h.accountService.GetAccount(c.Request().Context(), userID, id)
	if err != nil {
		return RespondDomainError(c, err, "Failed to get account")
	}

	return c.JSON(http.StatusOK, account)
}

// UpdateAccount handles PUT /api/v1/accounts/:id
func (h *AccountHandler) UpdateAccount(c echo.Context) error {
	userID := middleware.GetUserID(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid account ID", nil)
	}

	var req UpdateAccountRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input := service.UpdateAccountInput{
		Name:              req.Name,
		Balance:           req.Balance,
		Currency:          req.Currency,
		Icon:              req.Icon,
		Color:             req.Color,
		IncludeInTotal:    req.IncludeInTotal,
		Order:             req.Order,
		Notes:             req.Notes,
		CreditCardDetails: req.CreditCardDetails,
		LoanDetails:       req.LoanDetails,
		SinkingFunds:      req.SinkingFunds,
	}
	if req.Subtype != nil {
		subtype := domain.AccountSubtype(*req.Subtype)
		input.Subtype = &subtype
	}

	account, err := h.accountService.UpdateAccount(c.Request().Context(), userID, id, input)
	if err != nil {
		return RespondDomainError(c, err, "Failed to update account")
	}

	return c.JSON(http.StatusOK, account)
}

// DeleteAccount handles DELETE /api/v1/accounts/:id
func (h *AccountHandler) DeleteAccount(c echo.Context) error {
	userID := middleware.GetUserID(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid account ID", nil)
	}

	if err := h.accountService.DeleteAccount(c.Request().Context(), userID, id); err != nil {
		return RespondDomainError(c, err, "Failed to delete account")
	}

	return c.NoContent(http.StatusNoContent)
}

// GetAccountEntries handles GET /api/v1/accounts/:id/entries
func (h *AccountHandler) GetAccountEntries(c echo.Context) error {
	userID := middleware.GetUserID(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid account ID", nil)
	}

	var limit int32
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || parsed < 0 {
			return NewValidationError(c, "Invalid limit", nil)
		}
		limit = int32(parsed)
	}

	entries, err := h.accountService.GetAccountEntries(c.Request().Context(), userID, id, limit)
	if err != nil {
		return RespondDomainError(c, err, "Failed to list ledger entries")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"data": entries})
}
