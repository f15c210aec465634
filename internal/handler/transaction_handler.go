package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/kudiapp/kudi-backend/internal/domain"
	"github.com/kudiapp/kudi-backend/internal/middleware"
	"github.com/kudiapp/kudi-backend/internal/service"
)

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// TransactionRequest is the request body for create and update. Updates are
// full replacements, so the same shape serves both.
type TransactionRequest struct {
	Type          string   `json:"type"`
	Amount        string   `json:"amount"`
	Date          string   `json:"date"`
	AccountID     *string  `json:"accountId,omitempty"`
	CategoryID    *string  `json:"categoryId,omitempty"`
	FromAccountID *string  `json:"fromAccountId,omitempty"`
	ToAccountID   *string  `json:"toAccountId,omitempty"`
	Description   *string  `json:"description,omitempty"`
	Notes         *string  `json:"notes,omitempty"`
	Tags          []string `json:"tags,omitempty"`
}

// TransferRequest is the request body for the transfer convenience endpoint
type TransferRequest struct {
	Amount        string  `json:"amount"`
	Date          string  `json:"date"`
	FromAccountID string  `json:"fromAccountId"`
	ToAccountID   string  `json:"toAccountId"`
	Description   *string `json:"description,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

// toInput converts the request body into a service input, reporting field
// level validation problems
func (r *TransactionRequest) toInput() (service.TransactionInput, []ValidationError) {
	var fieldErrors []ValidationError

	amount, err := parseAmount(r.Amount)
	if err != nil {
		fieldErrors = append(fieldErrors, ValidationError{Field: "amount", Message: "Must be a valid amount"})
	}
	date, err := parseDate(r.Date)
	if err != nil {
		fieldErrors = append(fieldErrors, ValidationError{Field: "date", Message: "Must be an RFC 3339 timestamp or YYYY-MM-DD date"})
	}
	accountID, err := parseOptionalUUID(r.AccountID)
	if err != nil {
		fieldErrors = append(fieldErrors, ValidationError{Field: "accountId", Message: "Must be a valid UUID"})
	}
	categoryID, err := parseOptionalUUID(r.CategoryID)
	if err != nil {
		fieldErrors = append(fieldErrors, ValidationError{Field: "categoryId", Message: "Must be a valid UUID"})
	}
	fromAccountID, err := parseOptionalUUID(r.FromAccountID)
	if err != nil {
		fieldErrors = append(fieldErrors, ValidationError{Field: "fromAccountId", Message: "Must be a valid UUID"})
	}
	toAccountID, err := parseOptionalUUID(r.ToAccountID)
	if err != nil {
		fieldErrors = append(fieldErrors, ValidationError{Field: "toAccountId", Message: "Must be a valid UUID"})
	}
	if fieldErrors != nil {
		return service.TransactionInput{}, fieldErrors
	}

	return service.TransactionInput{
		Type:          domain.TransactionType(r.Type),
		Amount:        amount,
		Date:          date,
		AccountID:     accountID,
		CategoryID:    categoryID,
		FromAccountID: fromAccountID,
		ToAccountID:   toAccountID,
		Description:   r.Description,
		Notes:         r.Notes,
		Tags:          r.Tags,
	}, nil
}

// CreateTransaction handles POST /api/v1/transactions
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)

	var req TransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, fieldErrors := req.toInput()
	if fieldErrors != nil {
		return NewValidationError(c, "Validation failed", fieldErrors)
	}

	transaction, err := h.transactionService.CreateTransaction(c.Request().Context(), userID, input)
	if err != nil {
		return RespondDomainError(c, err, "Failed to create transaction")
	}

	return c.JSON(http.StatusCreated, transaction)
}

// CreateTransfer handles POST /api/v1/transactions/transfers
func (h *TransactionHandler) CreateTransfer(c echo.Context) error {
	userID := middleware.GetUserID(c)

	var req TransferRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	full := TransactionRequest{
		Type:          string(domain.TransactionTypeTransfer),
		Amount:        req.Amount,
		Date:          req.Date,
		FromAccountID: &req.FromAccountID,
		ToAccountID:   &req.ToAccountID,
		Description:   req.Description,
		Notes:         req.Notes,
	}
	input, fieldErrors := full.toInput()
	if fieldErrors != nil {
		return NewValidationError(c, "Validation failed", fieldErrors)
	}

	transaction, err := h.transactionService.CreateTransaction(c.Request().Context(), userID, input)
	if err != nil {
		return RespondDomainError(c, err, "Failed to create transfer")
	}

	return c.JSON(http.StatusCreated, transaction)
}

// GetTransactions handles GET /api/v1/transactions
func (h *TransactionHandler) GetTransactions(c echo.Context) error {
	userID := middleware.GetUserID(c)

	filters := &domain.TransactionFilters{}

	if raw := c.QueryParam("accountId"); raw != "" {
		id, err := parseOptionalUUID(&raw)
		if err != nil {
			return NewValidationError(c, "Invalid accountId filter", nil)
		}
		filters.AccountID = id
	}
	if raw := c.QueryParam("categoryId"); raw != "" {
		id, err := parseOptionalUUID(&raw)
		if err != nil {
			return NewValidationError(c, "Invalid categoryId filter", nil)
		}
		filters.CategoryID = id
	}
	if raw := c.QueryParam("type"); raw != "" {
		txType := domain.TransactionType(raw)
		switch txType {
		case domain.TransactionTypeIncome, domain.TransactionTypeExpense, domain.TransactionTypeTransfer:
			filters.Type = &txType
		default:
			return NewValidationError(c, "Invalid type filter", nil)
		}
	}
	if raw := c.QueryParam("startDate"); raw != "" {
		start, err := parseDate(raw)
		if err != nil {
			return NewValidationError(c, "Invalid startDate filter", nil)
		}
		filters.StartDate = &start
	}
	if raw := c.QueryParam("endDate"); raw != "" {
		end, err := parseDate(raw)
		if err != nil {
			return NewValidationError(c, "Invalid endDate filter", nil)
		}
		filters.EndDate = &end
	}
	if raw := c.QueryParam("page"); raw != "" {
		page, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return NewValidationError(c, "Invalid page", nil)
		}
		filters.Page = int32(page)
	}
	if raw := c.QueryParam("pageSize"); raw != "" {
		pageSize, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return NewValidationError(c, "Invalid pageSize", nil)
		}
		filters.PageSize = int32(pageSize)
	}

	result, err := h.transactionService.ListTransactions(c.Request().Context(), userID, filters)
	if err != nil {
		return RespondDomainError(c, err, "Failed to list transactions")
	}

	return c.JSON(http.StatusOK, result)
}

// GetTransaction handles GET /api/v1/transactions/:id
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	transaction, err := h.transactionService.GetTransaction(c.Request().Context(), userID, id)
	if err != nil {
		return RespondDomainError(c, err, "Failed to get transaction")
	}

	return c.JSON(http.StatusOK, transaction)
}

// UpdateTransaction handles PUT /api/v1/transactions/:id
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	var req TransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, fieldErrors := req.toInput()
	if fieldErrors != nil {
		return NewValidationError(c, "Validation failed", fieldErrors)
	}

	transaction, err := h.transactionService.UpdateTransaction(c.Request().Context(), userID, id, input)
	if err != nil {
		return RespondDomainError(c, err, "Failed to update transaction")
	}

	return c.JSON(http.StatusOK, transaction)
}

// DeleteTransaction handles DELETE /api/v1/transactions/:id
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	if err := h.transactionService.DeleteTransaction(c.Request().Context(), userID, id); err != nil {
		return RespondDomainError(c, err, "Failed to delete transaction")
	}

	return c.NoContent(http.StatusNoContent)
}
