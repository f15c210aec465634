package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/kudiapp/kudi-backend/internal/domain"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation        = "https://kudiapp.com/errors/validation"
	ErrorTypeNotFound          = "https://kudiapp.com/errors/not-found"
	ErrorTypeUnauthorized      = "https://kudiapp.com/errors/unauthorized"
	ErrorTypeConflict          = "https://kudiapp.com/errors/conflict"
	ErrorTypeInsufficientFunds = "https://kudiapp.com/errors/insufficient-funds"
	ErrorTypeInternal          = "https://kudiapp.com/errors/internal"
)

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:     ErrorTypeValidation,
		Title:    "Validation Error",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errors,
	})
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return c.JSON(http.StatusNotFound, ProblemDetails{
		Type:     ErrorTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewUnauthorizedError creates an unauthorized error response
func NewUnauthorizedError(c echo.Context, detail string) error {
	return c.JSON(http.StatusUnauthorized, ProblemDetails{
		Type:     ErrorTypeUnauthorized,
		Title:    "Unauthorized",
		Status:   http.StatusUnauthorized,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewConflictError creates a conflict error response
func NewConflictError(c echo.Context, detail string) error {
	return c.JSON(http.StatusConflict, ProblemDetails{
		Type:     ErrorTypeConflict,
		Title:    "Conflict",
		Status:   http.StatusConflict,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewInsufficientFundsError creates an unprocessable entity response for
// ledger postings that would take an asset account below zero
func NewInsufficientFundsError(c echo.Context, detail string) error {
	return c.JSON(http.StatusUnprocessableEntity, ProblemDetails{
		Type:     ErrorTypeInsufficientFunds,
		Title:    "Insufficient Funds",
		Status:   http.StatusUnprocessableEntity,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return c.JSON(http.StatusInternalServerError, ProblemDetails{
		Type:     ErrorTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// RespondDomainError maps a service layer error onto the matching problem
// response. fallback is the detail used for unexpected errors, which are also
// logged; domain sentinels surface their own message as the detail.
func RespondDomainError(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		return NewInsufficientFundsError(c, err.Error())
	case errors.Is(err, domain.ErrBudgetExists):
		return NewConflictError(c, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return NewConflictError(c, err.Error())
	case domain.IsNotFound(err):
		return NewNotFoundError(c, err.Error())
	case domain.IsValidation(err):
		return NewValidationError(c, err.Error(), nil)
	default:
		log.Error().Err(err).Str("path", c.Request().URL.Path).Msg(fallback)
		return NewInternalError(c, fallback)
	}
}
