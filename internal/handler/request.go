package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/kudiapp/kudi-backend/internal/money"
)

// parseIDParam reads a UUID path parameter
func parseIDParam(c echo.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// parseAmount converts a user-supplied amount string ("1,500.00", "₦1500")
// into integer subunits
func parseAmount(input string) (int64, error) {
	return money.Parse(input, money.DefaultSubunitToUnit)
}

// parseOptionalUUID parses a nullable UUID string from a request body
func parseOptionalUUID(s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// parseDate accepts RFC 3339 timestamps and bare dates
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
