package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/kudiapp/kudi-backend/internal/domain"
	"github.com/kudiapp/kudi-backend/internal/middleware"
	"github.com/kudiapp/kudi-backend/internal/service"
	"github.com/kudiapp/kudi-backend/internal/testutil"
	"github.com/kudiapp/kudi-backend/internal/websocket"
)

// setupAuthContext stores a resolved user ID on the request, as the auth
// middleware would
func setupAuthContext(c echo.Context, userID uuid.UUID) {
	ctx := context.WithValue(c.Request().Context(), middleware.UserIDKey, userID)
	c.SetRequest(c.Request().WithContext(ctx))
}

func newAccountHandler(store *testutil.MockStore) *AccountHandler {
	accountService := service.NewAccountService(store, service.NewLedgerService(), &websocket.NoOpPublisher{})
	return NewAccountHandler(accountService)
}

func TestCreateAccount_Success(t *testing.T) {
	e := echo.New()
	store := testutil.NewMockStore()
	handler := newAccountHandler(store)
	userID := uuid.New()

	reqBody := `{"name": "GTBank Current", "subtype": "BANK", "initialBalance": "1,000.50"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, userID)

	if err := handler.CreateAccount(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", rec.Code)
	}

	var response domain.Account
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Name != "GTBank Current" {
		t.Errorf("Expected name 'GTBank Current', got %s", response.Name)
	}
	if response.Type != domain.AccountTypeAsset {
		t.Errorf("Expected type ASSET, got %s", response.Type)
	}
	if response.Balance != 100050 {
		t.Errorf("Expected balance 100050 subunits, got %d", response.Balance)
	}

	// The opening balance is booked through the ledger
	if len(store.EntryRepo.Entries) != 2 {
		t.Errorf("Expected 2 ledger entries for the opening transfer, got %d", len(store.EntryRepo.Entries))
	}
}

func TestCreateAccount_InvalidSubtype(t *testing.T) {
	e := echo.New()
	handler := newAccountHandler(testutil.NewMockStore())

	reqBody := `{"name": "Mystery", "subtype": "PIGGY_BANK"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, uuid.New())

	if err := handler.CreateAccount(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}

	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal problem details: %v", err)
	}
	if problem.Type != ErrorTypeValidation {
		t.Errorf("Expected validation problem type, got %s", problem.Type)
	}
}

func TestCreateAccount_InvalidInitialBalance(t *testing.T) {
	e := echo.New()
	handler := newAccountHandler(testutil.NewMockStore())

	reqBody := `{"name": "Wallet", "subtype": "CASH", "initialBalance": "lots"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, uuid.New())

	if err := handler.CreateAccount(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}
}

func TestUpdateAccount_BalanceRejected(t *testing.T) {
	e := echo.New()
	store := testutil.NewMockStore()
	handler := newAccountHandler(store)
	userID := uuid.New()

	account, err := store.AccountRepo.Create(context.Background(), &domain.Account{
		ID:       uuid.New(),
		UserID:   userID,
		Name:     "Wallet",
		Type:     domain.AccountTypeAsset,
		Subtype:  domain.SubtypeCash,
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("Failed to seed account: %v", err)
	}

	reqBody := `{"balance": 999999}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/accounts/"+account.ID.String(), strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(account.ID.String())
	setupAuthContext(c, userID)

	if err := handler.UpdateAccount(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}
}

func TestGetAccount_NotFound(t *testing.T) {
	e := echo.New()
	handler := newAccountHandler(testutil.NewMockStore())

	id := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/"+id.String(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id.String())
	setupAuthContext(c, uuid.New())

	if err := handler.GetAccount(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", rec.Code)
	}

	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal problem details: %v", err)
	}
	if problem.Type != ErrorTypeNotFound {
		t.Errorf("Expected not-found problem type, got %s", problem.Type)
	}
}
