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
	"github.com/kudiapp/kudi-backend/internal/service"
	"github.com/kudiapp/kudi-backend/internal/testutil"
	"github.com/kudiapp/kudi-backend/internal/websocket"
)

func newTransactionHandler(store *testutil.MockStore) *TransactionHandler {
	transactionService := service.NewTransactionService(store, service.NewLedgerService(), &websocket.NoOpPublisher{}, service.NoOpEnqueuer{})
	return NewTransactionHandler(transactionService)
}

func seedHandlerAccount(t *testing.T, store *testutil.MockStore, userID uuid.UUID, name string, balance int64) *domain.Account {
	t.Helper()
	account, err := store.AccountRepo.Create(context.Background(), &domain.Account{
		ID:       uuid.New(),
		UserID:   userID,
		Name:     name,
		Type:     domain.AccountTypeAsset,
		Subtype:  domain.SubtypeBank,
		Balance:  balance,
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("Failed to seed account: %v", err)
	}
	return account
}

func seedHandlerCategory(t *testing.T, store *testutil.MockStore, userID uuid.UUID, catType domain.CategoryType) *domain.Category {
	t.Helper()
	category, err := store.CategoryRepo.Create(context.Background(), &domain.Category{
		ID:       uuid.New(),
		UserID:   userID,
		Name:     "Category",
		Type:     catType,
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("Failed to seed category: %v", err)
	}
	return category
}

func TestCreateTransaction_Expense(t *testing.T) {
	e := echo.New()
	store := testutil.NewMockStore()
	handler := newTransactionHandler(store)
	userID := uuid.New()

	account := seedHandlerAccount(t, store, userID, "Bank", 50000)
	category := seedHandlerCategory(t, store, userID, domain.CategoryTypeExpense)

	reqBody := `{"type": "EXPENSE", "amount": "150.00", "date": "2026-09-01",
		"accountId": "` + account.ID.String() + `", "categoryId": "` + category.ID.String() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, userID)

	if err := handler.CreateTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response domain.Transaction
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Amount != 15000 {
		t.Errorf("Expected amount 15000 subunits, got %d", response.Amount)
	}

	updated, err := store.AccountRepo.GetByID(context.Background(), userID, account.ID)
	if err != nil {
		t.Fatalf("Failed to reload account: %v", err)
	}
	if updated.Balance != 35000 {
		t.Errorf("Expected balance 35000 after expense, got %d", updated.Balance)
	}
}

func TestCreateTransaction_InsufficientFunds(t *testing.T) {
	e := echo.New()
	store := testutil.NewMockStore()
	handler := newTransactionHandler(store)
	userID := uuid.New()

	account := seedHandlerAccount(t, store, userID, "Bank", 1000)
	category := seedHandlerCategory(t, store, userID, domain.CategoryTypeExpense)

	reqBody := `{"type": "EXPENSE", "amount": "500.00", "date": "2026-09-01",
		"accountId": "` + account.ID.String() + `", "categoryId": "` + category.ID.String() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, userID)

	if err := handler.CreateTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected status 422, got %d", rec.Code)
	}

	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal problem details: %v", err)
	}
	if problem.Type != ErrorTypeInsufficientFunds {
		t.Errorf("Expected insufficient-funds problem type, got %s", problem.Type)
	}

	// Nothing was recorded
	if len(store.TransactionRepo.Transactions) != 0 {
		t.Errorf("Expected no transactions after failure, got %d", len(store.TransactionRepo.Transactions))
	}
}

func TestCreateTransaction_FieldErrors(t *testing.T) {
	e := echo.New()
	handler := newTransactionHandler(testutil.NewMockStore())

	reqBody := `{"type": "EXPENSE", "amount": "abc", "date": "not-a-date", "accountId": "nope"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, uuid.New())

	if err := handler.CreateTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}

	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal problem details: %v", err)
	}
	if len(problem.Errors) != 3 {
		t.Errorf("Expected 3 field errors, got %d", len(problem.Errors))
	}
}

func TestCreateTransfer_Success(t *testing.T) {
	e := echo.New()
	store := testutil.NewMockStore()
	handler := newTransactionHandler(store)
	userID := uuid.New()

	from := seedHandlerAccount(t, store, userID, "Bank", 80000)
	to := seedHandlerAccount(t, store, userID, "Savings", 0)

	reqBody := `{"amount": "300.00", "date": "2026-09-01",
		"fromAccountId": "` + from.ID.String() + `", "toAccountId": "` + to.ID.String() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions/transfers", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, userID)

	if err := handler.CreateTransfer(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	fromAfter, _ := store.AccountRepo.GetByID(context.Background(), userID, from.ID)
	toAfter, _ := store.AccountRepo.GetByID(context.Background(), userID, to.ID)
	if fromAfter.Balance != 50000 || toAfter.Balance != 30000 {
		t.Errorf("Expected balances 50000/30000, got %d/%d", fromAfter.Balance, toAfter.Balance)
	}
}
