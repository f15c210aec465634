package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kudiapp/kudi-backend/internal/domain"
	"github.com/kudiapp/kudi-backend/internal/testutil"
	"github.com/kudiapp/kudi-backend/internal/websocket"
)

func newBudgetService(store *testutil.MockStore) *BudgetService {
	return NewBudgetService(store, &websocket.NoOpPublisher{})
}

func seedExpense(store *testutil.MockStore, userID, accountID, categoryID uuid.UUID, amount int64, date time.Time) {
	tx := &domain.Transaction{
		ID:         uuid.New(),
		UserID:     userID,
		Type:       domain.TransactionTypeExpense,
		Amount:     amount,
		Date:       date,
		AccountID:  &accountID,
		CategoryID: &categoryID,
	}
	store.TransactionRepo.Transactions[tx.ID] = tx
}

func TestCreateBudgetValidation(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	store := testutil.NewMockStore()
	svc := newBudgetService(store)

	groceries := seedCategory(store, userID, domain.CategoryTypeExpense)
	salary := seedCategory(store, userID, domain.CategoryTypeIncome)

	tests := []struct {
		name    string
		input   CreateBudgetInput
		wantErr error
	}{
		{
			name:    "zero amount",
			input:   CreateBudgetInput{CategoryID: groceries.ID, Amount: 0, Period: domain.BudgetPeriodMonthly, PeriodKey: "2025-01"},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "bad period",
			input:   CreateBudgetInput{CategoryID: groceries.ID, Amount: 100, Period: "DAILY", PeriodKey: "2025-01"},
			wantErr: domain.ErrInvalidPeriod,
		},
		{
			name:    "malformed key",
			input:   CreateBudgetInput{CategoryID: groceries.ID, Amount: 100, Period: domain.BudgetPeriodMonthly, PeriodKey: "January"},
			wantErr: domain.ErrInvalidPeriodKey,
		},
		{
			name:    "weekly period with monthly key",
			input:   CreateBudgetInput{CategoryID: groceries.ID, Amount: 100, Period: domain.BudgetPeriodWeekly, PeriodKey: "2025-01"},
			wantErr: domain.ErrInvalidPeriodKey,
		},
		{
			name:    "income category",
			input:   CreateBudgetInput{CategoryID: salary.ID, Amount: 100, Period: domain.BudgetPeriodMonthly, PeriodKey: "2025-01"},
			wantErr: domain.ErrCategoryTypeMismatch,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateBudget(ctx, userID, tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateBudgetUniquePerCategoryAndPeriod(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	store := testutil.NewMockStore()
	svc := newBudgetService(store)

	groceries := seedCategory(store, userID, domain.CategoryTypeExpense)

	input := CreateBudgetInput{CategoryID: groceries.ID, Amount: 50000, Period: domain.BudgetPeriodMonthly, PeriodKey: "2025-01"}
	if _, err := svc.CreateBudget(ctx, userID, input); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.CreateBudget(ctx, userID, input); !errors.Is(err, domain.ErrBudgetExists) {
		t.Errorf("error = %v, want ErrBudgetExists", err)
	}

	// a different period is a different budget
	input.PeriodKey = "2025-02"
	if _, err := svc.CreateBudget(ctx, userID, input); err != nil {
		t.Errorf("different period rejected: %v", err)
	}
}

func TestBudgetSpentDerivedFromTransactions(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	store := testutil.NewMockStore()
	svc := newBudgetService(store)

	bank := seedAccount(store, userID, domain.SubtypeBank, 100000)
	groceries := seedCategory(store, userID, domain.CategoryTypeExpense)
	transport := seedCategory(store, userID, domain.CategoryTypeExpense)

	jan := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)
	seedExpense(store, userID, bank.ID, groceries.ID, 1200, jan)
	seedExpense(store, userID, bank.ID, groceries.ID, 800, jan.AddDate(0, 0, 5))
	// different category and different month never count
	seedExpense(store, userID, bank.ID, transport.ID, 500, jan)
	seedExpense(store, userID, bank.ID, groceries.ID, 999, jan.AddDate(0, 1, 0))

	budget, err := svc.CreateBudget(ctx, userID, CreateBudgetInput{
		CategoryID: groceries.ID, Amount: 5000, Period: domain.BudgetPeriodMonthly, PeriodKey: "2025-01",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if budget.Spent != 2000 {
		t.Errorf("spent = %d, want 2000", budget.Spent)
	}
}

func TestGetBudgetsListsAcrossPeriods(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	store := testutil.NewMockStore()
	svc := newBudgetService(store)

	bank := seedAccount(store, userID, domain.SubtypeBank, 100000)
	groceries := seedCategory(store, userID, domain.CategoryTypeExpense)
	transport := seedCategory(store, userID, domain.CategoryTypeExpense)

	jan := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)
	seedExpense(store, userID, bank.ID, groceries.ID, 1500, jan)

	if _, err := svc.CreateBudget(ctx, userID, CreateBudgetInput{
		CategoryID: groceries.ID, Amount: 5000, Period: domain.BudgetPeriodMonthly, PeriodKey: "2025-01",
	}); err != nil {
		t.Fatalf("january budget: %v", err)
	}
	if _, err := svc.CreateBudget(ctx, userID, CreateBudgetInput{
		CategoryID: transport.ID, Amount: 3000, Period: domain.BudgetPeriodMonthly, PeriodKey: "2025-02",
	}); err != nil {
		t.Fatalf("february budget: %v", err)
	}

	budgets, err := svc.GetBudgets(ctx, userID, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(budgets) != 2 {
		t.Fatalf("budgets = %d, want 2", len(budgets))
	}
	// newest period first, spent refreshed on the way out
	if budgets[0].PeriodKey != "2025-02" || budgets[1].PeriodKey != "2025-01" {
		t.Errorf("order = %s, %s, want 2025-02, 2025-01", budgets[0].PeriodKey, budgets[1].PeriodKey)
	}
	if budgets[1].Spent != 1500 {
		t.Errorf("january spent = %d, want 1500", budgets[1].Spent)
	}

	budgets, err = svc.GetBudgets(ctx, userID, "2025-01")
	if err != nil {
		t.Fatalf("filtered list: %v", err)
	}
	if len(budgets) != 1 || budgets[0].PeriodKey != "2025-01" {
		t.Errorf("period filter returned the wrong budgets")
	}

	if _, err := svc.GetBudgets(ctx, userID, "January"); !errors.Is(err, domain.ErrInvalidPeriodKey) {
		t.Errorf("error = %v, want ErrInvalidPeriodKey", err)
	}
}

func TestBudgetStatusReport(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	store := testutil.NewMockStore()
	svc := newBudgetService(store)

	bank := seedAccount(store, userID, domain.SubtypeBank, 100000)
	groceries := seedCategory(store, userID, domain.CategoryTypeExpense)

	jan := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)
	seedExpense(store, userID, bank.ID, groceries.ID, 7500, jan)

	if _, err := svc.CreateBudget(ctx, userID, CreateBudgetInput{
		CategoryID: groceries.ID, Amount: 5000, Period: domain.BudgetPeriodMonthly, PeriodKey: "2025-01",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	statuses, err := svc.GetBudgetStatus(ctx, userID, "2025-01")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if len(statuses) != 1 {
		t.Fatalf("statuses = %d, want 1", len(statuses))
	}
	status := statuses[0]
	if status.Spent != 7500 || status.Budgeted != 5000 {
		t.Errorf("spent/budgeted = %d/%d, want 7500/5000", status.Spent, status.Budgeted)
	}
	if status.Remaining != -2500 {
		t.Errorf("remaining = %d, want -2500", status.Remaining)
	}
	if !status.IsOverBudget {
		t.Error("expected over-budget flag")
	}
	if status.PercentUsed != 150 {
		t.Errorf("percentUsed = %d, want 150", status.PercentUsed)
	}
}

func TestBudgetCarryOver(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	store := testutil.NewMockStore()
	svc := newBudgetService(store)

	bank := seedAccount(store, userID, domain.SubtypeBank, 100000)
	groceries := seedCategory(store, userID, domain.CategoryTypeExpense)

	jan := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)
	seedExpense(store, userID, bank.ID, groceries.ID, 3000, jan)

	if _, err := svc.CreateBudget(ctx, userID, CreateBudgetInput{
		CategoryID: groceries.ID, Amount: 5000, Period: domain.BudgetPeriodMonthly, PeriodKey: "2025-01",
	}); err != nil {
		t.Fatalf("january budget: %v", err)
	}

	february, err := svc.CreateBudget(ctx, userID, CreateBudgetInput{
		CategoryID: groceries.ID, Amount: 5000, Period: domain.BudgetPeriodMonthly, PeriodKey: "2025-02",
		CarryOverEnabled: true,
	})
	if err != nil {
		t.Fatalf("february budget: %v", err)
	}
	if february.CarryOver.Amount != 2000 {
		t.Errorf("carried = %d, want 2000", february.CarryOver.Amount)
	}
}

func TestBudgetCarryOverNeverNegative(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	store := testutil.NewMockStore()
	svc := newBudgetService(store)

	bank := seedAccount(store, userID, domain.SubtypeBank, 100000)
	groceries := seedCategory(store, userID, domain.CategoryTypeExpense)

	jan := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)
	seedExpense(store, userID, bank.ID, groceries.ID, 9000, jan)

	if _, err := svc.CreateBudget(ctx, userID, CreateBudgetInput{
		CategoryID: groceries.ID, Amount: 5000, Period: domain.BudgetPeriodMonthly, PeriodKey: "2025-01",
	}); err != nil {
		t.Fatalf("january budget: %v", err)
	}

	february, err := svc.CreateBudget(ctx, userID, CreateBudgetInput{
		CategoryID: groceries.ID, Amount: 5000, Period: domain.BudgetPeriodMonthly, PeriodKey: "2025-02",
		CarryOverEnabled: true,
	})
	if err != nil {
		t.Fatalf("february budget: %v", err)
	}
	if february.CarryOver.Amount != 0 {
		t.Errorf("overspent january carried %d forward, want 0", february.CarryOver.Amount)
	}
}

func TestRecomputeSpentRefreshesCache(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	store := testutil.NewMockStore()
	svc := newBudgetService(store)

	bank := seedAccount(store, userID, domain.SubtypeBank, 100000)
	groceries := seedCategory(store, userID, domain.CategoryTypeExpense)

	budget, err := svc.CreateBudget(ctx, userID, CreateBudgetInput{
		CategoryID: groceries.ID, Amount: 5000, Period: domain.BudgetPeriodMonthly, PeriodKey: "2025-01",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if budget.Spent != 0 {
		t.Fatalf("spent = %d, want 0", budget.Spent)
	}

	jan := time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC)
	seedExpense(store, userID, bank.ID, groceries.ID, 4321, jan)

	if err := svc.RecomputeSpent(ctx, userID, groceries.ID, "2025-01"); err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if got := store.BudgetRepo.Budgets[budget.ID].Spent; got != 4321 {
		t.Errorf("spent = %d, want 4321", got)
	}

	// recompute for a period with no budget is a no-op, not an error
	if err := svc.RecomputeSpent(ctx, userID, groceries.ID, "2030-12"); err != nil {
		t.Errorf("missing budget recompute: %v", err)
	}
}
