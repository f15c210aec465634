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

func newBabyStepService(store *testutil.MockStore) *BabyStepService {
	calc := NewCalculationService(store)
	return NewBabyStepService(store, calc, &websocket.NoOpPublisher{})
}

func TestStep1TracksLiquidAssets(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	store := testutil.NewMockStore()
	svc := newBabyStepService(store)

	seedAccount(store, userID, domain.SubtypeBank, 40000)
	seedAccount(store, userID, domain.SubtypeCash, 30000)
	// investments are not liquid and must not count
	seedAccount(store, userID, domain.SubtypeInvestment, 500000)

	progress, err := svc.Recalculate(ctx, userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if progress.Step1.CurrentAmount != 70000 {
		t.Errorf("step1 current = %d, want 70000", progress.Step1.CurrentAmount)
	}
	if progress.Step1.TargetAmount != domain.DefaultStep1Target {
		t.Errorf("step1 target = %d, want %d", progress.Step1.TargetAmount, domain.DefaultStep1Target)
	}
	if progress.Step1.Completed {
		t.Error("step1 completed below target")
	}
	if progress.CurrentStep != 1 {
		t.Errorf("current step = %d, want 1", progress.CurrentStep)
	}
}

func TestStep1CompletionAndRegression(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	store := testutil.NewMockStore()
	svc := newBabyStepService(store)

	bank := seedAccount(store, userID, domain.SubtypeBank, 150000)

	progress, err := svc.Recalculate(ctx, userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !progress.Step1.Completed || progress.Step1.CompletedAt == nil {
		t.Fatal("expected step1 completed with timestamp")
	}

	// draining the fund reopens the step
	bank.Balance = 50000
	progress, err = svc.Recalculate(ctx, userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if progress.Step1.Completed || progress.Step1.CompletedAt != nil {
		t.Error("step1 should regress when liquid assets fall below target")
	}
}

func TestStep2SnowballOrdering(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	store := testutil.NewMockStore()
	svc := newBabyStepService(store)

	seedAccount(store, userID, domain.SubtypeBank, 200000)
	big := seedAccount(store, userID, domain.SubtypeLoan, 900000)
	small := seedAccount(store, userID, domain.SubtypeCreditCard, 40000)
	medium := seedAccount(store, userID, domain.SubtypeLoan, 250000)

	progress, err := svc.Recalculate(ctx, userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	debts := progress.Step2.Debts
	if len(debts) != 3 {
		t.Fatalf("debts = %d, want 3", len(debts))
	}
	wantOrder := []uuid.UUID{small.ID, medium.ID, big.ID}
	for i, want := range wantOrder {
		if debts[i].AccountID != want {
			t.Errorf("debt %d is wrong account", i)
		}
		if debts[i].Order != i+1 {
			t.Errorf("debt %d order = %d, want %d", i, debts[i].Order, i+1)
		}
	}
	if progress.Step2.TotalDebtRemaining != 1190000 {
		t.Errorf("total remaining = %d, want 1190000", progress.Step2.TotalDebtRemaining)
	}
	if progress.Step2.Completed {
		t.Error("step2 completed with outstanding debt")
	}
}

func TestStep2RemembersOriginalBalances(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	store := testutil.NewMockStore()
	svc := newBabyStepService(store)

	seedAccount(store, userID, domain.SubtypeBank, 200000)
	loan := seedAccount(store, userID, domain.SubtypeLoan, 100000)

	if _, err := svc.Recalculate(ctx, userID); err != nil {
		t.Fatalf("first recalc: %v", err)
	}

	// pay the loan down, then off
	loan.Balance = 60000
	progress, err := svc.Recalculate(ctx, userID)
	if err != nil {
		t.Fatalf("second recalc: %v", err)
	}
	if progress.Step2.Debts[0].OriginalBalance != 100000 {
		t.Errorf("original = %d, want 100000", progress.Step2.Debts[0].OriginalBalance)
	}

	loan.Balance = 0
	progress, err = svc.Recalculate(ctx, userID)
	if err != nil {
		t.Fatalf("third recalc: %v", err)
	}
	if len(progress.Step2.Debts) != 1 || !progress.Step2.Debts[0].IsPaidOff {
		t.Error("paid-off debt should stay visible and flagged")
	}
	if !progress.Step2.Completed {
		t.Error("step2 should complete when all debt is gone")
	}
}

func TestStep2LoanOriginalAmountSeedsOriginalBalance(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	store := testutil.NewMockStore()
	svc := newBabyStepService(store)

	// a loan first seen mid-payoff: 400 of an original 1000 remains
	loan := seedAccount(store, userID, domain.SubtypeLoan, 40000)
	loan.LoanDetails = &domain.LoanDetails{OriginalAmount: 100000, MinimumPayment: 5000}

	progress, err := svc.Recalculate(ctx, userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(progress.Step2.Debts) != 1 {
		t.Fatalf("debts = %d, want 1", len(progress.Step2.Debts))
	}
	if progress.Step2.Debts[0].OriginalBalance != 100000 {
		t.Errorf("original = %d, want 100000", progress.Step2.Debts[0].OriginalBalance)
	}
}

func TestGetSmallestDebt(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	store := testutil.NewMockStore()
	svc := newBabyStepService(store)

	seedAccount(store, userID, domain.SubtypeLoan, 900000)
	small := seedAccount(store, userID, domain.SubtypeCreditCard, 40000)

	debt, err := svc.GetSmallestDebt(ctx, userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if debt.AccountID != small.ID {
		t.Error("smallest debt is the wrong account")
	}

	// paying the card off moves the target to the loan
	small.Balance = 0
	debt, err = svc.GetSmallestDebt(ctx, userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if debt.IsPaidOff {
		t.Error("smallest debt should never be a settled one")
	}
	if debt.CurrentBalance != 900000 {
		t.Errorf("balance = %d, want 900000", debt.CurrentBalance)
	}
}

func TestGetSmallestDebtWhenDebtFree(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	store := testutil.NewMockStore()
	svc := newBabyStepService(store)

	seedAccount(store, userID, domain.SubtypeBank, 200000)

	if _, err := svc.GetSmallestDebt(ctx, userID); !errors.Is(err, domain.ErrNoOutstandingDebts) {
		t.Errorf("error = %v, want ErrNoOutstandingDebts", err)
	}
}

func TestStep3TargetFromTrailingExpenses(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	store := testutil.NewMockStore()
	svc := newBabyStepService(store)

	bank := seedAccount(store, userID, domain.SubtypeBank, 200000)
	groceries := seedCategory(store, userID, domain.CategoryTypeExpense)

	// 60000 of expenses spread over the last six full months
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= 6; i++ {
		seedExpense(store, userID, bank.ID, groceries.ID, 10000, monthStart.AddDate(0, -i, 10))
	}

	progress, err := svc.Recalculate(ctx, userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// average 10000/month times the default six months of expenses
	if progress.Step3.TargetAmount != 60000 {
		t.Errorf("step3 target = %d, want 60000", progress.Step3.TargetAmount)
	}
	if !progress.Step3.Completed {
		t.Errorf("step3 should complete with %d liquid against %d target", progress.Step3.CurrentAmount, progress.Step3.TargetAmount)
	}
}

func TestManualStepsAndCurrentStep(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	store := testutil.NewMockStore()
	svc := newBabyStepService(store)

	// no debt, fat emergency fund, no expense history: steps 1-3 complete
	// except step3, which needs a positive target
	bank := seedAccount(store, userID, domain.SubtypeBank, 10000000)
	groceries := seedCategory(store, userID, domain.CategoryTypeExpense)
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	seedExpense(store, userID, bank.ID, groceries.ID, 6000, monthStart.AddDate(0, -1, 5))

	progress, err := svc.Recalculate(ctx, userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if progress.CurrentStep != 4 {
		t.Fatalf("current step = %d, want 4", progress.CurrentStep)
	}

	progress, err = svc.SetStepActive(ctx, userID, 4, true)
	if err != nil {
		t.Fatalf("set step 4: %v", err)
	}
	if progress.CurrentStep != 5 {
		t.Errorf("current step = %d, want 5", progress.CurrentStep)
	}

	if _, err := svc.SetStepActive(ctx, userID, 2, true); !errors.Is(err, domain.ErrInvalidBabyStep) {
		t.Errorf("derived step toggle: error = %v, want ErrInvalidBabyStep", err)
	}
	if _, err := svc.SetStepActive(ctx, userID, 8, true); !errors.Is(err, domain.ErrInvalidBabyStep) {
		t.Errorf("out-of-range step: error = %v, want ErrInvalidBabyStep", err)
	}
}

func TestSetMonthsOfExpensesRange(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	store := testutil.NewMockStore()
	svc := newBabyStepService(store)

	seedAccount(store, userID, domain.SubtypeBank, 1000)

	if _, err := svc.SetMonthsOfExpenses(ctx, userID, 2); !errors.Is(err, domain.ErrInvalidBabyStep) {
		t.Errorf("below range: error = %v, want ErrInvalidBabyStep", err)
	}
	if _, err := svc.SetMonthsOfExpenses(ctx, userID, 13); !errors.Is(err, domain.ErrInvalidBabyStep) {
		t.Errorf("above range: error = %v, want ErrInvalidBabyStep", err)
	}
	progress, err := svc.SetMonthsOfExpenses(ctx, userID, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if progress.Step3.MonthsOfExpenses != 9 {
		t.Errorf("months = %d, want 9", progress.Step3.MonthsOfExpenses)
	}
}

func TestGazelleIntensity(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	store := testutil.NewMockStore()
	svc := newBabyStepService(store)

	bank := seedAccount(store, userID, domain.SubtypeBank, 150000)
	seedAccount(store, userID, domain.SubtypeLoan, 80000)
	salary := seedCategory(store, userID, domain.CategoryTypeIncome)
	groceries := seedCategory(store, userID, domain.CategoryTypeExpense)

	now := time.Now().UTC()
	income := &domain.Transaction{
		ID: uuid.New(), UserID: userID, Type: domain.TransactionTypeIncome,
		Amount: 50000, Date: now, AccountID: &bank.ID, CategoryID: &salary.ID,
	}
	store.TransactionRepo.Transactions[income.ID] = income
	seedExpense(store, userID, bank.ID, groceries.ID, 20000, now)

	gazelle, err := svc.GetGazelleIntensity(ctx, userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gazelle.MonthlyIncome != 50000 || gazelle.MonthlyExpense != 20000 {
		t.Errorf("income/expense = %d/%d, want 50000/20000", gazelle.MonthlyIncome, gazelle.MonthlyExpense)
	}
	if gazelle.Unallocated != 30000 {
		t.Errorf("unallocated = %d, want 30000", gazelle.Unallocated)
	}
	if gazelle.TotalLiquid != 150000 {
		t.Errorf("liquid = %d, want 150000", gazelle.TotalLiquid)
	}
	// step1 is done, debt remains: gazelle mode
	if !gazelle.ShouldThrowAtDebt {
		t.Error("expected ShouldThrowAtDebt with step2 active and surplus cash")
	}
}
