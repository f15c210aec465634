package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kudiapp/kudi-backend/internal/domain"
)

// CalculationService derives aggregates from account and transaction state.
// Everything here is read-only and recomputable at any time.
type CalculationService struct {
	store domain.TxManager
}

// NewCalculationService creates a new CalculationService
func NewCalculationService(store domain.TxManager) *CalculationService {
	return &CalculationService{store: store}
}

// GetNetWorth sums active, included accounts: assets minus liabilities.
// Equity bookkeeping accounts never count.
func (s *CalculationService) GetNetWorth(ctx context.Context, userID uuid.UUID) (*domain.NetWorthSummary, error) {
	accounts, err := s.store.Repos().Accounts.GetAllByUser(ctx, userID, false)
	if err != nil {
		return nil, err
	}

	summary := &domain.NetWorthSummary{}
	for _, account := range accounts {
		if !account.IncludeInTotal {
			continue
		}
		switch account.Type {
		case domain.AccountTypeAsset:
			summary.Assets += account.Balance
		case domain.AccountTypeLiability:
			summary.Liabilities += account.Balance
		}
	}
	summary.NetWorth = summary.Assets - summary.Liabilities
	return summary, nil
}

// CashFlow holds income and expense totals for one window
type CashFlow struct {
	Income  int64 `json:"income"`
	Expense int64 `json:"expense"`
	Net     int64 `json:"net"`
}

// GetMonthlyCashFlow sums income and expenses for one calendar month
func (s *CalculationService) GetMonthlyCashFlow(ctx context.Context, userID uuid.UUID, year int, month time.Month) (*CashFlow, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return s.cashFlow(ctx, userID, start, end)
}

// cashFlow runs the two sums concurrently
func (s *CalculationService) cashFlow(ctx context.Context, userID uuid.UUID, start, end time.Time) (*CashFlow, error) {
	repos := s.store.Repos()
	flow := &CashFlow{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		income, err := repos.Transactions.SumByTypeAndDateRange(gctx, userID, domain.TransactionTypeIncome, start, end)
		if err != nil {
			return err
		}
		flow.Income = income
		return nil
	})
	g.Go(func() error {
		expense, err := repos.Transactions.SumByTypeAndDateRange(gctx, userID, domain.TransactionTypeExpense, start, end)
		if err != nil {
			return err
		}
		flow.Expense = expense
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	flow.Net = flow.Income - flow.Expense
	return flow, nil
}

// GetTrailingAverageExpense averages monthly expenses over the last `months`
// full calendar months, not counting the current one.
func (s *CalculationService) GetTrailingAverageExpense(ctx context.Context, userID uuid.UUID, months int, now time.Time) (int64, error) {
	if months < 1 {
		months = 1
	}
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	start := monthStart.AddDate(0, -months, 0)
	end := monthStart.Add(-time.Nanosecond)

	total, err := s.store.Repos().Transactions.SumByTypeAndDateRange(ctx, userID, domain.TransactionTypeExpense, start, end)
	if err != nil {
		return 0, err
	}
	return total / int64(months), nil
}
