package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/kudiapp/kudi-backend/internal/domain"
	"github.com/kudiapp/kudi-backend/internal/util"
	"github.com/kudiapp/kudi-backend/internal/websocket"
)

// BudgetService handles budget business logic. Spent figures are a derived
// cache: they are recomputed from transactions by the worker and refreshed
// lazily whenever a status report is built, so a missed message never leaves
// a budget permanently stale.
type BudgetService struct {
	store     domain.TxManager
	publisher websocket.EventPublisher
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(store domain.TxManager, publisher websocket.EventPublisher) *BudgetService {
	return &BudgetService{store: store, publisher: publisher}
}

// CreateBudgetInput holds the input for creating a budget
type CreateBudgetInput struct {
	CategoryID       uuid.UUID
	Amount           int64
	Period           domain.BudgetPeriod
	PeriodKey        string
	CarryOverEnabled bool
}

// CreateBudget creates a budget for one category and period. With carryover
// enabled the unspent remainder of the previous period is added on top.
func (s *BudgetService) CreateBudget(ctx context.Context, userID uuid.UUID, input CreateBudgetInput) (*domain.Budget, error) {
	if input.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if input.Period != domain.BudgetPeriodWeekly && input.Period != domain.BudgetPeriodMonthly {
		return nil, domain.ErrInvalidPeriod
	}
	weekly, err := util.ParsePeriodKey(input.PeriodKey)
	if err != nil {
		return nil, domain.ErrInvalidPeriodKey
	}
	if weekly != (input.Period == domain.BudgetPeriodWeekly) {
		return nil, domain.ErrInvalidPeriodKey
	}

	repos := s.store.Repos()
	category, err := repos.Categories.GetByID(ctx, userID, input.CategoryID)
	if err != nil {
		return nil, err
	}
	if !category.IsActive {
		return nil, domain.ErrCategoryNotFound
	}
	if category.Type != domain.CategoryTypeExpense {
		return nil, domain.ErrCategoryTypeMismatch
	}
	if _, err := repos.Budgets.GetByCategoryAndPeriod(ctx, userID, input.CategoryID, input.PeriodKey); err == nil {
		return nil, domain.ErrBudgetExists
	}

	budget := &domain.Budget{
		ID:         uuid.New(),
		UserID:     userID,
		CategoryID: input.CategoryID,
		Amount:     input.Amount,
		Period:     input.Period,
		PeriodKey:  input.PeriodKey,
		CarryOver:  domain.CarryOver{Enabled: input.CarryOverEnabled},
		IsActive:   true,
	}
	if input.CarryOverEnabled {
		carried, err := s.previousRemainder(ctx, repos, userID, input.CategoryID, input.PeriodKey)
		if err != nil {
			return nil, err
		}
		budget.CarryOver.Amount = carried
	}

	created, err := repos.Budgets.Create(ctx, budget)
	if err != nil {
		return nil, err
	}
	if err := s.refreshSpent(ctx, repos, created); err != nil {
		return nil, err
	}
	return created, nil
}

// previousRemainder computes what was left of the previous period's budget.
// Overspending never carries forward as a negative amount.
func (s *BudgetService) previousRemainder(ctx context.Context, repos domain.Repositories, userID, categoryID uuid.UUID, periodKey string) (int64, error) {
	prevKey, err := util.PreviousPeriodKey(periodKey)
	if err != nil {
		return 0, err
	}
	previous, err := repos.Budgets.GetByCategoryAndPeriod(ctx, userID, categoryID, prevKey)
	if err != nil {
		if domain.IsNotFound(err) {
			return 0, nil
		}
		return 0, err
	}
	if err := s.refreshSpent(ctx, repos, previous); err != nil {
		return 0, err
	}
	remainder := previous.Amount + previous.CarryOver.Amount - previous.Spent
	if remainder < 0 {
		remainder = 0
	}
	return remainder, nil
}

// UpdateBudgetInput holds the mutable budget fields
type UpdateBudgetInput struct {
	Amount           *int64
	CarryOverEnabled *bool
}

// UpdateBudget updates a budget's amount or carryover setting
func (s *BudgetService) UpdateBudget(ctx context.Context, userID, id uuid.UUID, input UpdateBudgetInput) (*domain.Budget, error) {
	repos := s.store.Repos()
	budget, err := repos.Budgets.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if input.Amount != nil {
		if *input.Amount <= 0 {
			return nil, domain.ErrInvalidAmount
		}
		budget.Amount = *input.Amount
	}
	if input.CarryOverEnabled != nil && *input.CarryOverEnabled != budget.CarryOver.Enabled {
		budget.CarryOver.Enabled = *input.CarryOverEnabled
		if *input.CarryOverEnabled {
			carried, err := s.previousRemainder(ctx, repos, userID, budget.CategoryID, budget.PeriodKey)
			if err != nil {
				return nil, err
			}
			budget.CarryOver.Amount = carried
		} else {
			budget.CarryOver.Amount = 0
		}
	}

	updated, err := repos.Budgets.Update(ctx, budget)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(userID, websocket.BudgetUpdated(updated))
	return updated, nil
}

// DeleteBudget soft-deletes a budget
func (s *BudgetService) DeleteBudget(ctx context.Context, userID, id uuid.UUID) error {
	repos := s.store.Repos()
	if _, err := repos.Budgets.GetByID(ctx, userID, id); err != nil {
		return err
	}
	return repos.Budgets.SoftDelete(ctx, userID, id)
}

// GetBudget retrieves a single budget with a fresh spent figure
func (s *BudgetService) GetBudget(ctx context.Context, userID, id uuid.UUID) (*domain.Budget, error) {
	repos := s.store.Repos()
	budget, err := repos.Budgets.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.refreshSpent(ctx, repos, budget); err != nil {
		return nil, err
	}
	return budget, nil
}

// GetBudgets lists a user's active budgets, all periods, newest period first.
// An optional period key narrows the list to one period. Spent figures are
// refreshed on the way out.
func (s *BudgetService) GetBudgets(ctx context.Context, userID uuid.UUID, periodKey string) ([]*domain.Budget, error) {
	repos := s.store.Repos()
	var (
		budgets []*domain.Budget
		err     error
	)
	if periodKey != "" {
		if _, err := util.ParsePeriodKey(periodKey); err != nil {
			return nil, domain.ErrInvalidPeriodKey
		}
		budgets, err = repos.Budgets.GetAllByPeriod(ctx, userID, periodKey)
	} else {
		budgets, err = repos.Budgets.GetAllByUser(ctx, userID)
	}
	if err != nil {
		return nil, err
	}
	for _, budget := range budgets {
		if err := s.refreshSpent(ctx, repos, budget); err != nil {
			return nil, err
		}
	}
	return budgets, nil
}

// GetBudgetStatus builds the per-category report for one period, refreshing
// every spent figure on the way.
func (s *BudgetService) GetBudgetStatus(ctx context.Context, userID uuid.UUID, periodKey string) ([]*domain.BudgetStatus, error) {
	if _, err := util.ParsePeriodKey(periodKey); err != nil {
		return nil, domain.ErrInvalidPeriodKey
	}
	repos := s.store.Repos()
	budgets, err := repos.Budgets.GetAllByPeriod(ctx, userID, periodKey)
	if err != nil {
		return nil, err
	}

	statuses := make([]*domain.BudgetStatus, 0, len(budgets))
	for _, budget := range budgets {
		if err := s.refreshSpent(ctx, repos, budget); err != nil {
			return nil, err
		}
		category, err := repos.Categories.GetByID(ctx, userID, budget.CategoryID)
		if err != nil {
			return nil, err
		}
		budgeted := budget.Amount + budget.CarryOver.Amount
		status := &domain.BudgetStatus{
			CategoryID:   budget.CategoryID,
			CategoryName: category.Name,
			Budgeted:     budgeted,
			Spent:        budget.Spent,
			Remaining:    budgeted - budget.Spent,
			IsOverBudget: budget.Spent > budgeted,
		}
		if budgeted > 0 {
			status.PercentUsed = int(budget.Spent * 100 / budgeted)
		} else if budget.Spent > 0 {
			status.PercentUsed = 100
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// RecomputeSpent recalculates one budget's spent cache from transactions.
// The worker calls this when a ledger mutation touches the category.
func (s *BudgetService) RecomputeSpent(ctx context.Context, userID, categoryID uuid.UUID, periodKey string) error {
	repos := s.store.Repos()
	budget, err := repos.Budgets.GetByCategoryAndPeriod(ctx, userID, categoryID, periodKey)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil
		}
		return err
	}
	if err := s.refreshSpent(ctx, repos, budget); err != nil {
		return err
	}
	s.publisher.Publish(userID, websocket.BudgetUpdated(budget))
	log.Debug().
		Str("user_id", userID.String()).
		Str("category_id", categoryID.String()).
		Str("period_key", periodKey).
		Int64("spent", budget.Spent).
		Msg("Recomputed budget spent")
	return nil
}

// refreshSpent recomputes the spent cache for one budget in place
func (s *BudgetService) refreshSpent(ctx context.Context, repos domain.Repositories, budget *domain.Budget) error {
	start, end, err := util.PeriodWindow(budget.PeriodKey)
	if err != nil {
		return err
	}
	// The window is half-open; SumExpensesByCategory takes an inclusive end.
	spent, err := repos.Transactions.SumExpensesByCategory(ctx, budget.UserID, budget.CategoryID, start, end.Add(-1))
	if err != nil {
		return err
	}
	if spent != budget.Spent {
		if err := repos.Budgets.UpdateSpent(ctx, budget.UserID, budget.ID, spent); err != nil {
			return err
		}
		budget.Spent = spent
	}
	return nil
}
