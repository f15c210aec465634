package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/kudiapp/kudi-backend/internal/domain"
)

// BudgetRepository implements domain.BudgetRepository using PostgreSQL
type BudgetRepository struct {
	db DBTX
}

const budgetColumns = `id, user_id, category_id, amount, period, period_key,
	carry_over_enabled, carry_over_amount, spent, is_active, created_at, updated_at`

// Create creates a new budget. The partial unique index on
// (user_id, category_id, period_key) backs the one-budget-per-period rule.
func (r *BudgetRepository) Create(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	if budget.ID == uuid.Nil {
		budget.ID = uuid.New()
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO budgets (id, user_id, category_id, amount, period, period_key,
			carry_over_enabled, carry_over_amount, spent, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+budgetColumns,
		pgUUID(budget.ID), pgUUID(budget.UserID), pgUUID(budget.CategoryID),
		budget.Amount, string(budget.Period), budget.PeriodKey,
		budget.CarryOver.Enabled, budget.CarryOver.Amount, budget.Spent, budget.IsActive,
	)
	created, err := scanBudget(row)
	if isUniqueViolation(err) {
		return nil, domain.ErrBudgetExists
	}
	return created, err
}

// GetByID retrieves a budget by ID for a user
func (r *BudgetRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Budget, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+budgetColumns+` FROM budgets WHERE id = $1 AND user_id = $2 AND is_active`,
		pgUUID(id), pgUUID(userID),
	)
	budget, err := scanBudget(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBudgetNotFound
	}
	return budget, err
}

// GetByCategoryAndPeriod retrieves the budget for one category and period key
func (r *BudgetRepository) GetByCategoryAndPeriod(ctx context.Context, userID, categoryID uuid.UUID, periodKey string) (*domain.Budget, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+budgetColumns+` FROM budgets
		WHERE user_id = $1 AND category_id = $2 AND period_key = $3 AND is_active`,
		pgUUID(userID), pgUUID(categoryID), periodKey,
	)
	budget, err := scanBudget(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBudgetNotFound
	}
	return budget, err
}

// GetAllByPeriod retrieves all active budgets for one period key
func (r *BudgetRepository) GetAllByPeriod(ctx context.Context, userID uuid.UUID, periodKey string) ([]*domain.Budget, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+budgetColumns+` FROM budgets
		WHERE user_id = $1 AND period_key = $2 AND is_active
		ORDER BY created_at`,
		pgUUID(userID), periodKey,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var budgets []*domain.Budget
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, budget)
	}
	return budgets, rows.Err()
}

// GetAllByUser retrieves all active budgets for a user across periods
func (r *BudgetRepository) GetAllByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Budget, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+budgetColumns+` FROM budgets
		WHERE user_id = $1 AND is_active
		ORDER BY period_key DESC, created_at`,
		pgUUID(userID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var budgets []*domain.Budget
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, budget)
	}
	return budgets, rows.Err()
}

// Update updates a budget's amount and carryover settings
func (r *BudgetRepository) Update(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE budgets
		SET amount = $3, carry_over_enabled = $4, carry_over_amount = $5, updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND is_active
		RETURNING `+budgetColumns,
		pgUUID(budget.ID), pgUUID(budget.UserID),
		budget.Amount, budget.CarryOver.Enabled, budget.CarryOver.Amount,
	)
	updated, err := scanBudget(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBudgetNotFound
	}
	return updated, err
}

// UpdateSpent refreshes the derived spent cache
func (r *BudgetRepository) UpdateSpent(ctx context.Context, userID, id uuid.UUID, spent int64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE budgets SET spent = $3, updated_at = NOW() WHERE id = $1 AND user_id = $2`,
		pgUUID(id), pgUUID(userID), spent,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBudgetNotFound
	}
	return nil
}

// SoftDelete deactivates a budget
func (r *BudgetRepository) SoftDelete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE budgets SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND user_id = $2`,
		pgUUID(id), pgUUID(userID),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBudgetNotFound
	}
	return nil
}

// scanBudget reads one budget row
func scanBudget(row pgx.Row) (*domain.Budget, error) {
	var (
		budget                 domain.Budget
		id, userID, categoryID pgtype.UUID
		period                 string
	)
	err := row.Scan(
		&id, &userID, &categoryID, &budget.Amount, &period, &budget.PeriodKey,
		&budget.CarryOver.Enabled, &budget.CarryOver.Amount, &budget.Spent,
		&budget.IsActive, &budget.CreatedAt, &budget.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	budget.ID = fromPgUUID(id)
	budget.UserID = fromPgUUID(userID)
	budget.CategoryID = fromPgUUID(categoryID)
	budget.Period = domain.BudgetPeriod(period)
	return &budget, nil
}

// isUniqueViolation matches SQLSTATE 23505
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
