package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type BudgetPeriod string

const (
	BudgetPeriodWeekly  BudgetPeriod = "WEEKLY"
	BudgetPeriodMonthly BudgetPeriod = "MONTHLY"
)

// CarryOver carries the unspent remainder of the previous period forward
type CarryOver struct {
	Enabled bool  `json:"enabled"`
	Amount  int64 `json:"amount"`
}

// Budget is unique per (user, category, periodKey). Spent is a cache derived
// from EXPENSE transactions in the period window; it can be recomputed at any
// time without side effects and is never authoritative.
type Budget struct {
	ID         uuid.UUID    `json:"id"`
	UserID     uuid.UUID    `json:"userId"`
	CategoryID uuid.UUID    `json:"categoryId"`
	Amount     int64        `json:"amount"`
	Period     BudgetPeriod `json:"period"`
	PeriodKey  string       `json:"periodKey"`
	CarryOver  CarryOver    `json:"carryOver"`
	Spent      int64        `json:"spent"`
	IsActive   bool         `json:"isActive"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// BudgetStatus is one line of the per-period budget report
type BudgetStatus struct {
	CategoryID   uuid.UUID `json:"categoryId"`
	CategoryName string    `json:"categoryName"`
	Budgeted     int64     `json:"budgeted"`
	Spent        int64     `json:"spent"`
	Remaining    int64     `json:"remaining"`
	PercentUsed  int       `json:"percentUsed"`
	IsOverBudget bool      `json:"isOverBudget"`
}

type BudgetRepository interface {
	Create(ctx context.Context, budget *Budget) (*Budget, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*Budget, error)
	GetByCategoryAndPeriod(ctx context.Context, userID, categoryID uuid.UUID, periodKey string) (*Budget, error)
	GetAllByPeriod(ctx context.Context, userID uuid.UUID, periodKey string) ([]*Budget, error)
	GetAllByUser(ctx context.Context, userID uuid.UUID) ([]*Budget, error)
	Update(ctx context.Context, budget *Budget) (*Budget, error)
	UpdateSpent(ctx context.Context, userID, id uuid.UUID, spent int64) error
	SoftDelete(ctx context.Context, userID, id uuid.UUID) error
}
