package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "INCOME"
	CategoryTypeExpense CategoryType = "EXPENSE"
)

type Category struct {
	ID        uuid.UUID    `json:"id"`
	UserID    uuid.UUID    `json:"userId"`
	Name      string       `json:"name"`
	Type      CategoryType `json:"type"`
	ParentID  *uuid.UUID   `json:"parentId,omitempty"`
	Icon      string       `json:"icon,omitempty"`
	Color     string       `json:"color,omitempty"`
	IsActive  bool         `json:"isActive"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

type CategoryRepository interface {
	Create(ctx context.Context, category *Category) (*Category, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*Category, error)
	GetAllByUser(ctx context.Context, userID uuid.UUID, includeInactive bool) ([]*Category, error)
	Update(ctx context.Context, category *Category) (*Category, error)
	SoftDelete(ctx context.Context, userID, id uuid.UUID) error
	HasActiveChildren(ctx context.Context, userID, id uuid.UUID) (bool, error)
}
