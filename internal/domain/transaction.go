package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "INCOME"
	TransactionTypeExpense  TransactionType = "EXPENSE"
	TransactionTypeTransfer TransactionType = "TRANSFER"
)

// Transaction records a single ledger fact. Exactly one of the two reference
// shapes is populated: Account+Category for INCOME/EXPENSE, FromAccount+ToAccount
// for TRANSFER. The record and its balance effect are created and destroyed
// together; they must never diverge.
type Transaction struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"userId"`
	Type          TransactionType `json:"type"`
	Amount        int64           `json:"amount"`
	Date          time.Time       `json:"date"`
	AccountID     *uuid.UUID      `json:"accountId,omitempty"`
	CategoryID    *uuid.UUID      `json:"categoryId,omitempty"`
	FromAccountID *uuid.UUID      `json:"fromAccountId,omitempty"`
	ToAccountID   *uuid.UUID      `json:"toAccountId,omitempty"`
	Description   *string         `json:"description,omitempty"`
	Notes         *string         `json:"notes,omitempty"`
	Tags          []string        `json:"tags,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// ValidateShape checks the reference-shape invariant for the transaction type.
func (t *Transaction) ValidateShape() error {
	if t.Amount <= 0 {
		return ErrInvalidAmount
	}
	switch t.Type {
	case TransactionTypeIncome, TransactionTypeExpense:
		if t.AccountID == nil || t.CategoryID == nil {
			return ErrInvalidTransactionType
		}
		if t.FromAccountID != nil || t.ToAccountID != nil {
			return ErrInvalidTransactionType
		}
	case TransactionTypeTransfer:
		if t.FromAccountID == nil || t.ToAccountID == nil {
			return ErrInvalidTransactionType
		}
		if t.AccountID != nil || t.CategoryID != nil {
			return ErrInvalidTransactionType
		}
		if *t.FromAccountID == *t.ToAccountID {
			return ErrSameAccountTransfer
		}
	default:
		return ErrInvalidTransactionType
	}
	return nil
}

type TransactionFilters struct {
	AccountID  *uuid.UUID
	CategoryID *uuid.UUID
	Type       *TransactionType
	StartDate  *time.Time
	EndDate    *time.Time
	Page       int32
	PageSize   int32
}

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

type PaginatedTransactions struct {
	Data       []*Transaction `json:"data"`
	Page       int32          `json:"page"`
	PageSize   int32          `json:"pageSize"`
	TotalItems int64          `json:"totalItems"`
	TotalPages int32          `json:"totalPages"`
}

type TransactionRepository interface {
	Create(ctx context.Context, transaction *Transaction) (*Transaction, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*Transaction, error)
	GetByUser(ctx context.Context, userID uuid.UUID, filters *TransactionFilters) (*PaginatedTransactions, error)
	Update(ctx context.Context, transaction *Transaction) (*Transaction, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	// SumByTypeAndDateRange totals amounts of the given type inside [start, end].
	SumByTypeAndDateRange(ctx context.Context, userID uuid.UUID, txType TransactionType, start, end time.Time) (int64, error)
	// SumExpensesByCategory totals EXPENSE amounts for one category inside [start, end].
	SumExpensesByCategory(ctx context.Context, userID, categoryID uuid.UUID, start, end time.Time) (int64, error)
}
