package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/kudiapp/kudi-backend/internal/domain"
	"github.com/kudiapp/kudi-backend/internal/websocket"
)

// RecomputeEnqueuer schedules asynchronous recalculation of derived caches
// after a committed ledger mutation. Implementations must be safe to call
// outside any storage transaction.
type RecomputeEnqueuer interface {
	EnqueueBudgetRecompute(ctx context.Context, userID, categoryID uuid.UUID, date time.Time) error
	EnqueueProgressRecompute(ctx context.Context, userID uuid.UUID) error
}

// NoOpEnqueuer discards recompute requests (for tests or when the broker is disabled)
type NoOpEnqueuer struct{}

func (NoOpEnqueuer) EnqueueBudgetRecompute(context.Context, uuid.UUID, uuid.UUID, time.Time) error {
	return nil
}

func (NoOpEnqueuer) EnqueueProgressRecompute(context.Context, uuid.UUID) error {
	return nil
}

// TransactionService handles transaction and transfer workflows. Every write
// runs the record mutation and its balance effect inside one unit of work;
// events and recompute requests go out only after the commit.
type TransactionService struct {
	store     domain.TxManager
	ledger    *LedgerService
	publisher websocket.EventPublisher
	recompute RecomputeEnqueuer
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(store domain.TxManager, ledger *LedgerService, publisher websocket.EventPublisher, recompute RecomputeEnqueuer) *TransactionService {
	return &TransactionService{
		store:     store,
		ledger:    ledger,
		publisher: publisher,
		recompute: recompute,
	}
}

// TransactionInput holds the caller-supplied fields of a transaction. Updates
// are full replacements, so create and update share the shape.
type TransactionInput struct {
	Type          domain.TransactionType
	Amount        int64
	Date          time.Time
	AccountID     *uuid.UUID
	CategoryID    *uuid.UUID
	FromAccountID *uuid.UUID
	ToAccountID   *uuid.UUID
	Description   *string
	Notes         *string
	Tags          []string
}

// CreateTransaction records a transaction and applies its balance effect atomically
func (s *TransactionService) CreateTransaction(ctx context.Context, userID uuid.UUID, input TransactionInput) (*domain.Transaction, error) {
	transaction := &domain.Transaction{
		ID:            uuid.New(),
		UserID:        userID,
		Type:          input.Type,
		Amount:        input.Amount,
		Date:          input.Date,
		AccountID:     input.AccountID,
		CategoryID:    input.CategoryID,
		FromAccountID: input.FromAccountID,
		ToAccountID:   input.ToAccountID,
		Description:   input.Description,
		Notes:         input.Notes,
		Tags:          input.Tags,
	}
	if transaction.Date.IsZero() {
		transaction.Date = time.Now().UTC()
	}
	if err := transaction.ValidateShape(); err != nil {
		return nil, err
	}

	err := s.store.WithinTx(ctx, func(r domain.Repositories) error {
		if err := s.validateReferences(ctx, r, transaction); err != nil {
			return err
		}
		if _, err := r.Transactions.Create(ctx, transaction); err != nil {
			return err
		}
		return s.ledger.Apply(ctx, r, transaction)
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(userID, websocket.TransactionCreated(transaction))
	s.enqueueRecompute(ctx, transaction, nil)
	return transaction, nil
}

// UpdateTransaction replaces a transaction. The old balance effect is reversed
// and the new one applied in the same unit of work, so a failure anywhere
// leaves both the record and every balance untouched.
func (s *TransactionService) UpdateTransaction(ctx context.Context, userID, id uuid.UUID, input TransactionInput) (*domain.Transaction, error) {
	var updated *domain.Transaction
	var previous domain.Transaction

	err := s.store.WithinTx(ctx, func(r domain.Repositories) error {
		existing, err := r.Transactions.GetByID(ctx, userID, id)
		if err != nil {
			return err
		}
		previous = *existing

		if err := s.ledger.Reverse(ctx, r, existing); err != nil {
			return err
		}

		replacement := &domain.Transaction{
			ID:            existing.ID,
			UserID:        existing.UserID,
			Type:          input.Type,
			Amount:        input.Amount,
			Date:          input.Date,
			AccountID:     input.AccountID,
			CategoryID:    input.CategoryID,
			FromAccountID: input.FromAccountID,
			ToAccountID:   input.ToAccountID,
			Description:   input.Description,
			Notes:         input.Notes,
			Tags:          input.Tags,
			CreatedAt:     existing.CreatedAt,
		}
		if replacement.Date.IsZero() {
			replacement.Date = existing.Date
		}
		if err := replacement.ValidateShape(); err != nil {
			return err
		}
		if err := s.validateReferences(ctx, r, replacement); err != nil {
			return err
		}
		if err := s.ledger.Apply(ctx, r, replacement); err != nil {
			return err
		}
		updated, err = r.Transactions.Update(ctx, replacement)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(userID, websocket.TransactionUpdated(updated))
	s.enqueueRecompute(ctx, updated, &previous)
	return updated, nil
}

// DeleteTransaction removes a transaction and reverses its balance effect atomically
func (s *TransactionService) DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error {
	var deleted domain.Transaction

	err := s.store.WithinTx(ctx, func(r domain.Repositories) error {
		existing, err := r.Transactions.GetByID(ctx, userID, id)
		if err != nil {
			return err
		}
		deleted = *existing

		if err := s.ledger.Reverse(ctx, r, existing); err != nil {
			return err
		}
		return r.Transactions.Delete(ctx, userID, id)
	})
	if err != nil {
		return err
	}

	s.publisher.Publish(userID, websocket.TransactionDeleted(&deleted))
	s.enqueueRecompute(ctx, &deleted, nil)
	return nil
}

// GetTransaction retrieves a single transaction
func (s *TransactionService) GetTransaction(ctx context.Context, userID, id uuid.UUID) (*domain.Transaction, error) {
	return s.store.Repos().Transactions.GetByID(ctx, userID, id)
}

// ListTransactions retrieves transactions with filters and pagination
func (s *TransactionService) ListTransactions(ctx context.Context, userID uuid.UUID, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	if filters == nil {
		filters = &domain.TransactionFilters{}
	}
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = domain.DefaultPageSize
	}
	if filters.PageSize > domain.MaxPageSize {
		filters.PageSize = domain.MaxPageSize
	}
	return s.store.Repos().Transactions.GetByUser(ctx, userID, filters)
}

// validateReferences checks that every account and category the transaction
// points at exists, is active and is usable for its role.
func (s *TransactionService) validateReferences(ctx context.Context, r domain.Repositories, transaction *domain.Transaction) error {
	checkAccount := func(id uuid.UUID) error {
		account, err := r.Accounts.GetByID(ctx, transaction.UserID, id)
		if err != nil {
			return err
		}
		if !account.IsActive {
			return domain.ErrAccountNotFound
		}
		// Equity accounts exist only to book opening balances
		if account.Type == domain.AccountTypeEquity {
			return domain.ErrInvalidAccountType
		}
		return nil
	}

	switch transaction.Type {
	case domain.TransactionTypeIncome, domain.TransactionTypeExpense:
		if err := checkAccount(*transaction.AccountID); err != nil {
			return err
		}
		category, err := r.Categories.GetByID(ctx, transaction.UserID, *transaction.CategoryID)
		if err != nil {
			return err
		}
		if !category.IsActive {
			return domain.ErrCategoryNotFound
		}
		if (transaction.Type == domain.TransactionTypeIncome) != (category.Type == domain.CategoryTypeIncome) {
			return domain.ErrCategoryTypeMismatch
		}
	case domain.TransactionTypeTransfer:
		if err := checkAccount(*transaction.FromAccountID); err != nil {
			return err
		}
		if err := checkAccount(*transaction.ToAccountID); err != nil {
			return err
		}
	}
	return nil
}

// enqueueRecompute schedules derived-cache refreshes for the categories and
// balances a committed mutation touched. Failures are logged, never surfaced:
// the caches also self-heal lazily on read.
func (s *TransactionService) enqueueRecompute(ctx context.Context, transaction *domain.Transaction, previous *domain.Transaction) {
	if err := s.recompute.EnqueueProgressRecompute(ctx, transaction.UserID); err != nil {
		log.Warn().Err(err).Str("user_id", transaction.UserID.String()).Msg("Failed to enqueue progress recompute")
	}
	seen := make(map[uuid.UUID]bool)
	for _, tx := range []*domain.Transaction{transaction, previous} {
		if tx == nil || tx.Type != domain.TransactionTypeExpense || tx.CategoryID == nil {
			continue
		}
		if seen[*tx.CategoryID] {
			continue
		}
		seen[*tx.CategoryID] = true
		if err := s.recompute.EnqueueBudgetRecompute(ctx, tx.UserID, *tx.CategoryID, tx.Date); err != nil {
			log.Warn().Err(err).
				Str("user_id", tx.UserID.String()).
				Str("category_id", tx.CategoryID.String()).
				Msg("Failed to enqueue budget recompute")
		}
	}
}
