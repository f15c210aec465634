package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/kudiapp/kudi-backend/internal/domain"
)

// TransactionRepository implements domain.TransactionRepository using PostgreSQL
type TransactionRepository struct {
	db DBTX
}

const transactionColumns = `id, user_id, type, amount, date, account_id, category_id,
	from_account_id, to_account_id, description, notes, tags, created_at, updated_at`

// Create creates a new transaction record
func (r *TransactionRepository) Create(ctx context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	if transaction.ID == uuid.Nil {
		transaction.ID = uuid.New()
	}
	tags := transaction.Tags
	if tags == nil {
		tags = []string{}
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO transactions (id, user_id, type, amount, date, account_id, category_id,
			from_account_id, to_account_id, description, notes, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+transactionColumns,
		pgUUID(transaction.ID), pgUUID(transaction.UserID), string(transaction.Type),
		transaction.Amount, pgTimestamptz(transaction.Date),
		pgUUIDPtr(transaction.AccountID), pgUUIDPtr(transaction.CategoryID),
		pgUUIDPtr(transaction.FromAccountID), pgUUIDPtr(transaction.ToAccountID),
		pgText(transaction.Description), pgText(transaction.Notes), tags,
	)
	return scanTransaction(row)
}

// GetByID retrieves a transaction by ID for a user
func (r *TransactionRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Transaction, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+transactionColumns+` FROM transactions WHERE id = $1 AND user_id = $2`,
		pgUUID(id), pgUUID(userID),
	)
	transaction, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTransactionNotFound
	}
	return transaction, err
}

// GetByUser retrieves transactions with filters and pagination, newest first
func (r *TransactionRepository) GetByUser(ctx context.Context, userID uuid.UUID, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	where := `WHERE user_id = $1`
	args := []any{pgUUID(userID)}

	appendArg := func(clause string, value any) {
		args = append(args, value)
		where += fmt.Sprintf(clause, len(args))
	}
	if filters.Type != nil {
		appendArg(` AND type = $%d`, string(*filters.Type))
	}
	if filters.CategoryID != nil {
		appendArg(` AND category_id = $%d`, pgUUID(*filters.CategoryID))
	}
	if filters.AccountID != nil {
		appendArg(` AND (account_id = $%[1]d OR from_account_id = $%[1]d OR to_account_id = $%[1]d)`, pgUUID(*filters.AccountID))
	}
	if filters.StartDate != nil {
		appendArg(` AND date >= $%d`, pgTimestamptz(*filters.StartDate))
	}
	if filters.EndDate != nil {
		appendArg(` AND date <= $%d`, pgTimestamptz(*filters.EndDate))
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM transactions `+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	page, pageSize := filters.Page, filters.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = domain.DefaultPageSize
	}
	offset := (page - 1) * pageSize

	args = append(args, pageSize, offset)
	query := fmt.Sprintf(`SELECT %s FROM transactions %s ORDER BY date DESC, created_at DESC LIMIT $%d OFFSET $%d`,
		transactionColumns, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]*domain.Transaction, 0, pageSize)
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, transaction)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &domain.PaginatedTransactions{
		Data:       transactions,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: int32((total + int64(pageSize) - 1) / int64(pageSize)),
	}, nil
}

// Update replaces the mutable fields of a transaction record
func (r *TransactionRepository) Update(ctx context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	tags := transaction.Tags
	if tags == nil {
		tags = []string{}
	}
	row := r.db.QueryRow(ctx, `
		UPDATE transactions
		SET type = $3, amount = $4, date = $5, account_id = $6, category_id = $7,
			from_account_id = $8, to_account_id = $9, description = $10, notes = $11,
			tags = $12, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING `+transactionColumns,
		pgUUID(transaction.ID), pgUUID(transaction.UserID), string(transaction.Type),
		transaction.Amount, pgTimestamptz(transaction.Date),
		pgUUIDPtr(transaction.AccountID), pgUUIDPtr(transaction.CategoryID),
		pgUUIDPtr(transaction.FromAccountID), pgUUIDPtr(transaction.ToAccountID),
		pgText(transaction.Description), pgText(transaction.Notes), tags,
	)
	updated, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTransactionNotFound
	}
	return updated, err
}

// Delete removes a transaction record
func (r *TransactionRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM transactions WHERE id = $1 AND user_id = $2`,
		pgUUID(id), pgUUID(userID),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// SumByTypeAndDateRange totals amounts of the given type inside [start, end]
func (r *TransactionRepository) SumByTypeAndDateRange(ctx context.Context, userID uuid.UUID, txType domain.TransactionType, start, end time.Time) (int64, error) {
	var sum int64
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM transactions
		WHERE user_id = $1 AND type = $2 AND date >= $3 AND date <= $4`,
		pgUUID(userID), string(txType), pgTimestamptz(start), pgTimestamptz(end),
	).Scan(&sum)
	return sum, err
}

// SumExpensesByCategory totals EXPENSE amounts for one category inside [start, end]
func (r *TransactionRepository) SumExpensesByCategory(ctx context.Context, userID, categoryID uuid.UUID, start, end time.Time) (int64, error) {
	var sum int64
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM transactions
		WHERE user_id = $1 AND type = 'EXPENSE' AND category_id = $2 AND date >= $3 AND date <= $4`,
		pgUUID(userID), pgUUID(categoryID), pgTimestamptz(start), pgTimestamptz(end),
	).Scan(&sum)
	return sum, err
}

// scanTransaction reads one transaction row
func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		transaction                                  domain.Transaction
		id, userID                                   pgtype.UUID
		txType                                       string
		accountID, categoryID, fromAccount, toAccount pgtype.UUID
		description, notes                           pgtype.Text
	)
	err := row.Scan(
		&id, &userID, &txType, &transaction.Amount, &transaction.Date,
		&accountID, &categoryID, &fromAccount, &toAccount,
		&description, &notes, &transaction.Tags,
		&transaction.CreatedAt, &transaction.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	transaction.ID = fromPgUUID(id)
	transaction.UserID = fromPgUUID(userID)
	transaction.Type = domain.TransactionType(txType)
	transaction.AccountID = fromPgUUIDPtr(accountID)
	transaction.CategoryID = fromPgUUIDPtr(categoryID)
	transaction.FromAccountID = fromPgUUIDPtr(fromAccount)
	transaction.ToAccountID = fromPgUUIDPtr(toAccount)
	transaction.Description = fromPgText(description)
	transaction.Notes = fromPgText(notes)
	return &transaction, nil
}
