package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/kudiapp/kudi-backend/internal/domain"
)

// EntryRepository implements domain.EntryRepository using PostgreSQL.
// Ledger entries are append-only; there is no update or delete path.
type EntryRepository struct {
	db DBTX
}

// Append inserts one ledger entry
func (r *EntryRepository) Append(ctx context.Context, entry *domain.LedgerEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return r.db.QueryRow(ctx, `
		INSERT INTO ledger_entries (id, user_id, account_id, transaction_id, direction, amount, balance_after)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		pgUUID(entry.ID), pgUUID(entry.UserID), pgUUID(entry.AccountID),
		pgUUID(entry.TransactionID), string(entry.Direction), entry.Amount, entry.BalanceAfter,
	).Scan(&entry.CreatedAt)
}

// GetByAccount retrieves the most recent entries for an account
func (r *EntryRepository) GetByAccount(ctx context.Context, userID, accountID uuid.UUID, limit int32) ([]*domain.LedgerEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, account_id, transaction_id, direction, amount, balance_after, created_at
		FROM ledger_entries
		WHERE user_id = $1 AND account_id = $2
		ORDER BY created_at DESC
		LIMIT $3`,
		pgUUID(userID), pgUUID(accountID), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.LedgerEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// scanEntry reads one ledger entry row
func scanEntry(row pgx.Row) (*domain.LedgerEntry, error) {
	var (
		entry                              domain.LedgerEntry
		id, userID, accountID, transaction pgtype.UUID
		direction                          string
	)
	err := row.Scan(
		&id, &userID, &accountID, &transaction, &direction,
		&entry.Amount, &entry.BalanceAfter, &entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	entry.ID = fromPgUUID(id)
	entry.UserID = fromPgUUID(userID)
	entry.AccountID = fromPgUUID(accountID)
	entry.TransactionID = fromPgUUID(transaction)
	entry.Direction = domain.EntryDirection(direction)
	return &entry, nil
}
