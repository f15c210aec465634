package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/kudiapp/kudi-backend/internal/domain"
)

// AccountRepository implements domain.AccountRepository using PostgreSQL
type AccountRepository struct {
	db DBTX
}

const accountColumns = `id, user_id, name, type, subtype, balance, include_in_total, currency,
	icon, color, credit_card_details, loan_details, sinking_funds, is_active, sort_order, notes,
	created_at, updated_at`

// Create creates a new account
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}

	ccDetails, err := marshalNullable(account.CreditCardDetails)
	if err != nil {
		return nil, fmt.Errorf("marshal credit card details: %w", err)
	}
	loanDetails, err := marshalNullable(account.LoanDetails)
	if err != nil {
		return nil, fmt.Errorf("marshal loan details: %w", err)
	}
	sinkingFunds, err := marshalNullable(account.SinkingFunds)
	if err != nil {
		return nil, fmt.Errorf("marshal sinking funds: %w", err)
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO accounts (id, user_id, name, type, subtype, balance, include_in_total,
			currency, icon, color, credit_card_details, loan_details, sinking_funds,
			is_active, sort_order, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING `+accountColumns,
		pgUUID(account.ID), pgUUID(account.UserID), account.Name, string(account.Type),
		string(account.Subtype), account.Balance, account.IncludeInTotal, account.Currency,
		account.Icon, account.Color, ccDetails, loanDetails, sinkingFunds,
		account.IsActive, account.Order, pgText(account.Notes),
	)
	return scanAccount(row)
}

// GetByID retrieves an account by ID for a user
func (r *AccountRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Account, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+accountColumns+` FROM accounts WHERE id = $1 AND user_id = $2`,
		pgUUID(id), pgUUID(userID),
	)
	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	return account, err
}

// GetByIDForUpdate retrieves an account and locks its row until the
// enclosing transaction finishes.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, userID, id uuid.UUID) (*domain.Account, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+accountColumns+` FROM accounts WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		pgUUID(id), pgUUID(userID),
	)
	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	return account, err
}

// GetAllByUser retrieves all accounts for a user ordered by sort order
func (r *AccountRepository) GetAllByUser(ctx context.Context, userID uuid.UUID, includeInactive bool) ([]*domain.Account, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+accountColumns+` FROM accounts
		WHERE user_id = $1 AND (is_active OR $2)
		ORDER BY sort_order, created_at`,
		pgUUID(userID), includeInactive,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// Update updates account metadata. The balance column is deliberately
// excluded; UpdateBalance is the only write path for it.
func (r *AccountRepository) Update(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	ccDetails, err := marshalNullable(account.CreditCardDetails)
	if err != nil {
		return nil, fmt.Errorf("marshal credit card details: %w", err)
	}
	loanDetails, err := marshalNullable(account.LoanDetails)
	if err != nil {
		return nil, fmt.Errorf("marshal loan details: %w", err)
	}
	sinkingFunds, err := marshalNullable(account.SinkingFunds)
	if err != nil {
		return nil, fmt.Errorf("marshal sinking funds: %w", err)
	}

	row := r.db.QueryRow(ctx, `
		UPDATE accounts
		SET name = $3, subtype = $4, include_in_total = $5, currency = $6, icon = $7,
			color = $8, credit_card_details = $9, loan_details = $10, sinking_funds = $11,
			sort_order = $12, notes = $13, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING `+accountColumns,
		pgUUID(account.ID), pgUUID(account.UserID), account.Name, string(account.Subtype),
		account.IncludeInTotal, account.Currency, account.Icon, account.Color,
		ccDetails, loanDetails, sinkingFunds, account.Order, pgText(account.Notes),
	)
	updated, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	return updated, err
}

// UpdateBalance sets the account balance. Only the ledger engine calls this,
// always inside a transaction holding the row lock.
func (r *AccountRepository) UpdateBalance(ctx context.Context, userID, id uuid.UUID, balance int64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE accounts SET balance = $3, updated_at = NOW() WHERE id = $1 AND user_id = $2`,
		pgUUID(id), pgUUID(userID), balance,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// SoftDelete deactivates an account
func (r *AccountRepository) SoftDelete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE accounts SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND user_id = $2`,
		pgUUID(id), pgUUID(userID),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// scanAccount reads one account row
func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		account                             domain.Account
		id, userID                          pgtype.UUID
		accountType, subtype                string
		ccDetails, loanDetails, sinkingJSON []byte
		notes                               pgtype.Text
	)
	err := row.Scan(
		&id, &userID, &account.Name, &accountType, &subtype, &account.Balance,
		&account.IncludeInTotal, &account.Currency, &account.Icon, &account.Color,
		&ccDetails, &loanDetails, &sinkingJSON, &account.IsActive, &account.Order,
		&notes, &account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	account.ID = fromPgUUID(id)
	account.UserID = fromPgUUID(userID)
	account.Type = domain.AccountType(accountType)
	account.Subtype = domain.AccountSubtype(subtype)
	account.Notes = fromPgText(notes)
	if ccDetails != nil {
		if err := json.Unmarshal(ccDetails, &account.CreditCardDetails); err != nil {
			return nil, fmt.Errorf("unmarshal credit card details: %w", err)
		}
	}
	if loanDetails != nil {
		if err := json.Unmarshal(loanDetails, &account.LoanDetails); err != nil {
			return nil, fmt.Errorf("unmarshal loan details: %w", err)
		}
	}
	if sinkingJSON != nil {
		if err := json.Unmarshal(sinkingJSON, &account.SinkingFunds); err != nil {
			return nil, fmt.Errorf("unmarshal sinking funds: %w", err)
		}
	}
	return &account, nil
}

// marshalNullable converts a value to JSON, mapping nil to SQL NULL
func marshalNullable(v any) (any, error) {
	switch value := v.(type) {
	case *domain.CreditCardDetails:
		if value == nil {
			return nil, nil
		}
	case *domain.LoanDetails:
		if value == nil {
			return nil, nil
		}
	case []domain.SinkingFund:
		if value == nil {
			return nil, nil
		}
	}
	return json.Marshal(v)
}
