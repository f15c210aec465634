package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type EntryDirection string

const (
	EntryDebit  EntryDirection = "DEBIT"
	EntryCredit EntryDirection = "CREDIT"
)

// LedgerEntry is one leg of a balance mutation, appended by the ledger engine
// on every apply. Account balances remain the materialized projection; the
// entry log is the append-only audit trail from which they can be rebuilt.
type LedgerEntry struct {
	ID            uuid.UUID      `json:"id"`
	UserID        uuid.UUID      `json:"userId"`
	AccountID     uuid.UUID      `json:"accountId"`
	TransactionID uuid.UUID      `json:"transactionId"`
	Direction     EntryDirection `json:"direction"`
	Amount        int64          `json:"amount"`
	BalanceAfter  int64          `json:"balanceAfter"`
	CreatedAt     time.Time      `json:"createdAt"`
}

type EntryRepository interface {
	Append(ctx context.Context, entry *LedgerEntry) error
	GetByAccount(ctx context.Context, userID, accountID uuid.UUID, limit int32) ([]*LedgerEntry, error)
}
