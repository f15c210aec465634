package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/kudiapp/kudi-backend/internal/domain"
)

// LedgerService is the only code that mutates account balances. Every balance
// change flows through the sign table below, runs against row-locked accounts
// inside the caller's unit of work, and leaves a ledger entry behind.
//
// Sign table, from the account's own perspective:
//
//	ASSET      debit +amount   credit -amount
//	LIABILITY  debit -amount   credit +amount
//	EQUITY     debit -amount   credit +amount
type LedgerService struct{}

// NewLedgerService creates a new LedgerService
func NewLedgerService() *LedgerService {
	return &LedgerService{}
}

// balanceDelta resolves the signed effect of one entry on an account
func balanceDelta(accountType domain.AccountType, direction domain.EntryDirection, amount int64) int64 {
	debitPositive := accountType == domain.AccountTypeAsset
	if (direction == domain.EntryDebit) == debitPositive {
		return amount
	}
	return -amount
}

// Apply posts the balance effect of a transaction. INCOME debits the target
// account, EXPENSE credits it, TRANSFER credits the source before debiting the
// destination so an underfunded source fails before any write.
func (s *LedgerService) Apply(ctx context.Context, r domain.Repositories, transaction *domain.Transaction) error {
	switch transaction.Type {
	case domain.TransactionTypeIncome:
		return s.post(ctx, r, transaction, *transaction.AccountID, domain.EntryDebit)
	case domain.TransactionTypeExpense:
		return s.post(ctx, r, transaction, *transaction.AccountID, domain.EntryCredit)
	case domain.TransactionTypeTransfer:
		if err := s.post(ctx, r, transaction, *transaction.FromAccountID, domain.EntryCredit); err != nil {
			return err
		}
		return s.post(ctx, r, transaction, *transaction.ToAccountID, domain.EntryDebit)
	default:
		return domain.ErrInvalidTransactionType
	}
}

// Reverse undoes Apply exactly: every leg is posted again with the opposite
// direction. Applying then reversing always restores the starting balances.
func (s *LedgerService) Reverse(ctx context.Context, r domain.Repositories, transaction *domain.Transaction) error {
	switch transaction.Type {
	case domain.TransactionTypeIncome:
		return s.post(ctx, r, transaction, *transaction.AccountID, domain.EntryCredit)
	case domain.TransactionTypeExpense:
		return s.post(ctx, r, transaction, *transaction.AccountID, domain.EntryDebit)
	case domain.TransactionTypeTransfer:
		if err := s.post(ctx, r, transaction, *transaction.ToAccountID, domain.EntryCredit); err != nil {
			return err
		}
		return s.post(ctx, r, transaction, *transaction.FromAccountID, domain.EntryDebit)
	default:
		return domain.ErrInvalidTransactionType
	}
}

// post moves one account balance by one entry and appends the audit record
func (s *LedgerService) post(ctx context.Context, r domain.Repositories, transaction *domain.Transaction, accountID uuid.UUID, direction domain.EntryDirection) error {
	account, err := r.Accounts.GetByIDForUpdate(ctx, transaction.UserID, accountID)
	if err != nil {
		return err
	}

	before := account.Balance
	after := before + balanceDelta(account.Type, direction, transaction.Amount)

	// Assets can never go below zero; liabilities track amounts owed and may.
	if account.Type == domain.AccountTypeAsset && after < 0 {
		return domain.ErrInsufficientFunds
	}

	if err := r.Accounts.UpdateBalance(ctx, transaction.UserID, accountID, after); err != nil {
		return err
	}

	entry := &domain.LedgerEntry{
		UserID:        transaction.UserID,
		AccountID:     accountID,
		TransactionID: transaction.ID,
		Direction:     direction,
		Amount:        transaction.Amount,
		BalanceAfter:  after,
	}
	if err := r.Entries.Append(ctx, entry); err != nil {
		return err
	}

	log.Debug().
		Str("account_id", accountID.String()).
		Str("transaction_id", transaction.ID.String()).
		Str("direction", string(direction)).
		Int64("amount", transaction.Amount).
		Int64("balance_before", before).
		Int64("balance_after", after).
		Msg("Posted ledger entry")

	return nil
}
