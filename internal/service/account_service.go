package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kudiapp/kudi-backend/internal/domain"
	"github.com/kudiapp/kudi-backend/internal/websocket"
)

// AccountService handles account lifecycle. Balances are never set directly:
// an opening balance is booked as a transfer against the user's equity
// account, so even the first unit of money enters through the ledger.
type AccountService struct {
	store     domain.TxManager
	ledger    *LedgerService
	publisher websocket.EventPublisher
}

// NewAccountService creates a new AccountService
func NewAccountService(store domain.TxManager, ledger *LedgerService, publisher websocket.EventPublisher) *AccountService {
	return &AccountService{store: store, ledger: ledger, publisher: publisher}
}

// CreateAccountInput holds the input for creating an account
type CreateAccountInput struct {
	Name              string
	Subtype           domain.AccountSubtype
	Currency          string
	Icon              string
	Color             string
	IncludeInTotal    *bool
	InitialBalance    int64
	Order             int32
	Notes             *string
	CreditCardDetails *domain.CreditCardDetails
	LoanDetails       *domain.LoanDetails
	SinkingFunds      []domain.SinkingFund
}

// CreateAccount creates an account and, when an initial balance is given,
// books it through the ledger in the same unit of work.
func (s *AccountService) CreateAccount(ctx context.Context, userID uuid.UUID, input CreateAccountInput) (*domain.Account, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxAccountNameLength {
		return nil, domain.ErrNameTooLong
	}
	if input.Notes != nil && len(*input.Notes) > domain.MaxNotesLength {
		return nil, domain.ErrNotesTooLong
	}
	accountType, ok := domain.SubtypeToType[input.Subtype]
	if !ok || input.Subtype == domain.SubtypeInitialBalance {
		return nil, domain.ErrInvalidAccountSubtype
	}
	if input.InitialBalance < 0 {
		return nil, domain.ErrInvalidAmount
	}

	includeInTotal := true
	if input.IncludeInTotal != nil {
		includeInTotal = *input.IncludeInTotal
	}
	currency := input.Currency
	if currency == "" {
		currency = "NGN"
	}

	account := &domain.Account{
		ID:                uuid.New(),
		UserID:            userID,
		Name:              name,
		Type:              accountType,
		Subtype:           input.Subtype,
		IncludeInTotal:    includeInTotal,
		Currency:          currency,
		Icon:              input.Icon,
		Color:             input.Color,
		CreditCardDetails: input.CreditCardDetails,
		LoanDetails:       input.LoanDetails,
		SinkingFunds:      input.SinkingFunds,
		IsActive:          true,
		Order:             input.Order,
		Notes:             input.Notes,
	}
	account.NormalizeDetails()

	err := s.store.WithinTx(ctx, func(r domain.Repositories) error {
		if _, err := r.Accounts.Create(ctx, account); err != nil {
			return err
		}
		if input.InitialBalance == 0 {
			return nil
		}
		return s.bookOpeningBalance(ctx, r, account, input.InitialBalance)
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(userID, websocket.AccountCreated(account))
	return account, nil
}

// bookOpeningBalance records the opening amount as a transfer between the
// user's equity account and the new account. Assets receive the money;
// liabilities receive the amount owed, with equity absorbing the other leg.
func (s *AccountService) bookOpeningBalance(ctx context.Context, r domain.Repositories, account *domain.Account, amount int64) error {
	equity, err := s.ensureEquityAccount(ctx, r, account.UserID)
	if err != nil {
		return err
	}

	description := "Opening balance"
	transaction := &domain.Transaction{
		ID:          uuid.New(),
		UserID:      account.UserID,
		Type:        domain.TransactionTypeTransfer,
		Amount:      amount,
		Date:        time.Now().UTC(),
		Description: &description,
	}
	if account.Type == domain.AccountTypeLiability {
		transaction.FromAccountID = &account.ID
		transaction.ToAccountID = &equity.ID
	} else {
		transaction.FromAccountID = &equity.ID
		transaction.ToAccountID = &account.ID
	}

	if _, err := r.Transactions.Create(ctx, transaction); err != nil {
		return err
	}
	return s.ledger.Apply(ctx, r, transaction)
}

// ensureEquityAccount finds or creates the user's single INITIAL_BALANCE account
func (s *AccountService) ensureEquityAccount(ctx context.Context, r domain.Repositories, userID uuid.UUID) (*domain.Account, error) {
	accounts, err := r.Accounts.GetAllByUser(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		if a.Subtype == domain.SubtypeInitialBalance {
			return a, nil
		}
	}
	equity := &domain.Account{
		ID:             uuid.New(),
		UserID:         userID,
		Name:           "Opening Balances",
		Type:           domain.AccountTypeEquity,
		Subtype:        domain.SubtypeInitialBalance,
		IncludeInTotal: false,
		Currency:       "NGN",
		IsActive:       true,
	}
	return r.Accounts.Create(ctx, equity)
}

// UpdateAccountInput holds the mutable account fields. Balance is present only
// so the service can reject attempts to edit it.
type UpdateAccountInput struct {
	Name              *string
	Subtype           *domain.AccountSubtype
	Balance           *int64
	Currency          *string
	Icon              *string
	Color             *string
	IncludeInTotal    *bool
	Order             *int32
	Notes             *string
	CreditCardDetails *domain.CreditCardDetails
	LoanDetails       *domain.LoanDetails
	SinkingFunds      []domain.SinkingFund
}

// UpdateAccount updates account metadata. The balance cannot be edited; record
// a transaction instead. Subtype changes may not cross accounting types.
func (s *AccountService) UpdateAccount(ctx context.Context, userID, id uuid.UUID, input UpdateAccountInput) (*domain.Account, error) {
	if input.Balance != nil {
		return nil, domain.ErrBalanceNotEditable
	}

	var updated *domain.Account
	err := s.store.WithinTx(ctx, func(r domain.Repositories) error {
		account, err := r.Accounts.GetByID(ctx, userID, id)
		if err != nil {
			return err
		}
		if account.Subtype == domain.SubtypeInitialBalance {
			return domain.ErrInvalidAccountSubtype
		}

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return domain.ErrNameRequired
			}
			if len(name) > domain.MaxAccountNameLength {
				return domain.ErrNameTooLong
			}
			account.Name = name
		}
		if input.Subtype != nil && *input.Subtype != account.Subtype {
			newType, ok := domain.SubtypeToType[*input.Subtype]
			if !ok || *input.Subtype == domain.SubtypeInitialBalance {
				return domain.ErrInvalidAccountSubtype
			}
			if newType != account.Type {
				return domain.ErrSubtypeMismatch
			}
			account.Subtype = *input.Subtype
		}
		if input.Notes != nil {
			if len(*input.Notes) > domain.MaxNotesLength {
				return domain.ErrNotesTooLong
			}
			account.Notes = input.Notes
		}
		if input.Currency != nil {
			account.Currency = *input.Currency
		}
		if input.Icon != nil {
			account.Icon = *input.Icon
		}
		if input.Color != nil {
			account.Color = *input.Color
		}
		if input.IncludeInTotal != nil {
			account.IncludeInTotal = *input.IncludeInTotal
		}
		if input.Order != nil {
			account.Order = *input.Order
		}
		if input.CreditCardDetails != nil {
			account.CreditCardDetails = input.CreditCardDetails
		}
		if input.LoanDetails != nil {
			account.LoanDetails = input.LoanDetails
		}
		if input.SinkingFunds != nil {
			account.SinkingFunds = input.SinkingFunds
		}
		account.NormalizeDetails()

		updated, err = r.Accounts.Update(ctx, account)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(userID, websocket.AccountUpdated(updated))
	return updated, nil
}

// DeleteAccount soft-deletes an account. The balance must be zero first so no
// money ever disappears from the books.
func (s *AccountService) DeleteAccount(ctx context.Context, userID, id uuid.UUID) error {
	err := s.store.WithinTx(ctx, func(r domain.Repositories) error {
		account, err := r.Accounts.GetByIDForUpdate(ctx, userID, id)
		if err != nil {
			return err
		}
		if account.Subtype == domain.SubtypeInitialBalance {
			return domain.ErrInvalidAccountSubtype
		}
		if account.Balance != 0 {
			return domain.ErrBalanceNotZero
		}
		return r.Accounts.SoftDelete(ctx, userID, id)
	})
	if err != nil {
		return err
	}

	s.publisher.Publish(userID, websocket.AccountDeleted(map[string]string{"id": id.String()}))
	return nil
}

// GetAccount retrieves a single account
func (s *AccountService) GetAccount(ctx context.Context, userID, id uuid.UUID) (*domain.Account, error) {
	return s.store.Repos().Accounts.GetByID(ctx, userID, id)
}

// GetAccounts lists the user's accounts, hiding the equity bookkeeping account
func (s *AccountService) GetAccounts(ctx context.Context, userID uuid.UUID, includeInactive bool) ([]*domain.Account, error) {
	accounts, err := s.store.Repos().Accounts.GetAllByUser(ctx, userID, includeInactive)
	if err != nil {
		return nil, err
	}
	visible := accounts[:0]
	for _, a := range accounts {
		if a.Subtype != domain.SubtypeInitialBalance {
			visible = append(visible, a)
		}
	}
	return visible, nil
}

// GetAccountEntries returns the most recent ledger entries for an account
func (s *AccountService) GetAccountEntries(ctx context.Context, userID, accountID uuid.UUID, limit int32) ([]*domain.LedgerEntry, error) {
	repos := s.store.Repos()
	if _, err := repos.Accounts.GetByID(ctx, userID, accountID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return repos.Entries.GetByAccount(ctx, userID, accountID, limit)
}
