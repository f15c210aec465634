package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type AccountType string
type AccountSubtype string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
)

const (
	SubtypeCash           AccountSubtype = "CASH"
	SubtypeBank           AccountSubtype = "BANK"
	SubtypeSavings        AccountSubtype = "SAVINGS"
	SubtypeCreditCard     AccountSubtype = "CREDIT_CARD"
	SubtypeLoan           AccountSubtype = "LOAN"
	SubtypeInvestment     AccountSubtype = "INVESTMENT"
	SubtypeInitialBalance AccountSubtype = "INITIAL_BALANCE"
)

// SubtypeToType maps account subtypes to their accounting types
var SubtypeToType = map[AccountSubtype]AccountType{
	SubtypeCash:           AccountTypeAsset,
	SubtypeBank:           AccountTypeAsset,
	SubtypeSavings:        AccountTypeAsset,
	SubtypeInvestment:     AccountTypeAsset,
	SubtypeCreditCard:     AccountTypeLiability,
	SubtypeLoan:           AccountTypeLiability,
	SubtypeInitialBalance: AccountTypeEquity,
}

// LiquidSubtypes are the asset subtypes counted toward emergency funds
var LiquidSubtypes = map[AccountSubtype]bool{
	SubtypeCash:    true,
	SubtypeBank:    true,
	SubtypeSavings: true,
}

// CreditCardDetails is populated only when Subtype == SubtypeCreditCard
type CreditCardDetails struct {
	CreditLimit     int64      `json:"creditLimit"`
	BillingCycleDay int        `json:"billingCycleDay,omitempty"`
	StatementDate   *time.Time `json:"statementDate,omitempty"`
	DueDate         *time.Time `json:"dueDate,omitempty"`
}

// LoanDetails is populated only when Subtype == SubtypeLoan
type LoanDetails struct {
	OriginalAmount int64      `json:"originalAmount"`
	InterestRate   float64    `json:"interestRate,omitempty"`
	MinimumPayment int64      `json:"minimumPayment"`
	StartDate      *time.Time `json:"startDate,omitempty"`
	EndDate        *time.Time `json:"endDate,omitempty"`
}

// SinkingFund is a named savings target embedded in an account
type SinkingFund struct {
	Name          string     `json:"name"`
	TargetAmount  int64      `json:"targetAmount"`
	CurrentAmount int64      `json:"currentAmount"`
	TargetDate    *time.Time `json:"targetDate,omitempty"`
	CategoryID    *uuid.UUID `json:"categoryId,omitempty"`
}

// Account holds a running balance in integer subunits. Balance is mutated
// exclusively by the ledger engine; every other write path must leave it alone.
type Account struct {
	ID                uuid.UUID          `json:"id"`
	UserID            uuid.UUID          `json:"userId"`
	Name              string             `json:"name"`
	Type              AccountType        `json:"type"`
	Subtype           AccountSubtype     `json:"subtype"`
	Balance           int64              `json:"balance"`
	IncludeInTotal    bool               `json:"includeInTotal"`
	Currency          string             `json:"currency"`
	Icon              string             `json:"icon,omitempty"`
	Color             string             `json:"color,omitempty"`
	CreditCardDetails *CreditCardDetails `json:"creditCardDetails,omitempty"`
	LoanDetails       *LoanDetails       `json:"loanDetails,omitempty"`
	SinkingFunds      []SinkingFund      `json:"sinkingFunds,omitempty"`
	IsActive          bool               `json:"isActive"`
	Order             int32              `json:"order"`
	Notes             *string            `json:"notes,omitempty"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

// NormalizeDetails force-clears detail blocks that do not match the subtype.
// A loan block must never persist on a bank account, even if the caller sent one.
func (a *Account) NormalizeDetails() {
	if a.Subtype != SubtypeCreditCard {
		a.CreditCardDetails = nil
	}
	if a.Subtype != SubtypeLoan {
		a.LoanDetails = nil
	}
}

// NetWorthSummary holds the assets-minus-liabilities rollup in subunits
type NetWorthSummary struct {
	Assets      int64 `json:"assets"`
	Liabilities int64 `json:"liabilities"`
	NetWorth    int64 `json:"netWorth"`
}

type AccountRepository interface {
	Create(ctx context.Context, account *Account) (*Account, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*Account, error)
	// GetByIDForUpdate locks the account row for the duration of the
	// enclosing unit of work. Only meaningful inside TxManager.WithinTx.
	GetByIDForUpdate(ctx context.Context, userID, id uuid.UUID) (*Account, error)
	GetAllByUser(ctx context.Context, userID uuid.UUID, includeInactive bool) ([]*Account, error)
	Update(ctx context.Context, account *Account) (*Account, error)
	// UpdateBalance is the ledger engine's write path; nothing else calls it.
	UpdateBalance(ctx context.Context, userID, id uuid.UUID, balance int64) error
	SoftDelete(ctx context.Context, userID, id uuid.UUID) error
}
