package domain

import "errors"

// Domain errors
var (
	// Not found
	ErrAccountNotFound     = errors.New("account not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrBudgetNotFound      = errors.New("budget not found")
	ErrProgressNotFound    = errors.New("progress not found")
	ErrNoOutstandingDebts  = errors.New("no outstanding debts")

	// Validation
	ErrNameRequired           = errors.New("name is required")
	ErrNameTooLong            = errors.New("name exceeds maximum length")
	ErrNotesTooLong           = errors.New("notes exceed maximum length")
	ErrInvalidAmount          = errors.New("amount must be a positive integer of subunits")
	ErrInvalidAccountType     = errors.New("invalid account type")
	ErrInvalidAccountSubtype  = errors.New("invalid account subtype")
	ErrSubtypeMismatch        = errors.New("subtype does not belong to account type")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrCategoryTypeMismatch   = errors.New("category type must match transaction type")
	ErrSameAccountTransfer    = errors.New("cannot transfer to the same account")
	ErrBalanceNotEditable     = errors.New("balance cannot be edited directly")
	ErrBalanceNotZero         = errors.New("account balance must be zero before deletion")
	ErrCategoryHasChildren    = errors.New("category has active child categories")
	ErrCategoryCycle          = errors.New("category parent chain contains a cycle")
	ErrInvalidPeriod          = errors.New("invalid budget period")
	ErrInvalidPeriodKey       = errors.New("invalid period key")
	ErrBudgetExists           = errors.New("budget already exists for this category and period")
	ErrInvalidBabyStep        = errors.New("baby step must be between 4 and 7")

	// Ledger
	ErrInsufficientFunds = errors.New("insufficient funds")

	// Storage
	ErrConflict = errors.New("concurrent update conflict, retry the operation")
)

// Validation constants
const (
	MaxAccountNameLength = 100
	MaxNotesLength       = 500
)

// IsNotFound reports whether err is one of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrCategoryNotFound) ||
		errors.Is(err, ErrTransactionNotFound) ||
		errors.Is(err, ErrBudgetNotFound) ||
		errors.Is(err, ErrProgressNotFound) ||
		errors.Is(err, ErrNoOutstandingDebts)
}

// IsValidation reports whether err is a caller-correctable validation error.
func IsValidation(err error) bool {
	for _, sentinel := range []error{
		ErrNameRequired, ErrNameTooLong, ErrNotesTooLong, ErrInvalidAmount,
		ErrInvalidAccountType, ErrInvalidAccountSubtype, ErrSubtypeMismatch,
		ErrInvalidTransactionType, ErrCategoryTypeMismatch, ErrSameAccountTransfer,
		ErrBalanceNotEditable, ErrBalanceNotZero, ErrCategoryHasChildren,
		ErrCategoryCycle, ErrInvalidPeriod, ErrInvalidPeriodKey, ErrBudgetExists,
		ErrInvalidBabyStep,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
