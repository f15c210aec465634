package domain

import "context"

// Repositories bundles the entity repositories bound to one storage handle,
// either the shared pool or a single transaction.
type Repositories struct {
	Accounts     AccountRepository
	Categories   CategoryRepository
	Transactions TransactionRepository
	Budgets      BudgetRepository
	Progress     ProgressRepository
	Entries      EntryRepository
}

// TxManager provides the atomic unit of work every ledger-touching workflow
// runs inside. WithinTx executes fn against repositories bound to one storage
// transaction: if fn returns an error the transaction is rolled back and no
// write is visible; otherwise everything commits together. Implementations
// must serialize concurrent writers on the account rows they touch and map
// commit contention to ErrConflict.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(r Repositories) error) error
	// Repos returns repositories bound to the shared pool for plain reads.
	Repos() Repositories
}
