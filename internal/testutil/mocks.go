// Package testutil provides in-memory repository mocks for service tests.
package testutil

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/kudiapp/kudi-backend/internal/domain"
)

// MockAccountRepository is a map-backed implementation of domain.AccountRepository
type MockAccountRepository struct {
	Accounts map[uuid.UUID]*domain.Account
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{Accounts: make(map[uuid.UUID]*domain.Account)}
}

func (m *MockAccountRepository) Create(_ context.Context, account *domain.Account) (*domain.Account, error) {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	m.Accounts[account.ID] = account
	return account, nil
}

func (m *MockAccountRepository) GetByID(_ context.Context, userID, id uuid.UUID) (*domain.Account, error) {
	account, ok := m.Accounts[id]
	if !ok || account.UserID != userID {
		return nil, domain.ErrAccountNotFound
	}
	return account, nil
}

// GetByIDForUpdate behaves like GetByID; the in-memory store has no row locks.
func (m *MockAccountRepository) GetByIDForUpdate(ctx context.Context, userID, id uuid.UUID) (*domain.Account, error) {
	return m.GetByID(ctx, userID, id)
}

func (m *MockAccountRepository) GetAllByUser(_ context.Context, userID uuid.UUID, includeInactive bool) ([]*domain.Account, error) {
	var accounts []*domain.Account
	for _, a := range m.Accounts {
		if a.UserID != userID {
			continue
		}
		if !includeInactive && !a.IsActive {
			continue
		}
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Order < accounts[j].Order })
	return accounts, nil
}

func (m *MockAccountRepository) Update(_ context.Context, account *domain.Account) (*domain.Account, error) {
	existing, ok := m.Accounts[account.ID]
	if !ok || existing.UserID != account.UserID {
		return nil, domain.ErrAccountNotFound
	}
	account.UpdatedAt = time.Now()
	m.Accounts[account.ID] = account
	return account, nil
}

func (m *MockAccountRepository) UpdateBalance(_ context.Context, userID, id uuid.UUID, balance int64) error {
	account, ok := m.Accounts[id]
	if !ok || account.UserID != userID {
		return domain.ErrAccountNotFound
	}
	account.Balance = balance
	account.UpdatedAt = time.Now()
	return nil
}

func (m *MockAccountRepository) SoftDelete(_ context.Context, userID, id uuid.UUID) error {
	account, ok := m.Accounts[id]
	if !ok || account.UserID != userID {
		return domain.ErrAccountNotFound
	}
	account.IsActive = false
	return nil
}

// MockCategoryRepository is a map-backed implementation of domain.CategoryRepository
type MockCategoryRepository struct {
	Categories map[uuid.UUID]*domain.Category
}

func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{Categories: make(map[uuid.UUID]*domain.Category)}
}

func (m *MockCategoryRepository) Create(_ context.Context, category *domain.Category) (*domain.Category, error) {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	category.CreatedAt = time.Now()
	category.UpdatedAt = category.CreatedAt
	m.Categories[category.ID] = category
	return category, nil
}

func (m *MockCategoryRepository) GetByID(_ context.Context, userID, id uuid.UUID) (*domain.Category, error) {
	category, ok := m.Categories[id]
	if !ok || category.UserID != userID {
		return nil, domain.ErrCategoryNotFound
	}
	return category, nil
}

func (m *MockCategoryRepository) GetAllByUser(_ context.Context, userID uuid.UUID, includeInactive bool) ([]*domain.Category, error) {
	var categories []*domain.Category
	for _, c := range m.Categories {
		if c.UserID != userID {
			continue
		}
		if !includeInactive && !c.IsActive {
			continue
		}
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

func (m *MockCategoryRepository) Update(_ context.Context, category *domain.Category) (*domain.Category, error) {
	existing, ok := m.Categories[category.ID]
	if !ok || existing.UserID != category.UserID {
		return nil, domain.ErrCategoryNotFound
	}
	category.UpdatedAt = time.Now()
	m.Categories[category.ID] = category
	return category, nil
}

func (m *MockCategoryRepository) SoftDelete(_ context.Context, userID, id uuid.UUID) error {
	category, ok := m.Categories[id]
	if !ok || category.UserID != userID {
		return domain.ErrCategoryNotFound
	}
	category.IsActive = false
	return nil
}

func (m *MockCategoryRepository) HasActiveChildren(_ context.Context, userID, id uuid.UUID) (bool, error) {
	for _, c := range m.Categories {
		if c.UserID == userID && c.IsActive && c.ParentID != nil && *c.ParentID == id {
			return true, nil
		}
	}
	return false, nil
}

// MockTransactionRepository is a map-backed implementation of domain.TransactionRepository
type MockTransactionRepository struct {
	Transactions map[uuid.UUID]*domain.Transaction
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{Transactions: make(map[uuid.UUID]*domain.Transaction)}
}

func (m *MockTransactionRepository) Create(_ context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	if transaction.ID == uuid.Nil {
		transaction.ID = uuid.New()
	}
	transaction.CreatedAt = time.Now()
	transaction.UpdatedAt = transaction.CreatedAt
	m.Transactions[transaction.ID] = transaction
	return transaction, nil
}

func (m *MockTransactionRepository) GetByID(_ context.Context, userID, id uuid.UUID) (*domain.Transaction, error) {
	transaction, ok := m.Transactions[id]
	if !ok || transaction.UserID != userID {
		return nil, domain.ErrTransactionNotFound
	}
	return transaction, nil
}

func (m *MockTransactionRepository) GetByUser(_ context.Context, userID uuid.UUID, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	var matched []*domain.Transaction
	for _, tx := range m.Transactions {
		if tx.UserID != userID {
			continue
		}
		if filters != nil {
			if filters.Type != nil && tx.Type != *filters.Type {
				continue
			}
			if filters.CategoryID != nil && (tx.CategoryID == nil || *tx.CategoryID != *filters.CategoryID) {
				continue
			}
			if filters.AccountID != nil && !touchesAccount(tx, *filters.AccountID) {
				continue
			}
			if filters.StartDate != nil && tx.Date.Before(*filters.StartDate) {
				continue
			}
			if filters.EndDate != nil && tx.Date.After(*filters.EndDate) {
				continue
			}
		}
		matched = append(matched, tx)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Date.After(matched[j].Date) })

	page, pageSize := int32(1), int32(domain.DefaultPageSize)
	if filters != nil {
		if filters.Page > 0 {
			page = filters.Page
		}
		if filters.PageSize > 0 {
			pageSize = filters.PageSize
		}
	}
	total := int64(len(matched))
	start := int((page - 1) * pageSize)
	if start > len(matched) {
		start = len(matched)
	}
	end := start + int(pageSize)
	if end > len(matched) {
		end = len(matched)
	}
	totalPages := int32((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedTransactions{
		Data:       matched[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}, nil
}

func touchesAccount(tx *domain.Transaction, accountID uuid.UUID) bool {
	if tx.AccountID != nil && *tx.AccountID == accountID {
		return true
	}
	if tx.FromAccountID != nil && *tx.FromAccountID == accountID {
		return true
	}
	if tx.ToAccountID != nil && *tx.ToAccountID == accountID {
		return true
	}
	return false
}

func (m *MockTransactionRepository) Update(_ context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	existing, ok := m.Transactions[transaction.ID]
	if !ok || existing.UserID != transaction.UserID {
		return nil, domain.ErrTransactionNotFound
	}
	transaction.UpdatedAt = time.Now()
	m.Transactions[transaction.ID] = transaction
	return transaction, nil
}

func (m *MockTransactionRepository) Delete(_ context.Context, userID, id uuid.UUID) error {
	transaction, ok := m.Transactions[id]
	if !ok || transaction.UserID != userID {
		return domain.ErrTransactionNotFound
	}
	delete(m.Transactions, id)
	return nil
}

func (m *MockTransactionRepository) SumByTypeAndDateRange(_ context.Context, userID uuid.UUID, txType domain.TransactionType, start, end time.Time) (int64, error) {
	var sum int64
	for _, tx := range m.Transactions {
		if tx.UserID != userID || tx.Type != txType {
			continue
		}
		if tx.Date.Before(start) || tx.Date.After(end) {
			continue
		}
		sum += tx.Amount
	}
	return sum, nil
}

func (m *MockTransactionRepository) SumExpensesByCategory(_ context.Context, userID, categoryID uuid.UUID, start, end time.Time) (int64, error) {
	var sum int64
	for _, tx := range m.Transactions {
		if tx.UserID != userID || tx.Type != domain.TransactionTypeExpense {
			continue
		}
		if tx.CategoryID == nil || *tx.CategoryID != categoryID {
			continue
		}
		if tx.Date.Before(start) || tx.Date.After(end) {
			continue
		}
		sum += tx.Amount
	}
	return sum, nil
}

// MockBudgetRepository is a map-backed implementation of domain.BudgetRepository
type MockBudgetRepository struct {
	Budgets map[uuid.UUID]*domain.Budget
}

func NewMockBudgetRepository() *MockBudgetRepository {
	return &MockBudgetRepository{Budgets: make(map[uuid.UUID]*domain.Budget)}
}

func (m *MockBudgetRepository) Create(_ context.Context, budget *domain.Budget) (*domain.Budget, error) {
	for _, b := range m.Budgets {
		if b.UserID == budget.UserID && b.CategoryID == budget.CategoryID && b.PeriodKey == budget.PeriodKey && b.IsActive {
			return nil, domain.ErrBudgetExists
		}
	}
	if budget.ID == uuid.Nil {
		budget.ID = uuid.New()
	}
	budget.CreatedAt = time.Now()
	budget.UpdatedAt = budget.CreatedAt
	m.Budgets[budget.ID] = budget
	return budget, nil
}

func (m *MockBudgetRepository) GetByID(_ context.Context, userID, id uuid.UUID) (*domain.Budget, error) {
	budget, ok := m.Budgets[id]
	if !ok || budget.UserID != userID {
		return nil, domain.ErrBudgetNotFound
	}
	return budget, nil
}

func (m *MockBudgetRepository) GetByCategoryAndPeriod(_ context.Context, userID, categoryID uuid.UUID, periodKey string) (*domain.Budget, error) {
	for _, b := range m.Budgets {
		if b.UserID == userID && b.CategoryID == categoryID && b.PeriodKey == periodKey && b.IsActive {
			return b, nil
		}
	}
	return nil, domain.ErrBudgetNotFound
}

func (m *MockBudgetRepository) GetAllByPeriod(_ context.Context, userID uuid.UUID, periodKey string) ([]*domain.Budget, error) {
	var budgets []*domain.Budget
	for _, b := range m.Budgets {
		if b.UserID == userID && b.PeriodKey == periodKey && b.IsActive {
			budgets = append(budgets, b)
		}
	}
	sort.Slice(budgets, func(i, j int) bool { return budgets[i].CreatedAt.Before(budgets[j].CreatedAt) })
	return budgets, nil
}

func (m *MockBudgetRepository) GetAllByUser(_ context.Context, userID uuid.UUID) ([]*domain.Budget, error) {
	var budgets []*domain.Budget
	for _, b := range m.Budgets {
		if b.UserID == userID && b.IsActive {
			budgets = append(budgets, b)
		}
	}
	sort.Slice(budgets, func(i, j int) bool {
		if budgets[i].PeriodKey != budgets[j].PeriodKey {
			return budgets[i].PeriodKey > budgets[j].PeriodKey
		}
		return budgets[i].CreatedAt.Before(budgets[j].CreatedAt)
	})
	return budgets, nil
}

func (m *MockBudgetRepository) Update(_ context.Context, budget *domain.Budget) (*domain.Budget, error) {
	existing, ok := m.Budgets[budget.ID]
	if !ok || existing.UserID != budget.UserID {
		return nil, domain.ErrBudgetNotFound
	}
	budget.UpdatedAt = time.Now()
	m.Budgets[budget.ID] = budget
	return budget, nil
}

func (m *MockBudgetRepository) UpdateSpent(_ context.Context, userID, id uuid.UUID, spent int64) error {
	budget, ok := m.Budgets[id]
	if !ok || budget.UserID != userID {
		return domain.ErrBudgetNotFound
	}
	budget.Spent = spent
	return nil
}

func (m *MockBudgetRepository) SoftDelete(_ context.Context, userID, id uuid.UUID) error {
	budget, ok := m.Budgets[id]
	if !ok || budget.UserID != userID {
		return domain.ErrBudgetNotFound
	}
	budget.IsActive = false
	return nil
}

// MockProgressRepository is a map-backed implementation of domain.ProgressRepository
type MockProgressRepository struct {
	Records map[uuid.UUID]*domain.Progress
}

func NewMockProgressRepository() *MockProgressRepository {
	return &MockProgressRepository{Records: make(map[uuid.UUID]*domain.Progress)}
}

func (m *MockProgressRepository) GetByUser(_ context.Context, userID uuid.UUID) (*domain.Progress, error) {
	progress, ok := m.Records[userID]
	if !ok {
		return nil, domain.ErrProgressNotFound
	}
	return progress, nil
}

func (m *MockProgressRepository) Save(_ context.Context, progress *domain.Progress) (*domain.Progress, error) {
	progress.UpdatedAt = time.Now()
	m.Records[progress.UserID] = progress
	return progress, nil
}

// MockEntryRepository is an append-only slice of ledger entries
type MockEntryRepository struct {
	Entries []*domain.LedgerEntry
}

func NewMockEntryRepository() *MockEntryRepository {
	return &MockEntryRepository{}
}

func (m *MockEntryRepository) Append(_ context.Context, entry *domain.LedgerEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()
	m.Entries = append(m.Entries, entry)
	return nil
}

func (m *MockEntryRepository) GetByAccount(_ context.Context, userID, accountID uuid.UUID, limit int32) ([]*domain.LedgerEntry, error) {
	var entries []*domain.LedgerEntry
	for i := len(m.Entries) - 1; i >= 0; i-- {
		e := m.Entries[i]
		if e.UserID != userID || e.AccountID != accountID {
			continue
		}
		entries = append(entries, e)
		if limit > 0 && int32(len(entries)) >= limit {
			break
		}
	}
	return entries, nil
}

// MockStore implements domain.TxManager over the in-memory mocks. WithinTx
// snapshots all state before running fn and restores it if fn fails, so tests
// can assert that failed workflows leave nothing behind.
type MockStore struct {
	AccountRepo     *MockAccountRepository
	CategoryRepo    *MockCategoryRepository
	TransactionRepo *MockTransactionRepository
	BudgetRepo      *MockBudgetRepository
	ProgressRepo    *MockProgressRepository
	EntryRepo       *MockEntryRepository

	// WithinTxErr forces WithinTx to fail before running fn when set.
	WithinTxErr error
}

func NewMockStore() *MockStore {
	return &MockStore{
		AccountRepo:     NewMockAccountRepository(),
		CategoryRepo:    NewMockCategoryRepository(),
		TransactionRepo: NewMockTransactionRepository(),
		BudgetRepo:      NewMockBudgetRepository(),
		ProgressRepo:    NewMockProgressRepository(),
		EntryRepo:       NewMockEntryRepository(),
	}
}

func (m *MockStore) Repos() domain.Repositories {
	return domain.Repositories{
		Accounts:     m.AccountRepo,
		Categories:   m.CategoryRepo,
		Transactions: m.TransactionRepo,
		Budgets:      m.BudgetRepo,
		Progress:     m.ProgressRepo,
		Entries:      m.EntryRepo,
	}
}

func (m *MockStore) WithinTx(_ context.Context, fn func(r domain.Repositories) error) error {
	if m.WithinTxErr != nil {
		return m.WithinTxErr
	}
	snapshot := m.snapshot()
	if err := fn(m.Repos()); err != nil {
		m.restore(snapshot)
		return err
	}
	return nil
}

type storeSnapshot struct {
	accounts     map[uuid.UUID]domain.Account
	categories   map[uuid.UUID]domain.Category
	transactions map[uuid.UUID]domain.Transaction
	budgets      map[uuid.UUID]domain.Budget
	progress     map[uuid.UUID]domain.Progress
	entryCount   int
}

func (m *MockStore) snapshot() storeSnapshot {
	s := storeSnapshot{
		accounts:     make(map[uuid.UUID]domain.Account, len(m.AccountRepo.Accounts)),
		categories:   make(map[uuid.UUID]domain.Category, len(m.CategoryRepo.Categories)),
		transactions: make(map[uuid.UUID]domain.Transaction, len(m.TransactionRepo.Transactions)),
		budgets:      make(map[uuid.UUID]domain.Budget, len(m.BudgetRepo.Budgets)),
		progress:     make(map[uuid.UUID]domain.Progress, len(m.ProgressRepo.Records)),
		entryCount:   len(m.EntryRepo.Entries),
	}
	for id, a := range m.AccountRepo.Accounts {
		s.accounts[id] = *a
	}
	for id, c := range m.CategoryRepo.Categories {
		s.categories[id] = *c
	}
	for id, tx := range m.TransactionRepo.Transactions {
		s.transactions[id] = *tx
	}
	for id, b := range m.BudgetRepo.Budgets {
		s.budgets[id] = *b
	}
	for id, p := range m.ProgressRepo.Records {
		s.progress[id] = *p
	}
	return s
}

func (m *MockStore) restore(s storeSnapshot) {
	m.AccountRepo.Accounts = make(map[uuid.UUID]*domain.Account, len(s.accounts))
	for id, a := range s.accounts {
		a := a
		m.AccountRepo.Accounts[id] = &a
	}
	m.CategoryRepo.Categories = make(map[uuid.UUID]*domain.Category, len(s.categories))
	for id, c := range s.categories {
		c := c
		m.CategoryRepo.Categories[id] = &c
	}
	m.TransactionRepo.Transactions = make(map[uuid.UUID]*domain.Transaction, len(s.transactions))
	for id, tx := range s.transactions {
		tx := tx
		m.TransactionRepo.Transactions[id] = &tx
	}
	m.BudgetRepo.Budgets = make(map[uuid.UUID]*domain.Budget, len(s.budgets))
	for id, b := range s.budgets {
		b := b
		m.BudgetRepo.Budgets[id] = &b
	}
	m.ProgressRepo.Records = make(map[uuid.UUID]*domain.Progress, len(s.progress))
	for id, p := range s.progress {
		p := p
		m.ProgressRepo.Records[id] = &p
	}
	m.EntryRepo.Entries = m.EntryRepo.Entries[:s.entryCount]
}
