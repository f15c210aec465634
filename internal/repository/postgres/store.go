// Package postgres implements the domain repositories over PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/kudiapp/kudi-backend/internal/domain"
)

// DBTX is the subset of pgx shared by the pool and a transaction, so every
// repository can run against either.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store owns the connection pool and implements domain.TxManager
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the connection pool
func (s *Store) Close() {
	s.pool.Close()
}

// repos binds all repositories to one DBTX handle
func repos(db DBTX) domain.Repositories {
	return domain.Repositories{
		Accounts:     &AccountRepository{db: db},
		Categories:   &CategoryRepository{db: db},
		Transactions: &TransactionRepository{db: db},
		Budgets:      &BudgetRepository{db: db},
		Progress:     &ProgressRepository{db: db},
		Entries:      &EntryRepository{db: db},
	}
}

// Repos returns repositories bound to the shared pool for plain reads
func (s *Store) Repos() domain.Repositories {
	return repos(s.pool)
}

// WithinTx runs fn inside one serializable transaction. Serialization
// failures are retried once; persistent contention surfaces as ErrConflict.
func (s *Store) WithinTx(ctx context.Context, fn func(r domain.Repositories) error) error {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		lastErr = s.runTx(ctx, fn)
		if !isSerializationFailure(lastErr) {
			return lastErr
		}
		log.Warn().Int("attempt", attempt+1).Msg("Transaction serialization failure, retrying")
	}
	return domain.ErrConflict
}

func (s *Store) runTx(ctx context.Context, fn func(r domain.Repositories) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(repos(tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// isSerializationFailure matches SQLSTATE 40001 (serialization) and 40P01 (deadlock)
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

// pgtype conversion helpers shared by the repositories

func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

func pgUUIDPtr(id *uuid.UUID) pgtype.UUID {
	if id == nil {
		return pgtype.UUID{}
	}
	return pgtype.UUID{Bytes: *id, Valid: true}
}

func fromPgUUID(v pgtype.UUID) uuid.UUID {
	return uuid.UUID(v.Bytes)
}

func fromPgUUIDPtr(v pgtype.UUID) *uuid.UUID {
	if !v.Valid {
		return nil
	}
	id := uuid.UUID(v.Bytes)
	return &id
}

func pgText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func fromPgText(v pgtype.Text) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func pgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}
