// Package postgres implements the store interfaces on PostgreSQL via pgx.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/NomadCrew/nomad-split-backend/internal/store"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// DBTX is the subset of *pgxpool.Pool the stores use. pgxmock pools satisfy it too.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

// execer is satisfied by both DBTX and pgx.Tx.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Ensure Store implements store.Store interface.
var _ store.Store = (*Store)(nil)

type Store struct {
	db           DBTX
	users        *UserStore
	groups       *GroupStore
	friends      *FriendStore
	transactions *TransactionStore
}

func NewStore(db DBTX) *Store {
	return &Store{
		db:           db,
		users:        NewUserStore(db),
		groups:       NewGroupStore(db),
		friends:      NewFriendStore(db),
		transactions: NewTransactionStore(db),
	}
}

func (s *Store) Users() store.UserStore               { return s.users }
func (s *Store) Groups() store.GroupStore             { return s.groups }
func (s *Store) Friends() store.FriendStore           { return s.friends }
func (s *Store) Transactions() store.TransactionStore { return s.transactions }

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// mapError translates driver errors into the store sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", store.ErrConflict, pgErr.ConstraintName)
	}
	return err
}

// withTx runs fn inside a transaction, committing when it returns nil.
func withTx(ctx context.Context, db DBTX, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// nullableJSON encodes v for a nullable JSONB column. A nil pointer becomes NULL.
func nullableJSON[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// decodeJSON unmarshals a JSONB column, tolerating NULL and empty values.
func decodeJSON(data []byte, dst any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}
