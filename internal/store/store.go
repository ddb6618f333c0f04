package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrUserNotFound signals the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrPlaceNotFound signals the referenced place does not exist.
	ErrPlaceNotFound = errors.New("place not found")
	// ErrNoPlaces covers both a missing owner and an owner with zero places.
	ErrNoPlaces = errors.New("no places found for user")
	// ErrEmailTaken signals the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
)

// Store provides persistence backed by Postgres.
type Store struct {
	db *sql.DB
}

// New sets up a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Scope is a unit of work spanning the place and user tables. Writes that
// must land together take a Scope; the caller commits or aborts, repository
// methods never do.
type Scope interface {
	Commit() error
	Abort() error
}

type txScope struct {
	tx   *sql.Tx
	done bool
}

func (s *txScope) Commit() error {
	if s.done {
		return nil
	}
	s.done = true
	if err := s.tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Abort rolls the scope back. Calling it after Commit is a no-op, so callers
// can keep it in a defer.
func (s *txScope) Abort() error {
	if s.done {
		return nil
	}
	s.done = true
	if err := s.tx.Rollback(); err != nil {
		return fmt.Errorf("rollback tx: %w", err)
	}
	return nil
}

// Begin opens a transactional scope over the store.
func (s *Store) Begin(ctx context.Context) (Scope, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &txScope{tx: tx}, nil
}

func scopeTx(sc Scope) (*sql.Tx, error) {
	ts, ok := sc.(*txScope)
	if !ok || ts.done {
		return nil, errors.New("invalid transaction scope")
	}
	return ts.tx, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
