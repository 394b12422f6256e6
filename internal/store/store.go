// Package store implements the storage engine contract: row CRUD with a
// pluggable pre-operation authorization hook, pre-commit guard hooks and
// post-mutation observers, all executing inside one ambient transaction.
//
// The sequence for one mutating statement is fixed: policy check, guard
// checks, base mutation, transition observers, commit. Any failure rolls
// the whole transaction back; no partial state is ever observable.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/looplj/crmhub/internal/policies"
)

// Config selects the backing database.
type Config struct {
	Dialect string `conf:"dialect" yaml:"dialect" json:"dialect"`
	DSN     string `conf:"dsn" yaml:"dsn" json:"dsn"`
	Debug   bool   `conf:"debug" yaml:"debug" json:"debug"`
}

const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// Store is the storage engine. Policy evaluator, guards and observers are
// registered before use; repositories route every access through them.
type Store struct {
	db      *sql.DB
	dialect string

	authorizer Authorizer
	guards     []GuardFunc
	observers  []ObserverFunc
}

// Open connects to the configured database. The schema is created by
// Migrate, not here.
func Open(cfg Config) (*Store, error) {
	var (
		db      *sql.DB
		dialect string
		err     error
	)

	switch cfg.Dialect {
	case "postgres", "pgx", "pg", "postgresql":
		db, err = sql.Open("pgx", cfg.DSN)
		dialect = DialectPostgres
	case "sqlite", "sqlite3", "":
		db, err = sql.Open("sqlite", cfg.DSN)
		dialect = DialectSQLite
	default:
		return nil, fmt.Errorf("store: invalid dialect: %s", cfg.Dialect)
	}

	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	if dialect == DialectSQLite {
		// modernc sqlite serializes writes; a single connection avoids
		// table-lock errors under concurrent transactions.
		db.SetMaxOpenConns(1)
	}

	return &Store{db: db, dialect: dialect}, nil
}

// SetAuthorizer installs the pre-operation authorization hook.
func (s *Store) SetAuthorizer(a Authorizer) { s.authorizer = a }

// RegisterGuard appends a pre-commit guard hook.
func (s *Store) RegisterGuard(g GuardFunc) { s.guards = append(s.guards, g) }

// RegisterObserver appends a post-mutation observer.
func (s *Store) RegisterObserver(o ObserverFunc) { s.observers = append(s.observers, o) }

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Dialect returns the resolved dialect name.
func (s *Store) Dialect() string { return s.dialect }

// RunInTransaction executes fn inside the ambient transaction, starting one
// when the context does not already carry one. Nested calls join the outer
// transaction; rollback is all-or-nothing at the outermost level.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := TxFromContext(ctx); ok {
		return fn(ctx)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}

	committed := false

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()

			panic(r)
		}

		if !committed {
			_ = tx.Rollback()
		}
	}()

	txCtx := NewTxContext(ctx, tx)

	if err := fn(txCtx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit transaction: %w", err)
	}

	committed = true

	return nil
}

// rebind rewrites ? placeholders for the postgres dialect. Queries are
// written with ? throughout.
func (s *Store) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}

	var sb strings.Builder

	n := 0

	for _, r := range query {
		if r == '?' {
			n++

			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))

			continue
		}

		sb.WriteRune(r)
	}

	return sb.String()
}

// authorize runs the pre-operation policy hook for one access.
func (s *Store) authorize(ctx context.Context, entity string, a policies.Access) error {
	if s.authorizer == nil {
		return fmt.Errorf("store: no authorizer configured")
	}

	return s.authorizer.Authorize(ctx, entity, a)
}
