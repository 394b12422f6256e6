package store

import (
	"context"
	"database/sql"
)

// Conn is the subset of database operations repositories use; satisfied by
// both *sql.DB and *sql.Tx so queries transparently join the ambient
// transaction.
type Conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// txKey is an unexported key type to prevent external forgery.
type txKey struct{}

// NewTxContext stores the transaction in the context.
func NewTxContext(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromContext reads the ambient transaction.
func TxFromContext(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sql.Tx)
	return tx, ok
}

// conn resolves the ambient transaction, falling back to the pool.
func (s *Store) conn(ctx context.Context) Conn {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}

	return s.db
}
