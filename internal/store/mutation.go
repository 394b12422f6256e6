package store

import (
	"context"
	"errors"

	"github.com/looplj/crmhub/internal/objects"
	"github.com/looplj/crmhub/internal/policies"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("store: row not found")

// Authorizer is the pluggable pre-operation authorization hook.
type Authorizer interface {
	Authorize(ctx context.Context, entity string, a policies.Access) error
}

// Mutation describes one pending row change handed to guards and
// observers. Old is nil for inserts, New is nil for deletes.
type Mutation struct {
	Entity string
	Op     policies.Op
	Old    objects.Row
	New    objects.Row
}

// GuardFunc is a pre-commit invariant check. It runs after the policy
// allowed the mutation and before the base mutation is applied, regardless
// of the acting principal's role.
type GuardFunc func(ctx context.Context, m *Mutation) error

// ObserverFunc runs after the base mutation inside the same transaction.
// An observer error rolls the whole mutation back.
type ObserverFunc func(ctx context.Context, m *Mutation) error

// access derives the authorization question from the mutation.
func (m *Mutation) access() policies.Access {
	a := policies.Access{Op: m.Op, Values: m.New}

	switch m.Op {
	case policies.OpInsert:
		a.Row = m.New
	default:
		a.Row = m.Old
	}

	return a
}

// runMutation executes the fixed sequence for one mutating statement:
// policy check, guard checks, base mutation, observers. Always inside the
// ambient transaction so a failure at any step rolls everything back.
func (s *Store) runMutation(ctx context.Context, m *Mutation, apply func(ctx context.Context, conn Conn) error) error {
	return s.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.authorize(ctx, m.Entity, m.access()); err != nil {
			return err
		}

		for _, guard := range s.guards {
			if err := guard(ctx, m); err != nil {
				return err
			}
		}

		if err := apply(ctx, s.conn(ctx)); err != nil {
			return err
		}

		for _, observer := range s.observers {
			if err := observer(ctx, m); err != nil {
				return err
			}
		}

		return nil
	})
}

// authorizeRead checks the select policy for one fetched row.
func (s *Store) authorizeRead(ctx context.Context, row objects.Row) error {
	return s.authorize(ctx, row.EntityType(), policies.Access{Op: policies.OpSelect, Row: row})
}

// filterReadable keeps the rows the current principal may select. Policy
// rules are read-only and stable, so per-row evaluation is safe.
func filterReadable[T objects.Row](ctx context.Context, s *Store, rows []T) []T {
	allowed := rows[:0]

	for _, row := range rows {
		if err := s.authorizeRead(ctx, row); err == nil {
			allowed = append(allowed, row)
		}
	}

	return allowed
}
