// Package policies implements the row policy evaluator: per-entity,
// per-operation rule chains deciding allow/deny for a single record.
//
// Rules return one of three sentinel decisions. Evaluation walks the chain
// in order: the first Allow grants the operation, Deny rejects it, Skip
// moves on to the next rule. A chain that ends without an Allow denies by
// default. There is no deny override; access is granted if any applicable
// rule allows it.
//
// Rules must be read-only and side-effect free so the evaluator can be
// invoked repeatedly per row without altering the outcome.
package policies

import (
	"context"
	"errors"
	"fmt"

	"github.com/looplj/crmhub/internal/authz"
	"github.com/looplj/crmhub/internal/objects"
)

// Decision sentinels returned by rules.
var (
	// Allow grants the operation and stops evaluation.
	Allow = errors.New("policies: allow")
	// Deny rejects the operation and stops evaluation.
	Deny = errors.New("policies: deny")
	// Skip defers the decision to the next rule in the chain.
	Skip = errors.New("policies: skip")
)

// Allowf returns Allow. The reason is discarded; it documents the grant at
// the call site.
func Allowf(format string, args ...any) error { return Allow }

// Denyf returns Deny.
func Denyf(format string, args ...any) error { return Deny }

// Skipf returns Skip.
func Skipf(format string, args ...any) error { return Skip }

// Op is the operation being authorized.
type Op string

const (
	OpSelect Op = "select"
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Access is one authorization question: may the current principal perform
// Op against this row.
type Access struct {
	Op Op

	// Row is the candidate row: the stored row for select/update/delete,
	// the incoming values for insert.
	Row objects.Row

	// Values carries the incoming values for insert/update, nil otherwise.
	Values objects.Row
}

// Rule is a single allow/deny/skip decision step.
type Rule interface {
	Eval(ctx context.Context, a Access) error
}

// RuleFunc adapts a function to the Rule interface.
type RuleFunc func(ctx context.Context, a Access) error

func (f RuleFunc) Eval(ctx context.Context, a Access) error { return f(ctx, a) }

// Chain is an ordered rule list evaluated first-match.
type Chain []Rule

// EntityPolicy holds the four independent operation chains for one entity.
type EntityPolicy struct {
	Select Chain
	Insert Chain
	Update Chain
	Delete Chain
}

func (p EntityPolicy) chain(op Op) Chain {
	switch op {
	case OpSelect:
		return p.Select
	case OpInsert:
		return p.Insert
	case OpUpdate:
		return p.Update
	case OpDelete:
		return p.Delete
	default:
		return nil
	}
}

// PermissionDeniedError reports a policy denial.
type PermissionDeniedError struct {
	Entity string
	Op     Op
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("permission denied: %s on %s", e.Op, e.Entity)
}

// ErrPermissionDenied is matched by errors.Is for every policy denial.
var ErrPermissionDenied = errors.New("permission denied")

func (e *PermissionDeniedError) Unwrap() error { return ErrPermissionDenied }

// IsPermissionDenied reports whether err is a policy denial.
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

// Evaluator dispatches authorization questions to per-entity policies.
type Evaluator struct {
	policies map[string]EntityPolicy
}

// NewEvaluator builds an evaluator from per-entity policies keyed by
// entity type.
func NewEvaluator(policies map[string]EntityPolicy) *Evaluator {
	return &Evaluator{policies: policies}
}

// Authorize decides whether the current principal may perform the access
// against the entity. Decision order:
//
//  1. An explicit context decision (privileged bypass) wins.
//  2. System principals are trusted internal callers.
//  3. Anonymous requests are denied outright.
//  4. The entity's rule chain for the operation runs; no Allow means deny.
//
// Resolution failures inside rules surface as Skip or Deny, never as
// errors bubbling past this boundary.
func (e *Evaluator) Authorize(ctx context.Context, entity string, a Access) error {
	switch authz.DecisionFromContext(ctx) {
	case authz.DecisionAllow:
		return nil
	case authz.DecisionDeny:
		return &PermissionDeniedError{Entity: entity, Op: a.Op}
	}

	p, ok := authz.GetPrincipal(ctx)
	if !ok {
		return &PermissionDeniedError{Entity: entity, Op: a.Op}
	}

	if p.IsSystem() {
		return nil
	}

	policy, ok := e.policies[entity]
	if !ok {
		return &PermissionDeniedError{Entity: entity, Op: a.Op}
	}

	for _, rule := range policy.chain(a.Op) {
		switch err := rule.Eval(ctx, a); {
		case errors.Is(err, Allow):
			return nil
		case errors.Is(err, Deny):
			return &PermissionDeniedError{Entity: entity, Op: a.Op}
		case errors.Is(err, Skip):
			continue
		case err != nil:
			// Rules are expected to map failures to decisions themselves;
			// anything else still resolves to deny, not an exception.
			return &PermissionDeniedError{Entity: entity, Op: a.Op}
		default:
			continue
		}
	}

	return &PermissionDeniedError{Entity: entity, Op: a.Op}
}
