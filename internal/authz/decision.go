package authz

import "context"

// Decision is an explicit policy decision injected into the context.
// The row policy evaluator consults it before evaluating rule chains.
type Decision int

const (
	// DecisionNone means no explicit decision; rule chains evaluate normally.
	DecisionNone Decision = iota
	// DecisionAllow grants the operation without evaluating rule chains.
	DecisionAllow
	// DecisionDeny rejects the operation without evaluating rule chains.
	DecisionDeny
)

// decisionKey is an unexported key type to prevent external forgery.
type decisionKey struct{}

// DecisionContext injects an explicit decision. Trusted wiring code only;
// regular call paths must go through WithBypassPolicy / RunWithBypass so the
// escape hatch stays gated and logged.
func DecisionContext(ctx context.Context, d Decision) context.Context {
	return context.WithValue(ctx, decisionKey{}, d)
}

// DecisionFromContext reads the explicit decision, DecisionNone if absent.
func DecisionFromContext(ctx context.Context) Decision {
	d, ok := ctx.Value(decisionKey{}).(Decision)
	if !ok {
		return DecisionNone
	}

	return d
}
