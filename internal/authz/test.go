package authz

import (
	"context"
)

// NewTestContext creates context with Test principal (only for test environment).
func NewTestContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, principalKey{}, Principal{Type: PrincipalTypeTest})
}

// WithTestBypass creates context with Test principal and policy bypass.
// Used by test fixtures that need to seed data without rule evaluation.
func WithTestBypass(ctx context.Context) context.Context {
	bypassCtx, _ := WithBypassPolicy(NewTestContext(ctx), "test")
	return bypassCtx
}
