package authz

import (
	"context"
	"errors"
	"testing"
)

func TestWithBypassPolicy(t *testing.T) {
	ctx := NewSystemContext(context.Background())

	bypassCtx, err := WithBypassPolicy(ctx, "test-reason")
	if err != nil {
		t.Fatalf("WithBypassPolicy failed: %v", err)
	}

	info, ok := GetBypassInfo(bypassCtx)
	if !ok {
		t.Fatal("GetBypassInfo should return true after WithBypassPolicy")
	}

	if info.Reason != "test-reason" {
		t.Errorf("Reason = %v, want %v", info.Reason, "test-reason")
	}

	if !info.Principal.IsSystem() {
		t.Error("Principal should be system type")
	}

	if info.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}

	if DecisionFromContext(bypassCtx) != DecisionAllow {
		t.Error("bypass context should carry an allow decision")
	}
}

func TestWithBypassPolicy_RequiresPrivilegedPrincipal(t *testing.T) {
	t.Run("no principal", func(t *testing.T) {
		_, err := WithBypassPolicy(context.Background(), "nope")
		if err == nil {
			t.Fatal("WithBypassPolicy should fail without a principal")
		}
	})

	t.Run("user principal", func(t *testing.T) {
		ctx := NewUserContext(context.Background(), 1)

		_, err := WithBypassPolicy(ctx, "nope")
		if err == nil {
			t.Fatal("WithBypassPolicy should fail for a user principal")
		}
	})
}

func TestRunWithBypass(t *testing.T) {
	ctx := NewSystemContext(context.Background())

	executed := false

	result, err := RunWithBypass(ctx, "test-closure", func(bypassCtx context.Context) (string, error) {
		executed = true

		if !IsBypassActive(bypassCtx) {
			t.Error("Bypass should be active inside closure")
		}

		return "success", nil
	})
	if err != nil {
		t.Fatalf("RunWithBypass failed: %v", err)
	}

	if !executed {
		t.Error("Closure should be executed")
	}

	if result != "success" {
		t.Errorf("Result = %v, want %v", result, "success")
	}

	// Bypass must not leak outside the closure.
	if IsBypassActive(ctx) {
		t.Error("Bypass should not be active outside closure")
	}
}

func TestRunWithBypass_ErrorPropagation(t *testing.T) {
	ctx := NewSystemContext(context.Background())

	expectedErr := context.Canceled
	_, err := RunWithBypass(ctx, "test-error", func(bypassCtx context.Context) (string, error) {
		return "", expectedErr
	})

	if !errors.Is(err, expectedErr) {
		t.Errorf("Error should be propagated: got %v, want %v", err, expectedErr)
	}
}

func TestDecisionFromContext(t *testing.T) {
	if DecisionFromContext(context.Background()) != DecisionNone {
		t.Error("DecisionFromContext should be DecisionNone when unset")
	}

	ctx := DecisionContext(context.Background(), DecisionDeny)
	if DecisionFromContext(ctx) != DecisionDeny {
		t.Error("DecisionFromContext should read back the injected decision")
	}
}
