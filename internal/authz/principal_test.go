package authz

import (
	"context"
	"testing"

	"github.com/samber/lo"
)

func TestPrincipalType_String(t *testing.T) {
	tests := []struct {
		name string
		p    PrincipalType
		want string
	}{
		{"system", PrincipalTypeSystem, "system"},
		{"user", PrincipalTypeUser, "user"},
		{"test", PrincipalTypeTest, "test"},
		{"unknown", PrincipalType(999), "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.String(); got != tt.want {
				t.Errorf("PrincipalType.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPrincipal_IsSystem(t *testing.T) {
	tests := []struct {
		name string
		p    Principal
		want bool
	}{
		{"system", Principal{Type: PrincipalTypeSystem}, true},
		{"user", Principal{Type: PrincipalTypeUser}, false},
		{"test", Principal{Type: PrincipalTypeTest}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.IsSystem(); got != tt.want {
				t.Errorf("Principal.IsSystem() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPrincipal_String(t *testing.T) {
	userID := 123

	tests := []struct {
		name string
		p    Principal
		want string
	}{
		{"system", Principal{Type: PrincipalTypeSystem}, "system"},
		{"user with id", Principal{Type: PrincipalTypeUser, UserID: &userID}, "user:123"},
		{"user without id", Principal{Type: PrincipalTypeUser}, "user:unknown"},
		{"unknown", Principal{Type: PrincipalType(999)}, "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.String(); got != tt.want {
				t.Errorf("Principal.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWithPrincipal_SetOnce(t *testing.T) {
	ctx := context.Background()

	p1 := Principal{Type: PrincipalTypeUser, UserID: lo.ToPtr(123)}

	ctx, err := WithPrincipal(ctx, p1)
	if err != nil {
		t.Fatalf("first WithPrincipal failed: %v", err)
	}

	// Setting the same principal again is idempotent.
	_, err = WithPrincipal(ctx, p1)
	if err != nil {
		t.Fatalf("idempotent WithPrincipal failed: %v", err)
	}

	// Setting a different principal must fail.
	p2 := Principal{Type: PrincipalTypeUser, UserID: lo.ToPtr(456)}

	_, err = WithPrincipal(ctx, p2)
	if err == nil {
		t.Fatal("WithPrincipal should reject a conflicting principal")
	}
}

func TestCurrentUserID(t *testing.T) {
	t.Run("user principal", func(t *testing.T) {
		ctx := NewUserContext(context.Background(), 7)

		id, ok := CurrentUserID(ctx)
		if !ok || id != 7 {
			t.Errorf("CurrentUserID = (%v, %v), want (7, true)", id, ok)
		}
	})

	t.Run("system principal", func(t *testing.T) {
		ctx := NewSystemContext(context.Background())

		_, ok := CurrentUserID(ctx)
		if ok {
			t.Error("CurrentUserID should be false for system principal")
		}
	})

	t.Run("anonymous", func(t *testing.T) {
		_, ok := CurrentUserID(context.Background())
		if ok {
			t.Error("CurrentUserID should be false without a principal")
		}
	})
}
