package biz_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/looplj/crmhub/internal/authz"
	"github.com/looplj/crmhub/internal/guards"
	"github.com/looplj/crmhub/internal/objects"
	"github.com/looplj/crmhub/internal/policies"
	"github.com/looplj/crmhub/internal/provenance"
	"github.com/looplj/crmhub/internal/roles"
	"github.com/looplj/crmhub/internal/store"
)

// newArmedStore builds an in-memory engine with the production wiring:
// default policies, invariant guards and provenance observers.
func newArmedStore(t *testing.T) (*store.Store, *provenance.Recorder) {
	t.Helper()

	s, err := store.Open(store.Config{Dialect: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Migrate(context.Background()))

	reader := s.PrivilegedReader()
	resolver := roles.NewResolver(reader)

	s.SetAuthorizer(policies.NewDefaultEvaluator(policies.Resolvers{
		Roles:  resolver,
		Teams:  roles.NewTeamResolver(reader),
		Owners: reader,
	}))

	s.RegisterGuard(guards.LeadConversionGuard())
	s.RegisterGuard(guards.TaskCompletionGuard())
	s.RegisterGuard(guards.DocumentAttachmentGuard())
	s.RegisterGuard(guards.OwnershipGuard(resolver))

	recorder := provenance.NewRecorder(s)
	s.RegisterObserver(provenance.AuditObserver(recorder))
	s.RegisterObserver(provenance.LeadStatusObserver(recorder))
	s.RegisterObserver(provenance.DealStageObserver(recorder))

	return s, recorder
}

func seedUser(t *testing.T, s *store.Store, email string, role roles.Role) int {
	t.Helper()

	ctx := authz.NewSystemContext(context.Background())

	user, err := s.Users().Create(ctx, &objects.User{Email: email, Password: "x"})
	require.NoError(t, err)

	if role != roles.RoleUser {
		_, err = s.RoleAssignments().Create(ctx, &objects.RoleAssignment{UserID: user.ID, Role: string(role)})
		require.NoError(t, err)
	}

	return user.ID
}
