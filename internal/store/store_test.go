package store_test

import (
	"context"
	"errors"
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

// newTestStore wires a full in-memory engine: default policies, invariant
// guards and provenance observers, exactly as production wiring does.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.Open(store.Config{Dialect: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Migrate(context.Background()))

	reader := s.PrivilegedReader()
	resolver := roles.NewResolver(reader)
	res := policies.Resolvers{
		Roles:  resolver,
		Teams:  roles.NewTeamResolver(reader),
		Owners: reader,
	}

	s.SetAuthorizer(policies.NewDefaultEvaluator(res))

	s.RegisterGuard(guards.LeadConversionGuard())
	s.RegisterGuard(guards.TaskCompletionGuard())
	s.RegisterGuard(guards.DocumentAttachmentGuard())
	s.RegisterGuard(guards.OwnershipGuard(resolver))

	recorder := provenance.NewRecorder(s)
	s.RegisterObserver(provenance.AuditObserver(recorder))
	s.RegisterObserver(provenance.LeadStatusObserver(recorder))
	s.RegisterObserver(provenance.DealStageObserver(recorder))

	return s
}

// seedUser creates a user under the system principal and optionally
// grants a role.
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

func TestMutationDeniedWithoutPrincipal(t *testing.T) {
	s := newTestStore(t)
	owner := seedUser(t, s, "owner@crm.test", roles.RoleUser)

	_, err := s.Leads().Create(context.Background(), &objects.Lead{Name: "anon", OwnerUserID: owner})
	require.True(t, policies.IsPermissionDenied(err))

	// Nothing committed.
	leads, err := s.Leads().List(authz.NewSystemContext(context.Background()))
	require.NoError(t, err)
	require.Empty(t, leads)
}

func TestOwnerRoundTrip(t *testing.T) {
	s := newTestStore(t)
	owner := seedUser(t, s, "owner@crm.test", roles.RoleUser)
	other := seedUser(t, s, "other@crm.test", roles.RoleUser)

	ownerCtx := authz.NewUserContext(context.Background(), owner)
	otherCtx := authz.NewUserContext(context.Background(), other)

	lead, err := s.Leads().Create(ownerCtx, &objects.Lead{Name: "acme", OwnerUserID: owner})
	require.NoError(t, err)
	require.NotZero(t, lead.ID)
	require.Equal(t, objects.LeadStatusNew, lead.Status)

	// Owner reads and updates.
	got, err := s.Leads().Get(ownerCtx, lead.ID)
	require.NoError(t, err)
	require.Equal(t, "acme", got.Name)

	got.Status = objects.LeadStatusContacted
	_, err = s.Leads().Update(ownerCtx, got)
	require.NoError(t, err)

	// A plain unrelated user sees nothing.
	_, err = s.Leads().Get(otherCtx, lead.ID)
	require.True(t, policies.IsPermissionDenied(err))

	visible, err := s.Leads().List(otherCtx)
	require.NoError(t, err)
	require.Empty(t, visible)
}

func TestManagerReadsButCannotDelete(t *testing.T) {
	s := newTestStore(t)
	owner := seedUser(t, s, "owner@crm.test", roles.RoleUser)
	manager := seedUser(t, s, "manager@crm.test", roles.RoleManager)

	ownerCtx := authz.NewUserContext(context.Background(), owner)
	managerCtx := authz.NewUserContext(context.Background(), manager)

	lead, err := s.Leads().Create(ownerCtx, &objects.Lead{Name: "acme", OwnerUserID: owner})
	require.NoError(t, err)

	_, err = s.Leads().Get(managerCtx, lead.ID)
	require.NoError(t, err)

	err = s.Leads().Delete(managerCtx, lead.ID)
	require.True(t, policies.IsPermissionDenied(err))

	// The owner still can.
	require.NoError(t, s.Leads().Delete(ownerCtx, lead.ID))
}

func TestGuardViolationRollsBack(t *testing.T) {
	s := newTestStore(t)
	admin := seedUser(t, s, "admin@crm.test", roles.RoleAdmin)
	owner := seedUser(t, s, "owner@crm.test", roles.RoleUser)

	adminCtx := authz.NewUserContext(context.Background(), admin)
	ownerCtx := authz.NewUserContext(context.Background(), owner)

	contact, err := s.Contacts().Create(ownerCtx, &objects.Contact{FirstName: "Ada", OwnerUserID: owner})
	require.NoError(t, err)

	lead, err := s.Leads().Create(ownerCtx, &objects.Lead{Name: "acme", OwnerUserID: owner})
	require.NoError(t, err)

	// Convert the lead.
	lead.Status = objects.LeadStatusConverted
	lead.ConvertedContactID = &contact.ID
	lead, err = s.Leads().Update(ownerCtx, lead)
	require.NoError(t, err)

	before, err := s.ListAuditLogs(adminCtx, objects.EntityLead, lead.ID)
	require.NoError(t, err)

	// Clearing the marker violates the one-way invariant, even for the
	// administrator, and leaves no trace.
	broken := *lead
	broken.ConvertedContactID = nil
	_, err = s.Leads().Update(adminCtx, &broken)
	require.True(t, errors.Is(err, guards.ErrInvariantViolation))

	got, err := s.Leads().Get(ownerCtx, lead.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ConvertedContactID)
	require.Equal(t, contact.ID, *got.ConvertedContactID)

	after, err := s.ListAuditLogs(adminCtx, objects.EntityLead, lead.ID)
	require.NoError(t, err)
	require.Len(t, after, len(before))
}

func TestAuditEntryCommitsWithMutation(t *testing.T) {
	s := newTestStore(t)
	owner := seedUser(t, s, "owner@crm.test", roles.RoleUser)
	manager := seedUser(t, s, "manager@crm.test", roles.RoleManager)

	ownerCtx := authz.NewUserContext(context.Background(), owner)
	managerCtx := authz.NewUserContext(context.Background(), manager)

	lead, err := s.Leads().Create(ownerCtx, &objects.Lead{Name: "acme", OwnerUserID: owner})
	require.NoError(t, err)

	entries, err := s.ListAuditLogs(managerCtx, objects.EntityLead, lead.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "insert", entries[0].Action)
	require.NotNil(t, entries[0].ActorUserID)
	require.Equal(t, owner, *entries[0].ActorUserID)
	require.NotEmpty(t, entries[0].NewValues)

	// Plain users get an empty trail: rows they may not select are
	// filtered out rather than failing the read.
	filtered, err := s.ListAuditLogs(ownerCtx, objects.EntityLead, lead.ID)
	require.NoError(t, err)
	require.Empty(t, filtered)
}

func TestStatusHistoryFollowsTransitions(t *testing.T) {
	s := newTestStore(t)
	owner := seedUser(t, s, "owner@crm.test", roles.RoleUser)
	ownerCtx := authz.NewUserContext(context.Background(), owner)

	lead, err := s.Leads().Create(ownerCtx, &objects.Lead{Name: "acme", OwnerUserID: owner})
	require.NoError(t, err)

	history, err := s.ListLeadStatusHistory(ownerCtx, lead.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Nil(t, history[0].OldStatus)
	require.Equal(t, objects.LeadStatusNew, *history[0].NewStatus)

	lead.Status = objects.LeadStatusQualified
	lead, err = s.Leads().Update(ownerCtx, lead)
	require.NoError(t, err)

	history, err = s.ListLeadStatusHistory(ownerCtx, lead.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, objects.LeadStatusNew, *history[1].OldStatus)
	require.Equal(t, objects.LeadStatusQualified, *history[1].NewStatus)

	// An edit that leaves the status alone records nothing.
	lead.Company = "Acme Inc"
	lead, err = s.Leads().Update(ownerCtx, lead)
	require.NoError(t, err)

	history, err = s.ListLeadStatusHistory(ownerCtx, lead.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
}

func TestTaskCompletionThroughPipeline(t *testing.T) {
	s := newTestStore(t)
	creator := seedUser(t, s, "creator@crm.test", roles.RoleUser)
	assignee := seedUser(t, s, "assignee@crm.test", roles.RoleUser)

	creatorCtx := authz.NewUserContext(context.Background(), creator)
	assigneeCtx := authz.NewUserContext(context.Background(), assignee)

	task, err := s.Tasks().Create(creatorCtx, &objects.Task{
		Title:          "call back",
		CreatorUserID:  creator,
		AssigneeUserID: &assignee,
	})
	require.NoError(t, err)

	// The creator passes the policy but not the completion guard.
	done := *task
	done.Status = objects.TaskStatusCompleted
	_, err = s.Tasks().Update(creatorCtx, &done)
	require.True(t, errors.Is(err, guards.ErrInvariantViolation))

	// The assignee completes it.
	_, err = s.Tasks().Update(assigneeCtx, &done)
	require.NoError(t, err)

	got, err := s.Tasks().Get(assigneeCtx, task.ID)
	require.NoError(t, err)
	require.Equal(t, objects.TaskStatusCompleted, got.Status)
}

func TestOwnershipTransferRequiresAdmin(t *testing.T) {
	s := newTestStore(t)
	admin := seedUser(t, s, "admin@crm.test", roles.RoleAdmin)
	owner := seedUser(t, s, "owner@crm.test", roles.RoleUser)
	other := seedUser(t, s, "other@crm.test", roles.RoleUser)

	adminCtx := authz.NewUserContext(context.Background(), admin)
	ownerCtx := authz.NewUserContext(context.Background(), owner)

	deal, err := s.Deals().Create(ownerCtx, &objects.Deal{Title: "big one", OwnerUserID: owner})
	require.NoError(t, err)

	moved := *deal
	moved.OwnerUserID = other
	_, err = s.Deals().Update(ownerCtx, &moved)
	require.True(t, errors.Is(err, guards.ErrInvariantViolation))

	_, err = s.Deals().Update(adminCtx, &moved)
	require.NoError(t, err)

	// The new owner now sees the deal.
	otherCtx := authz.NewUserContext(context.Background(), other)
	_, err = s.Deals().Get(otherCtx, deal.ID)
	require.NoError(t, err)
}

func TestNotFound(t *testing.T) {
	s := newTestStore(t)
	admin := seedUser(t, s, "admin@crm.test", roles.RoleAdmin)
	adminCtx := authz.NewUserContext(context.Background(), admin)

	_, err := s.Leads().Get(adminCtx, 999)
	require.True(t, errors.Is(err, store.ErrNotFound))
}
