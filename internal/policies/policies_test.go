package policies

import (
	"context"
	"errors"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"github.com/looplj/crmhub/internal/authz"
	"github.com/looplj/crmhub/internal/objects"
	"github.com/looplj/crmhub/internal/roles"
)

// fakeAssignments backs the resolvers in tests.
type fakeAssignments struct {
	roles       map[int][]roles.Role
	memberships map[int][]roles.Membership
	err         error
}

func (f *fakeAssignments) RolesOf(ctx context.Context, userID int) ([]roles.Role, error) {
	if f.err != nil {
		return nil, f.err
	}

	return f.roles[userID], nil
}

func (f *fakeAssignments) MembershipsOf(ctx context.Context, userID int) ([]roles.Membership, error) {
	if f.err != nil {
		return nil, f.err
	}

	return f.memberships[userID], nil
}

type fakeOwners struct {
	owners map[string]map[int]int
}

func (f *fakeOwners) OwnerOf(ctx context.Context, entity string, id int) (int, bool, error) {
	ownerID, ok := f.owners[entity][id]
	return ownerID, ok, nil
}

const (
	adminID   = 1
	managerID = 2
	aliceID   = 3
	bobID     = 4
)

func newTestEvaluator(t *testing.T) *Evaluator {
	t.Helper()

	assignments := &fakeAssignments{
		roles: map[int][]roles.Role{
			adminID:   {roles.RoleAdmin},
			managerID: {roles.RoleManager},
		},
		memberships: map[int][]roles.Membership{
			aliceID: {{TeamID: 1, Role: roles.TeamRoleManager}},
			bobID:   {{TeamID: 1, Role: roles.TeamRoleMember}},
		},
	}
	owners := &fakeOwners{owners: map[string]map[int]int{
		objects.EntityLead: {100: aliceID},
		objects.EntityDeal: {200: bobID},
	}}

	res := Resolvers{
		Roles:  roles.NewResolver(assignments),
		Teams:  roles.NewTeamResolver(assignments),
		Owners: owners,
	}

	return NewDefaultEvaluator(res)
}

func userCtx(userID int) context.Context {
	return authz.NewUserContext(context.Background(), userID)
}

func TestLeadSelect(t *testing.T) {
	e := newTestEvaluator(t)
	lead := &objects.Lead{ID: 100, OwnerUserID: aliceID}
	access := Access{Op: OpSelect, Row: lead}

	t.Run("plain user cannot read someone else's lead", func(t *testing.T) {
		err := e.Authorize(userCtx(bobID), objects.EntityLead, access)
		require.True(t, IsPermissionDenied(err))
	})

	t.Run("owner can read own lead", func(t *testing.T) {
		require.NoError(t, e.Authorize(userCtx(aliceID), objects.EntityLead, access))
	})

	t.Run("manager reads every lead regardless of owner", func(t *testing.T) {
		require.NoError(t, e.Authorize(userCtx(managerID), objects.EntityLead, access))
	})

	t.Run("admin reads every lead", func(t *testing.T) {
		require.NoError(t, e.Authorize(userCtx(adminID), objects.EntityLead, access))
	})

	t.Run("anonymous is denied", func(t *testing.T) {
		err := e.Authorize(context.Background(), objects.EntityLead, access)
		require.True(t, IsPermissionDenied(err))
	})
}

func TestLeadWrite(t *testing.T) {
	e := newTestEvaluator(t)
	lead := &objects.Lead{ID: 100, OwnerUserID: aliceID}

	t.Run("manager updates any lead", func(t *testing.T) {
		require.NoError(t, e.Authorize(userCtx(managerID), objects.EntityLead, Access{Op: OpUpdate, Row: lead}))
	})

	t.Run("manager cannot delete someone else's lead", func(t *testing.T) {
		err := e.Authorize(userCtx(managerID), objects.EntityLead, Access{Op: OpDelete, Row: lead})
		require.True(t, IsPermissionDenied(err))
	})

	t.Run("owner deletes own lead", func(t *testing.T) {
		require.NoError(t, e.Authorize(userCtx(aliceID), objects.EntityLead, Access{Op: OpDelete, Row: lead}))
	})

	t.Run("admin deletes any lead", func(t *testing.T) {
		require.NoError(t, e.Authorize(userCtx(adminID), objects.EntityLead, Access{Op: OpDelete, Row: lead}))
	})
}

func TestTaskPolicyAsymmetry(t *testing.T) {
	e := newTestEvaluator(t)
	task := &objects.Task{ID: 5, AssigneeUserID: lo.ToPtr(aliceID), CreatorUserID: bobID}

	t.Run("manager views any task", func(t *testing.T) {
		require.NoError(t, e.Authorize(userCtx(managerID), objects.EntityTask, Access{Op: OpSelect, Row: task}))
	})

	t.Run("manager cannot update an arbitrary task", func(t *testing.T) {
		err := e.Authorize(userCtx(managerID), objects.EntityTask, Access{Op: OpUpdate, Row: task})
		require.True(t, IsPermissionDenied(err))
	})

	t.Run("assignee updates the task", func(t *testing.T) {
		require.NoError(t, e.Authorize(userCtx(aliceID), objects.EntityTask, Access{Op: OpUpdate, Row: task}))
	})

	t.Run("creator updates the task", func(t *testing.T) {
		require.NoError(t, e.Authorize(userCtx(bobID), objects.EntityTask, Access{Op: OpUpdate, Row: task}))
	})

	t.Run("manager creates tasks", func(t *testing.T) {
		fresh := &objects.Task{CreatorUserID: managerID}
		require.NoError(t, e.Authorize(userCtx(managerID), objects.EntityTask, Access{Op: OpInsert, Row: fresh, Values: fresh}))
	})
}

func TestDependentVisibility(t *testing.T) {
	e := newTestEvaluator(t)
	// Note attached to lead 100, owned by alice; created by the manager.
	note := &objects.Note{ID: 7, LeadID: lo.ToPtr(100), CreatorUserID: managerID}

	t.Run("parent owner reads the note", func(t *testing.T) {
		require.NoError(t, e.Authorize(userCtx(aliceID), objects.EntityNote, Access{Op: OpSelect, Row: note}))
	})

	t.Run("creator deletes own note", func(t *testing.T) {
		require.NoError(t, e.Authorize(userCtx(managerID), objects.EntityNote, Access{Op: OpDelete, Row: note}))
	})

	t.Run("parent owner cannot delete someone else's note", func(t *testing.T) {
		err := e.Authorize(userCtx(aliceID), objects.EntityNote, Access{Op: OpDelete, Row: note})
		require.True(t, IsPermissionDenied(err))
	})

	t.Run("unrelated user cannot read", func(t *testing.T) {
		err := e.Authorize(userCtx(bobID), objects.EntityNote, Access{Op: OpSelect, Row: note})
		require.True(t, IsPermissionDenied(err))
	})
}

func TestTeamMemberPolicy(t *testing.T) {
	e := newTestEvaluator(t)
	// Bob's membership row in team 1; alice manages team 1.
	row := &objects.TeamMember{ID: 1, TeamID: 1, UserID: bobID, Role: "member"}

	t.Run("team manager manages membership", func(t *testing.T) {
		require.NoError(t, e.Authorize(userCtx(aliceID), objects.EntityTeamMember, Access{Op: OpInsert, Row: row, Values: row}))
	})

	t.Run("member sees own membership row", func(t *testing.T) {
		require.NoError(t, e.Authorize(userCtx(bobID), objects.EntityTeamMember, Access{Op: OpSelect, Row: row}))
	})

	t.Run("member cannot manage membership", func(t *testing.T) {
		err := e.Authorize(userCtx(bobID), objects.EntityTeamMember, Access{Op: OpDelete, Row: row})
		require.True(t, IsPermissionDenied(err))
	})
}

func TestLogPolicies(t *testing.T) {
	e := newTestEvaluator(t)
	audit := &objects.AuditLog{ID: 1}
	automation := &objects.AutomationLog{ID: 1}

	t.Run("plain user cannot read audit entries", func(t *testing.T) {
		err := e.Authorize(userCtx(bobID), objects.EntityAuditLog, Access{Op: OpSelect, Row: audit})
		require.True(t, IsPermissionDenied(err))
	})

	t.Run("manager reads audit entries", func(t *testing.T) {
		require.NoError(t, e.Authorize(userCtx(managerID), objects.EntityAuditLog, Access{Op: OpSelect, Row: audit}))
	})

	t.Run("manager cannot read automation entries", func(t *testing.T) {
		err := e.Authorize(userCtx(managerID), objects.EntityAutomationLog, Access{Op: OpSelect, Row: automation})
		require.True(t, IsPermissionDenied(err))
	})

	t.Run("admin reads automation entries", func(t *testing.T) {
		require.NoError(t, e.Authorize(userCtx(adminID), objects.EntityAutomationLog, Access{Op: OpSelect, Row: automation}))
	})

	t.Run("no principal can insert through the standard surface", func(t *testing.T) {
		for _, userID := range []int{adminID, managerID, bobID} {
			err := e.Authorize(userCtx(userID), objects.EntityAuditLog, Access{Op: OpInsert, Row: audit, Values: audit})
			require.True(t, IsPermissionDenied(err), "user %d", userID)

			err = e.Authorize(userCtx(userID), objects.EntityAutomationLog, Access{Op: OpInsert, Row: automation, Values: automation})
			require.True(t, IsPermissionDenied(err), "user %d", userID)
		}
	})
}

func TestExplicitDecisions(t *testing.T) {
	e := newTestEvaluator(t)
	lead := &objects.Lead{ID: 100, OwnerUserID: aliceID}
	access := Access{Op: OpSelect, Row: lead}

	t.Run("system principal is a trusted internal caller", func(t *testing.T) {
		ctx := authz.NewSystemContext(context.Background())
		require.NoError(t, e.Authorize(ctx, objects.EntityAuditLog, Access{Op: OpInsert, Row: &objects.AuditLog{}}))
	})

	t.Run("bypass decision short-circuits evaluation", func(t *testing.T) {
		ctx, err := authz.WithBypassPolicy(authz.NewSystemContext(context.Background()), "test")
		require.NoError(t, err)
		require.NoError(t, e.Authorize(ctx, objects.EntityLead, access))
	})

	t.Run("deny decision rejects even privileged users", func(t *testing.T) {
		ctx := authz.DecisionContext(userCtx(adminID), authz.DecisionDeny)
		err := e.Authorize(ctx, objects.EntityLead, access)
		require.True(t, IsPermissionDenied(err))
	})
}

func TestResolutionFailureMeansDeny(t *testing.T) {
	assignments := &fakeAssignments{err: errors.New("assignment table unavailable")}
	res := Resolvers{
		Roles:  roles.NewResolver(assignments),
		Teams:  roles.NewTeamResolver(assignments),
		Owners: &fakeOwners{},
	}
	e := NewDefaultEvaluator(res)

	lead := &objects.Lead{ID: 100, OwnerUserID: aliceID}

	// A failed role resolution never grants elevated access; the owner rule
	// still applies because it needs no resolver.
	err := e.Authorize(userCtx(managerID), objects.EntityLead, Access{Op: OpSelect, Row: lead})
	require.True(t, IsPermissionDenied(err))

	require.NoError(t, e.Authorize(userCtx(aliceID), objects.EntityLead, Access{Op: OpSelect, Row: lead}))
}
