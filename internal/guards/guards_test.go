package guards

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/looplj/crmhub/internal/authz"
	"github.com/looplj/crmhub/internal/objects"
	"github.com/looplj/crmhub/internal/policies"
	"github.com/looplj/crmhub/internal/roles"
	"github.com/looplj/crmhub/internal/store"
)

type fakeReader struct {
	roles map[int][]roles.Role
}

func (f *fakeReader) RolesOf(ctx context.Context, userID int) ([]roles.Role, error) {
	return f.roles[userID], nil
}

func (f *fakeReader) MembershipsOf(ctx context.Context, userID int) ([]roles.Membership, error) {
	return nil, nil
}

func intp(v int) *int { return &v }

func userCtx(id int) context.Context {
	return authz.NewUserContext(context.Background(), id)
}

func TestLeadConversionGuard(t *testing.T) {
	guard := LeadConversionGuard()
	ctx := userCtx(1)

	tests := []struct {
		name    string
		old     *objects.Lead
		next    *objects.Lead
		wantErr bool
	}{
		{
			name:    "first conversion is allowed",
			old:     &objects.Lead{ID: 1, Status: objects.LeadStatusQualified},
			next:    &objects.Lead{ID: 1, Status: objects.LeadStatusConverted, ConvertedContactID: intp(7)},
			wantErr: false,
		},
		{
			name:    "marker unchanged is allowed",
			old:     &objects.Lead{ID: 1, ConvertedContactID: intp(7)},
			next:    &objects.Lead{ID: 1, ConvertedContactID: intp(7), Company: "acme"},
			wantErr: false,
		},
		{
			name:    "clearing the marker is rejected",
			old:     &objects.Lead{ID: 1, ConvertedContactID: intp(7)},
			next:    &objects.Lead{ID: 1},
			wantErr: true,
		},
		{
			name:    "redirecting the marker is rejected",
			old:     &objects.Lead{ID: 1, ConvertedContactID: intp(7)},
			next:    &objects.Lead{ID: 1, ConvertedContactID: intp(8)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &store.Mutation{Entity: objects.EntityLead, Op: policies.OpUpdate, Old: tt.old, New: tt.next}

			err := guard(ctx, m)
			if tt.wantErr {
				require.Error(t, err)
				require.True(t, errors.Is(err, ErrInvariantViolation))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestLeadConversionGuardIgnoresOtherMutations(t *testing.T) {
	guard := LeadConversionGuard()
	ctx := userCtx(1)

	m := &store.Mutation{
		Entity: objects.EntityLead,
		Op:     policies.OpInsert,
		New:    &objects.Lead{ID: 1},
	}
	require.NoError(t, guard(ctx, m))

	m = &store.Mutation{
		Entity: objects.EntityContact,
		Op:     policies.OpUpdate,
		Old:    &objects.Contact{ID: 1},
		New:    &objects.Contact{ID: 1},
	}
	require.NoError(t, guard(ctx, m))
}

func TestTaskCompletionGuard(t *testing.T) {
	guard := TaskCompletionGuard()

	assignee := 3
	old := &objects.Task{ID: 10, Status: "open", AssigneeUserID: &assignee, CreatorUserID: 2}
	completed := &objects.Task{ID: 10, Status: objects.TaskStatusCompleted, AssigneeUserID: &assignee, CreatorUserID: 2}

	m := &store.Mutation{Entity: objects.EntityTask, Op: policies.OpUpdate, Old: old, New: completed}

	// Assignee may complete.
	require.NoError(t, guard(userCtx(assignee), m))

	// Creator may not.
	err := guard(userCtx(2), m)
	require.True(t, errors.Is(err, ErrInvariantViolation))

	// An administrator may not either.
	err = guard(userCtx(1), m)
	require.True(t, errors.Is(err, ErrInvariantViolation))

	// Unassigned tasks cannot be completed at all.
	unassigned := &objects.Task{ID: 11, Status: "open", CreatorUserID: 2}
	done := &objects.Task{ID: 11, Status: objects.TaskStatusCompleted, CreatorUserID: 2}
	m = &store.Mutation{Entity: objects.EntityTask, Op: policies.OpUpdate, Old: unassigned, New: done}
	err = guard(userCtx(2), m)
	require.True(t, errors.Is(err, ErrInvariantViolation))
}

func TestTaskCompletionGuardIgnoresOtherTransitions(t *testing.T) {
	guard := TaskCompletionGuard()

	assignee := 3
	old := &objects.Task{ID: 10, Status: "open", AssigneeUserID: &assignee}

	// Non-completion status changes pass for anyone the policy allowed.
	next := &objects.Task{ID: 10, Status: "in_progress", AssigneeUserID: &assignee}
	m := &store.Mutation{Entity: objects.EntityTask, Op: policies.OpUpdate, Old: old, New: next}
	require.NoError(t, guard(userCtx(99), m))

	// Already-completed tasks can be edited without re-triggering the check.
	doneOld := &objects.Task{ID: 10, Status: objects.TaskStatusCompleted, AssigneeUserID: &assignee}
	doneNext := &objects.Task{ID: 10, Status: objects.TaskStatusCompleted, AssigneeUserID: &assignee, Title: "renamed"}
	m = &store.Mutation{Entity: objects.EntityTask, Op: policies.OpUpdate, Old: doneOld, New: doneNext}
	require.NoError(t, guard(userCtx(99), m))
}

func TestDocumentAttachmentGuard(t *testing.T) {
	guard := DocumentAttachmentGuard()
	ctx := userCtx(1)

	free := &objects.Document{FileName: "a.pdf"}
	m := &store.Mutation{Entity: objects.EntityDocument, Op: policies.OpInsert, New: free}
	require.NoError(t, guard(ctx, m))

	single := &objects.Document{FileName: "a.pdf", LeadID: intp(1)}
	m = &store.Mutation{Entity: objects.EntityDocument, Op: policies.OpInsert, New: single}
	require.NoError(t, guard(ctx, m))

	double := &objects.Document{FileName: "a.pdf", LeadID: intp(1), DealID: intp(2)}
	m = &store.Mutation{Entity: objects.EntityDocument, Op: policies.OpInsert, New: double}
	err := guard(ctx, m)
	require.True(t, errors.Is(err, ErrInvariantViolation))
}

func TestOwnershipGuard(t *testing.T) {
	reader := &fakeReader{roles: map[int][]roles.Role{
		1: {roles.RoleAdmin},
		2: {roles.RoleManager},
	}}
	guard := OwnershipGuard(roles.NewResolver(reader))

	old := &objects.Lead{ID: 5, OwnerUserID: 3}
	moved := &objects.Lead{ID: 5, OwnerUserID: 4}
	m := &store.Mutation{Entity: objects.EntityLead, Op: policies.OpUpdate, Old: old, New: moved}

	// Admin may reassign.
	require.NoError(t, guard(userCtx(1), m))

	// Manager may not.
	err := guard(userCtx(2), m)
	require.True(t, errors.Is(err, ErrInvariantViolation))

	// Owner may not hand the record off either.
	err = guard(userCtx(3), m)
	require.True(t, errors.Is(err, ErrInvariantViolation))

	// Unchanged owner never consults the resolver.
	same := &objects.Lead{ID: 5, OwnerUserID: 3, Company: "acme"}
	m = &store.Mutation{Entity: objects.EntityLead, Op: policies.OpUpdate, Old: old, New: same}
	require.NoError(t, guard(userCtx(3), m))
}
