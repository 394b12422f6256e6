package roles

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	roles       map[int][]Role
	memberships map[int][]Membership
	err         error
}

func (f *fakeReader) RolesOf(ctx context.Context, userID int) ([]Role, error) {
	if f.err != nil {
		return nil, f.err
	}

	return f.roles[userID], nil
}

func (f *fakeReader) MembershipsOf(ctx context.Context, userID int) ([]Membership, error) {
	if f.err != nil {
		return nil, f.err
	}

	return f.memberships[userID], nil
}

func TestEffectiveRole(t *testing.T) {
	reader := &fakeReader{roles: map[int][]Role{
		1: {RoleAdmin, RoleUser},
		2: {RoleManager},
		3: {RoleUser},
		5: {RoleManager, RoleAdmin},
		6: {Role("bogus")},
	}}
	resolver := NewResolver(reader)
	ctx := context.Background()

	tests := []struct {
		name   string
		userID int
		want   Role
	}{
		{"admin wins over user", 1, RoleAdmin},
		{"manager", 2, RoleManager},
		{"explicit user", 3, RoleUser},
		{"no assignment defaults to user", 4, RoleUser},
		{"admin wins over manager", 5, RoleAdmin},
		{"unknown role value ignored", 6, RoleUser},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolver.EffectiveRole(ctx, tt.userID)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestHasRole(t *testing.T) {
	reader := &fakeReader{roles: map[int][]Role{1: {RoleManager}}}
	resolver := NewResolver(reader)
	ctx := context.Background()

	ok, err := resolver.HasRole(ctx, 1, RoleManager)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = resolver.HasRole(ctx, 1, RoleAdmin)
	require.NoError(t, err)
	require.False(t, ok)

	// RoleUser is implicit for everyone.
	ok, err = resolver.HasRole(ctx, 99, RoleUser)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestIsManagerOrAbove(t *testing.T) {
	reader := &fakeReader{roles: map[int][]Role{
		1: {RoleAdmin},
		2: {RoleManager},
		3: {RoleUser},
	}}
	resolver := NewResolver(reader)
	ctx := context.Background()

	for userID, want := range map[int]bool{1: true, 2: true, 3: false, 4: false} {
		got, err := resolver.IsManagerOrAbove(ctx, userID)
		require.NoError(t, err)
		require.Equal(t, want, got, "user %d", userID)
	}
}

func TestResolutionError(t *testing.T) {
	cause := errors.New("connection reset")
	resolver := NewResolver(&fakeReader{err: cause})

	_, err := resolver.EffectiveRole(context.Background(), 1)
	require.Error(t, err)

	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	require.Equal(t, 1, resErr.UserID)
	require.ErrorIs(t, err, cause)
}

func TestTeamResolver(t *testing.T) {
	reader := &fakeReader{memberships: map[int][]Membership{
		1: {{TeamID: 10, Role: TeamRoleOwner}},
		2: {{TeamID: 10, Role: TeamRoleManager}, {TeamID: 11, Role: TeamRoleMember}},
		3: {{TeamID: 10, Role: TeamRoleMember}},
	}}
	resolver := NewTeamResolver(reader)
	ctx := context.Background()

	t.Run("member checks", func(t *testing.T) {
		ok, err := resolver.IsTeamMember(ctx, 2, 11)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = resolver.IsTeamMember(ctx, 3, 11)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("manager checks", func(t *testing.T) {
		// Owner and manager both manage; member does not.
		for userID, want := range map[int]bool{1: true, 2: true, 3: false} {
			ok, err := resolver.IsTeamManager(ctx, userID, 10)
			require.NoError(t, err)
			require.Equal(t, want, ok, "user %d", userID)
		}
	})

	t.Run("teams for", func(t *testing.T) {
		memberships, err := resolver.TeamsFor(ctx, 2)
		require.NoError(t, err)
		require.Len(t, memberships, 2)
	})
}
