package roles

import (
	"context"
)

// Membership is one (team, role) pair for a principal.
type Membership struct {
	TeamID int
	Role   TeamRole
}

// AssignmentReader is the privileged read path into role and membership
// assignment data. Implementations must read the underlying tables
// directly, bypassing the row policy layer, and must be free of side
// effects so resolution can run repeatedly per row.
type AssignmentReader interface {
	// RolesOf returns every role assigned to the user, empty when none.
	RolesOf(ctx context.Context, userID int) ([]Role, error)
	// MembershipsOf returns every team membership of the user.
	MembershipsOf(ctx context.Context, userID int) ([]Membership, error)
}

// Resolver resolves a principal to its effective role. Resolution happens
// at check time on every call; results are never cached across requests so
// concurrent role changes by administrators take effect immediately.
type Resolver struct {
	reader AssignmentReader
}

func NewResolver(reader AssignmentReader) *Resolver {
	return &Resolver{reader: reader}
}

// EffectiveRole applies precedence admin > manager > user and returns
// RoleUser when no assignment exists.
func (r *Resolver) EffectiveRole(ctx context.Context, userID int) (Role, error) {
	assigned, err := r.reader.RolesOf(ctx, userID)
	if err != nil {
		return RoleUser, &ResolutionError{UserID: userID, Err: err}
	}

	effective := RoleUser
	for _, role := range assigned {
		if role.Valid() && role.Outranks(effective) {
			effective = role
		}
	}

	return effective, nil
}

// HasRole reports whether the user holds the exact role, counting the
// implicit default RoleUser.
func (r *Resolver) HasRole(ctx context.Context, userID int, role Role) (bool, error) {
	if role == RoleUser {
		return true, nil
	}

	assigned, err := r.reader.RolesOf(ctx, userID)
	if err != nil {
		return false, &ResolutionError{UserID: userID, Err: err}
	}

	for _, a := range assigned {
		if a == role {
			return true, nil
		}
	}

	return false, nil
}

// IsAdmin reports whether the user's effective role is admin.
func (r *Resolver) IsAdmin(ctx context.Context, userID int) (bool, error) {
	effective, err := r.EffectiveRole(ctx, userID)
	if err != nil {
		return false, err
	}

	return effective == RoleAdmin, nil
}

// IsManagerOrAbove reports whether the user's effective role is manager or
// admin.
func (r *Resolver) IsManagerOrAbove(ctx context.Context, userID int) (bool, error) {
	effective, err := r.EffectiveRole(ctx, userID)
	if err != nil {
		return false, err
	}

	return effective == RoleAdmin || effective == RoleManager, nil
}

// TeamResolver resolves team membership and team-level authority. Same
// trust model as Resolver: privileged direct reads, no policy re-entry.
type TeamResolver struct {
	reader AssignmentReader
}

func NewTeamResolver(reader AssignmentReader) *TeamResolver {
	return &TeamResolver{reader: reader}
}

// TeamsFor returns every (team, role) pair of the user.
func (r *TeamResolver) TeamsFor(ctx context.Context, userID int) ([]Membership, error) {
	memberships, err := r.reader.MembershipsOf(ctx, userID)
	if err != nil {
		return nil, &ResolutionError{UserID: userID, Err: err}
	}

	return memberships, nil
}

// IsTeamMember reports whether the user belongs to the team in any role.
func (r *TeamResolver) IsTeamMember(ctx context.Context, userID, teamID int) (bool, error) {
	memberships, err := r.TeamsFor(ctx, userID)
	if err != nil {
		return false, err
	}

	for _, m := range memberships {
		if m.TeamID == teamID {
			return true, nil
		}
	}

	return false, nil
}

// IsTeamManager reports whether the user holds owner or manager authority
// over the team.
func (r *TeamResolver) IsTeamManager(ctx context.Context, userID, teamID int) (bool, error) {
	memberships, err := r.TeamsFor(ctx, userID)
	if err != nil {
		return false, err
	}

	for _, m := range memberships {
		if m.TeamID == teamID && m.Role.Manages() {
			return true, nil
		}
	}

	return false, nil
}
