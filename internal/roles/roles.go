// Package roles resolves principals to roles and team authority. Resolvers
// read assignment data through a privileged, read-only store path handed in
// as a capability, never through the row policy layer they are used to
// implement. That keeps evaluation side-effect free and breaks the
// recursion a policy-on-the-assignment-table would otherwise cause.
package roles

import "fmt"

// Role is the general hierarchy: admin > manager > user.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

// precedence orders roles for effective-role resolution.
var precedence = map[Role]int{
	RoleAdmin:   3,
	RoleManager: 2,
	RoleUser:    1,
}

// Valid reports whether r is a known role value.
func (r Role) Valid() bool {
	_, ok := precedence[r]
	return ok
}

// Outranks reports whether r strictly outranks other.
func (r Role) Outranks(other Role) bool {
	return precedence[r] > precedence[other]
}

// TeamRole is team-level authority, independent of the general hierarchy.
type TeamRole string

const (
	TeamRoleOwner   TeamRole = "owner"
	TeamRoleManager TeamRole = "manager"
	TeamRoleMember  TeamRole = "member"
)

// Valid reports whether t is a known team role value.
func (t TeamRole) Valid() bool {
	switch t {
	case TeamRoleOwner, TeamRoleManager, TeamRoleMember:
		return true
	default:
		return false
	}
}

// Manages reports whether the team role carries membership-management
// authority over its team.
func (t TeamRole) Manages() bool {
	return t == TeamRoleOwner || t == TeamRoleManager
}

// ResolutionError reports that role or membership data could not be
// resolved for a principal. The policy layer treats it as deny; it never
// bubbles past the policy boundary as an exception.
type ResolutionError struct {
	UserID int
	Err    error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("roles: resolution failed for user %d: %v", e.UserID, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }
