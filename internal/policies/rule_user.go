package policies

import (
	"context"

	"github.com/looplj/crmhub/internal/authz"
	"github.com/looplj/crmhub/internal/objects"
)

// selfUserRule allows a principal to act on their own user row.
func selfUserRule() Rule {
	return RuleFunc(func(ctx context.Context, a Access) error {
		userID, ok := authz.CurrentUserID(ctx)
		if !ok {
			return Skipf("no acting user")
		}

		user, ok := a.Row.(*objects.User)
		if !ok {
			return Skipf("not a user row")
		}

		if user.ID == userID {
			return Allowf("own user row")
		}

		return Skipf("someone else's user row")
	})
}

// selfAssignmentRule allows a principal to see their own role assignments.
func selfAssignmentRule() Rule {
	return RuleFunc(func(ctx context.Context, a Access) error {
		userID, ok := authz.CurrentUserID(ctx)
		if !ok {
			return Skipf("no acting user")
		}

		assignment, ok := a.Row.(*objects.RoleAssignment)
		if !ok {
			return Skipf("not a role assignment row")
		}

		if assignment.UserID == userID {
			return Allowf("own role assignment")
		}

		return Skipf("someone else's role assignment")
	})
}

// UserPolicy authorizes access to user rows.
func UserPolicy(res Resolvers) EntityPolicy {
	return EntityPolicy{
		Select: Chain{
			AdminRule(res.Roles),
			ManagerOrAboveRule(res.Roles),
			selfUserRule(),
		},
		Insert: Chain{
			AdminRule(res.Roles),
		},
		Update: Chain{
			AdminRule(res.Roles),
			selfUserRule(),
		},
		Delete: Chain{
			AdminRule(res.Roles),
		},
	}
}

// RoleAssignmentPolicy authorizes access to role assignment rows. Only
// administrators grant or revoke roles; everyone may see their own
// assignments. The role resolver itself never consults this policy — it
// reads assignments through the privileged path.
func RoleAssignmentPolicy(res Resolvers) EntityPolicy {
	return EntityPolicy{
		Select: Chain{
			AdminRule(res.Roles),
			selfAssignmentRule(),
		},
		Insert: Chain{
			AdminRule(res.Roles),
		},
		Update: Chain{
			AdminRule(res.Roles),
		},
		Delete: Chain{
			AdminRule(res.Roles),
		},
	}
}
