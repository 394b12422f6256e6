package policies

import (
	"context"

	"github.com/looplj/crmhub/internal/authz"
	"github.com/looplj/crmhub/internal/objects"
	"github.com/looplj/crmhub/internal/roles"
)

// OwnerResolver resolves the owner of a primary record through the
// privileged read path, so relationship-derived rules on dependent rows
// never re-enter the policy layer.
type OwnerResolver interface {
	OwnerOf(ctx context.Context, entity string, id int) (ownerID int, ok bool, err error)
}

// Resolvers bundles the privileged resolvers the rule set needs.
type Resolvers struct {
	Roles  *roles.Resolver
	Teams  *roles.TeamResolver
	Owners OwnerResolver
}

// AdminRule allows administrators unconditionally. Resolution failures
// skip, which denies by default once the chain is exhausted.
func AdminRule(r *roles.Resolver) Rule {
	return RuleFunc(func(ctx context.Context, a Access) error {
		userID, ok := authz.CurrentUserID(ctx)
		if !ok {
			return Skipf("no acting user")
		}

		isAdmin, err := r.IsAdmin(ctx, userID)
		if err != nil {
			return Skipf("role resolution failed: %v", err)
		}

		if isAdmin {
			return Allowf("admin has full access")
		}

		return Skipf("not an admin")
	})
}

// ManagerOrAboveRule allows managers and administrators.
func ManagerOrAboveRule(r *roles.Resolver) Rule {
	return RuleFunc(func(ctx context.Context, a Access) error {
		userID, ok := authz.CurrentUserID(ctx)
		if !ok {
			return Skipf("no acting user")
		}

		elevated, err := r.IsManagerOrAbove(ctx, userID)
		if err != nil {
			return Skipf("role resolution failed: %v", err)
		}

		if elevated {
			return Allowf("manager or above")
		}

		return Skipf("not manager or above")
	})
}

// OwnerRule allows the row's owner.
func OwnerRule() Rule {
	return RuleFunc(func(ctx context.Context, a Access) error {
		userID, ok := authz.CurrentUserID(ctx)
		if !ok {
			return Skipf("no acting user")
		}

		owned, ok := a.Row.(objects.Owned)
		if !ok {
			return Skipf("row has no owner attribute")
		}

		ownerID, ok := owned.OwnerID()
		if ok && ownerID == userID {
			return Allowf("row owner")
		}

		return Skipf("not the owner")
	})
}

// CreatorRule allows the row's creator (or uploader).
func CreatorRule() Rule {
	return RuleFunc(func(ctx context.Context, a Access) error {
		userID, ok := authz.CurrentUserID(ctx)
		if !ok {
			return Skipf("no acting user")
		}

		created, ok := a.Row.(objects.Created)
		if !ok {
			return Skipf("row has no creator attribute")
		}

		creatorID, ok := created.CreatorID()
		if ok && creatorID == userID {
			return Allowf("row creator")
		}

		return Skipf("not the creator")
	})
}

// AssigneeOrCreatorRule allows the task's assignee or creator.
func AssigneeOrCreatorRule() Rule {
	return RuleFunc(func(ctx context.Context, a Access) error {
		userID, ok := authz.CurrentUserID(ctx)
		if !ok {
			return Skipf("no acting user")
		}

		task, ok := a.Row.(*objects.Task)
		if !ok {
			return Skipf("not a task row")
		}

		if assignee, ok := task.AssigneeID(); ok && assignee == userID {
			return Allowf("task assignee")
		}

		if task.CreatorUserID == userID {
			return Allowf("task creator")
		}

		return Skipf("neither assignee nor creator")
	})
}

// ParentOwnerRule allows the owner of the primary record a dependent row
// is attached to.
func ParentOwnerRule(owners OwnerResolver) Rule {
	return RuleFunc(func(ctx context.Context, a Access) error {
		userID, ok := authz.CurrentUserID(ctx)
		if !ok {
			return Skipf("no acting user")
		}

		attached, ok := a.Row.(objects.Attached)
		if !ok {
			return Skipf("row is not attached to a primary record")
		}

		for _, ref := range attached.ParentRefs() {
			ownerID, found, err := owners.OwnerOf(ctx, ref.Entity, ref.ID)
			if err != nil {
				return Skipf("owner resolution failed: %v", err)
			}

			if found && ownerID == userID {
				return Allowf("owns referenced %s", ref.Entity)
			}
		}

		return Skipf("does not own any referenced record")
	})
}

// SelfMembershipRule allows a principal to see their own membership row.
func SelfMembershipRule() Rule {
	return RuleFunc(func(ctx context.Context, a Access) error {
		userID, ok := authz.CurrentUserID(ctx)
		if !ok {
			return Skipf("no acting user")
		}

		member, ok := a.Row.(*objects.TeamMember)
		if !ok {
			return Skipf("not a team member row")
		}

		if member.UserID == userID {
			return Allowf("own membership row")
		}

		return Skipf("someone else's membership row")
	})
}

// TeamManagerRule allows a team's owner or manager to manage that team's
// membership rows.
func TeamManagerRule(teams *roles.TeamResolver) Rule {
	return RuleFunc(func(ctx context.Context, a Access) error {
		userID, ok := authz.CurrentUserID(ctx)
		if !ok {
			return Skipf("no acting user")
		}

		member, ok := a.Row.(*objects.TeamMember)
		if !ok {
			return Skipf("not a team member row")
		}

		manages, err := teams.IsTeamManager(ctx, userID, member.TeamID)
		if err != nil {
			return Skipf("team resolution failed: %v", err)
		}

		if manages {
			return Allowf("manages team %d", member.TeamID)
		}

		return Skipf("does not manage team %d", member.TeamID)
	})
}
