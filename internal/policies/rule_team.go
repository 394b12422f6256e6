package policies

import (
	"context"

	"github.com/looplj/crmhub/internal/authz"
	"github.com/looplj/crmhub/internal/objects"
	"github.com/looplj/crmhub/internal/roles"
)

// teamVisibleToMemberRule lets any member see the team they belong to.
func teamVisibleToMemberRule(teams *roles.TeamResolver) Rule {
	return RuleFunc(func(ctx context.Context, a Access) error {
		userID, ok := authz.CurrentUserID(ctx)
		if !ok {
			return Skipf("no acting user")
		}

		team, ok := a.Row.(*objects.Team)
		if !ok {
			return Skipf("not a team row")
		}

		member, err := teams.IsTeamMember(ctx, userID, team.ID)
		if err != nil {
			return Skipf("team resolution failed: %v", err)
		}

		if member {
			return Allowf("member of team %d", team.ID)
		}

		return Skipf("not a member of team %d", team.ID)
	})
}

// TeamPolicy authorizes access to team rows. Owners manage their own team;
// members see the teams they belong to.
func TeamPolicy(res Resolvers) EntityPolicy {
	return EntityPolicy{
		Select: Chain{
			AdminRule(res.Roles),
			ManagerOrAboveRule(res.Roles),
			OwnerRule(),
			teamVisibleToMemberRule(res.Teams),
		},
		Insert: Chain{
			AdminRule(res.Roles),
			ManagerOrAboveRule(res.Roles),
		},
		Update: Chain{
			AdminRule(res.Roles),
			OwnerRule(),
		},
		Delete: Chain{
			AdminRule(res.Roles),
			OwnerRule(),
		},
	}
}

// TeamMemberPolicy authorizes access to team membership rows: admins manage
// all, managers view all, a team's own owner/manager manages that team's
// membership, and a principal always sees their own membership row.
func TeamMemberPolicy(res Resolvers) EntityPolicy {
	return EntityPolicy{
		Select: Chain{
			AdminRule(res.Roles),
			ManagerOrAboveRule(res.Roles),
			TeamManagerRule(res.Teams),
			SelfMembershipRule(),
		},
		Insert: Chain{
			AdminRule(res.Roles),
			TeamManagerRule(res.Teams),
		},
		Update: Chain{
			AdminRule(res.Roles),
			TeamManagerRule(res.Teams),
		},
		Delete: Chain{
			AdminRule(res.Roles),
			TeamManagerRule(res.Teams),
		},
	}
}
