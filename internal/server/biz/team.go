package biz

import (
	"context"

	"go.uber.org/fx"

	"github.com/looplj/crmhub/internal/authz"
	"github.com/looplj/crmhub/internal/objects"
	"github.com/looplj/crmhub/internal/roles"
	"github.com/looplj/crmhub/internal/store"
)

type TeamServiceParams struct {
	fx.In

	Store *store.Store
}

func NewTeamService(params TeamServiceParams) *TeamService {
	return &TeamService{
		AbstractService: &AbstractService{store: params.Store},
	}
}

type TeamService struct {
	*AbstractService
}

// CreateTeam stores a team and bootstraps the owner as its first member
// with the owner role. The membership insert runs under a system bypass:
// the owner cannot manage a team they are not yet a member of.
func (s *TeamService) CreateTeam(ctx context.Context, team *objects.Team) (*objects.Team, error) {
	var created *objects.Team

	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error

		created, err = s.store.Teams().Create(ctx, team)
		if err != nil {
			return err
		}

		_, err = authz.RunWithSystemBypass(ctx, "team-bootstrap", func(bypassCtx context.Context) (*objects.TeamMember, error) {
			return s.store.TeamMembers().Create(bypassCtx, &objects.TeamMember{
				TeamID: created.ID,
				UserID: created.OwnerUserID,
				Role:   string(roles.TeamRoleOwner),
			})
		})

		return err
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (s *TeamService) GetTeam(ctx context.Context, id int) (*objects.Team, error) {
	return s.store.Teams().Get(ctx, id)
}

func (s *TeamService) ListTeams(ctx context.Context) ([]*objects.Team, error) {
	return s.store.Teams().List(ctx)
}

func (s *TeamService) UpdateTeam(ctx context.Context, team *objects.Team) (*objects.Team, error) {
	return s.store.Teams().Update(ctx, team)
}

func (s *TeamService) DeleteTeam(ctx context.Context, id int) error {
	return s.store.Teams().Delete(ctx, id)
}

func (s *TeamService) AddMember(ctx context.Context, member *objects.TeamMember) (*objects.TeamMember, error) {
	return s.store.TeamMembers().Create(ctx, member)
}

func (s *TeamService) ListMembers(ctx context.Context, teamID int) ([]*objects.TeamMember, error) {
	return s.store.TeamMembers().ListByTeam(ctx, teamID)
}

func (s *TeamService) UpdateMember(ctx context.Context, member *objects.TeamMember) (*objects.TeamMember, error) {
	return s.store.TeamMembers().Update(ctx, member)
}

func (s *TeamService) RemoveMember(ctx context.Context, memberID int) error {
	return s.store.TeamMembers().Delete(ctx, memberID)
}
