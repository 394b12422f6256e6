package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/looplj/crmhub/internal/objects"
	"github.com/looplj/crmhub/internal/policies"
)

// TeamRepo provides row access to teams through the policy pipeline.
type TeamRepo struct {
	s *Store
}

func (s *Store) Teams() *TeamRepo { return &TeamRepo{s: s} }

const teamColumns = `id, name, description, owner_user_id, created_at, updated_at`

func scanTeam(scan func(...any) error) (*objects.Team, error) {
	var team objects.Team

	err := scan(
		&team.ID, &team.Name, &team.Description, &team.OwnerUserID,
		&team.CreatedAt, &team.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &team, nil
}

func (r *TeamRepo) fetch(ctx context.Context, id int) (*objects.Team, error) {
	query := r.s.rebind(`SELECT ` + teamColumns + ` FROM teams WHERE id = ?`)

	team, err := scanTeam(r.s.conn(ctx).QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("store: fetch team %d: %w", id, err)
	}

	return team, nil
}

func (r *TeamRepo) Create(ctx context.Context, team *objects.Team) (*objects.Team, error) {
	team.CreatedAt = now()
	team.UpdatedAt = team.CreatedAt

	m := &Mutation{Entity: objects.EntityTeam, Op: policies.OpInsert, New: team}

	err := r.s.runMutation(ctx, m, func(ctx context.Context, conn Conn) error {
		query := r.s.rebind(`INSERT INTO teams (name, description, owner_user_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?) RETURNING id`)

		return conn.QueryRowContext(ctx, query,
			team.Name, team.Description, team.OwnerUserID, team.CreatedAt, team.UpdatedAt,
		).Scan(&team.ID)
	})
	if err != nil {
		return nil, err
	}

	return team, nil
}

func (r *TeamRepo) Get(ctx context.Context, id int) (*objects.Team, error) {
	var team *objects.Team

	err := r.s.RunInTransaction(ctx, func(ctx context.Context) error {
		fetched, err := r.fetch(ctx, id)
		if err != nil {
			return err
		}

		if err := r.s.authorizeRead(ctx, fetched); err != nil {
			return err
		}

		team = fetched

		return nil
	})
	if err != nil {
		return nil, err
	}

	return team, nil
}

func (r *TeamRepo) List(ctx context.Context) ([]*objects.Team, error) {
	query := r.s.rebind(`SELECT ` + teamColumns + ` FROM teams ORDER BY id`)

	rows, err := r.s.conn(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("store: list teams: %w", err)
	}
	defer rows.Close()

	var teams []*objects.Team

	for rows.Next() {
		team, err := scanTeam(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("store: scan team: %w", err)
		}

		teams = append(teams, team)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return filterReadable(ctx, r.s, teams), nil
}

func (r *TeamRepo) Update(ctx context.Context, team *objects.Team) (*objects.Team, error) {
	var updated *objects.Team

	err := r.s.RunInTransaction(ctx, func(ctx context.Context) error {
		old, err := r.fetch(ctx, team.ID)
		if err != nil {
			return err
		}

		next := *team
		next.CreatedAt = old.CreatedAt
		next.UpdatedAt = now()

		m := &Mutation{Entity: objects.EntityTeam, Op: policies.OpUpdate, Old: old, New: &next}

		err = r.s.runMutation(ctx, m, func(ctx context.Context, conn Conn) error {
			query := r.s.rebind(`UPDATE teams SET name = ?, description = ?, owner_user_id = ?, updated_at = ? WHERE id = ?`)

			_, err := conn.ExecContext(ctx, query,
				next.Name, next.Description, next.OwnerUserID, next.UpdatedAt, next.ID,
			)

			return err
		})
		if err != nil {
			return err
		}

		updated = &next

		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (r *TeamRepo) Delete(ctx context.Context, id int) error {
	return r.s.RunInTransaction(ctx, func(ctx context.Context) error {
		old, err := r.fetch(ctx, id)
		if err != nil {
			return err
		}

		m := &Mutation{Entity: objects.EntityTeam, Op: policies.OpDelete, Old: old}

		return r.s.runMutation(ctx, m, func(ctx context.Context, conn Conn) error {
			query := r.s.rebind(`DELETE FROM teams WHERE id = ?`)

			_, err := conn.ExecContext(ctx, query, id)

			return err
		})
	})
}

// TeamMemberRepo manages team membership rows. Membership changes flow
// through the same pipeline so manager checks and auditing apply.
type TeamMemberRepo struct {
	s *Store
}

func (s *Store) TeamMembers() *TeamMemberRepo { return &TeamMemberRepo{s: s} }

const teamMemberColumns = `id, team_id, user_id, role, created_at`

func scanTeamMember(scan func(...any) error) (*objects.TeamMember, error) {
	var member objects.TeamMember

	err := scan(&member.ID, &member.TeamID, &member.UserID, &member.Role, &member.CreatedAt)
	if err != nil {
		return nil, err
	}

	return &member, nil
}

func (r *TeamMemberRepo) fetch(ctx context.Context, id int) (*objects.TeamMember, error) {
	query := r.s.rebind(`SELECT ` + teamMemberColumns + ` FROM team_members WHERE id = ?`)

	member, err := scanTeamMember(r.s.conn(ctx).QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("store: fetch team member %d: %w", id, err)
	}

	return member, nil
}

func (r *TeamMemberRepo) Create(ctx context.Context, member *objects.TeamMember) (*objects.TeamMember, error) {
	if member.Role == "" {
		member.Role = "member"
	}

	member.CreatedAt = now()

	m := &Mutation{Entity: objects.EntityTeamMember, Op: policies.OpInsert, New: member}

	err := r.s.runMutation(ctx, m, func(ctx context.Context, conn Conn) error {
		query := r.s.rebind(`INSERT INTO team_members (team_id, user_id, role, created_at)
			VALUES (?, ?, ?, ?) RETURNING id`)

		return conn.QueryRowContext(ctx, query,
			member.TeamID, member.UserID, member.Role, member.CreatedAt,
		).Scan(&member.ID)
	})
	if err != nil {
		return nil, err
	}

	return member, nil
}

func (r *TeamMemberRepo) ListByTeam(ctx context.Context, teamID int) ([]*objects.TeamMember, error) {
	query := r.s.rebind(`SELECT ` + teamMemberColumns + ` FROM team_members WHERE team_id = ? ORDER BY id`)

	rows, err := r.s.conn(ctx).QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("store: list team members: %w", err)
	}
	defer rows.Close()

	var members []*objects.TeamMember

	for rows.Next() {
		member, err := scanTeamMember(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("store: scan team member: %w", err)
		}

		members = append(members, member)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return filterReadable(ctx, r.s, members), nil
}

func (r *TeamMemberRepo) Update(ctx context.Context, member *objects.TeamMember) (*objects.TeamMember, error) {
	var updated *objects.TeamMember

	err := r.s.RunInTransaction(ctx, func(ctx context.Context) error {
		old, err := r.fetch(ctx, member.ID)
		if err != nil {
			return err
		}

		next := *member
		next.TeamID = old.TeamID
		next.UserID = old.UserID
		next.CreatedAt = old.CreatedAt

		m := &Mutation{Entity: objects.EntityTeamMember, Op: policies.OpUpdate, Old: old, New: &next}

		err = r.s.runMutation(ctx, m, func(ctx context.Context, conn Conn) error {
			query := r.s.rebind(`UPDATE team_members SET role = ? WHERE id = ?`)

			_, err := conn.ExecContext(ctx, query, next.Role, next.ID)

			return err
		})
		if err != nil {
			return err
		}

		updated = &next

		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (r *TeamMemberRepo) Delete(ctx context.Context, id int) error {
	return r.s.RunInTransaction(ctx, func(ctx context.Context) error {
		old, err := r.fetch(ctx, id)
		if err != nil {
			return err
		}

		m := &Mutation{Entity: objects.EntityTeamMember, Op: policies.OpDelete, Old: old}

		return r.s.runMutation(ctx, m, func(ctx context.Context, conn Conn) error {
			query := r.s.rebind(`DELETE FROM team_members WHERE id = ?`)

			_, err := conn.ExecContext(ctx, query, id)

			return err
		})
	})
}
