package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/looplj/crmhub/internal/objects"
	"github.com/looplj/crmhub/internal/roles"
)

// PrivilegedReader is the trusted, read-only access path used by the role
// and team resolvers and by relationship-derived policy rules. It reads
// assignment and ownership data directly, never through the policy
// pipeline, which is what breaks recursive authorization: a policy on
// team_members may call IsTeamManager without re-entering itself.
//
// The reader is handed to the resolvers as an explicit capability during
// wiring; it is not reachable from request handling code.
type PrivilegedReader struct {
	s *Store
}

// PrivilegedReader returns the trusted read path.
func (s *Store) PrivilegedReader() *PrivilegedReader {
	return &PrivilegedReader{s: s}
}

// RolesOf reads the user's role assignments.
func (r *PrivilegedReader) RolesOf(ctx context.Context, userID int) ([]roles.Role, error) {
	query := r.s.rebind(`SELECT role FROM role_assignments WHERE user_id = ?`)

	rows, err := r.s.conn(ctx).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("store: read role assignments: %w", err)
	}
	defer rows.Close()

	var assigned []roles.Role

	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, fmt.Errorf("store: scan role assignment: %w", err)
		}

		assigned = append(assigned, roles.Role(role))
	}

	return assigned, rows.Err()
}

// MembershipsOf reads the user's team memberships. Team ownership counts
// as an owner membership even without an explicit member row.
func (r *PrivilegedReader) MembershipsOf(ctx context.Context, userID int) ([]roles.Membership, error) {
	query := r.s.rebind(`SELECT team_id, role FROM team_members WHERE user_id = ?`)

	rows, err := r.s.conn(ctx).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("store: read team memberships: %w", err)
	}
	defer rows.Close()

	var memberships []roles.Membership

	seen := make(map[int]bool)

	for rows.Next() {
		var m roles.Membership

		var role string
		if err := rows.Scan(&m.TeamID, &role); err != nil {
			return nil, fmt.Errorf("store: scan team membership: %w", err)
		}

		m.Role = roles.TeamRole(role)
		seen[m.TeamID] = true
		memberships = append(memberships, m)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	ownedQuery := r.s.rebind(`SELECT id FROM teams WHERE owner_user_id = ?`)

	owned, err := r.s.conn(ctx).QueryContext(ctx, ownedQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("store: read owned teams: %w", err)
	}
	defer owned.Close()

	for owned.Next() {
		var teamID int
		if err := owned.Scan(&teamID); err != nil {
			return nil, fmt.Errorf("store: scan owned team: %w", err)
		}

		if !seen[teamID] {
			memberships = append(memberships, roles.Membership{TeamID: teamID, Role: roles.TeamRoleOwner})
		}
	}

	return memberships, owned.Err()
}

// ownerTables maps primary entities to the table carrying their owner
// attribute.
var ownerTables = map[string]string{
	objects.EntityLead:    "leads",
	objects.EntityContact: "contacts",
	objects.EntityDeal:    "deals",
	objects.EntityTeam:    "teams",
}

// OwnerOf resolves the owner of a primary record for relationship-derived
// visibility rules.
func (r *PrivilegedReader) OwnerOf(ctx context.Context, entity string, id int) (int, bool, error) {
	table, ok := ownerTables[entity]
	if !ok {
		return 0, false, fmt.Errorf("store: entity %s has no owner attribute", entity)
	}

	query := r.s.rebind(fmt.Sprintf(`SELECT owner_user_id FROM %s WHERE id = ?`, table))

	var ownerID int

	err := r.s.conn(ctx).QueryRowContext(ctx, query, id).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}

	if err != nil {
		return 0, false, fmt.Errorf("store: resolve owner of %s/%d: %w", entity, id, err)
	}

	return ownerID, true, nil
}
