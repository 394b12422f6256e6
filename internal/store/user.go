package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/looplj/crmhub/internal/objects"
	"github.com/looplj/crmhub/internal/policies"
)

// UserRepo provides row access to users through the policy pipeline.
type UserRepo struct {
	s *Store
}

func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

const userColumns = `id, email, password, first_name, last_name, created_at, updated_at`

func scanUser(scan func(...any) error) (*objects.User, error) {
	var user objects.User

	err := scan(
		&user.ID, &user.Email, &user.Password, &user.FirstName, &user.LastName,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *UserRepo) fetch(ctx context.Context, id int) (*objects.User, error) {
	query := r.s.rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)

	user, err := scanUser(r.s.conn(ctx).QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("store: fetch user %d: %w", id, err)
	}

	return user, nil
}

func (r *UserRepo) Create(ctx context.Context, user *objects.User) (*objects.User, error) {
	user.CreatedAt = now()
	user.UpdatedAt = user.CreatedAt

	m := &Mutation{Entity: objects.EntityUser, Op: policies.OpInsert, New: user}

	err := r.s.runMutation(ctx, m, func(ctx context.Context, conn Conn) error {
		query := r.s.rebind(`INSERT INTO users (email, password, first_name, last_name, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?) RETURNING id`)

		return conn.QueryRowContext(ctx, query,
			user.Email, user.Password, user.FirstName, user.LastName,
			user.CreatedAt, user.UpdatedAt,
		).Scan(&user.ID)
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (r *UserRepo) Get(ctx context.Context, id int) (*objects.User, error) {
	var user *objects.User

	err := r.s.RunInTransaction(ctx, func(ctx context.Context) error {
		fetched, err := r.fetch(ctx, id)
		if err != nil {
			return err
		}

		if err := r.s.authorizeRead(ctx, fetched); err != nil {
			return err
		}

		user = fetched

		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// GetByEmail resolves a login identity. Callers on the authentication
// path run it under a system bypass since no principal exists yet.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*objects.User, error) {
	query := r.s.rebind(`SELECT ` + userColumns + ` FROM users WHERE email = ?`)

	user, err := scanUser(r.s.conn(ctx).QueryRowContext(ctx, query, email).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("store: fetch user by email: %w", err)
	}

	if err := r.s.authorizeRead(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (r *UserRepo) List(ctx context.Context) ([]*objects.User, error) {
	query := r.s.rebind(`SELECT ` + userColumns + ` FROM users ORDER BY id`)

	rows, err := r.s.conn(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("store: list users: %w", err)
	}
	defer rows.Close()

	var users []*objects.User

	for rows.Next() {
		user, err := scanUser(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("store: scan user: %w", err)
		}

		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return filterReadable(ctx, r.s, users), nil
}

func (r *UserRepo) Update(ctx context.Context, user *objects.User) (*objects.User, error) {
	var updated *objects.User

	err := r.s.RunInTransaction(ctx, func(ctx context.Context) error {
		old, err := r.fetch(ctx, user.ID)
		if err != nil {
			return err
		}

		next := *user
		next.CreatedAt = old.CreatedAt
		next.UpdatedAt = now()

		if next.Password == "" {
			next.Password = old.Password
		}

		m := &Mutation{Entity: objects.EntityUser, Op: policies.OpUpdate, Old: old, New: &next}

		err = r.s.runMutation(ctx, m, func(ctx context.Context, conn Conn) error {
			query := r.s.rebind(`UPDATE users SET email = ?, password = ?, first_name = ?, last_name = ?, updated_at = ? WHERE id = ?`)

			_, err := conn.ExecContext(ctx, query,
				next.Email, next.Password, next.FirstName, next.LastName,
				next.UpdatedAt, next.ID,
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

func (r *UserRepo) Delete(ctx context.Context, id int) error {
	return r.s.RunInTransaction(ctx, func(ctx context.Context) error {
		old, err := r.fetch(ctx, id)
		if err != nil {
			return err
		}

		m := &Mutation{Entity: objects.EntityUser, Op: policies.OpDelete, Old: old}

		return r.s.runMutation(ctx, m, func(ctx context.Context, conn Conn) error {
			query := r.s.rebind(`DELETE FROM users WHERE id = ?`)

			_, err := conn.ExecContext(ctx, query, id)

			return err
		})
	})
}

// RoleAssignmentRepo manages role grants. Only admins may write; users
// may read their own assignments.
type RoleAssignmentRepo struct {
	s *Store
}

func (s *Store) RoleAssignments() *RoleAssignmentRepo { return &RoleAssignmentRepo{s: s} }

const roleAssignmentColumns = `id, user_id, role, created_at`

func scanRoleAssignment(scan func(...any) error) (*objects.RoleAssignment, error) {
	var ra objects.RoleAssignment

	err := scan(&ra.ID, &ra.UserID, &ra.Role, &ra.CreatedAt)
	if err != nil {
		return nil, err
	}

	return &ra, nil
}

func (r *RoleAssignmentRepo) fetch(ctx context.Context, id int) (*objects.RoleAssignment, error) {
	query := r.s.rebind(`SELECT ` + roleAssignmentColumns + ` FROM role_assignments WHERE id = ?`)

	ra, err := scanRoleAssignment(r.s.conn(ctx).QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("store: fetch role assignment %d: %w", id, err)
	}

	return ra, nil
}

func (r *RoleAssignmentRepo) Create(ctx context.Context, ra *objects.RoleAssignment) (*objects.RoleAssignment, error) {
	ra.CreatedAt = now()

	m := &Mutation{Entity: objects.EntityRoleAssign, Op: policies.OpInsert, New: ra}

	err := r.s.runMutation(ctx, m, func(ctx context.Context, conn Conn) error {
		query := r.s.rebind(`INSERT INTO role_assignments (user_id, role, created_at)
			VALUES (?, ?, ?) RETURNING id`)

		return conn.QueryRowContext(ctx, query, ra.UserID, ra.Role, ra.CreatedAt).Scan(&ra.ID)
	})
	if err != nil {
		return nil, err
	}

	return ra, nil
}

func (r *RoleAssignmentRepo) ListByUser(ctx context.Context, userID int) ([]*objects.RoleAssignment, error) {
	query := r.s.rebind(`SELECT ` + roleAssignmentColumns + ` FROM role_assignments WHERE user_id = ? ORDER BY id`)

	rows, err := r.s.conn(ctx).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("store: list role assignments: %w", err)
	}
	defer rows.Close()

	var assignments []*objects.RoleAssignment

	for rows.Next() {
		ra, err := scanRoleAssignment(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("store: scan role assignment: %w", err)
		}

		assignments = append(assignments, ra)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return filterReadable(ctx, r.s, assignments), nil
}

func (r *RoleAssignmentRepo) Delete(ctx context.Context, id int) error {
	return r.s.RunInTransaction(ctx, func(ctx context.Context) error {
		old, err := r.fetch(ctx, id)
		if err != nil {
			return err
		}

		m := &Mutation{Entity: objects.EntityRoleAssign, Op: policies.OpDelete, Old: old}

		return r.s.runMutation(ctx, m, func(ctx context.Context, conn Conn) error {
			query := r.s.rebind(`DELETE FROM role_assignments WHERE id = ?`)

			_, err := conn.ExecContext(ctx, query, id)

			return err
		})
	})
}
