package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/looplj/crmhub/internal/objects"
	"github.com/looplj/crmhub/internal/policies"
)

// TaskRepo provides row access to tasks through the policy pipeline.
type TaskRepo struct {
	s *Store
}

func (s *Store) Tasks() *TaskRepo { return &TaskRepo{s: s} }

const taskColumns = `id, title, description, status, due_at, assignee_user_id, creator_user_id, lead_id, deal_id, created_at, updated_at`

func scanTask(scan func(...any) error) (*objects.Task, error) {
	var (
		task     objects.Task
		dueAt    sql.NullTime
		assignee sql.NullInt64
		leadID   sql.NullInt64
		dealID   sql.NullInt64
	)

	err := scan(
		&task.ID, &task.Title, &task.Description, &task.Status, &dueAt,
		&assignee, &task.CreatorUserID, &leadID, &dealID,
		&task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.DueAt = timePtr(dueAt)
	task.AssigneeUserID = intPtr(assignee)
	task.LeadID = intPtr(leadID)
	task.DealID = intPtr(dealID)

	return &task, nil
}

func (r *TaskRepo) fetch(ctx context.Context, id int) (*objects.Task, error) {
	query := r.s.rebind(`SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`)

	task, err := scanTask(r.s.conn(ctx).QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("store: fetch task %d: %w", id, err)
	}

	return task, nil
}

func (r *TaskRepo) Create(ctx context.Context, task *objects.Task) (*objects.Task, error) {
	if task.Status == "" {
		task.Status = "open"
	}

	task.CreatedAt = now()
	task.UpdatedAt = task.CreatedAt

	m := &Mutation{Entity: objects.EntityTask, Op: policies.OpInsert, New: task}

	err := r.s.runMutation(ctx, m, func(ctx context.Context, conn Conn) error {
		query := r.s.rebind(`INSERT INTO tasks (title, description, status, due_at, assignee_user_id, creator_user_id, lead_id, deal_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)

		return conn.QueryRowContext(ctx, query,
			task.Title, task.Description, task.Status, nullTime(task.DueAt),
			nullInt(task.AssigneeUserID), task.CreatorUserID,
			nullInt(task.LeadID), nullInt(task.DealID),
			task.CreatedAt, task.UpdatedAt,
		).Scan(&task.ID)
	})
	if err != nil {
		return nil, err
	}

	return task, nil
}

func (r *TaskRepo) Get(ctx context.Context, id int) (*objects.Task, error) {
	var task *objects.Task

	err := r.s.RunInTransaction(ctx, func(ctx context.Context) error {
		fetched, err := r.fetch(ctx, id)
		if err != nil {
			return err
		}

		if err := r.s.authorizeRead(ctx, fetched); err != nil {
			return err
		}

		task = fetched

		return nil
	})
	if err != nil {
		return nil, err
	}

	return task, nil
}

func (r *TaskRepo) List(ctx context.Context) ([]*objects.Task, error) {
	query := r.s.rebind(`SELECT ` + taskColumns + ` FROM tasks ORDER BY id`)

	rows, err := r.s.conn(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("store: list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*objects.Task

	for rows.Next() {
		task, err := scanTask(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("store: scan task: %w", err)
		}

		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return filterReadable(ctx, r.s, tasks), nil
}

func (r *TaskRepo) Update(ctx context.Context, task *objects.Task) (*objects.Task, error) {
	var updated *objects.Task

	err := r.s.RunInTransaction(ctx, func(ctx context.Context) error {
		old, err := r.fetch(ctx, task.ID)
		if err != nil {
			return err
		}

		next := *task
		next.CreatorUserID = old.CreatorUserID
		next.CreatedAt = old.CreatedAt
		next.UpdatedAt = now()

		m := &Mutation{Entity: objects.EntityTask, Op: policies.OpUpdate, Old: old, New: &next}

		err = r.s.runMutation(ctx, m, func(ctx context.Context, conn Conn) error {
			query := r.s.rebind(`UPDATE tasks SET title = ?, description = ?, status = ?, due_at = ?, assignee_user_id = ?, lead_id = ?, deal_id = ?, updated_at = ? WHERE id = ?`)

			_, err := conn.ExecContext(ctx, query,
				next.Title, next.Description, next.Status, nullTime(next.DueAt),
				nullInt(next.AssigneeUserID), nullInt(next.LeadID), nullInt(next.DealID),
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

func (r *TaskRepo) Delete(ctx context.Context, id int) error {
	return r.s.RunInTransaction(ctx, func(ctx context.Context) error {
		old, err := r.fetch(ctx, id)
		if err != nil {
			return err
		}

		m := &Mutation{Entity: objects.EntityTask, Op: policies.OpDelete, Old: old}

		return r.s.runMutation(ctx, m, func(ctx context.Context, conn Conn) error {
			query := r.s.rebind(`DELETE FROM tasks WHERE id = ?`)

			_, err := conn.ExecContext(ctx, query, id)

			return err
		})
	})
}
