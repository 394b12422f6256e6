package store

import (
	"context"
	"fmt"
	"strings"
)

// Schema DDL. Written for sqlite; the {{serial}} token expands per dialect.
// Log and history tables have no foreign keys back into business tables so
// append-only entries survive cascading deletes of their subjects.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id {{serial}},
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS role_assignments (
		id {{serial}},
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		role TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		UNIQUE (user_id, role)
	)`,
	`CREATE TABLE IF NOT EXISTS teams (
		id {{serial}},
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		owner_user_id INTEGER NOT NULL REFERENCES users(id),
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS team_members (
		id {{serial}},
		team_id INTEGER NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		role TEXT NOT NULL DEFAULT 'member',
		created_at TIMESTAMP NOT NULL,
		UNIQUE (team_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS contacts (
		id {{serial}},
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		company TEXT NOT NULL DEFAULT '',
		owner_user_id INTEGER NOT NULL REFERENCES users(id),
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS leads (
		id {{serial}},
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		company TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'new',
		source TEXT NOT NULL DEFAULT '',
		owner_user_id INTEGER NOT NULL REFERENCES users(id),
		converted_contact_id INTEGER REFERENCES contacts(id),
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS deals (
		id {{serial}},
		title TEXT NOT NULL,
		amount REAL NOT NULL DEFAULT 0,
		stage TEXT NOT NULL DEFAULT 'prospecting',
		contact_id INTEGER REFERENCES contacts(id),
		owner_user_id INTEGER NOT NULL REFERENCES users(id),
		close_date TIMESTAMP,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id {{serial}},
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'open',
		due_at TIMESTAMP,
		assignee_user_id INTEGER REFERENCES users(id),
		creator_user_id INTEGER NOT NULL REFERENCES users(id),
		lead_id INTEGER REFERENCES leads(id),
		deal_id INTEGER REFERENCES deals(id),
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS communications (
		id {{serial}},
		kind TEXT NOT NULL,
		subject TEXT NOT NULL DEFAULT '',
		body TEXT NOT NULL DEFAULT '',
		lead_id INTEGER REFERENCES leads(id),
		contact_id INTEGER REFERENCES contacts(id),
		deal_id INTEGER REFERENCES deals(id),
		creator_user_id INTEGER NOT NULL REFERENCES users(id),
		occurred_at TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS notes (
		id {{serial}},
		body TEXT NOT NULL,
		lead_id INTEGER REFERENCES leads(id),
		contact_id INTEGER REFERENCES contacts(id),
		deal_id INTEGER REFERENCES deals(id),
		creator_user_id INTEGER NOT NULL REFERENCES users(id),
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS documents (
		id {{serial}},
		file_name TEXT NOT NULL,
		storage_key TEXT NOT NULL,
		content_type TEXT NOT NULL DEFAULT '',
		size_bytes INTEGER NOT NULL DEFAULT 0,
		lead_id INTEGER REFERENCES leads(id),
		contact_id INTEGER REFERENCES contacts(id),
		deal_id INTEGER REFERENCES deals(id),
		uploader_user_id INTEGER NOT NULL REFERENCES users(id),
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id {{serial}},
		actor_user_id INTEGER,
		action TEXT NOT NULL,
		entity_type TEXT NOT NULL,
		entity_id INTEGER,
		old_values TEXT,
		new_values TEXT,
		request_id TEXT NOT NULL DEFAULT '',
		ip_address TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS lead_status_history (
		id {{serial}},
		lead_id INTEGER NOT NULL,
		old_status TEXT,
		new_status TEXT,
		actor_user_id INTEGER,
		note TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS deal_stage_history (
		id {{serial}},
		deal_id INTEGER NOT NULL,
		old_stage TEXT,
		new_stage TEXT,
		actor_user_id INTEGER,
		note TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS automation_logs (
		id {{serial}},
		kind TEXT NOT NULL,
		entity_type TEXT NOT NULL,
		entity_id INTEGER,
		trigger_event TEXT NOT NULL,
		action_taken TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'success',
		error_detail TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS leads_by_owner ON leads(owner_user_id)`,
	`CREATE INDEX IF NOT EXISTS deals_by_owner ON deals(owner_user_id)`,
	`CREATE INDEX IF NOT EXISTS tasks_by_assignee ON tasks(assignee_user_id)`,
	`CREATE INDEX IF NOT EXISTS audit_logs_by_entity ON audit_logs(entity_type, entity_id)`,
	`CREATE INDEX IF NOT EXISTS lead_status_history_by_lead ON lead_status_history(lead_id)`,
	`CREATE INDEX IF NOT EXISTS deal_stage_history_by_deal ON deal_stage_history(deal_id)`,
}

// Migrate creates the schema.
func (s *Store) Migrate(ctx context.Context) error {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.dialect == DialectPostgres {
		serial = "SERIAL PRIMARY KEY"
	}

	for _, stmt := range migrations {
		stmt = strings.ReplaceAll(stmt, "{{serial}}", serial)

		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: migrate: %w", err)
		}
	}

	return nil
}
