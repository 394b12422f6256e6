package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/looplj/crmhub/internal/objects"
)

func rawOrNil(v json.RawMessage) any {
	if len(v) == 0 {
		return nil
	}

	return string(v)
}

// Append paths below write inside the ambient transaction and skip the
// mutation pipeline on purpose: provenance rows are produced by the
// recorder, never by a principal, and running them through policy chains
// would deny them (no entity policy grants insert on log rows).

// AppendAuditLog inserts one audit entry and returns its id.
func (s *Store) AppendAuditLog(ctx context.Context, entry *objects.AuditLog) (int, error) {
	entry.CreatedAt = now()

	query := s.rebind(`INSERT INTO audit_logs (actor_user_id, action, entity_type, entity_id, old_values, new_values, request_id, ip_address, user_agent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)

	err := s.conn(ctx).QueryRowContext(ctx, query,
		nullInt(entry.ActorUserID), entry.Action, entry.Entity, nullInt(entry.EntityID),
		rawOrNil(entry.OldValues), rawOrNil(entry.NewValues),
		entry.RequestID, entry.IPAddress, entry.UserAgent, entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return 0, fmt.Errorf("store: append audit log: %w", err)
	}

	return entry.ID, nil
}

// AppendLeadStatusHistory inserts one lead status transition entry.
func (s *Store) AppendLeadStatusHistory(ctx context.Context, entry *objects.LeadStatusHistory) (int, error) {
	entry.CreatedAt = now()

	query := s.rebind(`INSERT INTO lead_status_history (lead_id, old_status, new_status, actor_user_id, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`)

	err := s.conn(ctx).QueryRowContext(ctx, query,
		entry.LeadID, nullString(entry.OldStatus), nullString(entry.NewStatus),
		nullInt(entry.ActorUserID), entry.Note, entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return 0, fmt.Errorf("store: append lead status history: %w", err)
	}

	return entry.ID, nil
}

// AppendDealStageHistory inserts one deal stage transition entry.
func (s *Store) AppendDealStageHistory(ctx context.Context, entry *objects.DealStageHistory) (int, error) {
	entry.CreatedAt = now()

	query := s.rebind(`INSERT INTO deal_stage_history (deal_id, old_stage, new_stage, actor_user_id, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`)

	err := s.conn(ctx).QueryRowContext(ctx, query,
		entry.DealID, nullString(entry.OldStage), nullString(entry.NewStage),
		nullInt(entry.ActorUserID), entry.Note, entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return 0, fmt.Errorf("store: append deal stage history: %w", err)
	}

	return entry.ID, nil
}

// AppendAutomationLog inserts one automation outcome entry.
func (s *Store) AppendAutomationLog(ctx context.Context, entry *objects.AutomationLog) (int, error) {
	entry.CreatedAt = now()
	if entry.Status == "" {
		entry.Status = objects.AutomationStatusSuccess
	}

	query := s.rebind(`INSERT INTO automation_logs (kind, entity_type, entity_id, trigger_event, action_taken, status, error_detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)

	err := s.conn(ctx).QueryRowContext(ctx, query,
		entry.Kind, entry.Entity, nullInt(entry.EntityID),
		entry.TriggerEvent, entry.ActionTaken, entry.Status, entry.ErrorDetail,
		entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return 0, fmt.Errorf("store: append automation log: %w", err)
	}

	return entry.ID, nil
}

const auditLogColumns = `id, actor_user_id, action, entity_type, entity_id, old_values, new_values, request_id, ip_address, user_agent, created_at`

// ListAuditLogs returns audit entries, newest first. The select policy
// restricts them to managers and admins.
func (s *Store) ListAuditLogs(ctx context.Context, entity string, entityID int) ([]*objects.AuditLog, error) {
	query := `SELECT ` + auditLogColumns + ` FROM audit_logs`

	var args []any

	if entity != "" {
		query += ` WHERE entity_type = ?`
		args = append(args, entity)

		if entityID != 0 {
			query += ` AND entity_id = ?`
			args = append(args, entityID)
		}
	}

	query += ` ORDER BY id DESC`

	rows, err := s.conn(ctx).QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("store: list audit logs: %w", err)
	}
	defer rows.Close()

	var entries []*objects.AuditLog

	for rows.Next() {
		var (
			entry     objects.AuditLog
			actorID   sql.NullInt64
			entityRef sql.NullInt64
			oldValues sql.NullString
			newValues sql.NullString
		)

		err := rows.Scan(
			&entry.ID, &actorID, &entry.Action, &entry.Entity, &entityRef,
			&oldValues, &newValues, &entry.RequestID, &entry.IPAddress,
			&entry.UserAgent, &entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("store: scan audit log: %w", err)
		}

		entry.ActorUserID = intPtr(actorID)
		entry.EntityID = intPtr(entityRef)

		if oldValues.Valid {
			entry.OldValues = json.RawMessage(oldValues.String)
		}

		if newValues.Valid {
			entry.NewValues = json.RawMessage(newValues.String)
		}

		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return filterReadable(ctx, s, entries), nil
}

// ListLeadStatusHistory returns the transition history for a lead. The
// caller must be allowed to select the lead itself.
func (s *Store) ListLeadStatusHistory(ctx context.Context, leadID int) ([]*objects.LeadStatusHistory, error) {
	var entries []*objects.LeadStatusHistory

	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		lead, err := s.Leads().fetch(ctx, leadID)
		if err != nil {
			return err
		}

		if err := s.authorizeRead(ctx, lead); err != nil {
			return err
		}

		query := s.rebind(`SELECT id, lead_id, old_status, new_status, actor_user_id, note, created_at
			FROM lead_status_history WHERE lead_id = ? ORDER BY id`)

		rows, err := s.conn(ctx).QueryContext(ctx, query, leadID)
		if err != nil {
			return fmt.Errorf("store: list lead status history: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var (
				entry     objects.LeadStatusHistory
				oldStatus sql.NullString
				newStatus sql.NullString
				actorID   sql.NullInt64
			)

			err := rows.Scan(&entry.ID, &entry.LeadID, &oldStatus, &newStatus, &actorID, &entry.Note, &entry.CreatedAt)
			if err != nil {
				return fmt.Errorf("store: scan lead status history: %w", err)
			}

			entry.OldStatus = stringPtr(oldStatus)
			entry.NewStatus = stringPtr(newStatus)
			entry.ActorUserID = intPtr(actorID)

			entries = append(entries, &entry)
		}

		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// ListDealStageHistory returns the transition history for a deal. The
// caller must be allowed to select the deal itself.
func (s *Store) ListDealStageHistory(ctx context.Context, dealID int) ([]*objects.DealStageHistory, error) {
	var entries []*objects.DealStageHistory

	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		deal, err := s.Deals().fetch(ctx, dealID)
		if err != nil {
			return err
		}

		if err := s.authorizeRead(ctx, deal); err != nil {
			return err
		}

		query := s.rebind(`SELECT id, deal_id, old_stage, new_stage, actor_user_id, note, created_at
			FROM deal_stage_history WHERE deal_id = ? ORDER BY id`)

		rows, err := s.conn(ctx).QueryContext(ctx, query, dealID)
		if err != nil {
			return fmt.Errorf("store: list deal stage history: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var (
				entry    objects.DealStageHistory
				oldStage sql.NullString
				newStage sql.NullString
				actorID  sql.NullInt64
			)

			err := rows.Scan(&entry.ID, &entry.DealID, &oldStage, &newStage, &actorID, &entry.Note, &entry.CreatedAt)
			if err != nil {
				return fmt.Errorf("store: scan deal stage history: %w", err)
			}

			entry.OldStage = stringPtr(oldStage)
			entry.NewStage = stringPtr(newStage)
			entry.ActorUserID = intPtr(actorID)

			entries = append(entries, &entry)
		}

		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

const automationLogColumns = `id, kind, entity_type, entity_id, trigger_event, action_taken, status, error_detail, created_at`

// ListAutomationLogs returns automation entries, newest first. The select
// policy restricts them to admins.
func (s *Store) ListAutomationLogs(ctx context.Context, entity string, entityID int) ([]*objects.AutomationLog, error) {
	query := `SELECT ` + automationLogColumns + ` FROM automation_logs`

	var args []any

	if entity != "" {
		query += ` WHERE entity_type = ?`
		args = append(args, entity)

		if entityID != 0 {
			query += ` AND entity_id = ?`
			args = append(args, entityID)
		}
	}

	query += ` ORDER BY id DESC`

	rows, err := s.conn(ctx).QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("store: list automation logs: %w", err)
	}
	defer rows.Close()

	var entries []*objects.AutomationLog

	for rows.Next() {
		var (
			entry     objects.AutomationLog
			entityRef sql.NullInt64
		)

		err := rows.Scan(
			&entry.ID, &entry.Kind, &entry.Entity, &entityRef,
			&entry.TriggerEvent, &entry.ActionTaken, &entry.Status,
			&entry.ErrorDetail, &entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("store: scan automation log: %w", err)
		}

		entry.EntityID = intPtr(entityRef)

		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return filterReadable(ctx, s, entries), nil
}
