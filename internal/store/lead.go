package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/looplj/crmhub/internal/objects"
	"github.com/looplj/crmhub/internal/policies"
)

// LeadRepo provides row access to leads through the policy pipeline.
type LeadRepo struct {
	s *Store
}

func (s *Store) Leads() *LeadRepo { return &LeadRepo{s: s} }

const leadColumns = `id, name, email, phone, company, status, source, owner_user_id, converted_contact_id, created_at, updated_at`

func scanLead(scan func(...any) error) (*objects.Lead, error) {
	var (
		lead      objects.Lead
		converted sql.NullInt64
	)

	err := scan(
		&lead.ID, &lead.Name, &lead.Email, &lead.Phone, &lead.Company,
		&lead.Status, &lead.Source, &lead.OwnerUserID, &converted,
		&lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	lead.ConvertedContactID = intPtr(converted)

	return &lead, nil
}

// fetch reads the committed row version inside the ambient transaction.
// Internal path: no policy check, used to build old/new mutation pairs.
func (r *LeadRepo) fetch(ctx context.Context, id int) (*objects.Lead, error) {
	query := r.s.rebind(`SELECT ` + leadColumns + ` FROM leads WHERE id = ?`)

	lead, err := scanLead(r.s.conn(ctx).QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("store: fetch lead %d: %w", id, err)
	}

	return lead, nil
}

// Create inserts a lead. The owner is set at creation and immutable for
// regular principals afterwards.
func (r *LeadRepo) Create(ctx context.Context, lead *objects.Lead) (*objects.Lead, error) {
	if lead.Status == "" {
		lead.Status = objects.LeadStatusNew
	}

	lead.CreatedAt = now()
	lead.UpdatedAt = lead.CreatedAt

	m := &Mutation{Entity: objects.EntityLead, Op: policies.OpInsert, New: lead}

	err := r.s.runMutation(ctx, m, func(ctx context.Context, conn Conn) error {
		query := r.s.rebind(`INSERT INTO leads (name, email, phone, company, status, source, owner_user_id, converted_contact_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)

		return conn.QueryRowContext(ctx, query,
			lead.Name, lead.Email, lead.Phone, lead.Company, lead.Status, lead.Source,
			lead.OwnerUserID, nullInt(lead.ConvertedContactID), lead.CreatedAt, lead.UpdatedAt,
		).Scan(&lead.ID)
	})
	if err != nil {
		return nil, err
	}

	return lead, nil
}

// Get returns the lead when the select policy allows it.
func (r *LeadRepo) Get(ctx context.Context, id int) (*objects.Lead, error) {
	var lead *objects.Lead

	err := r.s.RunInTransaction(ctx, func(ctx context.Context) error {
		fetched, err := r.fetch(ctx, id)
		if err != nil {
			return err
		}

		if err := r.s.authorizeRead(ctx, fetched); err != nil {
			return err
		}

		lead = fetched

		return nil
	})
	if err != nil {
		return nil, err
	}

	return lead, nil
}

// List returns the leads the current principal may select.
func (r *LeadRepo) List(ctx context.Context) ([]*objects.Lead, error) {
	query := r.s.rebind(`SELECT ` + leadColumns + ` FROM leads ORDER BY id`)

	rows, err := r.s.conn(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("store: list leads: %w", err)
	}
	defer rows.Close()

	var leads []*objects.Lead

	for rows.Next() {
		lead, err := scanLead(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("store: scan lead: %w", err)
		}

		leads = append(leads, lead)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return filterReadable(ctx, r.s, leads), nil
}

// Update replaces the mutable columns. The old row version is re-read
// inside the transaction so checks run against the version being
// committed, not a stale snapshot.
func (r *LeadRepo) Update(ctx context.Context, lead *objects.Lead) (*objects.Lead, error) {
	var updated *objects.Lead

	err := r.s.RunInTransaction(ctx, func(ctx context.Context) error {
		old, err := r.fetch(ctx, lead.ID)
		if err != nil {
			return err
		}

		next := *lead
		next.CreatedAt = old.CreatedAt
		next.UpdatedAt = now()

		m := &Mutation{Entity: objects.EntityLead, Op: policies.OpUpdate, Old: old, New: &next}

		err = r.s.runMutation(ctx, m, func(ctx context.Context, conn Conn) error {
			query := r.s.rebind(`UPDATE leads SET name = ?, email = ?, phone = ?, company = ?, status = ?, source = ?, owner_user_id = ?, converted_contact_id = ?, updated_at = ? WHERE id = ?`)

			_, err := conn.ExecContext(ctx, query,
				next.Name, next.Email, next.Phone, next.Company, next.Status, next.Source,
				next.OwnerUserID, nullInt(next.ConvertedContactID), next.UpdatedAt, next.ID,
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

// Delete removes the lead when the delete policy allows it.
func (r *LeadRepo) Delete(ctx context.Context, id int) error {
	return r.s.RunInTransaction(ctx, func(ctx context.Context) error {
		old, err := r.fetch(ctx, id)
		if err != nil {
			return err
		}

		m := &Mutation{Entity: objects.EntityLead, Op: policies.OpDelete, Old: old}

		return r.s.runMutation(ctx, m, func(ctx context.Context, conn Conn) error {
			query := r.s.rebind(`DELETE FROM leads WHERE id = ?`)

			_, err := conn.ExecContext(ctx, query, id)

			return err
		})
	})
}
