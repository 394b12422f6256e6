package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/looplj/crmhub/internal/objects"
	"github.com/looplj/crmhub/internal/policies"
)

// ContactRepo provides row access to contacts through the policy pipeline.
type ContactRepo struct {
	s *Store
}

func (s *Store) Contacts() *ContactRepo { return &ContactRepo{s: s} }

const contactColumns = `id, first_name, last_name, email, phone, company, owner_user_id, created_at, updated_at`

func scanContact(scan func(...any) error) (*objects.Contact, error) {
	var contact objects.Contact

	err := scan(
		&contact.ID, &contact.FirstName, &contact.LastName, &contact.Email,
		&contact.Phone, &contact.Company, &contact.OwnerUserID,
		&contact.CreatedAt, &contact.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &contact, nil
}

func (r *ContactRepo) fetch(ctx context.Context, id int) (*objects.Contact, error) {
	query := r.s.rebind(`SELECT ` + contactColumns + ` FROM contacts WHERE id = ?`)

	contact, err := scanContact(r.s.conn(ctx).QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("store: fetch contact %d: %w", id, err)
	}

	return contact, nil
}

func (r *ContactRepo) Create(ctx context.Context, contact *objects.Contact) (*objects.Contact, error) {
	contact.CreatedAt = now()
	contact.UpdatedAt = contact.CreatedAt

	m := &Mutation{Entity: objects.EntityContact, Op: policies.OpInsert, New: contact}

	err := r.s.runMutation(ctx, m, func(ctx context.Context, conn Conn) error {
		query := r.s.rebind(`INSERT INTO contacts (first_name, last_name, email, phone, company, owner_user_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)

		return conn.QueryRowContext(ctx, query,
			contact.FirstName, contact.LastName, contact.Email, contact.Phone,
			contact.Company, contact.OwnerUserID, contact.CreatedAt, contact.UpdatedAt,
		).Scan(&contact.ID)
	})
	if err != nil {
		return nil, err
	}

	return contact, nil
}

func (r *ContactRepo) Get(ctx context.Context, id int) (*objects.Contact, error) {
	var contact *objects.Contact

	err := r.s.RunInTransaction(ctx, func(ctx context.Context) error {
		fetched, err := r.fetch(ctx, id)
		if err != nil {
			return err
		}

		if err := r.s.authorizeRead(ctx, fetched); err != nil {
			return err
		}

		contact = fetched

		return nil
	})
	if err != nil {
		return nil, err
	}

	return contact, nil
}

func (r *ContactRepo) List(ctx context.Context) ([]*objects.Contact, error) {
	query := r.s.rebind(`SELECT ` + contactColumns + ` FROM contacts ORDER BY id`)

	rows, err := r.s.conn(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("store: list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*objects.Contact

	for rows.Next() {
		contact, err := scanContact(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("store: scan contact: %w", err)
		}

		contacts = append(contacts, contact)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return filterReadable(ctx, r.s, contacts), nil
}

func (r *ContactRepo) Update(ctx context.Context, contact *objects.Contact) (*objects.Contact, error) {
	var updated *objects.Contact

	err := r.s.RunInTransaction(ctx, func(ctx context.Context) error {
		old, err := r.fetch(ctx, contact.ID)
		if err != nil {
			return err
		}

		next := *contact
		next.CreatedAt = old.CreatedAt
		next.UpdatedAt = now()

		m := &Mutation{Entity: objects.EntityContact, Op: policies.OpUpdate, Old: old, New: &next}

		err = r.s.runMutation(ctx, m, func(ctx context.Context, conn Conn) error {
			query := r.s.rebind(`UPDATE contacts SET first_name = ?, last_name = ?, email = ?, phone = ?, company = ?, owner_user_id = ?, updated_at = ? WHERE id = ?`)

			_, err := conn.ExecContext(ctx, query,
				next.FirstName, next.LastName, next.Email, next.Phone, next.Company,
				next.OwnerUserID, next.UpdatedAt, next.ID,
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

func (r *ContactRepo) Delete(ctx context.Context, id int) error {
	return r.s.RunInTransaction(ctx, func(ctx context.Context) error {
		old, err := r.fetch(ctx, id)
		if err != nil {
			return err
		}

		m := &Mutation{Entity: objects.EntityContact, Op: policies.OpDelete, Old: old}

		return r.s.runMutation(ctx, m, func(ctx context.Context, conn Conn) error {
			query := r.s.rebind(`DELETE FROM contacts WHERE id = ?`)

			_, err := conn.ExecContext(ctx, query, id)

			return err
		})
	})
}
