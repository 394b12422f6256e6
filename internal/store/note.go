package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/looplj/crmhub/internal/objects"
	"github.com/looplj/crmhub/internal/policies"
)

// NoteRepo provides row access to notes through the policy pipeline.
type NoteRepo struct {
	s *Store
}

func (s *Store) Notes() *NoteRepo { return &NoteRepo{s: s} }

const noteColumns = `id, body, lead_id, contact_id, deal_id, creator_user_id, created_at, updated_at`

func scanNote(scan func(...any) error) (*objects.Note, error) {
	var (
		note      objects.Note
		leadID    sql.NullInt64
		contactID sql.NullInt64
		dealID    sql.NullInt64
	)

	err := scan(
		&note.ID, &note.Body, &leadID, &contactID, &dealID,
		&note.CreatorUserID, &note.CreatedAt, &note.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	note.LeadID = intPtr(leadID)
	note.ContactID = intPtr(contactID)
	note.DealID = intPtr(dealID)

	return &note, nil
}

func (r *NoteRepo) fetch(ctx context.Context, id int) (*objects.Note, error) {
	query := r.s.rebind(`SELECT ` + noteColumns + ` FROM notes WHERE id = ?`)

	note, err := scanNote(r.s.conn(ctx).QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("store: fetch note %d: %w", id, err)
	}

	return note, nil
}

func (r *NoteRepo) Create(ctx context.Context, note *objects.Note) (*objects.Note, error) {
	note.CreatedAt = now()
	note.UpdatedAt = note.CreatedAt

	m := &Mutation{Entity: objects.EntityNote, Op: policies.OpInsert, New: note}

	err := r.s.runMutation(ctx, m, func(ctx context.Context, conn Conn) error {
		query := r.s.rebind(`INSERT INTO notes (body, lead_id, contact_id, deal_id, creator_user_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`)

		return conn.QueryRowContext(ctx, query,
			note.Body, nullInt(note.LeadID), nullInt(note.ContactID), nullInt(note.DealID),
			note.CreatorUserID, note.CreatedAt, note.UpdatedAt,
		).Scan(&note.ID)
	})
	if err != nil {
		return nil, err
	}

	return note, nil
}

func (r *NoteRepo) Get(ctx context.Context, id int) (*objects.Note, error) {
	var note *objects.Note

	err := r.s.RunInTransaction(ctx, func(ctx context.Context) error {
		fetched, err := r.fetch(ctx, id)
		if err != nil {
			return err
		}

		if err := r.s.authorizeRead(ctx, fetched); err != nil {
			return err
		}

		note = fetched

		return nil
	})
	if err != nil {
		return nil, err
	}

	return note, nil
}

func (r *NoteRepo) List(ctx context.Context) ([]*objects.Note, error) {
	query := r.s.rebind(`SELECT ` + noteColumns + ` FROM notes ORDER BY id`)

	rows, err := r.s.conn(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("store: list notes: %w", err)
	}
	defer rows.Close()

	var notes []*objects.Note

	for rows.Next() {
		note, err := scanNote(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("store: scan note: %w", err)
		}

		notes = append(notes, note)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return filterReadable(ctx, r.s, notes), nil
}

func (r *NoteRepo) Update(ctx context.Context, note *objects.Note) (*objects.Note, error) {
	var updated *objects.Note

	err := r.s.RunInTransaction(ctx, func(ctx context.Context) error {
		old, err := r.fetch(ctx, note.ID)
		if err != nil {
			return err
		}

		next := *note
		next.CreatorUserID = old.CreatorUserID
		next.CreatedAt = old.CreatedAt
		next.UpdatedAt = now()

		m := &Mutation{Entity: objects.EntityNote, Op: policies.OpUpdate, Old: old, New: &next}

		err = r.s.runMutation(ctx, m, func(ctx context.Context, conn Conn) error {
			query := r.s.rebind(`UPDATE notes SET body = ?, lead_id = ?, contact_id = ?, deal_id = ?, updated_at = ? WHERE id = ?`)

			_, err := conn.ExecContext(ctx, query,
				next.Body, nullInt(next.LeadID), nullInt(next.ContactID), nullInt(next.DealID),
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

func (r *NoteRepo) Delete(ctx context.Context, id int) error {
	return r.s.RunInTransaction(ctx, func(ctx context.Context) error {
		old, err := r.fetch(ctx, id)
		if err != nil {
			return err
		}

		m := &Mutation{Entity: objects.EntityNote, Op: policies.OpDelete, Old: old}

		return r.s.runMutation(ctx, m, func(ctx context.Context, conn Conn) error {
			query := r.s.rebind(`DELETE FROM notes WHERE id = ?`)

			_, err := conn.ExecContext(ctx, query, id)

			return err
		})
	})
}
