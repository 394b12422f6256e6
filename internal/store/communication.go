package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/looplj/crmhub/internal/objects"
	"github.com/looplj/crmhub/internal/policies"
)

// CommunicationRepo provides row access to communication entries through
// the policy pipeline. Entries record something that already happened, so
// they are never edited in place.
type CommunicationRepo struct {
	s *Store
}

func (s *Store) Communications() *CommunicationRepo { return &CommunicationRepo{s: s} }

const communicationColumns = `id, kind, subject, body, lead_id, contact_id, deal_id, creator_user_id, occurred_at, created_at`

func scanCommunication(scan func(...any) error) (*objects.Communication, error) {
	var (
		comm      objects.Communication
		leadID    sql.NullInt64
		contactID sql.NullInt64
		dealID    sql.NullInt64
	)

	err := scan(
		&comm.ID, &comm.Kind, &comm.Subject, &comm.Body,
		&leadID, &contactID, &dealID, &comm.CreatorUserID,
		&comm.OccurredAt, &comm.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	comm.LeadID = intPtr(leadID)
	comm.ContactID = intPtr(contactID)
	comm.DealID = intPtr(dealID)

	return &comm, nil
}

func (r *CommunicationRepo) fetch(ctx context.Context, id int) (*objects.Communication, error) {
	query := r.s.rebind(`SELECT ` + communicationColumns + ` FROM communications WHERE id = ?`)

	comm, err := scanCommunication(r.s.conn(ctx).QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("store: fetch communication %d: %w", id, err)
	}

	return comm, nil
}

func (r *CommunicationRepo) Create(ctx context.Context, comm *objects.Communication) (*objects.Communication, error) {
	comm.CreatedAt = now()
	if comm.OccurredAt.IsZero() {
		comm.OccurredAt = comm.CreatedAt
	}

	m := &Mutation{Entity: objects.EntityCommunication, Op: policies.OpInsert, New: comm}

	err := r.s.runMutation(ctx, m, func(ctx context.Context, conn Conn) error {
		query := r.s.rebind(`INSERT INTO communications (kind, subject, body, lead_id, contact_id, deal_id, creator_user_id, occurred_at, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)

		return conn.QueryRowContext(ctx, query,
			comm.Kind, comm.Subject, comm.Body,
			nullInt(comm.LeadID), nullInt(comm.ContactID), nullInt(comm.DealID),
			comm.CreatorUserID, comm.OccurredAt, comm.CreatedAt,
		).Scan(&comm.ID)
	})
	if err != nil {
		return nil, err
	}

	return comm, nil
}

func (r *CommunicationRepo) Get(ctx context.Context, id int) (*objects.Communication, error) {
	var comm *objects.Communication

	err := r.s.RunInTransaction(ctx, func(ctx context.Context) error {
		fetched, err := r.fetch(ctx, id)
		if err != nil {
			return err
		}

		if err := r.s.authorizeRead(ctx, fetched); err != nil {
			return err
		}

		comm = fetched

		return nil
	})
	if err != nil {
		return nil, err
	}

	return comm, nil
}

func (r *CommunicationRepo) List(ctx context.Context) ([]*objects.Communication, error) {
	query := r.s.rebind(`SELECT ` + communicationColumns + ` FROM communications ORDER BY id`)

	rows, err := r.s.conn(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("store: list communications: %w", err)
	}
	defer rows.Close()

	var comms []*objects.Communication

	for rows.Next() {
		comm, err := scanCommunication(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("store: scan communication: %w", err)
		}

		comms = append(comms, comm)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return filterReadable(ctx, r.s, comms), nil
}

func (r *CommunicationRepo) Delete(ctx context.Context, id int) error {
	return r.s.RunInTransaction(ctx, func(ctx context.Context) error {
		old, err := r.fetch(ctx, id)
		if err != nil {
			return err
		}

		m := &Mutation{Entity: objects.EntityCommunication, Op: policies.OpDelete, Old: old}

		return r.s.runMutation(ctx, m, func(ctx context.Context, conn Conn) error {
			query := r.s.rebind(`DELETE FROM communications WHERE id = ?`)

			_, err := conn.ExecContext(ctx, query, id)

			return err
		})
	})
}
