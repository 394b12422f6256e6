package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/looplj/crmhub/internal/objects"
	"github.com/looplj/crmhub/internal/policies"
)

// DealRepo provides row access to deals through the policy pipeline.
type DealRepo struct {
	s *Store
}

func (s *Store) Deals() *DealRepo { return &DealRepo{s: s} }

const dealColumns = `id, title, amount, stage, contact_id, owner_user_id, close_date, created_at, updated_at`

func scanDeal(scan func(...any) error) (*objects.Deal, error) {
	var (
		deal      objects.Deal
		contactID sql.NullInt64
		closeDate sql.NullTime
	)

	err := scan(
		&deal.ID, &deal.Title, &deal.Amount, &deal.Stage, &contactID,
		&deal.OwnerUserID, &closeDate, &deal.CreatedAt, &deal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	deal.ContactID = intPtr(contactID)
	deal.CloseDate = timePtr(closeDate)

	return &deal, nil
}

func (r *DealRepo) fetch(ctx context.Context, id int) (*objects.Deal, error) {
	query := r.s.rebind(`SELECT ` + dealColumns + ` FROM deals WHERE id = ?`)

	deal, err := scanDeal(r.s.conn(ctx).QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("store: fetch deal %d: %w", id, err)
	}

	return deal, nil
}

func (r *DealRepo) Create(ctx context.Context, deal *objects.Deal) (*objects.Deal, error) {
	if deal.Stage == "" {
		deal.Stage = objects.DealStageProspecting
	}

	deal.CreatedAt = now()
	deal.UpdatedAt = deal.CreatedAt

	m := &Mutation{Entity: objects.EntityDeal, Op: policies.OpInsert, New: deal}

	err := r.s.runMutation(ctx, m, func(ctx context.Context, conn Conn) error {
		query := r.s.rebind(`INSERT INTO deals (title, amount, stage, contact_id, owner_user_id, close_date, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)

		return conn.QueryRowContext(ctx, query,
			deal.Title, deal.Amount, deal.Stage, nullInt(deal.ContactID),
			deal.OwnerUserID, nullTime(deal.CloseDate), deal.CreatedAt, deal.UpdatedAt,
		).Scan(&deal.ID)
	})
	if err != nil {
		return nil, err
	}

	return deal, nil
}

func (r *DealRepo) Get(ctx context.Context, id int) (*objects.Deal, error) {
	var deal *objects.Deal

	err := r.s.RunInTransaction(ctx, func(ctx context.Context) error {
		fetched, err := r.fetch(ctx, id)
		if err != nil {
			return err
		}

		if err := r.s.authorizeRead(ctx, fetched); err != nil {
			return err
		}

		deal = fetched

		return nil
	})
	if err != nil {
		return nil, err
	}

	return deal, nil
}

func (r *DealRepo) List(ctx context.Context) ([]*objects.Deal, error) {
	query := r.s.rebind(`SELECT ` + dealColumns + ` FROM deals ORDER BY id`)

	rows, err := r.s.conn(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("store: list deals: %w", err)
	}
	defer rows.Close()

	var deals []*objects.Deal

	for rows.Next() {
		deal, err := scanDeal(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("store: scan deal: %w", err)
		}

		deals = append(deals, deal)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return filterReadable(ctx, r.s, deals), nil
}

func (r *DealRepo) Update(ctx context.Context, deal *objects.Deal) (*objects.Deal, error) {
	var updated *objects.Deal

	err := r.s.RunInTransaction(ctx, func(ctx context.Context) error {
		old, err := r.fetch(ctx, deal.ID)
		if err != nil {
			return err
		}

		next := *deal
		next.CreatedAt = old.CreatedAt
		next.UpdatedAt = now()

		m := &Mutation{Entity: objects.EntityDeal, Op: policies.OpUpdate, Old: old, New: &next}

		err = r.s.runMutation(ctx, m, func(ctx context.Context, conn Conn) error {
			query := r.s.rebind(`UPDATE deals SET title = ?, amount = ?, stage = ?, contact_id = ?, owner_user_id = ?, close_date = ?, updated_at = ? WHERE id = ?`)

			_, err := conn.ExecContext(ctx, query,
				next.Title, next.Amount, next.Stage, nullInt(next.ContactID),
				next.OwnerUserID, nullTime(next.CloseDate), next.UpdatedAt, next.ID,
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

func (r *DealRepo) Delete(ctx context.Context, id int) error {
	return r.s.RunInTransaction(ctx, func(ctx context.Context) error {
		old, err := r.fetch(ctx, id)
		if err != nil {
			return err
		}

		m := &Mutation{Entity: objects.EntityDeal, Op: policies.OpDelete, Old: old}

		return r.s.runMutation(ctx, m, func(ctx context.Context, conn Conn) error {
			query := r.s.rebind(`DELETE FROM deals WHERE id = ?`)

			_, err := conn.ExecContext(ctx, query, id)

			return err
		})
	})
}
