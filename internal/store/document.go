package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/looplj/crmhub/internal/objects"
	"github.com/looplj/crmhub/internal/policies"
)

// DocumentRepo provides row access to documents through the policy
// pipeline. Document metadata is immutable after upload; there is no
// update path.
type DocumentRepo struct {
	s *Store
}

func (s *Store) Documents() *DocumentRepo { return &DocumentRepo{s: s} }

const documentColumns = `id, file_name, storage_key, content_type, size_bytes, lead_id, contact_id, deal_id, uploader_user_id, created_at`

func scanDocument(scan func(...any) error) (*objects.Document, error) {
	var (
		doc       objects.Document
		leadID    sql.NullInt64
		contactID sql.NullInt64
		dealID    sql.NullInt64
	)

	err := scan(
		&doc.ID, &doc.FileName, &doc.StorageKey, &doc.ContentType, &doc.SizeBytes,
		&leadID, &contactID, &dealID, &doc.UploaderUserID, &doc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	doc.LeadID = intPtr(leadID)
	doc.ContactID = intPtr(contactID)
	doc.DealID = intPtr(dealID)

	return &doc, nil
}

func (r *DocumentRepo) fetch(ctx context.Context, id int) (*objects.Document, error) {
	query := r.s.rebind(`SELECT ` + documentColumns + ` FROM documents WHERE id = ?`)

	doc, err := scanDocument(r.s.conn(ctx).QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("store: fetch document %d: %w", id, err)
	}

	return doc, nil
}

func (r *DocumentRepo) Create(ctx context.Context, doc *objects.Document) (*objects.Document, error) {
	doc.CreatedAt = now()

	m := &Mutation{Entity: objects.EntityDocument, Op: policies.OpInsert, New: doc}

	err := r.s.runMutation(ctx, m, func(ctx context.Context, conn Conn) error {
		query := r.s.rebind(`INSERT INTO documents (file_name, storage_key, content_type, size_bytes, lead_id, contact_id, deal_id, uploader_user_id, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)

		return conn.QueryRowContext(ctx, query,
			doc.FileName, doc.StorageKey, doc.ContentType, doc.SizeBytes,
			nullInt(doc.LeadID), nullInt(doc.ContactID), nullInt(doc.DealID),
			doc.UploaderUserID, doc.CreatedAt,
		).Scan(&doc.ID)
	})
	if err != nil {
		return nil, err
	}

	return doc, nil
}

func (r *DocumentRepo) Get(ctx context.Context, id int) (*objects.Document, error) {
	var doc *objects.Document

	err := r.s.RunInTransaction(ctx, func(ctx context.Context) error {
		fetched, err := r.fetch(ctx, id)
		if err != nil {
			return err
		}

		if err := r.s.authorizeRead(ctx, fetched); err != nil {
			return err
		}

		doc = fetched

		return nil
	})
	if err != nil {
		return nil, err
	}

	return doc, nil
}

func (r *DocumentRepo) List(ctx context.Context) ([]*objects.Document, error) {
	query := r.s.rebind(`SELECT ` + documentColumns + ` FROM documents ORDER BY id`)

	rows, err := r.s.conn(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("store: list documents: %w", err)
	}
	defer rows.Close()

	var docs []*objects.Document

	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("store: scan document: %w", err)
		}

		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return filterReadable(ctx, r.s, docs), nil
}

func (r *DocumentRepo) Delete(ctx context.Context, id int) error {
	return r.s.RunInTransaction(ctx, func(ctx context.Context) error {
		old, err := r.fetch(ctx, id)
		if err != nil {
			return err
		}

		m := &Mutation{Entity: objects.EntityDocument, Op: policies.OpDelete, Old: old}

		return r.s.runMutation(ctx, m, func(ctx context.Context, conn Conn) error {
			query := r.s.rebind(`DELETE FROM documents WHERE id = ?`)

			_, err := conn.ExecContext(ctx, query, id)

			return err
		})
	})
}
