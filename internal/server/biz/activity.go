package biz

import (
	"context"

	"go.uber.org/fx"

	"github.com/looplj/crmhub/internal/authz"
	"github.com/looplj/crmhub/internal/objects"
	"github.com/looplj/crmhub/internal/store"
)

type ActivityServiceParams struct {
	fx.In

	Store *store.Store
}

func NewActivityService(params ActivityServiceParams) *ActivityService {
	return &ActivityService{
		AbstractService: &AbstractService{store: params.Store},
	}
}

// ActivityService groups the dependent records hanging off primary
// records: notes, documents and communication entries.
type ActivityService struct {
	*AbstractService
}

func (s *ActivityService) CreateNote(ctx context.Context, note *objects.Note) (*objects.Note, error) {
	if note.CreatorUserID == 0 {
		if actor, ok := authz.CurrentUserID(ctx); ok {
			note.CreatorUserID = actor
		}
	}

	return s.store.Notes().Create(ctx, note)
}

func (s *ActivityService) GetNote(ctx context.Context, id int) (*objects.Note, error) {
	return s.store.Notes().Get(ctx, id)
}

func (s *ActivityService) ListNotes(ctx context.Context) ([]*objects.Note, error) {
	return s.store.Notes().List(ctx)
}

func (s *ActivityService) UpdateNote(ctx context.Context, note *objects.Note) (*objects.Note, error) {
	return s.store.Notes().Update(ctx, note)
}

func (s *ActivityService) DeleteNote(ctx context.Context, id int) error {
	return s.store.Notes().Delete(ctx, id)
}

func (s *ActivityService) CreateDocument(ctx context.Context, doc *objects.Document) (*objects.Document, error) {
	if doc.UploaderUserID == 0 {
		if actor, ok := authz.CurrentUserID(ctx); ok {
			doc.UploaderUserID = actor
		}
	}

	return s.store.Documents().Create(ctx, doc)
}

func (s *ActivityService) GetDocument(ctx context.Context, id int) (*objects.Document, error) {
	return s.store.Documents().Get(ctx, id)
}

func (s *ActivityService) ListDocuments(ctx context.Context) ([]*objects.Document, error) {
	return s.store.Documents().List(ctx)
}

func (s *ActivityService) DeleteDocument(ctx context.Context, id int) error {
	return s.store.Documents().Delete(ctx, id)
}

func (s *ActivityService) CreateCommunication(ctx context.Context, comm *objects.Communication) (*objects.Communication, error) {
	if comm.CreatorUserID == 0 {
		if actor, ok := authz.CurrentUserID(ctx); ok {
			comm.CreatorUserID = actor
		}
	}

	return s.store.Communications().Create(ctx, comm)
}

func (s *ActivityService) GetCommunication(ctx context.Context, id int) (*objects.Communication, error) {
	return s.store.Communications().Get(ctx, id)
}

func (s *ActivityService) ListCommunications(ctx context.Context) ([]*objects.Communication, error) {
	return s.store.Communications().List(ctx)
}

func (s *ActivityService) DeleteCommunication(ctx context.Context, id int) error {
	return s.store.Communications().Delete(ctx, id)
}
