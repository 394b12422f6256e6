package biz

import (
	"context"

	"go.uber.org/fx"

	"github.com/looplj/crmhub/internal/objects"
	"github.com/looplj/crmhub/internal/store"
)

type ContactServiceParams struct {
	fx.In

	Store *store.Store
}

func NewContactService(params ContactServiceParams) *ContactService {
	return &ContactService{
		AbstractService: &AbstractService{store: params.Store},
	}
}

type ContactService struct {
	*AbstractService
}

func (s *ContactService) CreateContact(ctx context.Context, contact *objects.Contact) (*objects.Contact, error) {
	return s.store.Contacts().Create(ctx, contact)
}

func (s *ContactService) GetContact(ctx context.Context, id int) (*objects.Contact, error) {
	return s.store.Contacts().Get(ctx, id)
}

func (s *ContactService) ListContacts(ctx context.Context) ([]*objects.Contact, error) {
	return s.store.Contacts().List(ctx)
}

func (s *ContactService) UpdateContact(ctx context.Context, contact *objects.Contact) (*objects.Contact, error) {
	return s.store.Contacts().Update(ctx, contact)
}

func (s *ContactService) DeleteContact(ctx context.Context, id int) error {
	return s.store.Contacts().Delete(ctx, id)
}
