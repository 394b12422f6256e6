package biz

import (
	"context"

	"go.uber.org/fx"

	"github.com/looplj/crmhub/internal/authz"
	"github.com/looplj/crmhub/internal/objects"
	"github.com/looplj/crmhub/internal/provenance"
	"github.com/looplj/crmhub/internal/store"
)

type LeadServiceParams struct {
	fx.In

	Store    *store.Store
	Recorder *provenance.Recorder
}

func NewLeadService(params LeadServiceParams) *LeadService {
	return &LeadService{
		AbstractService: &AbstractService{store: params.Store},
		recorder:        params.Recorder,
	}
}

type LeadService struct {
	*AbstractService

	recorder *provenance.Recorder
}

// CreateLead stores a lead. When no owner is given the acting user takes
// ownership; the auto-assignment is noted in the automation log.
func (s *LeadService) CreateLead(ctx context.Context, lead *objects.Lead) (*objects.Lead, error) {
	autoAssigned := false

	if lead.OwnerUserID == 0 {
		if actor, ok := authz.CurrentUserID(ctx); ok {
			lead.OwnerUserID = actor
			autoAssigned = true
		}
	}

	created, err := s.store.Leads().Create(ctx, lead)
	if err != nil {
		return nil, err
	}

	if autoAssigned {
		_, _ = s.recorder.RecordAutomation(ctx, &objects.AutomationLog{
			Kind:         "assignment",
			Entity:       objects.EntityLead,
			EntityID:     &created.ID,
			TriggerEvent: "lead.created",
			ActionTaken:  "assigned creating user as owner",
		})
	}

	return created, nil
}

func (s *LeadService) GetLead(ctx context.Context, id int) (*objects.Lead, error) {
	return s.store.Leads().Get(ctx, id)
}

func (s *LeadService) ListLeads(ctx context.Context) ([]*objects.Lead, error) {
	return s.store.Leads().List(ctx)
}

func (s *LeadService) UpdateLead(ctx context.Context, lead *objects.Lead) (*objects.Lead, error) {
	return s.store.Leads().Update(ctx, lead)
}

func (s *LeadService) DeleteLead(ctx context.Context, id int) error {
	return s.store.Leads().Delete(ctx, id)
}

// ConvertLead turns a lead into a contact. One transaction covers the
// contact insert, the lead's status move and conversion marker, and a
// dedicated audit entry; the conversion guard rejects a second attempt.
func (s *LeadService) ConvertLead(ctx context.Context, leadID int) (*objects.Contact, error) {
	var contact *objects.Contact

	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		lead, err := s.store.Leads().Get(ctx, leadID)
		if err != nil {
			return err
		}

		if lead.ConvertedContactID != nil {
			return ErrLeadConverted
		}

		contact, err = s.store.Contacts().Create(ctx, &objects.Contact{
			FirstName:   lead.Name,
			Email:       lead.Email,
			Phone:       lead.Phone,
			Company:     lead.Company,
			OwnerUserID: lead.OwnerUserID,
		})
		if err != nil {
			return err
		}

		lead.Status = objects.LeadStatusConverted
		lead.ConvertedContactID = &contact.ID

		if _, err := s.store.Leads().Update(ctx, lead); err != nil {
			return err
		}

		_, err = s.recorder.RecordAudit(ctx, "convert", objects.EntityLead, &lead.ID, nil, lead)

		return err
	})
	if err != nil {
		return nil, err
	}

	return contact, nil
}

// ListStatusHistory returns the lead's status transitions.
func (s *LeadService) ListStatusHistory(ctx context.Context, leadID int) ([]*objects.LeadStatusHistory, error) {
	return s.store.ListLeadStatusHistory(ctx, leadID)
}
