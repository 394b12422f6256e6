package biz_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/looplj/crmhub/internal/authz"
	"github.com/looplj/crmhub/internal/objects"
	"github.com/looplj/crmhub/internal/roles"
	"github.com/looplj/crmhub/internal/server/biz"
)

func TestCreateLeadAutoAssignsOwner(t *testing.T) {
	s, recorder := newArmedStore(t)
	svc := biz.NewLeadService(biz.LeadServiceParams{Store: s, Recorder: recorder})

	owner := seedUser(t, s, "owner@crm.test", roles.RoleUser)
	admin := seedUser(t, s, "admin@crm.test", roles.RoleAdmin)

	ownerCtx := authz.NewUserContext(context.Background(), owner)

	lead, err := svc.CreateLead(ownerCtx, &objects.Lead{Name: "acme"})
	require.NoError(t, err)
	require.Equal(t, owner, lead.OwnerUserID)

	// The auto-assignment lands in the automation log.
	adminCtx := authz.NewUserContext(context.Background(), admin)
	logs, err := s.ListAutomationLogs(adminCtx, objects.EntityLead, lead.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, "assignment", logs[0].Kind)
	require.Equal(t, "lead.created", logs[0].TriggerEvent)
	require.Equal(t, objects.AutomationStatusSuccess, logs[0].Status)
}

func TestConvertLead(t *testing.T) {
	s, recorder := newArmedStore(t)
	svc := biz.NewLeadService(biz.LeadServiceParams{Store: s, Recorder: recorder})

	owner := seedUser(t, s, "owner@crm.test", roles.RoleUser)
	ownerCtx := authz.NewUserContext(context.Background(), owner)

	lead, err := svc.CreateLead(ownerCtx, &objects.Lead{
		Name:    "Acme Corp",
		Email:   "hello@acme.test",
		Phone:   "555-0101",
		Company: "Acme",
	})
	require.NoError(t, err)

	contact, err := svc.ConvertLead(ownerCtx, lead.ID)
	require.NoError(t, err)

	want := &objects.Contact{
		FirstName:   "Acme Corp",
		Email:       "hello@acme.test",
		Phone:       "555-0101",
		Company:     "Acme",
		OwnerUserID: owner,
	}
	if diff := cmp.Diff(want, contact,
		cmpopts.IgnoreFields(objects.Contact{}, "ID", "CreatedAt", "UpdatedAt"),
	); diff != "" {
		t.Fatalf("converted contact mismatch (-want +got):\n%s", diff)
	}

	// The lead now carries the one-way conversion marker.
	got, err := svc.GetLead(ownerCtx, lead.ID)
	require.NoError(t, err)
	require.Equal(t, objects.LeadStatusConverted, got.Status)
	require.NotNil(t, got.ConvertedContactID)
	require.Equal(t, contact.ID, *got.ConvertedContactID)

	// Converting again fails and leaves no second contact behind.
	_, err = svc.ConvertLead(ownerCtx, lead.ID)
	require.ErrorIs(t, err, biz.ErrLeadConverted)

	contacts, err := s.Contacts().List(ownerCtx)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
}

func TestConvertLeadRecordsStatusTransition(t *testing.T) {
	s, recorder := newArmedStore(t)
	svc := biz.NewLeadService(biz.LeadServiceParams{Store: s, Recorder: recorder})

	owner := seedUser(t, s, "owner@crm.test", roles.RoleUser)
	ownerCtx := authz.NewUserContext(context.Background(), owner)

	lead, err := svc.CreateLead(ownerCtx, &objects.Lead{Name: "acme"})
	require.NoError(t, err)

	_, err = svc.ConvertLead(ownerCtx, lead.ID)
	require.NoError(t, err)

	history, err := svc.ListStatusHistory(ownerCtx, lead.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)

	// Oldest first: the insert record, then new -> converted.
	require.Nil(t, history[0].OldStatus)
	require.NotNil(t, history[1].NewStatus)
	require.Equal(t, objects.LeadStatusConverted, *history[1].NewStatus)
}
