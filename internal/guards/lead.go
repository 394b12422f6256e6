package guards

import (
	"context"

	"github.com/looplj/crmhub/internal/objects"
	"github.com/looplj/crmhub/internal/policies"
	"github.com/looplj/crmhub/internal/store"
)

// LeadConversionGuard enforces the one-way conversion marker: once a lead
// points at its converted contact the pointer can never be cleared or
// redirected. Setting it for the first time is the conversion itself and
// is allowed.
func LeadConversionGuard() store.GuardFunc {
	return func(ctx context.Context, m *store.Mutation) error {
		if m.Entity != objects.EntityLead || m.Op != policies.OpUpdate {
			return nil
		}

		old, ok := m.Old.(*objects.Lead)
		if !ok {
			return nil
		}

		next, ok := m.New.(*objects.Lead)
		if !ok {
			return nil
		}

		if old.ConvertedContactID == nil {
			return nil
		}

		if next.ConvertedContactID == nil {
			return violationf("lead_conversion", "lead %d is converted; the conversion marker cannot be cleared", old.ID)
		}

		if *next.ConvertedContactID != *old.ConvertedContactID {
			return violationf("lead_conversion", "lead %d is converted to contact %d; the marker cannot be redirected", old.ID, *old.ConvertedContactID)
		}

		return nil
	}
}
