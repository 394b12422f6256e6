package guards

import (
	"context"

	"github.com/looplj/crmhub/internal/authz"
	"github.com/looplj/crmhub/internal/objects"
	"github.com/looplj/crmhub/internal/policies"
	"github.com/looplj/crmhub/internal/roles"
	"github.com/looplj/crmhub/internal/store"
)

// OwnershipGuard restricts reassigning a record's owner to
// administrators. Owners and managers may edit the rows the policy grants
// them, but handing a record to another user is an administrative act.
// Resolution failures deny the change.
func OwnershipGuard(resolver *roles.Resolver) store.GuardFunc {
	return func(ctx context.Context, m *store.Mutation) error {
		if m.Op != policies.OpUpdate {
			return nil
		}

		old, ok := m.Old.(objects.Owned)
		if !ok {
			return nil
		}

		next, ok := m.New.(objects.Owned)
		if !ok {
			return nil
		}

		oldOwner, oldSet := old.OwnerID()
		newOwner, newSet := next.OwnerID()

		if oldSet == newSet && oldOwner == newOwner {
			return nil
		}

		actor, ok := authz.CurrentUserID(ctx)
		if !ok {
			return violationf("ownership_transfer", "no acting user; %s %d cannot change owner", m.Entity, old.RowID())
		}

		isAdmin, err := resolver.IsAdmin(ctx, actor)
		if err != nil {
			return violationf("ownership_transfer", "role resolution failed: %v", err)
		}

		if !isAdmin {
			return violationf("ownership_transfer", "only an administrator may reassign %s %d", m.Entity, old.RowID())
		}

		return nil
	}
}
