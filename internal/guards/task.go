package guards

import (
	"context"

	"github.com/looplj/crmhub/internal/authz"
	"github.com/looplj/crmhub/internal/objects"
	"github.com/looplj/crmhub/internal/policies"
	"github.com/looplj/crmhub/internal/store"
)

// TaskCompletionGuard restricts the transition into the completed status
// to the task's assignee. The restriction has no role exemption: an
// administrator who is not the assignee cannot complete the task either.
func TaskCompletionGuard() store.GuardFunc {
	return func(ctx context.Context, m *store.Mutation) error {
		if m.Entity != objects.EntityTask || m.Op != policies.OpUpdate {
			return nil
		}

		old, ok := m.Old.(*objects.Task)
		if !ok {
			return nil
		}

		next, ok := m.New.(*objects.Task)
		if !ok {
			return nil
		}

		if next.Status != objects.TaskStatusCompleted || old.Status == objects.TaskStatusCompleted {
			return nil
		}

		assignee, assigned := old.AssigneeID()
		if !assigned {
			return violationf("task_completion", "task %d has no assignee; it cannot be completed", old.ID)
		}

		actor, ok := authz.CurrentUserID(ctx)
		if !ok || actor != assignee {
			return violationf("task_completion", "only the assignee may complete task %d", old.ID)
		}

		return nil
	}
}
