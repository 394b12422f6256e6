package biz

import (
	"context"

	"go.uber.org/fx"

	"github.com/looplj/crmhub/internal/authz"
	"github.com/looplj/crmhub/internal/objects"
	"github.com/looplj/crmhub/internal/store"
)

type TaskServiceParams struct {
	fx.In

	Store *store.Store
}

func NewTaskService(params TaskServiceParams) *TaskService {
	return &TaskService{
		AbstractService: &AbstractService{store: params.Store},
	}
}

type TaskService struct {
	*AbstractService
}

func (s *TaskService) CreateTask(ctx context.Context, task *objects.Task) (*objects.Task, error) {
	if task.CreatorUserID == 0 {
		if actor, ok := authz.CurrentUserID(ctx); ok {
			task.CreatorUserID = actor
		}
	}

	return s.store.Tasks().Create(ctx, task)
}

func (s *TaskService) GetTask(ctx context.Context, id int) (*objects.Task, error) {
	return s.store.Tasks().Get(ctx, id)
}

func (s *TaskService) ListTasks(ctx context.Context) ([]*objects.Task, error) {
	return s.store.Tasks().List(ctx)
}

func (s *TaskService) UpdateTask(ctx context.Context, task *objects.Task) (*objects.Task, error) {
	return s.store.Tasks().Update(ctx, task)
}

func (s *TaskService) DeleteTask(ctx context.Context, id int) error {
	return s.store.Tasks().Delete(ctx, id)
}

// CompleteTask moves the task to completed. The completion guard holds
// the transition to the assignee regardless of role.
func (s *TaskService) CompleteTask(ctx context.Context, id int) (*objects.Task, error) {
	var completed *objects.Task

	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		task, err := s.store.Tasks().Get(ctx, id)
		if err != nil {
			return err
		}

		task.Status = objects.TaskStatusCompleted

		completed, err = s.store.Tasks().Update(ctx, task)

		return err
	})
	if err != nil {
		return nil, err
	}

	return completed, nil
}
