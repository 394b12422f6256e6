package biz

import (
	"context"

	"github.com/looplj/crmhub/internal/store"
)

// AbstractService carries the shared storage handle. Services compose it
// and run multi-step operations through RunInTransaction so the policy
// pipeline, guards and provenance all commit or roll back together.
type AbstractService struct {
	store *store.Store
}

func (a *AbstractService) RunInTransaction(ctx context.Context, fn func(context.Context) error) error {
	return a.store.RunInTransaction(ctx, fn)
}

func (a *AbstractService) Store() *store.Store {
	return a.store
}
