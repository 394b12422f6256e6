package biz

import (
	"context"

	"go.uber.org/fx"

	"github.com/looplj/crmhub/internal/objects"
	"github.com/looplj/crmhub/internal/store"
)

type DealServiceParams struct {
	fx.In

	Store *store.Store
}

func NewDealService(params DealServiceParams) *DealService {
	return &DealService{
		AbstractService: &AbstractService{store: params.Store},
	}
}

type DealService struct {
	*AbstractService
}

func (s *DealService) CreateDeal(ctx context.Context, deal *objects.Deal) (*objects.Deal, error) {
	return s.store.Deals().Create(ctx, deal)
}

func (s *DealService) GetDeal(ctx context.Context, id int) (*objects.Deal, error) {
	return s.store.Deals().Get(ctx, id)
}

func (s *DealService) ListDeals(ctx context.Context) ([]*objects.Deal, error) {
	return s.store.Deals().List(ctx)
}

func (s *DealService) UpdateDeal(ctx context.Context, deal *objects.Deal) (*objects.Deal, error) {
	return s.store.Deals().Update(ctx, deal)
}

func (s *DealService) DeleteDeal(ctx context.Context, id int) error {
	return s.store.Deals().Delete(ctx, id)
}

// MoveStage changes only the deal's stage; the stage observer records the
// transition.
func (s *DealService) MoveStage(ctx context.Context, dealID int, stage string) (*objects.Deal, error) {
	var updated *objects.Deal

	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		deal, err := s.store.Deals().Get(ctx, dealID)
		if err != nil {
			return err
		}

		deal.Stage = stage

		updated, err = s.store.Deals().Update(ctx, deal)

		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// ListStageHistory returns the deal's stage transitions.
func (s *DealService) ListStageHistory(ctx context.Context, dealID int) ([]*objects.DealStageHistory, error) {
	return s.store.ListDealStageHistory(ctx, dealID)
}
