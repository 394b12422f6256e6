package biz

import "go.uber.org/fx"

var Module = fx.Module("biz",
	fx.Provide(NewAuthService),
	fx.Provide(NewUserService),
	fx.Provide(NewTeamService),
	fx.Provide(NewLeadService),
	fx.Provide(NewContactService),
	fx.Provide(NewDealService),
	fx.Provide(NewTaskService),
	fx.Provide(NewActivityService),
	fx.Provide(NewProvenanceService),
)
