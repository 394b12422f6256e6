package api

import "go.uber.org/fx"

var Module = fx.Module("api",
	fx.Provide(NewSystemHandlers),
	fx.Provide(NewAuthHandlers),
	fx.Provide(NewUserHandlers),
	fx.Provide(NewTeamHandlers),
	fx.Provide(NewLeadHandlers),
	fx.Provide(NewContactHandlers),
	fx.Provide(NewDealHandlers),
	fx.Provide(NewTaskHandlers),
	fx.Provide(NewActivityHandlers),
	fx.Provide(NewProvenanceHandlers),
)
