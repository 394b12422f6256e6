package conf

import (
	"go.uber.org/fx"

	"github.com/looplj/crmhub/internal/log"
	"github.com/looplj/crmhub/internal/server"
	"github.com/looplj/crmhub/internal/server/biz"
	"github.com/looplj/crmhub/internal/store"
)

// Module loads the configuration and provides its sections to the
// components that consume them.
var Module = fx.Module("conf",
	fx.Provide(Load),
	fx.Provide(func(cfg Config) server.Config { return cfg.APIServer }),
	fx.Provide(func(cfg Config) store.Config { return cfg.DB }),
	fx.Provide(func(cfg Config) log.Config { return cfg.Log }),
	fx.Provide(func(cfg Config) biz.AuthConfig { return cfg.Auth }),
)
