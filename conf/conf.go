// Package conf loads the process configuration from file and environment.
// Files are looked up as crmhub.{yml,yaml,json} in the working directory,
// ./conf and /etc/crmhub; every key can be overridden through CRMHUB_*
// environment variables.
package conf

import (
	"errors"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/looplj/crmhub/internal/log"
	"github.com/looplj/crmhub/internal/server"
	"github.com/looplj/crmhub/internal/server/biz"
	"github.com/looplj/crmhub/internal/store"
)

type Config struct {
	APIServer server.Config  `conf:"server" yaml:"server" json:"server"`
	DB        store.Config   `conf:"db" yaml:"db" json:"db"`
	Log       log.Config     `conf:"log" yaml:"log" json:"log"`
	Auth      biz.AuthConfig `conf:"auth" yaml:"auth" json:"auth"`
}

func Load() (Config, error) {
	v := viper.New()

	v.SetConfigName("crmhub")
	v.AddConfigPath(".")
	v.AddConfigPath("./conf")
	v.AddConfigPath("/etc/crmhub")

	v.SetEnvPrefix("CRMHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
		// No config file is fine; defaults and env vars apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "conf"
	}); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.name", "crmhub")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.request_timeout", "60s")

	v.SetDefault("db.dialect", "sqlite")
	v.SetDefault("db.dsn", "file:crmhub.db")

	v.SetDefault("log.name", "crmhub")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("auth.token_ttl", "168h")
}
