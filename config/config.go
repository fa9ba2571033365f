// Package config wires application defaults, the config file, and
// environment overrides into viper.
package config

import (
	"strings"

	"github.com/Hoodgail/watchlist/constant"
	"github.com/Hoodgail/watchlist/filesystem"
	"github.com/Hoodgail/watchlist/where"
	"github.com/spf13/viper"
)

// EnvKeyReplacer maps config key separators to their environment
// variable form, e.g. logs.write becomes WATCHLIST_LOGS_WRITE.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Setup registers defaults and environment bindings, then loads the
// config file if one exists. A missing file is not an error.
func Setup() error {
	viper.SetConfigName(constant.App)
	viper.SetConfigType("toml")
	viper.SetFs(filesystem.API())
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.App)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, env := range EnvExposed {
		viper.MustBindEnv(env)
	}

	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		viper.SetDefault(name, field.Value)
	}

	err := viper.ReadInConfig()
	if _, notFound := err.(viper.ConfigFileNotFoundError); notFound {
		return nil
	}

	return err
}
