// Package config owns the viper-backed settings registry, environment bindings and config file resolution.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/petflix/petflix/constant"
	"github.com/petflix/petflix/filesystem"
	"github.com/petflix/petflix/key"
	"github.com/petflix/petflix/where"
	"github.com/spf13/viper"
)

// EnvKeyReplacer normalizes dotted configuration keys into environment variable names.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Setup registers defaults and environment bindings, then reads petflix.toml when present.
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

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}

	return nil
}

// Seconds reads an integer key as a number of seconds.
func Seconds(k string) time.Duration {
	return time.Duration(viper.GetInt(k)) * time.Second
}

// Minutes reads an integer key as a number of minutes.
func Minutes(k string) time.Duration {
	return time.Duration(viper.GetInt(k)) * time.Minute
}

// Timeout is the bound applied to every single upstream call.
func Timeout() time.Duration {
	if d := Seconds(key.CatalogTimeout); d > 0 {
		return d
	}
	return 8 * time.Second
}
