// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/zapper-tv/zapper/constant"
	"github.com/zapper-tv/zapper/filesystem"
	"github.com/zapper-tv/zapper/where"
)

// EnvKeyReplacer maps configuration keys onto environment variable names.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Setup registers defaults and environment bindings, then reads zapper.toml
// from where.Config() if it exists.
func Setup() error {
	viper.SetConfigName(constant.Zapper)
	viper.SetConfigType("toml")
	viper.SetFs(filesystem.API())
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.Zapper)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, env := range EnvExposed {
		viper.MustBindEnv(env)
	}

	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		viper.SetDefault(name, field.Value)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
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

// Millis reads an integer key as a number of milliseconds.
func Millis(k string) time.Duration {
	return time.Duration(viper.GetInt(k)) * time.Millisecond
}
