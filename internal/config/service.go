package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. TRACTION_LISTEN.
const EnvPrefix = "TRACTION"

// Service holds the settings of the long-running commands.
type Service struct {
	Listen    string `mapstructure:"listen"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	// Speedup plays the simulation this many times faster than real time.
	Speedup float64 `mapstructure:"speedup"`
}

// LoadService reads the service settings from path, if not empty, and then
// applies TRACTION_* environment overrides.
func LoadService(path string) (Service, error) {
	v := viper.New()
	v.SetDefault("listen", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "logfmt")
	v.SetDefault("speedup", 1.0)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Service{}, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	var s Service
	if err := v.Unmarshal(&s); err != nil {
		return Service{}, fmt.Errorf("decoding service settings: %w", err)
	}
	if s.Speedup <= 0 {
		return Service{}, errors.New("speedup must be positive")
	}
	return s, nil
}
