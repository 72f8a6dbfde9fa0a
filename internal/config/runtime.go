package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// RuntimeConfig selects the backing state store and telemetry exporter a
// scheduler process should use. It is read from a YAML file via Viper,
// which supplies environment-variable overrides and default values for
// these settings (a store path, an exporter choice).
type RuntimeConfig struct {
	StateStore struct {
		// Backend is "memory" or "sqlite".
		Backend string `mapstructure:"backend"`
		// Path is the sqlite database file path; ignored for "memory".
		Path string `mapstructure:"path"`
	} `mapstructure:"state_store"`

	Telemetry struct {
		ServiceName string `mapstructure:"service_name"`
		Exporter    string `mapstructure:"exporter"`
	} `mapstructure:"telemetry"`
}

// LoadRuntimeConfig reads configPath (YAML) into a RuntimeConfig, applying
// TRANSACT_-prefixed environment variable overrides (e.g.
// TRANSACT_STATE_STORE_BACKEND). Returns defaults (in-memory store, no
// telemetry exporter) if configPath does not exist.
func LoadRuntimeConfig(configPath string) (*RuntimeConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("transact")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("state_store.backend", "memory")
	v.SetDefault("state_store.path", "")
	v.SetDefault("telemetry.service_name", "transact")
	v.SetDefault("telemetry.exporter", "none")

	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", configPath, err)
		}
	}

	var cfg RuntimeConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	switch cfg.StateStore.Backend {
	case "memory", "sqlite":
	default:
		return nil, fmt.Errorf("config: unknown state_store.backend %q", cfg.StateStore.Backend)
	}
	if cfg.StateStore.Backend == "sqlite" && cfg.StateStore.Path == "" {
		return nil, fmt.Errorf("config: state_store.path required for sqlite backend")
	}

	return &cfg, nil
}
