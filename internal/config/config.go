// Package config loads runtime configuration from an optional YAML
// file, environment variables, and defaults, in that order of
// increasing precedence for env over file.
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full runtime configuration.
type Config struct {
	// DataFile is the durable local storage path holding the serialized
	// store snapshot.
	DataFile string `mapstructure:"data_file"`

	// RemoteDB is the remote document store database path. Empty means
	// the remote store is not configured; reads then fall back to local
	// data and writes report unavailability.
	RemoteDB string `mapstructure:"remote_db"`

	// FetchLimit bounds remote collection reads.
	FetchLimit int `mapstructure:"fetch_limit"`

	Dashboard struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"dashboard"`
}

// Load reads configuration. configFile may be empty, in which case
// .bizbook/config.yaml is tried; a missing file is not an error.
// Environment variables use the BIZBOOK_ prefix (BIZBOOK_DATA_FILE,
// BIZBOOK_REMOTE_DB, BIZBOOK_DASHBOARD_PORT, ...). A .env file in the
// working directory is honored if present.
func Load(configFile string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigFile(".bizbook/config.yaml")
	}

	v.SetEnvPrefix("BIZBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("data_file", ".bizbook/data.json")
	v.SetDefault("remote_db", "")
	v.SetDefault("fetch_limit", 100)
	v.SetDefault("dashboard.port", 8080)

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional; only an explicitly named file must exist.
		if configFile != "" {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}
