// Package config loads the application configuration from file, environment
// and flags via viper, mirroring the precedence flags > env > file > defaults.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	// BackendFile stores each key as a file in the data directory.
	BackendFile = "file"
	// BackendSQLite stores keys in an embedded sqlite database.
	BackendSQLite = "sqlite"
)

// AppConfig is the unified application configuration.
type AppConfig struct {
	Data DataConfig `mapstructure:"data"`
	Log  LogConfig  `mapstructure:"log"`
}

// DataConfig configures where and how the task collection is persisted.
type DataConfig struct {
	Dir           string `mapstructure:"dir" validate:"required"`
	Backend       string `mapstructure:"backend" validate:"required,oneof=file sqlite"`
	CapacityBytes int64  `mapstructure:"capacityBytes" validate:"min=0"`
	// CleanupMaxAgeDays is the default age cutoff for `taskwell cleanup`.
	CleanupMaxAgeDays int `mapstructure:"cleanupMaxAgeDays" validate:"min=1"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

var validate = validator.New()

// SetDefaults registers the default values on the given viper instance.
// Call before reading the config file so absent keys resolve.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("data.dir", ".taskwell")
	v.SetDefault("data.backend", BackendFile)
	v.SetDefault("data.capacityBytes", 0) // 0 selects the storage default
	v.SetDefault("data.cleanupMaxAgeDays", 30)
	v.SetDefault("log.level", "info")
}

// Load unmarshals and validates the configuration from v.
func Load(v *viper.Viper) (AppConfig, error) {
	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return AppConfig{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SQLitePath returns the database file path for the sqlite backend.
func (c DataConfig) SQLitePath() string {
	return filepath.Join(c.Dir, "taskwell.db")
}
