package config

import (
	"testing"

	"github.com/spf13/viper"
)

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load with defaults failed: %v", err)
	}
	if cfg.Data.Dir != ".taskwell" {
		t.Errorf("Data.Dir = %q, want .taskwell", cfg.Data.Dir)
	}
	if cfg.Data.Backend != BackendFile {
		t.Errorf("Data.Backend = %q, want %q", cfg.Data.Backend, BackendFile)
	}
	if cfg.Data.CleanupMaxAgeDays != 30 {
		t.Errorf("CleanupMaxAgeDays = %d, want 30", cfg.Data.CleanupMaxAgeDays)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("data.backend", "redis")

	if _, err := Load(v); err == nil {
		t.Error("unknown backend should fail validation")
	}
}

func TestLoad_RejectsUnknownLogLevel(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("log.level", "loud")

	if _, err := Load(v); err == nil {
		t.Error("unknown log level should fail validation")
	}
}
