package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"ENV", "ALLOWED_ORIGINS", "FRONTEND_URL", "FRONTEND_URL_2", "STORAGE_DRIVER", "AUTOSAVE_INTERVAL", "SESSION_DRIVER", "PASSWORD_SCHEME"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.StorageDriver != "file" || cfg.SessionDriver != "memory" || cfg.PasswordScheme != "plain" {
		t.Errorf("drivers = %s/%s/%s", cfg.StorageDriver, cfg.SessionDriver, cfg.PasswordScheme)
	}
	if cfg.AutoSaveInterval != 30*time.Second || cfg.DeliveredDelay != time.Second || cfg.ReadDelay != 3*time.Second {
		t.Errorf("timings = %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.AllowedOrigins, []string{"http://localhost:3000"}) {
		t.Errorf("origins = %v", cfg.AllowedOrigins)
	}
	if cfg.IsProduction() || cfg.AllowedHost != "" {
		t.Error("development config should not enable host check")
	}
	if cfg.NeedsRedis() {
		t.Error("default config should not need Redis")
	}
}

func TestLoadProduction(t *testing.T) {
	t.Setenv("ENV", "Production")
	t.Setenv("HOST", "https://chat.example.com:443/api")
	t.Setenv("ALLOWED_ORIGINS", "https://example.com, https://www.example.com ,")
	t.Setenv("SESSION_DRIVER", "redis")
	t.Setenv("READ_DELAY", "5s")
	t.Setenv("DELIVERED_DELAY", "nonsense")

	cfg := Load()
	if !cfg.IsProduction() {
		t.Error("expected production")
	}
	if cfg.AllowedHost != "chat.example.com" {
		t.Errorf("allowed host = %q", cfg.AllowedHost)
	}
	if !reflect.DeepEqual(cfg.AllowedOrigins, []string{"https://example.com", "https://www.example.com"}) {
		t.Errorf("origins = %v", cfg.AllowedOrigins)
	}
	if !cfg.NeedsRedis() {
		t.Error("redis sessions need Redis")
	}
	if cfg.ReadDelay != 5*time.Second || cfg.DeliveredDelay != time.Second {
		t.Errorf("delays = %v / %v", cfg.ReadDelay, cfg.DeliveredDelay)
	}
}
