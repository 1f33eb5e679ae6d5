package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("STORE_BACKEND", "memory")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 4002 || cfg.Catalog.TTL != 30*time.Second || cfg.Session.CookieName != "roomeasy_session" {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.Redis.Addr != "" {
		t.Errorf("redis addr = %q, want empty", cfg.Redis.Addr)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "server:\n  port: 9000\n  cors_origins: [\"https://a.example\"]\nstore:\n  backend: memory\ncatalog:\n  ttl: 5s\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("PORT", "9100")
	t.Setenv("CORS_ORIGINS", "https://x.example, https://y.example")
	t.Setenv("SESSION_SECURE", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("port = %d, want env value", cfg.Server.Port)
	}
	if cfg.Catalog.TTL != 5*time.Second {
		t.Errorf("catalog ttl = %v, want file value", cfg.Catalog.TTL)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "https://y.example" {
		t.Errorf("cors origins = %v", cfg.Server.CORSOrigins)
	}
	if !cfg.Session.Secure || cfg.Logging.Level != "debug" {
		t.Errorf("session/logging = %+v %+v", cfg.Session, cfg.Logging)
	}
}

func TestValidateBackendRequirements(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"memory needs nothing", func(c *Config) { c.Store.Backend = "memory" }, false},
		{"postgres needs dsn", func(c *Config) { c.Store.Backend = "postgres" }, true},
		{"postgres with dsn", func(c *Config) { c.Store.Backend = "postgres"; c.Postgres.DSN = "postgres://x" }, false},
		{"supabase needs key", func(c *Config) { c.Store.Backend = "supabase"; c.Supabase.URL = "https://x.supabase.co" }, true},
		{"unknown backend", func(c *Config) { c.Store.Backend = "mongo" }, true},
		{"bad log level", func(c *Config) { c.Store.Backend = "memory"; c.Logging.Level = "loud" }, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tc.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
