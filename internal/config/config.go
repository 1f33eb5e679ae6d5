// Package config loads service configuration from built-in defaults, an
// optional YAML file and environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/yourorg/roomeasy-api/internal/validation"
)

const ConfigPathEnvVar = "CONFIG_PATH"

var DefaultConfigPaths = []string{"config.yaml", "/etc/roomeasy/config.yaml"}

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Store    StoreConfig    `koanf:"store"`
	Postgres PostgresConfig `koanf:"postgres"`
	Supabase SupabaseConfig `koanf:"supabase"`
	Redis    RedisConfig    `koanf:"redis"`
	Session  SessionConfig  `koanf:"session"`
	Catalog  CatalogConfig  `koanf:"catalog"`
	Breaker  BreakerConfig  `koanf:"breaker"`
	Logging  LoggingConfig  `koanf:"logging"`
	Seed     SeedConfig     `koanf:"seed"`
}

type ServerConfig struct {
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimit       int           `koanf:"rate_limit" validate:"gte=0"` // requests per minute per IP, 0 disables
}

type StoreConfig struct {
	Backend string `koanf:"backend" validate:"oneof=postgres supabase memory"`
	Migrate bool   `koanf:"migrate"`
}

type PostgresConfig struct {
	DSN     string `koanf:"dsn"`
	MaxOpen int    `koanf:"max_open"`
}

type SupabaseConfig struct {
	URL           string  `koanf:"url"`
	Key           string  `koanf:"key"`
	RatePerSecond float64 `koanf:"rate_per_second" validate:"gte=0"`
	Burst         int     `koanf:"burst" validate:"gte=0"`
}

// RedisConfig is optional. With no address, sessions stay in process.
type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db" validate:"gte=0"`
}

type SessionConfig struct {
	CookieName string        `koanf:"cookie_name" validate:"required"`
	Secure     bool          `koanf:"secure"`
	TTL        time.Duration `koanf:"ttl" validate:"gt=0"`
}

type CatalogConfig struct {
	TTL     time.Duration `koanf:"ttl" validate:"gt=0"`
	Workers int           `koanf:"workers" validate:"min=1"`
}

type BreakerConfig struct {
	FailureThreshold uint32        `koanf:"failure_threshold" validate:"min=1"`
	OpenTimeout      time.Duration `koanf:"open_timeout" validate:"gt=0"`
}

type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// SeedConfig is read by cmd/seed only.
type SeedConfig struct {
	File     string        `koanf:"file"`
	Interval time.Duration `koanf:"interval" validate:"gte=0"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            4002,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimit:       100,
		},
		Store:    StoreConfig{Backend: "postgres", Migrate: true},
		Postgres: PostgresConfig{MaxOpen: 10},
		Supabase: SupabaseConfig{RatePerSecond: 20, Burst: 10},
		Session:  SessionConfig{CookieName: "roomeasy_session", TTL: 7 * 24 * time.Hour},
		Catalog:  CatalogConfig{TTL: 30 * time.Second, Workers: 1},
		Breaker:  BreakerConfig{FailureThreshold: 5, OpenTimeout: 30 * time.Second},
		Logging:  LoggingConfig{Level: "info", Format: "json"},
		Seed:     SeedConfig{File: "seed.yaml"},
	}
}

// Load layers defaults, the config file and the environment, then validates.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	if err := splitLists(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var envMappings = map[string]string{
	"port":             "server.port",
	"cors_origins":     "server.cors_origins",
	"rate_limit":       "server.rate_limit",
	"store_backend":    "store.backend",
	"store_migrate":    "store.migrate",
	"pg_dsn":           "postgres.dsn",
	"pg_max_open":      "postgres.max_open",
	"supabase_url":     "supabase.url",
	"supabase_key":     "supabase.key",
	"supabase_rps":     "supabase.rate_per_second",
	"redis_addr":       "redis.addr",
	"redis_password":   "redis.password",
	"redis_db":         "redis.db",
	"session_secure":   "session.secure",
	"session_ttl":      "session.ttl",
	"catalog_ttl":      "catalog.ttl",
	"breaker_failures": "breaker.failure_threshold",
	"log_level":        "logging.level",
	"log_format":       "logging.format",
	"seed_file":        "seed.file",
	"seed_interval":    "seed.interval",
}

// envTransform maps known variable names to config paths and drops the rest.
func envTransform(key string) string {
	return envMappings[strings.ToLower(key)]
}

var listPaths = []string{"server.cors_origins"}

// splitLists turns comma-separated env values into slices.
func splitLists(k *koanf.Koanf) error {
	for _, path := range listPaths {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		var parts []string
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("set %s: %w", path, err)
		}
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	for _, section := range []any{c.Server, c.Store, c.Supabase, c.Redis, c.Session, c.Catalog, c.Breaker, c.Logging, c.Seed} {
		if err := validation.Struct(section); err != nil {
			errs = append(errs, err)
		}
	}
	switch c.Store.Backend {
	case "postgres":
		if c.Postgres.DSN == "" {
			errs = append(errs, errors.New("PG_DSN is required for the postgres backend"))
		}
	case "supabase":
		if c.Supabase.URL == "" || c.Supabase.Key == "" {
			errs = append(errs, errors.New("SUPABASE_URL and SUPABASE_KEY are required for the supabase backend"))
		}
	}
	return errors.Join(errs...)
}
