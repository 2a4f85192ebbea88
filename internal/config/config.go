// Package config loads storefront settings from defaults, an optional TOML
// file and STOREFRONT_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Storage backends for shelf records.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// Config holds every runtime setting.
type Config struct {
	Addr     string
	Env      string // "development" or "production"
	DBPath   string
	LogLevel slog.Level

	StorageBackend  string
	StorageDir      string // file backend root
	StorageDisabled bool   // every shelf storage call fails; state lives in memory only

	CSRFKey   string
	ResendKey string
	EmailFrom string
	InquiryTo string

	CatalogSeed string // YAML seed applied at start when the catalog is empty

	// Asset overrides; empty serves the copies built into the binary.
	StaticDir    string
	TemplatesDir string

	SlowQuery    time.Duration
	SlowRequest  time.Duration
	RateLimit    float64 // requests per second per visitor
	RateBurst    int
	ShelfIdleTTL time.Duration
}

// Production reports whether the server runs in production mode.
func (c Config) Production() bool {
	return c.Env == "production"
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Addr:           ":8080",
		Env:            "development",
		DBPath:         "storefront.db",
		LogLevel:       slog.LevelInfo,
		StorageBackend: BackendSQLite,
		StorageDir:     "data/shelves",
		EmailFrom:      "Storefront <noreply@storefront.local>",
		SlowQuery:      50 * time.Millisecond,
		SlowRequest:    500 * time.Millisecond,
		RateLimit:      20,
		RateBurst:      40,
		ShelfIdleTTL:   30 * time.Minute,
	}
}

// fileConfig mirrors Config in the TOML layout. Durations are strings like "50ms".
type fileConfig struct {
	Addr     string `toml:"addr"`
	Env      string `toml:"env"`
	DBPath   string `toml:"db_path"`
	LogLevel string `toml:"log_level"`

	Storage struct {
		Backend  string `toml:"backend"`
		Dir      string `toml:"dir"`
		Disabled *bool  `toml:"disabled"`
	} `toml:"storage"`

	Email struct {
		ResendKey string `toml:"resend_key"`
		From      string `toml:"from"`
		InquiryTo string `toml:"inquiry_to"`
	} `toml:"email"`

	CSRFKey      string `toml:"csrf_key"`
	CatalogSeed  string `toml:"catalog_seed"`
	StaticDir    string `toml:"static_dir"`
	TemplatesDir string `toml:"templates_dir"`

	SlowQuery    string  `toml:"slow_query"`
	SlowRequest  string  `toml:"slow_request"`
	RateLimit    float64 `toml:"rate_limit"`
	RateBurst    int     `toml:"rate_burst"`
	ShelfIdleTTL string  `toml:"shelf_idle_ttl"`
}

// Load builds the configuration. path may be empty; a missing file is an
// error only when path was given explicitly. getenv is usually os.Getenv.
// PRE: getenv is non-nil
// POST: returns a validated Config
func Load(path string, getenv func(string) string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = getenv("STOREFRONT_CONFIG")
	}
	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	resolved, err := expandPath(path)
	if err != nil {
		return err
	}
	b, err := os.ReadFile(resolved)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var raw fileConfig
	if err := toml.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	setString(&c.Addr, raw.Addr)
	setString(&c.Env, raw.Env)
	setString(&c.DBPath, raw.DBPath)
	setString(&c.StorageBackend, raw.Storage.Backend)
	setString(&c.StorageDir, raw.Storage.Dir)
	if raw.Storage.Disabled != nil {
		c.StorageDisabled = *raw.Storage.Disabled
	}
	setString(&c.ResendKey, raw.Email.ResendKey)
	setString(&c.EmailFrom, raw.Email.From)
	setString(&c.InquiryTo, raw.Email.InquiryTo)
	setString(&c.CSRFKey, raw.CSRFKey)
	setString(&c.CatalogSeed, raw.CatalogSeed)
	setString(&c.StaticDir, raw.StaticDir)
	setString(&c.TemplatesDir, raw.TemplatesDir)
	if raw.RateLimit > 0 {
		c.RateLimit = raw.RateLimit
	}
	if raw.RateBurst > 0 {
		c.RateBurst = raw.RateBurst
	}
	if raw.LogLevel != "" {
		if err := c.LogLevel.UnmarshalText([]byte(raw.LogLevel)); err != nil {
			return fmt.Errorf("config log_level: %w", err)
		}
	}
	for _, d := range []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"slow_query", raw.SlowQuery, &c.SlowQuery},
		{"slow_request", raw.SlowRequest, &c.SlowRequest},
		{"shelf_idle_ttl", raw.ShelfIdleTTL, &c.ShelfIdleTTL},
	} {
		if err := setDuration(d.dst, d.raw); err != nil {
			return fmt.Errorf("config %s: %w", d.name, err)
		}
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	env := func(key string) string { return strings.TrimSpace(getenv("STOREFRONT_" + key)) }

	setString(&c.Addr, env("ADDR"))
	setString(&c.Env, env("ENV"))
	setString(&c.DBPath, env("DB"))
	setString(&c.StorageBackend, env("STORAGE"))
	setString(&c.StorageDir, env("STORAGE_DIR"))
	setString(&c.CSRFKey, env("CSRF_KEY"))
	setString(&c.ResendKey, env("RESEND_KEY"))
	setString(&c.EmailFrom, env("RESEND_FROM"))
	setString(&c.InquiryTo, env("INQUIRY_TO"))
	setString(&c.CatalogSeed, env("CATALOG_SEED"))
	setString(&c.StaticDir, env("STATIC_DIR"))
	setString(&c.TemplatesDir, env("TEMPLATES_DIR"))

	if v := env("STORAGE_DISABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("STOREFRONT_STORAGE_DISABLED: %w", err)
		}
		c.StorageDisabled = b
	}
	if v := env("LOG_LEVEL"); v != "" {
		if err := c.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("STOREFRONT_LOG_LEVEL: %w", err)
		}
	}
	if v := env("RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("STOREFRONT_RATE_LIMIT: %w", err)
		}
		c.RateLimit = f
	}
	if v := env("SLOW_QUERY_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("STOREFRONT_SLOW_QUERY_MS: %w", err)
		}
		c.SlowQuery = time.Duration(ms) * time.Millisecond
	}
	if err := setDuration(&c.ShelfIdleTTL, env("SHELF_IDLE_TTL")); err != nil {
		return fmt.Errorf("STOREFRONT_SHELF_IDLE_TTL: %w", err)
	}
	return nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	switch c.StorageBackend {
	case BackendSQLite, BackendMemory:
	case BackendFile:
		if c.StorageDir == "" {
			return errors.New("config: file storage needs a storage dir")
		}
	default:
		return fmt.Errorf("config: unknown storage backend %q", c.StorageBackend)
	}
	if c.Env != "development" && c.Env != "production" {
		return fmt.Errorf("config: env must be development or production, got %q", c.Env)
	}
	if c.RateLimit <= 0 || c.RateBurst <= 0 {
		return errors.New("config: rate limit and burst must be positive")
	}
	if c.ShelfIdleTTL <= 0 {
		return errors.New("config: shelf idle ttl must be positive")
	}
	return nil
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v string) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
