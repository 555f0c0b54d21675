// ABOUTME: Configuration loading and parsing for bloodlink-console
// ABOUTME: Supports YAML or TOML files with .env loading, env var expansion and duration parsing

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults applied when a field is left empty.
const (
	DefaultHTTPAddr       = "localhost:8080"
	DefaultBackendTimeout = 15 * time.Second
	DefaultSessionTTL     = 12 * time.Hour
	DefaultCacheTTL       = 30 * time.Second
	DefaultCacheEntries   = 1000
)

// Config represents the complete bloodlink-console configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" toml:"server"`
	Backend  BackendConfig  `yaml:"backend" toml:"backend"`
	Identity IdentityConfig `yaml:"identity" toml:"identity"`
	Database DatabaseConfig `yaml:"database" toml:"database"`
	Cache    CacheConfig    `yaml:"cache" toml:"cache"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
}

// ServerConfig holds the console's own listener settings
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr" toml:"http_addr"`
	// BaseURL is the external URL of the console, used for the sign-in callback.
	// Defaults to http://<http_addr>.
	BaseURL string `yaml:"base_url" toml:"base_url"`
}

// BackendConfig points at the BloodLink REST API
type BackendConfig struct {
	BaseURL string        `yaml:"base_url" toml:"base_url"`
	Timeout time.Duration `yaml:"-" toml:"-"`

	TimeoutRaw string `yaml:"timeout" toml:"timeout"`
}

// IdentityConfig configures verification of tokens issued by the identity provider
type IdentityConfig struct {
	JWTSecret  string        `yaml:"jwt_secret" toml:"jwt_secret"`
	SignInURL  string        `yaml:"sign_in_url" toml:"sign_in_url"`
	SessionTTL time.Duration `yaml:"-" toml:"-"`

	SessionTTLRaw string `yaml:"session_ttl" toml:"session_ttl"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// CacheConfig bounds the in-process query cache
type CacheConfig struct {
	TTL        time.Duration `yaml:"-" toml:"-"`
	MaxEntries int           `yaml:"max_entries" toml:"max_entries"`

	TTLRaw string `yaml:"ttl" toml:"ttl"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// A .env file beside the config (and one in the working directory) is loaded first;
// variables already present in the environment win. ${VAR_NAME} references are
// then expanded and duration strings are parsed. Files ending in .toml are decoded
// as TOML, everything else as YAML.
func Load(path string) (*Config, error) {
	loadDotEnv(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(expanded, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// loadDotEnv loads optional .env files. Missing files are not an error.
func loadDotEnv(configPath string) {
	candidates := []string{filepath.Join(filepath.Dir(configPath), ".env"), ".env"}
	seen := make(map[string]bool, len(candidates))
	for _, p := range candidates {
		abs, err := filepath.Abs(p)
		if err != nil || seen[abs] {
			continue
		}
		seen[abs] = true
		if _, err := os.Stat(abs); err != nil {
			continue
		}
		_ = godotenv.Load(abs)
	}
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

func applyDefaults(cfg *Config) {
	if cfg.Server.HTTPAddr == "" {
		cfg.Server.HTTPAddr = DefaultHTTPAddr
	}
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = "http://" + cfg.Server.HTTPAddr
	}
	cfg.Server.BaseURL = strings.TrimSuffix(cfg.Server.BaseURL, "/")
	cfg.Backend.BaseURL = strings.TrimSuffix(cfg.Backend.BaseURL, "/")

	if cfg.Backend.Timeout == 0 {
		cfg.Backend.Timeout = DefaultBackendTimeout
	}
	if cfg.Identity.SessionTTL == 0 {
		cfg.Identity.SessionTTL = DefaultSessionTTL
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = DefaultCacheTTL
	}
	if cfg.Cache.MaxEntries == 0 {
		cfg.Cache.MaxEntries = DefaultCacheEntries
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend.base_url must be an absolute URL, got %q", c.Backend.BaseURL)
	}

	if c.Identity.JWTSecret == "" {
		return fmt.Errorf("identity.jwt_secret is required")
	}
	if len(c.Identity.JWTSecret) < 16 {
		return fmt.Errorf("identity.jwt_secret must be at least 16 characters")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("cache.max_entries must not be negative")
	}

	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	fields := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"backend.timeout", cfg.Backend.TimeoutRaw, &cfg.Backend.Timeout},
		{"identity.session_ttl", cfg.Identity.SessionTTLRaw, &cfg.Identity.SessionTTL},
		{"cache.ttl", cfg.Cache.TTLRaw, &cfg.Cache.TTL},
	}

	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		d, err := time.ParseDuration(f.raw)
		if err != nil {
			return fmt.Errorf("parsing %s %q: %w", f.name, f.raw, err)
		}
		if d < 0 {
			return fmt.Errorf("%s must not be negative", f.name)
		}
		*f.dst = d
	}

	return nil
}
