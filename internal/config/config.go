// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	Server ServerConfig `toml:"server"`
	TMDB   TMDBConfig   `toml:"tmdb"`
	Cache  CacheConfig  `toml:"cache"`
	Log    LogConfig    `toml:"log"`
}

type ServerConfig struct {
	Host      string  `toml:"host"`
	Port      int     `toml:"port"`
	RateLimit float64 `toml:"rate_limit"` // requests/second per client IP, 0 disables
	RateBurst int     `toml:"rate_burst"`
}

// Addr returns host:port for listening.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type TMDBConfig struct {
	APIKey            string `toml:"api_key"`
	BaseURL           string `toml:"base_url"`
	RequestsPerSecond int    `toml:"requests_per_second"` // outbound limit, 0 disables
}

type CacheConfig struct {
	TTLMinutes           int `toml:"ttl_minutes"`
	GenreTTLHours        int `toml:"genre_ttl_hours"`
	PruneIntervalMinutes int `toml:"prune_interval_minutes"` // 0 disables pruning
}

// TTL is the lifetime of cached catalog responses.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// GenreTTL is the lifetime of the cached genre catalog.
func (c CacheConfig) GenreTTL() time.Duration {
	return time.Duration(c.GenreTTLHours) * time.Hour
}

// PruneInterval is how often expired entries are dropped.
func (c CacheConfig) PruneInterval() time.Duration {
	return time.Duration(c.PruneIntervalMinutes) * time.Minute
}

type LogConfig struct {
	Level      string `toml:"level"`
	File       string `toml:"file"` // empty logs to stdout only
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:      "0.0.0.0",
			Port:      8585,
			RateLimit: 20,
			RateBurst: 40,
		},
		TMDB: TMDBConfig{
			BaseURL:           "https://api.themoviedb.org/3",
			RequestsPerSecond: 40,
		},
		Cache: CacheConfig{
			TTLMinutes:           15,
			GenreTTLHours:        24,
			PruneIntervalMinutes: 5,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 14,
		},
	}
}

// Load reads, parses and validates the configuration file.
func Load(path string) (*Config, error) {
	cfg, missing, err := load(path)
	if err != nil {
		return nil, err
	}
	return cfg, check(path, cfg, missing)
}

// LoadWithoutValidation reads and parses the configuration file, skipping
// validation. Unresolved environment variables are left in place.
func LoadWithoutValidation(path string) (*Config, error) {
	cfg, _, err := load(path)
	return cfg, err
}

// LoadDefault returns the built-in configuration with environment
// overrides applied, validated.
func LoadDefault() (*Config, error) {
	cfg := Default()
	cfg.applyEnv()
	return cfg, check("", cfg, nil)
}

func load(path string) (*Config, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}

	// Substitute environment variables
	content, missing := substituteEnvVars(string(data))

	cfg := Default()
	if _, err := toml.Decode(content, cfg); err != nil {
		return nil, nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyEnv()

	return cfg, missing, nil
}

func check(path string, cfg *Config, missing []string) error {
	cerr := &ConfigError{Path: path, Missing: missing, Errors: cfg.Validate()}
	if cerr.HasErrors() {
		return cerr
	}
	return nil
}

// applyEnv lets the environment override the API credentials.
func (c *Config) applyEnv() {
	if v := os.Getenv("TMDB_API_KEY"); v != "" {
		c.TMDB.APIKey = v
	}
	if v := os.Getenv("TMDB_BASE_URL"); v != "" {
		c.TMDB.BaseURL = v
	}
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() *Config {
	r := *c
	if r.TMDB.APIKey != "" {
		r.TMDB.APIKey = "REDACTED"
	}
	return &r
}

// envVarPattern matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::([-?])([^}]*))?\}`)

// substituteEnvVars replaces variable references with environment values.
// Comment lines are left alone.
// It returns the unresolved references: the variable name, or
// "NAME: message" for the :? form.
func substituteEnvVars(content string) (string, []string) {
	var missing []string
	seen := make(map[string]bool)
	report := func(s string) {
		if !seen[s] {
			seen[s] = true
			missing = append(missing, s)
		}
	}

	expand := func(match string) string {
		m := envVarPattern.FindStringSubmatch(match)
		name, op, arg := m[1], m[2], m[3]
		value, ok := os.LookupEnv(name)

		switch op {
		case "-":
			if value == "" {
				return arg
			}
			return value
		case "?":
			if value == "" {
				report(name + ": " + strings.TrimSpace(arg))
				return match
			}
			return value
		default:
			if !ok {
				report(name)
				return match // Leave unchanged if not found
			}
			return value
		}
	}

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		lines[i] = envVarPattern.ReplaceAllStringFunc(line, expand)
	}
	return strings.Join(lines, "\n"), missing
}
