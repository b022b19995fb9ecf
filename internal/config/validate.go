// internal/config/validate.go
package config

import (
	"fmt"
	"net/url"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port: must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, fmt.Sprintf("server.rate_limit: must not be negative, got %g", c.Server.RateLimit))
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
		errs = append(errs, fmt.Sprintf("server.rate_burst: must be at least 1 when rate_limit is set, got %d", c.Server.RateBurst))
	}

	// TMDB validation
	if c.TMDB.APIKey == "" {
		errs = append(errs, "tmdb.api_key: required (set TMDB_API_KEY)")
	}
	if u, err := url.Parse(c.TMDB.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Sprintf("tmdb.base_url: must be an absolute http(s) URL, got %q", c.TMDB.BaseURL))
	}
	if c.TMDB.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Sprintf("tmdb.requests_per_second: must not be negative, got %d", c.TMDB.RequestsPerSecond))
	}

	// Cache validation
	if c.Cache.TTLMinutes < 1 {
		errs = append(errs, fmt.Sprintf("cache.ttl_minutes: must be at least 1, got %d", c.Cache.TTLMinutes))
	}
	if c.Cache.GenreTTLHours < 1 {
		errs = append(errs, fmt.Sprintf("cache.genre_ttl_hours: must be at least 1, got %d", c.Cache.GenreTTLHours))
	}
	if c.Cache.PruneIntervalMinutes < 0 {
		errs = append(errs, fmt.Sprintf("cache.prune_interval_minutes: must not be negative, got %d", c.Cache.PruneIntervalMinutes))
	}

	// Log validation
	if !validLogLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("log.level: must be one of debug, info, warn, error; got %q", c.Log.Level))
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		errs = append(errs, "log: max_size_mb, max_backups and max_age_days must not be negative")
	}

	return errs
}
