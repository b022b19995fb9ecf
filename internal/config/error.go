// internal/config/error.go
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrInvalid matches every *ConfigError under errors.Is.
var ErrInvalid = errors.New("invalid configuration")

const apiKeyVar = "TMDB_API_KEY"

// ConfigError aggregates configuration errors.
type ConfigError struct {
	Path    string   // Config file path, empty for built-in defaults
	Missing []string // Unresolved environment variables
	Errors  []string // Validation errors
}

func (e *ConfigError) Error() string {
	if !e.HasErrors() {
		return ""
	}

	source := e.Path
	if source == "" {
		source = "built-in defaults"
	}
	parts := []string{fmt.Sprintf("config %s:", source)}

	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing environment variables: %s", strings.Join(e.Missing, ", ")))
	}

	if len(e.Errors) > 0 {
		parts = append(parts, "validation failed:")
		for _, err := range e.Errors {
			parts = append(parts, fmt.Sprintf("  - %s", err))
		}
	}

	if e.MissingAPIKey() {
		parts = append(parts, fmt.Sprintf("hint: export %s, or run 'marquee init' and edit the file", apiKeyVar))
	}

	return strings.Join(parts, "\n")
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalid
}

// HasErrors returns true if there are any errors.
func (e *ConfigError) HasErrors() bool {
	return len(e.Missing) > 0 || len(e.Errors) > 0
}

// MissingAPIKey reports whether the TMDB API key is absent, the one problem
// that blocks every command.
func (e *ConfigError) MissingAPIKey() bool {
	if slices.Contains(e.Missing, apiKeyVar) {
		return true
	}
	return slices.ContainsFunc(e.Errors, func(msg string) bool {
		return strings.HasPrefix(msg, "tmdb.api_key:")
	})
}
