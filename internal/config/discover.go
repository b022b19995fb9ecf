// internal/config/discover.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by Discover when no config file exists.
var ErrNotFound = errors.New("config not found")

// DefaultPath returns the XDG-compliant default config path.
func DefaultPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "./config.toml"
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "marquee", "config.toml")
}

// Discover finds the config file using the standard search order.
// Search order:
//  1. MARQUEE_CONFIG environment variable
//  2. ./config.toml (current directory)
//  3. $XDG_CONFIG_HOME/marquee/config.toml
//  4. /etc/marquee/config.toml
func Discover() (string, error) {
	// 1. Check MARQUEE_CONFIG env var
	if envPath := os.Getenv("MARQUEE_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("MARQUEE_CONFIG=%s: %w", envPath, err)
		}
		return envPath, nil
	}

	// Build search paths
	paths := []string{
		"./config.toml",
		DefaultPath(),
		"/etc/marquee/config.toml",
	}

	// 2-4. Check each path
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("%w, checked: %s", ErrNotFound, formatPaths(paths))
}

// LoadAuto loads the config at path, or the discovered one when path is
// empty. With no config file anywhere it falls back to LoadDefault. The
// returned path is empty in that case.
func LoadAuto(path string) (*Config, string, error) {
	if path == "" {
		var err error
		path, err = Discover()
		if errors.Is(err, ErrNotFound) {
			cfg, err := LoadDefault()
			return cfg, "", err
		}
		if err != nil {
			return nil, "", err
		}
	}
	cfg, err := Load(path)
	return cfg, path, err
}

func formatPaths(paths []string) string {
	return strings.Join(paths, ", ")
}
