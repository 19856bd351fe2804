package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"net-troubleshooter/internal/domain"
)

// Environment variables consulted when no settings file exists yet.
const (
	EnvBackendURL     = "TROUBLESHOOTER_BACKEND_URL"
	EnvMode           = "TROUBLESHOOTER_MODE"
	EnvTimeoutSeconds = "TROUBLESHOOTER_TIMEOUT_SECONDS"
)

// Built-in values used when neither the settings file nor the environment
// provides one.
const (
	DefaultBackendURL     = "http://127.0.0.1:8000"
	DefaultTimeoutSeconds = 30
	MaxTimeoutSeconds     = 600
)

// DefaultSettings returns baseline configuration for first launch. The
// environment overrides built-in values so the dashboard can point at a
// non-local backend without a settings file.
func DefaultSettings() domain.Settings {
	cfg := domain.Settings{
		BackendURL:     DefaultBackendURL,
		Mode:           string(domain.ModeBeginner),
		TimeoutSeconds: DefaultTimeoutSeconds,
	}

	if v := os.Getenv(EnvBackendURL); v != "" {
		cfg.BackendURL = v
	}
	if v := os.Getenv(EnvMode); v != "" {
		cfg.Mode = v
	}
	if v := os.Getenv(EnvTimeoutSeconds); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil {
			cfg.TimeoutSeconds = seconds
		}
	}

	return Normalize(cfg)
}

// Normalize cleans user-entered settings: trims the backend URL, replaces
// unusable fields with defaults, and clamps the timeout.
func Normalize(cfg domain.Settings) domain.Settings {
	cfg.BackendURL = strings.TrimRight(strings.TrimSpace(cfg.BackendURL), "/")
	if cfg.BackendURL == "" {
		cfg.BackendURL = DefaultBackendURL
	}

	mode, err := domain.ParseMode(cfg.Mode)
	if err != nil {
		mode = domain.ModeBeginner
	}
	cfg.Mode = string(mode)

	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = DefaultTimeoutSeconds
	} else if cfg.TimeoutSeconds > MaxTimeoutSeconds {
		cfg.TimeoutSeconds = MaxTimeoutSeconds
	}

	return cfg
}

// DefaultPath returns the settings file location under the user home.
func DefaultPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return filepath.Join(homeDir, ".net-troubleshooter", "settings.json")
}
