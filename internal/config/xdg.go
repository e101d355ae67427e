// Package config provides XDG path helpers.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// EnvSettings overrides the settings file path.
const EnvSettings = "MDLOG_SETTINGS"

const appDir = "mdlog"

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// DefaultSettingsPath returns the settings file path.
func DefaultSettingsPath() string {
	if v := strings.TrimSpace(os.Getenv(EnvSettings)); v != "" {
		return v
	}
	return filepath.Join(XDGConfigHome(), appDir, "settings.toml")
}

// DefaultArchivePath returns the default path for the SQLite archive.
func DefaultArchivePath() string {
	return filepath.Join(XDGDataHome(), appDir, "archive.db")
}
