// Package config provides XDG path helpers.
package config

import (
	"os"
	"path/filepath"
)

const (
	// DefaultDataDir holds monthly_data.csv, weekly_data.csv and hourly_data.csv.
	DefaultDataDir = "./data/raw"
	// DefaultResultDir receives the rescaled series and the charts.
	DefaultResultDir = "./data/result"
)

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

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), "tsrescale", "config.toml")
}
