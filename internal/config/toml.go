// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Paths   PathsConfig   `toml:"paths"`
	Rescale RescaleConfig `toml:"rescale"`
	Render  RenderConfig  `toml:"render"`
	Export  ExportConfig  `toml:"export"`
}

// PathsConfig maps input and output directories.
type PathsConfig struct {
	DataDir   *string `toml:"data-dir"`
	ResultDir *string `toml:"result-dir"`
}

// RescaleConfig maps rescaling settings.
type RescaleConfig struct {
	// Years accepts the same forms as the --years flag, e.g. "2018-2022".
	Years     *string `toml:"years"`
	EmptyYear *string `toml:"empty-year"`
}

// RenderConfig maps chart settings.
type RenderConfig struct {
	DisplayFrom *int     `toml:"display-from"`
	YLimit      *float64 `toml:"ylim"`
	Width       *int     `toml:"width"`
	Height      *int     `toml:"height"`
}

// ExportConfig maps optional export formats.
type ExportConfig struct {
	Parquet *bool `toml:"parquet"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
