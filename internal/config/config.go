// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/estate-desk/internal/dedup"
	"gopkg.in/yaml.v3"
)

// Config represents the configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty"` // PostgreSQL connection URL
	AgencyID    string `json:"agency_id,omitempty" yaml:"agency_id,omitempty"`       // Agency UUID scoping scans
	Port        int    `json:"port,omitempty" yaml:"port,omitempty"`                 // API listen port

	// Detection
	Threshold   float64 `json:"threshold,omitempty" yaml:"threshold,omitempty"`       // Minimum pair score (0.0-1.0)
	Clustering  string  `json:"clustering,omitempty" yaml:"clustering,omitempty"`     // greedy or transitive
	FoldAccents bool    `json:"fold_accents,omitempty" yaml:"fold_accents,omitempty"` // Accent-insensitive names/emails

	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty"` // Print detailed debug information
}

// LoadConfig loads configuration from a JSON or YAML file.
// Files ending in .yaml or .yml are parsed as YAML, everything else as JSON.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Required fields are checked by the commands after merging with flags.
func (c *Config) Validate() error {
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("config error: 'threshold' must be between 0 and 1")
	}

	switch dedup.Clustering(c.Clustering) {
	case "", dedup.ClusterGreedy, dedup.ClusterTransitive:
	default:
		return fmt.Errorf("config error: unknown 'clustering' %q", c.Clustering)
	}

	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' out of range: %d", c.Port)
	}

	if c.AgencyID != "" {
		if _, err := uuid.Parse(c.AgencyID); err != nil {
			return fmt.Errorf("config error: 'agency_id' is not a UUID: %w", err)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.AgencyID == "" {
		result.AgencyID = defaults.AgencyID
	}
	if result.Clustering == "" {
		result.Clustering = defaults.Clustering
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.Threshold == 0 {
		result.Threshold = defaults.Threshold
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// DetectionOptions converts the detection settings, falling back to
// dedup.DefaultOptions for anything unset.
func (c *Config) DetectionOptions() dedup.Options {
	defaults := dedup.DefaultOptions()
	merged := c.MergeWithDefaults(Config{
		Threshold:  defaults.Threshold,
		Clustering: string(defaults.Clustering),
	})
	return dedup.Options{
		Threshold:   merged.Threshold,
		Clustering:  dedup.Clustering(merged.Clustering),
		FoldAccents: merged.FoldAccents,
	}
}
