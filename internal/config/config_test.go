package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/estate-desk/internal/dedup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{
		"agency_id": "550e8400-e29b-41d4-a716-446655440000",
		"database_url": "postgres://localhost/estate",
		"threshold": 0.75,
		"clustering": "transitive",
		"fold_accents": true,
		"verbose": true
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", cfg.AgencyID)
	assert.Equal(t, "postgres://localhost/estate", cfg.DatabaseURL)
	assert.Equal(t, 0.75, cfg.Threshold)
	assert.Equal(t, "transitive", cfg.Clustering)
	assert.True(t, cfg.FoldAccents)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_ValidYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
agency_id: 550e8400-e29b-41d4-a716-446655440000
threshold: 0.8
port: 9090
fold_accents: true
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", cfg.AgencyID)
	assert.Equal(t, 0.8, cfg.Threshold)
	assert.Equal(t, 9090, cfg.Port)
	assert.True(t, cfg.FoldAccents)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{ invalid json }`)

	cfg, err := LoadConfig(path)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "config.yml", "threshold: [unclosed")

	cfg, err := LoadConfig(path)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config YAML")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"empty", Config{}, ""},
		{"valid", Config{Threshold: 0.6, Clustering: "greedy", Port: 8080, AgencyID: "550e8400-e29b-41d4-a716-446655440000"}, ""},
		{"threshold", Config{Threshold: 1.2}, "threshold"},
		{"clustering", Config{Clustering: "kmeans"}, "clustering"},
		{"port", Config{Port: 70000}, "port"},
		{"agency", Config{AgencyID: "agency-1"}, "agency_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	defaults := Config{
		DatabaseURL: "postgres://default",
		AgencyID:    "550e8400-e29b-41d4-a716-446655440000",
		Threshold:   0.7,
		Clustering:  "transitive",
		Port:        9090,
	}

	partial := Config{
		DatabaseURL: "postgres://custom",
		Threshold:   0.9,
	}

	merged := partial.MergeWithDefaults(defaults)

	// Custom values should be preserved
	assert.Equal(t, "postgres://custom", merged.DatabaseURL)
	assert.Equal(t, 0.9, merged.Threshold)

	// Default values should fill in empty fields
	assert.Equal(t, defaults.AgencyID, merged.AgencyID)
	assert.Equal(t, "transitive", merged.Clustering)
	assert.Equal(t, 9090, merged.Port)
}

func TestDetectionOptions(t *testing.T) {
	assert.Equal(t, dedup.DefaultOptions(), (&Config{}).DetectionOptions())

	cfg := Config{Threshold: 0.8, Clustering: "transitive", FoldAccents: true}
	opts := cfg.DetectionOptions()
	assert.Equal(t, 0.8, opts.Threshold)
	assert.Equal(t, dedup.ClusterTransitive, opts.Clustering)
	assert.True(t, opts.FoldAccents)
}
