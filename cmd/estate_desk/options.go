package main

import (
	"fmt"
	"os"

	"github.com/jonathan/estate-desk/internal/config"
	"github.com/jonathan/estate-desk/internal/dedup"
	"github.com/spf13/cobra"
)

// detectionFlags are the detector settings shared by detect, scan and serve.
// Precedence: flags, then the config file, then built-in defaults.
type detectionFlags struct {
	configPath  string
	threshold   float64
	transitive  bool
	foldAccents bool
}

func (f *detectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "Path to a JSON or YAML config file")
	cmd.Flags().Float64Var(&f.threshold, "threshold", dedup.DefaultThreshold, "Minimum pair score to group records (0.0-1.0)")
	cmd.Flags().BoolVar(&f.transitive, "transitive", false, "Group every chain of matching pairs instead of matching against a seed record")
	cmd.Flags().BoolVar(&f.foldAccents, "fold-accents", false, "Compare names and emails without accents")
}

// resolve loads the config file, if any, and applies explicitly set flags on top.
func (f *detectionFlags) resolve(cmd *cobra.Command) (dedup.Options, *config.Config, error) {
	cfg := &config.Config{}
	if f.configPath != "" {
		loaded, err := config.LoadConfig(f.configPath)
		if err != nil {
			return dedup.Options{}, nil, err
		}
		if err := loaded.Validate(); err != nil {
			return dedup.Options{}, nil, err
		}
		cfg = loaded
	}

	opts := cfg.DetectionOptions()
	if cmd.Flags().Changed("threshold") {
		opts.Threshold = f.threshold
	}
	if f.transitive {
		opts.Clustering = dedup.ClusterTransitive
	}
	if f.foldAccents {
		opts.FoldAccents = true
	}

	if err := opts.Validate(); err != nil {
		return dedup.Options{}, nil, fmt.Errorf("invalid detection options: %w", err)
	}
	return opts, cfg, nil
}

// databaseURL prefers DATABASE_URL over the config file.
func databaseURL(cfg *config.Config) (string, error) {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url, nil
	}
	if cfg != nil && cfg.DatabaseURL != "" {
		return cfg.DatabaseURL, nil
	}
	return "", fmt.Errorf("DATABASE_URL environment variable is required")
}
