package main

import (
	"os"
	"os/exec"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/estate-desk/internal/config"
	"github.com/jonathan/estate-desk/internal/dedup"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAgency(t *testing.T) {
	flagID := uuid.New()
	cfgID := uuid.New()

	got, err := resolveAgency(flagID.String(), cfgID.String())
	require.NoError(t, err)
	assert.Equal(t, flagID, got)

	got, err = resolveAgency("", cfgID.String())
	require.NoError(t, err)
	assert.Equal(t, cfgID, got)

	_, err = resolveAgency("", "")
	assert.ErrorContains(t, err, "--agency is required")

	_, err = resolveAgency("agency-7", "")
	assert.ErrorContains(t, err, "invalid agency ID")
}

func TestDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := databaseURL(&config.Config{})
	assert.Error(t, err)

	url, err := databaseURL(&config.Config{DatabaseURL: "postgres://from-config"})
	require.NoError(t, err)
	assert.Equal(t, "postgres://from-config", url)

	t.Setenv("DATABASE_URL", "postgres://from-env")
	url, err = databaseURL(&config.Config{DatabaseURL: "postgres://from-config"})
	require.NoError(t, err)
	assert.Equal(t, "postgres://from-env", url)
}

func TestDetectionFlags_Defaults(t *testing.T) {
	var flags detectionFlags
	cmd := &cobra.Command{Use: "test"}
	flags.register(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--transitive", "--fold-accents"}))

	opts, cfg, err := flags.resolve(cmd)
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, dedup.DefaultThreshold, opts.Threshold)
	assert.Equal(t, dedup.ClusterTransitive, opts.Clustering)
	assert.True(t, opts.FoldAccents)
}

func TestScanCommand_RequiresAgency(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "scan", "--kind", "tenant")
	cmd.Env = append(os.Environ(), "DATABASE_URL=postgres://localhost:1/none")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err, "command should fail")
	assert.Contains(t, string(output), "--agency is required")
}
