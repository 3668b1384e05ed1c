package main

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonathan/estate-desk/internal/dedup"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runDetectWith runs detect on a fresh command so flag state does not leak between tests
func runDetectWith(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	detectInput, detectJSON, detectVerbose = "", false, false
	detectFlags = detectionFlags{}

	cmd := &cobra.Command{Use: "detect"}
	cmd.Flags().StringVarP(&detectInput, "input", "i", "", "")
	cmd.Flags().BoolVar(&detectJSON, "json", false, "")
	cmd.Flags().BoolVarP(&detectVerbose, "verbose", "v", false, "")
	detectFlags.register(cmd)
	require.NoError(t, cmd.ParseFlags(args))

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader(stdin))
	err := runDetect(cmd, nil)
	return out.String(), err
}

func TestDetect_PrintsGroups(t *testing.T) {
	output, err := runDetectWith(t, "", "--input", filepath.Join("testdata", "records.json"), "--verbose")
	require.NoError(t, err)

	assert.Contains(t, output, "DUPLICATE DETECTION")
	assert.Contains(t, output, "GROUP 1 of 1 (2 records)")
	assert.Contains(t, output, "Score: 95%")
	assert.NotContains(t, output, "3: Marie")
}

func TestDetect_JSON(t *testing.T) {
	output, err := runDetectWith(t, "", "--input", filepath.Join("testdata", "records.json"), "--json")
	require.NoError(t, err)

	var got detectOutput
	require.NoError(t, json.Unmarshal([]byte(output), &got))
	assert.Equal(t, 3, got.RecordCount)
	assert.Equal(t, dedup.ClusterGreedy, got.Clustering)
	require.Len(t, got.Groups, 1)
	assert.Equal(t, "1,2", got.Groups[0].Signature)
	assert.Equal(t, dedup.ExactPhoneScore, got.Groups[0].Score)
}

func TestDetect_Stdin(t *testing.T) {
	stdin := `[{"id":"a","name":"Awa Diallo","email":"awa@test.com"},{"id":"b","name":"Awa Diallo","email":"AWA@test.com"}]`

	output, err := runDetectWith(t, stdin, "--input", "-", "--json", "--threshold", "0.99")
	require.NoError(t, err)

	var got detectOutput
	require.NoError(t, json.Unmarshal([]byte(output), &got))
	assert.Equal(t, 0.99, got.Threshold)
	require.Len(t, got.Groups, 1)
	assert.Equal(t, 1.0, got.Groups[0].Score)
}

func TestDetect_NoGroups(t *testing.T) {
	stdin := `[{"id":"a","name":"Awa Diallo"},{"id":"b","name":"Bob Traoré"}]`

	output, err := runDetectWith(t, stdin, "--input", "-")
	require.NoError(t, err)
	assert.Contains(t, output, "NO DUPLICATES FOUND")
}

func TestDetect_InvalidInput(t *testing.T) {
	_, err := runDetectWith(t, "", "--input", filepath.Join("testdata", "invalid_records.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid records file")

	_, err = runDetectWith(t, `[{"id":"1"},{"id":"1"}]`, "--input", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate record id")

	_, err = runDetectWith(t, "", "--input", filepath.Join("testdata", "missing.json"))
	assert.ErrorContains(t, err, "failed to read input file")

	_, err = runDetectWith(t, "[]", "--input", "-", "--threshold", "1.5")
	assert.ErrorContains(t, err, "invalid detection options")
}

func TestDetect_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "estate.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("threshold: 0.99\nclustering: transitive\n"), 0o600))

	output, err := runDetectWith(t, "", "--input", filepath.Join("testdata", "records.json"), "--json", "--config", cfgPath)
	require.NoError(t, err)

	var got detectOutput
	require.NoError(t, json.Unmarshal([]byte(output), &got))
	assert.Equal(t, 0.99, got.Threshold)
	assert.Equal(t, dedup.ClusterTransitive, got.Clustering)
	assert.Empty(t, got.Groups)

	// flags win over the config file
	output, err = runDetectWith(t, "", "--input", filepath.Join("testdata", "records.json"), "--json",
		"--config", cfgPath, "--threshold", "0.6")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(output), &got))
	assert.Equal(t, 0.6, got.Threshold)
	assert.Len(t, got.Groups, 1)
}

func TestDetectCommand_Binary(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "detect", "--input", filepath.Join("testdata", "records.json"))
	output, err := cmd.CombinedOutput()

	assert.NoError(t, err, "command should succeed")
	assert.Contains(t, string(output), "GROUP 1 of 1")
}

func TestDetectCommand_MissingInputFlag(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "detect")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err, "command should fail")
	assert.Contains(t, string(output), "required")
	if exitError, ok := err.(*exec.ExitError); ok {
		assert.Equal(t, 1, exitError.ExitCode())
	}
}
