package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jonathan/estate-desk/internal/dedup"
	"github.com/jonathan/estate-desk/internal/observability"
	"github.com/jonathan/estate-desk/internal/schemas"
	"github.com/jonathan/estate-desk/internal/types"
	"github.com/spf13/cobra"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Find duplicate records in a JSON file",
	Long: `Reads a JSON array of {id, name, email, phone} records, validates it against the
records schema and prints the groups of likely duplicates, highest score first.
Use --input - to read from stdin.`,
	RunE: runDetect,
}

var (
	detectInput   string
	detectJSON    bool
	detectVerbose bool
	detectFlags   detectionFlags
)

func init() {
	detectCmd.Flags().StringVarP(&detectInput, "input", "i", "", "Path to records JSON file (required)")
	detectCmd.Flags().BoolVar(&detectJSON, "json", false, "Print groups as JSON")
	detectCmd.Flags().BoolVarP(&detectVerbose, "verbose", "v", false, "Print a detection summary before the groups")
	detectFlags.register(detectCmd)

	if err := detectCmd.MarkFlagRequired("input"); err != nil {
		panic(fmt.Sprintf("failed to mark input flag as required: %v", err))
	}

	rootCmd.AddCommand(detectCmd)
}

// detectOutput is the --json output of detect
type detectOutput struct {
	RecordCount int                                       `json:"record_count"`
	Threshold   float64                                   `json:"threshold"`
	Clustering  dedup.Clustering                          `json:"clustering"`
	FoldAccents bool                                      `json:"fold_accents"`
	Groups      []types.DuplicateGroup[types.InputRecord] `json:"groups"`
}

func runDetect(cmd *cobra.Command, _ []string) error {
	opts, cfg, err := detectFlags.resolve(cmd)
	if err != nil {
		return err
	}

	data, err := readInput(cmd.InOrStdin(), detectInput)
	if err != nil {
		return err
	}

	records, err := parseRecords(data)
	if err != nil {
		return err
	}

	groups := types.NewDuplicateGroups(dedup.Detect(records, opts))
	out := cmd.OutOrStdout()

	if detectJSON {
		return writeJSON(out, detectOutput{
			RecordCount: len(records),
			Threshold:   opts.Threshold,
			Clustering:  opts.Clustering,
			FoldAccents: opts.FoldAccents,
			Groups:      groups,
		})
	}

	printer := observability.NewPrinter(out)
	if detectVerbose || cfg.Verbose {
		printer.PrintSummary(len(records), len(groups), opts)
	}
	observability.PrintDuplicateGroups(printer, groups)
	return nil
}

// readInput reads a file, or stdin when path is "-"
func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	return data, nil
}

// parseRecords validates raw JSON against the records schema and decodes it.
// Record ids must be unique so groups can be told apart.
func parseRecords(data []byte) ([]types.InputRecord, error) {
	if err := schemas.ValidateRecords(data); err != nil {
		return nil, fmt.Errorf("invalid records file: %w", err)
	}

	var records []types.InputRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal records JSON: %w", err)
	}

	req := types.CheckRequest{Records: records}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid records file: %s", types.ValidationMessage(err))
	}
	return records, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}
