package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/jonathan/estate-desk/internal/db"
	"github.com/jonathan/estate-desk/internal/observability"
	"github.com/jonathan/estate-desk/internal/service"
	"github.com/jonathan/estate-desk/internal/types"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan an agency's stored contacts for duplicates",
	Long: `Loads the agency's contacts of one kind (or every kind with --kind all) from
PostgreSQL, skips groups that were dismissed, stores the scan and prints it.
Requires DATABASE_URL.`,
	RunE: runScan,
}

var (
	scanAgency string
	scanKind   string
	scanJSON   bool
	scanFlags  detectionFlags
)

func init() {
	scanCmd.Flags().StringVar(&scanAgency, "agency", "", "Agency UUID (defaults to agency_id from --config)")
	scanCmd.Flags().StringVar(&scanKind, "kind", types.KindAll, "Contact kind: tenant, owner, acquirer, prospect or all")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "Print scans as JSON")
	scanFlags.register(scanCmd)

	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, _ []string) error {
	opts, cfg, err := scanFlags.resolve(cmd)
	if err != nil {
		return err
	}

	agencyID, err := resolveAgency(scanAgency, cfg.AgencyID)
	if err != nil {
		return err
	}

	var kinds []types.ContactKind
	if scanKind != types.KindAll {
		kind, err := types.ParseContactKind(scanKind)
		if err != nil {
			return err
		}
		kinds = []types.ContactKind{kind}
	}

	url, err := databaseURL(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(ctx, url)
	if err != nil {
		return err
	}
	defer database.Close()

	scanner := service.NewScanner(database, opts)
	scans, err := runScans(ctx, scanner, agencyID, kinds)
	if err != nil {
		return err
	}

	if scanJSON {
		return writeJSON(cmd.OutOrStdout(), scans)
	}
	printer := observability.NewPrinter(cmd.OutOrStdout())
	for _, s := range scans {
		printer.PrintScan(s)
	}
	return nil
}

// runScans scans the given kinds, or every kind when kinds is empty
func runScans(ctx context.Context, scanner *service.Scanner, agencyID uuid.UUID, kinds []types.ContactKind) ([]*db.Scan, error) {
	if len(kinds) == 0 {
		return scanner.ScanAll(ctx, agencyID, scanner.Defaults())
	}

	scans := make([]*db.Scan, 0, len(kinds))
	for _, kind := range kinds {
		scan, err := scanner.Scan(ctx, agencyID, kind, scanner.Defaults())
		if err != nil {
			return nil, err
		}
		scans = append(scans, scan)
	}
	return scans, nil
}

// resolveAgency prefers the flag over the config file
func resolveAgency(flag, fromConfig string) (uuid.UUID, error) {
	raw := flag
	if raw == "" {
		raw = fromConfig
	}
	if raw == "" {
		return uuid.Nil, fmt.Errorf("--agency is required (or set agency_id in the config file)")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid agency ID %q: %w", raw, err)
	}
	return id, nil
}
