package main

import (
	"fmt"

	"github.com/jonathan/estate-desk/internal/db"
	"github.com/spf13/cobra"
)

var (
	migrateConfig string
	migratePrint  bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Long:  "Creates the contacts, duplicate_scans and duplicate_dismissals tables if they do not exist. Requires DATABASE_URL.",
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&migrateConfig, "config", "", "Path to a JSON or YAML config file")
	migrateCmd.Flags().BoolVar(&migratePrint, "print", false, "Print the schema SQL instead of applying it")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	if migratePrint {
		_, err := fmt.Fprint(cmd.OutOrStdout(), db.Schema())
		return err
	}

	var flags detectionFlags
	flags.configPath = migrateConfig
	_, cfg, err := flags.resolve(cmd)
	if err != nil {
		return err
	}

	url, err := databaseURL(cfg)
	if err != nil {
		return err
	}

	database, err := db.Connect(cmd.Context(), url)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.Migrate(cmd.Context()); err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), "Schema applied")
	return err
}
