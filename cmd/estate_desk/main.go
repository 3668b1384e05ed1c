// Package main provides the estate_desk CLI: duplicate contact detection over
// JSON files, stored agency contacts, and the REST API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "estate_desk",
	Short: "Duplicate contact detection for property agencies",
	Long: "estate_desk finds tenants, owners, acquirers and prospects that were entered more than once, " +
		"comparing names, emails and phone numbers.",
	SilenceUsage: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
