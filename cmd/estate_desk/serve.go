package main

import (
	"fmt"

	"github.com/jonathan/estate-desk/internal/server"
	"github.com/spf13/cobra"
)

var (
	servePort  int
	serveFlags detectionFlags
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes duplicate checks, stored scans, contacts and
dismissals. Requires DATABASE_URL and JWT_SECRET. Detection flags set the defaults
for requests that leave an option out.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveFlags.register(serveCmd)
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	opts, cfg, err := serveFlags.resolve(cmd)
	if err != nil {
		return err
	}

	url, err := databaseURL(cfg)
	if err != nil {
		return err
	}

	port := servePort
	if !cmd.Flags().Changed("port") && cfg.Port != 0 {
		port = cfg.Port
	}

	srv, err := server.New(server.Config{
		Port:        port,
		DatabaseURL: url,
		Detection:   opts,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
