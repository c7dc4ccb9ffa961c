package main

import (
	"github.com/spf13/cobra"

	"github.com/Andalusia-Data-Science-Team/AutoMapper/internal/ledger"
	"github.com/Andalusia-Data-Science-Team/AutoMapper/internal/web"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the review API server",
	Long: `Serve the review API over the mapping table and the validation sheet.

Examples:
  sbsmap serve
  sbsmap serve --addr :9090`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: config value)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	mappings := ledger.NewMappingStore(cfg.Ledger.MappingsPath)
	corrections := ledger.NewCorrectionStore(cfg.Ledger.ValidatedPath)

	server := web.NewServer(mappings, corrections, newLogger())
	return server.Run(addr)
}
