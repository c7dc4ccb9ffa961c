package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Andalusia-Data-Science-Team/AutoMapper/internal/dataset"
	"github.com/Andalusia-Data-Science-Team/AutoMapper/internal/ledger"
	"github.com/Andalusia-Data-Science-Team/AutoMapper/internal/reconcile"
)

var reconcileOut string

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Fold reviewer corrections back into the mapping table",
	Long: `Read the validation sheet and rewrite the mapping table with confirmed
corrections applied. Only rows a reviewer marked correct are touched;
everything else passes through unchanged. The revised table is the
baseline for the next mapping run.`,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().StringVar(&reconcileOut, "out", "", "output path (default: overwrite the mapping table)")
}

func runReconcile(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger()

	mappings := ledger.NewMappingStore(cfg.Ledger.MappingsPath)
	rows, err := mappings.Read()
	if err != nil {
		return fmt.Errorf("read mapping table: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("mapping table %s is empty, run map first", cfg.Ledger.MappingsPath)
	}

	events, err := ledger.NewCorrectionStore(cfg.Ledger.ValidatedPath).Events()
	if err != nil {
		return fmt.Errorf("read validation sheet: %w", err)
	}

	entries, err := dataset.LoadStandardEntries(cfg.Data.SBSPath)
	if err != nil {
		return fmt.Errorf("load SBS reference set: %w", err)
	}

	revised, sum, err := reconcile.Reconcile(rows, events, dataset.EntriesByCode(entries))
	if err != nil {
		return err
	}

	out := reconcileOut
	if out == "" {
		out = cfg.Ledger.MappingsPath
	}
	if err := ledger.NewMappingStore(out).Write(revised); err != nil {
		return fmt.Errorf("write revised table: %w", err)
	}

	log.Info().Str("path", out).Int("rows", sum.Rows).Msg("revised mapping table written")
	fmt.Printf("Rows:      %d\n", sum.Rows)
	fmt.Printf("Confirmed: %d (%d revised)\n", sum.Confirmed, sum.Revised)
	if sum.Unknown > 0 {
		fmt.Printf("Unknown corrected codes: %d (rows left unchanged)\n", sum.Unknown)
	}
	return nil
}
