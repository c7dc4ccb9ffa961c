package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Andalusia-Data-Science-Team/AutoMapper/internal/ledger"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show run progress and configuration",
	Long: `Display mapper status including:
- Configuration summary
- API key status
- Row counts across the run files`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Println("sbsmap Status")
	fmt.Println(strings.Repeat("=", 40))

	fmt.Println("\nConfiguration:")
	fmt.Printf("  AHJ list:  %s\n", cfg.Data.AHJPath)
	fmt.Printf("  SBS codes: %s\n", cfg.Data.SBSPath)
	fmt.Printf("  Model:     %s\n", cfg.LLM.Model)
	fmt.Printf("  Fireworks: %s\n", keyStatus(cfg.LLM.APIKey))

	fmt.Println("\nRun files:")
	counts := []struct {
		name  string
		count func(string) (int, error)
		path  string
	}{
		{"Results", countResults, cfg.Ledger.ResultsPath},
		{"Failures", countFailures, cfg.Ledger.FailuresPath},
		{"Mappings", countMappings, cfg.Ledger.MappingsPath},
		{"Validated", countValidated, cfg.Ledger.ValidatedPath},
	}
	for _, c := range counts {
		n, err := c.count(c.path)
		if err != nil {
			fmt.Printf("  %-10s error (%s)\n", c.name+":", err)
			continue
		}
		fmt.Printf("  %-10s %d rows\n", c.name+":", n)
	}

	return nil
}

func countResults(path string) (int, error) {
	rows, err := ledger.NewResultStore(path).All()
	return len(rows), err
}

func countFailures(path string) (int, error) {
	return ledger.NewFailureStore(path).Count()
}

func countMappings(path string) (int, error) {
	rows, err := ledger.NewMappingStore(path).Read()
	return len(rows), err
}

func countValidated(path string) (int, error) {
	rows, err := ledger.NewCorrectionStore(path).All()
	return len(rows), err
}

func keyStatus(key string) string {
	if key == "" {
		return "not set"
	}
	return "set"
}
