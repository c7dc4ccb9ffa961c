package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Andalusia-Data-Science-Team/AutoMapper/internal/embedding"
	"github.com/Andalusia-Data-Science-Team/AutoMapper/internal/llm"
	"github.com/Andalusia-Data-Science-Team/AutoMapper/internal/pipeline"
)

var mapTopK int

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Run the mapping pipeline over the AHJ price list",
	Long: `Run one mapping pass: exact description matches are written directly,
everything else goes through retrieval and model adjudication. Interrupted
runs resume where they stopped; records already in the results file are
never reprocessed.`,
	RunE: runMap,
}

func init() {
	mapCmd.Flags().IntVar(&mapTopK, "top-k", 0, "candidates retrieved per unmatched record (0 = config value)")
}

func runMap(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.LLM.APIKey == "" {
		return fmt.Errorf("FIREWORKS_API_KEY not set")
	}

	log := newLogger()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	topK := cfg.Retrieval.TopK
	if mapTopK > 0 {
		topK = mapTopK
	}

	embedder := embedding.NewClient(cfg.Embedding.APIKey,
		embedding.WithBaseURL(cfg.Embedding.BaseURL),
		embedding.WithModel(cfg.Embedding.Model))
	completer := llm.NewClient(cfg.LLM.APIKey,
		llm.WithBaseURL(cfg.LLM.BaseURL),
		llm.WithModel(cfg.LLM.Model))

	p := pipeline.New(pipeline.Options{
		AHJPath:        cfg.Data.AHJPath,
		SBSPath:        cfg.Data.SBSPath,
		ResultsPath:    cfg.Ledger.ResultsPath,
		FailuresPath:   cfg.Ledger.FailuresPath,
		MappingsPath:   cfg.Ledger.MappingsPath,
		EmbedCachePath: cfg.Retrieval.CachePath,
		TopK:           topK,
	}, embedder, completer, log)

	sum, err := p.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Run %s\n", sum.RunID)
	fmt.Printf("  Records:      %d\n", sum.Records)
	fmt.Printf("  Exact:        %d\n", sum.ExactMatches)
	fmt.Printf("  Adjudicated:  %d mapped, %d failed, %d skipped\n",
		sum.Adjudicated.Mapped, sum.Adjudicated.Failed, sum.Adjudicated.Skipped)
	fmt.Printf("  Mapping rows: %d\n", sum.MappingRows)
	return nil
}
