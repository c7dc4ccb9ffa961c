// Package pipeline orchestrates one mapping run: load both record sets,
// reconcile exact matches, build the retrieval index, and adjudicate the
// remainder. Everything downstream of loading is resumable: outcomes already
// in the results store are never reproduced.
package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Andalusia-Data-Science-Team/AutoMapper/internal/adjudicate"
	"github.com/Andalusia-Data-Science-Team/AutoMapper/internal/dataset"
	"github.com/Andalusia-Data-Science-Team/AutoMapper/internal/ledger"
	"github.com/Andalusia-Data-Science-Team/AutoMapper/internal/match"
	"github.com/Andalusia-Data-Science-Team/AutoMapper/internal/record"
	"github.com/Andalusia-Data-Science-Team/AutoMapper/internal/retrieval"
)

const exactMatchExplanation = "Exact description match"

// Options are the file locations and tunables for one run.
type Options struct {
	AHJPath        string
	SBSPath        string
	ResultsPath    string
	FailuresPath   string
	MappingsPath   string
	EmbedCachePath string
	TopK           int
}

// Summary is the user-visible outcome of a run.
type Summary struct {
	RunID        string
	Records      int
	ExactMatches int
	Unmatched    int
	Adjudicated  adjudicate.Summary
	MappingRows  int
}

// Pipeline wires the mapping phase together.
type Pipeline struct {
	opts      Options
	embedder  retrieval.Embedder
	completer adjudicate.Completer
	log       zerolog.Logger
}

// New creates a pipeline with explicit provider dependencies.
func New(opts Options, embedder retrieval.Embedder, completer adjudicate.Completer, log zerolog.Logger) *Pipeline {
	if opts.TopK <= 0 {
		opts.TopK = adjudicate.DefaultTopK
	}
	return &Pipeline{opts: opts, embedder: embedder, completer: completer, log: log}
}

// Run executes the mapping phase and rewrites the denormalized mapping table.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	sum := &Summary{RunID: uuid.NewString()}
	log := p.log.With().Str("run_id", sum.RunID).Logger()

	// Input errors are fatal before any processing begins.
	records, err := dataset.LoadInternalRecords(p.opts.AHJPath)
	if err != nil {
		return nil, fmt.Errorf("load AHJ records: %w", err)
	}
	entries, err := dataset.LoadStandardEntries(p.opts.SBSPath)
	if err != nil {
		return nil, fmt.Errorf("load SBS reference set: %w", err)
	}
	sum.Records = len(records)
	log.Info().Int("ahj_records", len(records)).Int("sbs_entries", len(entries)).Msg("record sets loaded")

	outcome := match.New(entries).Match(records)
	sum.ExactMatches = len(outcome.Matched)
	sum.Unmatched = len(outcome.Unmatched)
	log.Info().Int("matched", sum.ExactMatches).Int("unmatched", sum.Unmatched).Msg("exact matching done")

	results := ledger.NewResultStore(p.opts.ResultsPath)
	failures := ledger.NewFailureStore(p.opts.FailuresPath)
	if err := results.Init(); err != nil {
		return nil, fmt.Errorf("init results store: %w", err)
	}

	if err := p.appendExactMatches(results, outcome.Matched); err != nil {
		return nil, err
	}

	if len(outcome.Unmatched) > 0 {
		index, err := retrieval.BuildIndex(ctx, p.opts.EmbedCachePath, record.ToDocuments(entries), p.embedder)
		if err != nil {
			return nil, fmt.Errorf("build retrieval index: %w", err)
		}
		log.Info().Int("documents", index.Count()).Msg("retrieval index ready")

		adj := adjudicate.New(index, p.completer, results, failures, p.opts.TopK, log)
		adjSum, err := adj.Run(ctx, outcome.Unmatched)
		sum.Adjudicated = adjSum
		if err != nil {
			return sum, fmt.Errorf("adjudicate: %w", err)
		}
	}

	rows, err := p.writeMappings(records, entries, results)
	if err != nil {
		return sum, err
	}
	sum.MappingRows = rows

	log.Info().
		Int("records", sum.Records).
		Int("exact", sum.ExactMatches).
		Int("adjudicated", sum.Adjudicated.Mapped).
		Int("failed", sum.Adjudicated.Failed).
		Msg("mapping run complete")
	return sum, nil
}

// appendExactMatches writes exact outcomes to the results store, skipping
// codes completed by a previous run so resuming never duplicates rows.
func (p *Pipeline) appendExactMatches(results *ledger.ResultStore, matched []match.ExactMatch) error {
	done, err := results.DoneCodes()
	if err != nil {
		return fmt.Errorf("load completed codes: %w", err)
	}

	for _, m := range matched {
		if done[m.Record.ServiceCode] {
			continue
		}
		done[m.Record.ServiceCode] = true

		err := results.Append(ledger.Result{
			ServiceCode:         m.Record.ServiceCode,
			Description:         m.Record.Description,
			SBSCode:             m.Standard.CodeHyphenated,
			SBSShortDescription: m.Standard.ShortDescription,
			Explanation:         exactMatchExplanation,
		})
		if err != nil {
			return fmt.Errorf("append exact match for %s: %w", m.Record.ServiceCode, err)
		}
	}
	return nil
}

// writeMappings joins processed outcomes with the internal records and the
// canonical reference set into the denormalized mapping table.
func (p *Pipeline) writeMappings(records []record.InternalRecord, entries []record.StandardCodeEntry, results *ledger.ResultStore) (int, error) {
	if p.opts.MappingsPath == "" {
		return 0, nil
	}

	all, err := results.All()
	if err != nil {
		return 0, fmt.Errorf("read results store: %w", err)
	}
	byServiceCode := make(map[string]ledger.Result, len(all))
	for _, r := range all {
		if _, ok := byServiceCode[r.ServiceCode]; !ok {
			byServiceCode[r.ServiceCode] = r
		}
	}
	byCode := dataset.EntriesByCode(entries)

	rows := make([]record.LedgerRow, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		row := record.LedgerRow{
			Company:        r.Company,
			ServiceCode:    r.ServiceCode,
			Description:    r.Description,
			Price:          r.Price,
			ServiceKey:     r.ServiceKey,
			Classification: r.Classification,
			Category:       r.Category,
		}
		if seen[row.Key()] {
			continue
		}
		seen[row.Key()] = true

		if res, ok := byServiceCode[r.ServiceCode]; ok && res.SBSCode != "" {
			row.SBSCodeHyphenated = res.SBSCode
			row.ShortDescription = res.SBSShortDescription
			if entry, ok := byCode[res.SBSCode]; ok {
				row.SBSCode = entry.Code
				row.SBSCodeHyphenated = entry.CodeHyphenated
				row.ShortDescription = entry.ShortDescription
				row.LongDescription = entry.LongDescription
				row.Definition = entry.Definition
				row.ChapterName = entry.ChapterName
				row.BlockName = entry.BlockName
			}
		}
		rows = append(rows, row)
	}

	store := ledger.NewMappingStore(p.opts.MappingsPath)
	if err := store.Write(rows); err != nil {
		return 0, fmt.Errorf("write mapping table: %w", err)
	}
	return len(rows), nil
}
