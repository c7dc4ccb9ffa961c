// Package adjudicate resolves unmatched records against the SBS reference
// set: retrieve top-k candidates, ask the model for a single best match, and
// append the decision to the results ledger. Records are processed strictly
// sequentially and each outcome is durably appended before the next record
// starts, so an interrupted run resumes by skipping completed codes.
package adjudicate

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/Andalusia-Data-Science-Team/AutoMapper/internal/ledger"
	"github.com/Andalusia-Data-Science-Team/AutoMapper/internal/record"
	"github.com/Andalusia-Data-Science-Team/AutoMapper/internal/retrieval"
)

// DefaultTopK is the number of candidate SBS documents retrieved per record.
const DefaultTopK = 3

// Retriever answers top-k similarity queries. Implemented by retrieval.Index.
type Retriever interface {
	Query(ctx context.Context, text string, k int) ([]retrieval.Scored, error)
}

// Completer returns one text completion for a prompt. Implemented by
// llm.Client.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Summary counts the outcomes of one adjudication pass.
type Summary struct {
	Skipped   int // already present in the results store
	Processed int
	Mapped    int
	Failed    int
}

// Adjudicator runs the retrieval + model loop over unmatched records.
type Adjudicator struct {
	retriever Retriever
	completer Completer
	results   *ledger.ResultStore
	failures  *ledger.FailureStore
	topK      int
	log       zerolog.Logger
}

// New creates an adjudicator. topK <= 0 falls back to DefaultTopK.
func New(retriever Retriever, completer Completer, results *ledger.ResultStore, failures *ledger.FailureStore, topK int, log zerolog.Logger) *Adjudicator {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Adjudicator{
		retriever: retriever,
		completer: completer,
		results:   results,
		failures:  failures,
		topK:      topK,
		log:       log,
	}
}

// Run adjudicates every record not already present in the results store.
// A single record's retrieval or model failure is appended to the failure
// store and never aborts the batch; a persistence failure does abort, since
// silently losing a decision is worse than stopping.
func (a *Adjudicator) Run(ctx context.Context, records []record.InternalRecord) (Summary, error) {
	var sum Summary

	if err := a.results.Init(); err != nil {
		return sum, fmt.Errorf("init results store: %w", err)
	}
	if err := a.failures.Init(); err != nil {
		return sum, fmt.Errorf("init failure store: %w", err)
	}

	done, err := a.results.DoneCodes()
	if err != nil {
		return sum, fmt.Errorf("load completed codes: %w", err)
	}
	if len(done) > 0 {
		a.log.Info().Int("completed", len(done)).Msg("resuming, skipping completed rows")
	}

	var todo []record.InternalRecord
	for _, r := range records {
		if done[r.ServiceCode] {
			sum.Skipped++
			continue
		}
		todo = append(todo, r)
	}
	a.log.Info().Int("records", len(todo)).Msg("adjudicating unmatched records")

	for i, r := range todo {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		answer, procErr := a.adjudicate(ctx, r)
		if procErr != nil {
			sum.Processed++
			sum.Failed++
			a.log.Warn().Err(procErr).
				Str("service_code", r.ServiceCode).
				Msgf("row %d/%d failed", i+1, len(todo))

			failure := ledger.Failure{
				Record:    r,
				Error:     procErr.Error(),
				Traceback: errStack(procErr),
			}
			if err := a.failures.Append(failure); err != nil {
				return sum, fmt.Errorf("append failure row: %w", err)
			}
			continue
		}

		result := ledger.Result{
			ServiceCode:         r.ServiceCode,
			Description:         r.Description,
			SBSCode:             answer.BestCode,
			SBSShortDescription: answer.BestDescription,
			Explanation:         answer.Explanation,
		}
		if err := a.results.Append(result); err != nil {
			return sum, fmt.Errorf("append result row: %w", err)
		}

		sum.Processed++
		sum.Mapped++
		a.log.Info().
			Str("service_code", r.ServiceCode).
			Str("sbs_code", answer.BestCode).
			Msgf("row %d/%d mapped", i+1, len(todo))
	}

	return sum, nil
}

func (a *Adjudicator) adjudicate(ctx context.Context, r record.InternalRecord) (Answer, error) {
	query := BuildQuery(r)

	candidates, err := a.retriever.Query(ctx, query, a.topK)
	if err != nil {
		return Answer{}, withStack(fmt.Errorf("retrieve candidates: %w", err))
	}

	completion, err := a.completer.Complete(ctx, BuildPrompt(query, candidates))
	if err != nil {
		return Answer{}, withStack(fmt.Errorf("model completion: %w", err))
	}

	// Missing markers degrade to empty fields; an empty best code is a
	// low-confidence result, not an error.
	return ParseAnswer(completion), nil
}

// stackError pairs an error with the goroutine stack captured where the
// failure happened, so the failure ledger's Traceback column points at the
// failing call, not the loop that handled it.
type stackError struct {
	err   error
	stack []byte
}

func (e *stackError) Error() string { return e.err.Error() }
func (e *stackError) Unwrap() error { return e.err }

func withStack(err error) error {
	return &stackError{err: err, stack: debug.Stack()}
}

// errStack returns the stack recorded with err, falling back to the current
// stack for errors that carry none.
func errStack(err error) string {
	var se *stackError
	if errors.As(err, &se) {
		return string(se.stack)
	}
	return string(debug.Stack())
}
