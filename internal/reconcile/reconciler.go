// Package reconcile folds human corrections back into the mapping table.
// Confirmed rows get their SBS fields replaced from the corrected code's
// canonical entry; everything else passes through unchanged. The revised
// table becomes the next run's baseline.
package reconcile

import (
	"fmt"

	"github.com/Andalusia-Data-Science-Team/AutoMapper/internal/record"
)

// Summary counts one reconciliation pass.
type Summary struct {
	Rows      int
	Confirmed int
	Revised   int // confirmed rows whose SBS fields actually changed
	Unknown   int // confirmed events whose corrected code has no canonical entry
}

// Reconcile applies correction events to the mapping table. Only events with
// status Correct revise rows; rows without a confirming event pass through.
// The output preserves input order and row count, with each service code
// represented once (first occurrence wins on duplicate input codes).
// When confirming events from different companies disagree on the same
// service code, the lexicographically-lowest company wins, independent of
// event order.
func Reconcile(mappings []record.LedgerRow, events []record.CorrectionEvent, canonical map[string]record.StandardCodeEntry) ([]record.LedgerRow, Summary, error) {
	var sum Summary

	confirmed := make(map[string]record.CorrectionEvent, len(events))
	for _, e := range events {
		if e.ServiceCode == "" {
			return nil, sum, fmt.Errorf("correction event without a service code (reviewer %q)", e.Reviewer)
		}
		if !e.Confirmed() {
			continue
		}
		if prev, ok := confirmed[e.ServiceCode]; ok && prev.Company <= e.Company {
			continue
		}
		confirmed[e.ServiceCode] = e
	}

	out := make([]record.LedgerRow, 0, len(mappings))
	seen := make(map[string]bool, len(mappings))

	for _, row := range mappings {
		if seen[row.ServiceCode] {
			continue
		}
		seen[row.ServiceCode] = true
		sum.Rows++

		e, ok := confirmed[row.ServiceCode]
		if !ok {
			out = append(out, row)
			continue
		}
		sum.Confirmed++

		// An empty corrected code confirms the existing mapping as-is.
		target := e.CorrectedCode
		if target == "" {
			target = row.SBSCode
		}

		entry, ok := canonical[target]
		if !ok {
			// No canonical entry to denormalize from: keep the row as-is
			// rather than writing a half-replaced one.
			sum.Unknown++
			out = append(out, row)
			continue
		}

		revised := row
		revised.SBSCode = entry.Code
		revised.SBSCodeHyphenated = entry.CodeHyphenated
		revised.ShortDescription = entry.ShortDescription
		revised.LongDescription = entry.LongDescription
		revised.Definition = entry.Definition
		revised.ChapterName = entry.ChapterName
		revised.BlockName = entry.BlockName
		revised.ValidationStatus = e.ValidationStatus
		revised.CorrectedCode = e.CorrectedCode
		revised.CorrectedDescription = e.CorrectedDescription
		revised.ValidatedBy = e.Reviewer

		if revised.SBSCode != row.SBSCode {
			sum.Revised++
		}
		out = append(out, revised)
	}

	return out, sum, nil
}
