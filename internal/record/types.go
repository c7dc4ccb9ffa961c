package record

import (
	"time"

	"github.com/shopspring/decimal"
)

// Match kind constants
const (
	MatchExact     = "exact"
	MatchLLM       = "llm"
	MatchUnmatched = "unmatched"
)

// Validation status constants for ledger rows
const (
	ValidationUnset     = ""
	ValidationCorrect   = "Correct"
	ValidationIncorrect = "In Correct"
)

// InternalRecord is one AHJ price-list entry being mapped to an SBS code.
// (Company, ServiceCode) identifies the record within a company scope;
// ServiceCode alone is the cross-run resumability key.
type InternalRecord struct {
	Company        string          `json:"insurance_company"`
	ServiceCode    string          `json:"service_code"`
	Description    string          `json:"service_description"`
	ServiceKey     string          `json:"service_key,omitempty"`
	Classification string          `json:"service_classification"`
	Category       string          `json:"service_category"`
	Price          decimal.Decimal `json:"price"`
}

// StandardCodeEntry is one row of the SBS reference set, immutable for a run.
// Short and long descriptions are normalized at load and used as join and
// embedding keys.
type StandardCodeEntry struct {
	Code             string `json:"sbs_code"`
	CodeHyphenated   string `json:"sbs_code_hyphenated"`
	ShortDescription string `json:"short_description"`
	LongDescription  string `json:"long_description"`
	Definition       string `json:"definition"`
	ChapterName      string `json:"chapter_name"` // classification
	BlockName        string `json:"block_name"`   // category
}

// MatchResult is the outcome of the mapping pipeline for one internal record.
// Produced exactly once per record per run; exact matches never reach the
// adjudicator.
type MatchResult struct {
	Record      InternalRecord     `json:"record"`
	Standard    *StandardCodeEntry `json:"standard,omitempty"`
	Kind        string             `json:"match_kind"` // exact, llm, unmatched
	Explanation string             `json:"explanation,omitempty"`
}

// LedgerRow is the persisted form of a MatchResult plus review state.
// Created by the matcher or adjudicator; mutable fields are only touched by
// the feedback reconciler. Rows are never deleted, only superseded
// (latest write wins per company+service code).
type LedgerRow struct {
	Company              string          `json:"insurance_company"`
	ServiceCode          string          `json:"service_code"`
	Description          string          `json:"service_description"`
	Price                decimal.Decimal `json:"price"`
	ServiceKey           string          `json:"service_key,omitempty"`
	Classification       string          `json:"service_classification"`
	Category             string          `json:"service_category"`
	SBSCode              string          `json:"sbs_code"`
	SBSCodeHyphenated    string          `json:"sbs_code_hyphenated"`
	ShortDescription     string          `json:"short_description"`
	LongDescription      string          `json:"long_description"`
	Definition           string          `json:"definition"`
	ChapterName          string          `json:"chapter_name"`
	BlockName            string          `json:"block_name"`
	ValidationStatus     string          `json:"validation_status,omitempty"`
	CorrectedCode        string          `json:"corrected_code,omitempty"`
	CorrectedDescription string          `json:"corrected_description,omitempty"`
	ValidatedBy          string          `json:"validated_by,omitempty"`
}

// CorrectionEvent is a human-submitted override of a ledger row, produced by
// the external review UI. Applying the same event twice is a no-op; a new
// event for the same key overwrites the prior row's mutable fields only.
type CorrectionEvent struct {
	ID                   string    `json:"id,omitempty"`
	Company              string    `json:"insurance_company" binding:"required"`
	ServiceCode          string    `json:"service_code" binding:"required"`
	ValidationStatus     string    `json:"validation_status" binding:"required"`
	CorrectedCode        string    `json:"corrected_code,omitempty"`
	CorrectedDescription string    `json:"corrected_description,omitempty"`
	Reviewer             string    `json:"validated_by" binding:"required"`
	SubmittedAt          time.Time `json:"submitted_at,omitempty"`
}

// Key returns the ledger identity of the event's target row.
func (e CorrectionEvent) Key() string {
	return e.Company + "\x00" + e.ServiceCode
}

// Key returns the ledger identity of the row.
func (r LedgerRow) Key() string {
	return r.Company + "\x00" + r.ServiceCode
}

// Equal reports field-wise equality. Price is compared by value, not by its
// internal representation.
func (r LedgerRow) Equal(o LedgerRow) bool {
	if !r.Price.Equal(o.Price) {
		return false
	}
	r.Price, o.Price = decimal.Decimal{}, decimal.Decimal{}
	return r == o
}

// Confirmed reports whether the event marks the mapping as correct.
func (e CorrectionEvent) Confirmed() bool {
	return e.ValidationStatus == ValidationCorrect
}
