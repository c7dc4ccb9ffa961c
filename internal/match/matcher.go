// Package match joins normalized AHJ descriptions against the SBS reference
// set on description text, partitioning records into exact matches and the
// unmatched remainder handed to the adjudicator.
package match

import (
	"github.com/Andalusia-Data-Science-Team/AutoMapper/internal/record"
)

// ExactMatch pairs an internal record with the SBS entry whose description
// equals the record's normalized description.
type ExactMatch struct {
	Record   record.InternalRecord
	Standard record.StandardCodeEntry
}

// Outcome partitions the input records. Every distinct input service code
// appears in exactly one of the two sets.
type Outcome struct {
	Matched   []ExactMatch
	Unmatched []record.InternalRecord
}

// Matcher holds lookup tables built from one immutable SBS reference set.
type Matcher struct {
	byLong  map[string]record.StandardCodeEntry
	byShort map[string]record.StandardCodeEntry
}

// New builds a matcher over the reference set. When several entries share a
// normalized description the lowest code wins, so matching is deterministic
// regardless of input order.
func New(entries []record.StandardCodeEntry) *Matcher {
	m := &Matcher{
		byLong:  make(map[string]record.StandardCodeEntry, len(entries)),
		byShort: make(map[string]record.StandardCodeEntry, len(entries)),
	}
	for _, e := range entries {
		insertLowest(m.byLong, record.Normalize(e.LongDescription), e)
		insertLowest(m.byShort, record.Normalize(e.ShortDescription), e)
	}
	return m
}

func insertLowest(table map[string]record.StandardCodeEntry, key string, e record.StandardCodeEntry) {
	if key == "" {
		return
	}
	if prev, ok := table[key]; ok && prev.Code <= e.Code {
		return
	}
	table[key] = e
}

// Lookup returns the SBS entry matching a normalized description, or false.
// Long-description matches take precedence over short-description matches.
func (m *Matcher) Lookup(normalized string) (record.StandardCodeEntry, bool) {
	if e, ok := m.byLong[normalized]; ok {
		return e, true
	}
	if e, ok := m.byShort[normalized]; ok {
		return e, true
	}
	return record.StandardCodeEntry{}, false
}

// Match partitions records into matched and unmatched sets. A record whose
// normalized description equals either a short or a long description appears
// in the matched set exactly once. The unmatched set is deduplicated by
// (service code, description, classification, category), preserving first
// occurrence order.
func (m *Matcher) Match(records []record.InternalRecord) Outcome {
	var out Outcome
	seenMatched := make(map[string]bool)
	seenUnmatched := make(map[string]bool)

	for _, r := range records {
		normalized := record.Normalize(r.Description)
		key := r.ServiceCode + "\x00" + r.Description + "\x00" + r.Classification + "\x00" + r.Category

		if e, ok := m.Lookup(normalized); ok {
			if seenMatched[key] {
				continue
			}
			seenMatched[key] = true
			out.Matched = append(out.Matched, ExactMatch{Record: r, Standard: e})
			continue
		}

		if seenUnmatched[key] {
			continue
		}
		seenUnmatched[key] = true
		out.Unmatched = append(out.Unmatched, r)
	}

	return out
}
