package record

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// prefixMarker is stripped, repeated, from the front of AHJ descriptions.
// Legacy price lists carry entries like "PK-PK-X-RAY CHEST".
const prefixMarker = "PK-"

// Normalize canonicalizes a description for use as a match or embedding key:
// Unicode NFC, trimmed, repeated leading markers stripped, upper-cased.
// Idempotent, and passes empty input through untouched.
func Normalize(text string) string {
	s := norm.NFC.String(text)
	s = strings.ToUpper(s)
	// Trim and strip together until neither applies: a marker can hide
	// behind whitespace ("PK- PK-X-RAY CHEST").
	for {
		s = strings.TrimSpace(s)
		if !strings.HasPrefix(s, prefixMarker) {
			return s
		}
		s = s[len(prefixMarker):]
	}
}

// NormalizeEntry upper-cases and trims the description fields of an SBS entry
// in place, matching the load-time cleaning of the reference set.
func NormalizeEntry(e *StandardCodeEntry) {
	e.ShortDescription = strings.ToUpper(strings.TrimSpace(norm.NFC.String(e.ShortDescription)))
	e.LongDescription = strings.ToUpper(strings.TrimSpace(norm.NFC.String(e.LongDescription)))
}
