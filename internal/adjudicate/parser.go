package adjudicate

import "strings"

// Response markers the model is instructed to emit, one per line.
const (
	markerCode        = "Best SBS Code:"
	markerDescription = "Best SBS Description:"
	markerExplanation = "Explanation:"
)

// Answer is the parsed decision from a model completion. Empty BestCode means
// "no confident match", never an error.
type Answer struct {
	BestCode        string
	BestDescription string
	Explanation     string
}

// ParseAnswer scans the completion line by line and captures the marker
// values. Lines without a marker are ignored; missing markers yield empty
// strings, never an error.
func ParseAnswer(text string) Answer {
	var a Answer
	for _, line := range strings.Split(text, "\n") {
		switch {
		case strings.HasPrefix(line, markerCode):
			a.BestCode = strings.TrimSpace(strings.TrimPrefix(line, markerCode))
		case strings.HasPrefix(line, markerDescription):
			a.BestDescription = strings.TrimSpace(strings.TrimPrefix(line, markerDescription))
		case strings.HasPrefix(line, markerExplanation):
			a.Explanation = strings.TrimSpace(strings.TrimPrefix(line, markerExplanation))
		}
	}
	return a
}
