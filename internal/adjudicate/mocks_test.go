package adjudicate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Andalusia-Data-Science-Team/AutoMapper/internal/record"
	"github.com/Andalusia-Data-Science-Team/AutoMapper/internal/retrieval"
)

// Common test errors
var (
	ErrMockRetrieve = errors.New("mock retrieval error")
	ErrMockComplete = errors.New("mock completion error")
)

// MockRetriever implements Retriever for testing.
type MockRetriever struct {
	Candidates []retrieval.Scored
	CallCount  int
	FailOnCall int // fail on the Nth call (0 = never fail)
}

func (m *MockRetriever) Query(ctx context.Context, text string, k int) ([]retrieval.Scored, error) {
	m.CallCount++
	if m.FailOnCall > 0 && m.CallCount == m.FailOnCall {
		return nil, ErrMockRetrieve
	}
	if len(m.Candidates) > k {
		return m.Candidates[:k], nil
	}
	return m.Candidates, nil
}

// MockCompleter implements Completer for testing. By default it answers with
// a well-formed response derived from the service code in the prompt.
type MockCompleter struct {
	Response   string
	CallCount  int
	FailOnCall int
	LastPrompt string
}

func (m *MockCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	m.CallCount++
	m.LastPrompt = prompt
	if m.FailOnCall > 0 && m.CallCount == m.FailOnCall {
		return "", ErrMockComplete
	}
	if m.Response != "" {
		return m.Response, nil
	}

	code := "00-00"
	for _, line := range strings.Split(prompt, "\n") {
		if strings.HasPrefix(line, "Service Code: ") {
			code = strings.TrimPrefix(line, "Service Code: ")
			break
		}
	}
	return fmt.Sprintf("Best SBS Code: SBS-%s\nBest SBS Description: DESC-%s\nExplanation: closest wording\n", code, code), nil
}

func testRecord(code, desc string) record.InternalRecord {
	return record.InternalRecord{
		Company:        "TESTCO",
		ServiceCode:    code,
		Description:    desc,
		Classification: "IMAGING",
		Category:       "RADIOLOGY",
	}
}

func testCandidates(contents ...string) []retrieval.Scored {
	out := make([]retrieval.Scored, len(contents))
	for i, c := range contents {
		out[i] = retrieval.Scored{
			Document: record.Document{Code: fmt.Sprintf("C%d", i), Content: c},
			Score:    1.0 - float64(i)*0.1,
		}
	}
	return out
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func contains(s, sub string) bool { return strings.Contains(s, sub) }
