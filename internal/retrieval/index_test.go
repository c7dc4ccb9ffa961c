package retrieval

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/Andalusia-Data-Science-Team/AutoMapper/internal/record"
)

// stubEmbedder maps known texts to fixed vectors and counts embed calls.
type stubEmbedder struct {
	vectors   map[string][]float32
	docCalls  int
	lastBatch []string
}

func (s *stubEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	s.docCalls++
	s.lastBatch = texts
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = s.vectors[t]
	}
	return out, nil
}

func (s *stubEmbedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	return s.vectors[query], nil
}

func testDocs() []record.Document {
	return []record.Document{
		{Code: "10-001", ShortDescription: "X-RAY CHEST", Content: "chest imaging"},
		{Code: "10-002", ShortDescription: "CT BRAIN", Content: "brain imaging"},
		{Code: "20-001", ShortDescription: "CBC", Content: "blood count"},
	}
}

func testEmbedder() *stubEmbedder {
	return &stubEmbedder{vectors: map[string][]float32{
		"chest imaging": {1, 0, 0},
		"brain imaging": {0.9, 0.1, 0},
		"blood count":   {0, 0, 1},
		"chest x-ray":   {1, 0.05, 0},
	}}
}

func TestIndex_QueryOrdering(t *testing.T) {
	ctx := context.Background()
	emb := testEmbedder()

	idx, err := BuildIndex(ctx, "", testDocs(), emb)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if idx.Count() != 3 {
		t.Fatalf("count = %d, want 3", idx.Count())
	}

	results, err := idx.Query(ctx, "chest x-ray", 2)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Document.Code != "10-001" {
		t.Errorf("top result = %s, want 10-001", results[0].Document.Code)
	}
	if results[1].Document.Code != "10-002" {
		t.Errorf("second result = %s, want 10-002", results[1].Document.Code)
	}
	if results[0].Score < results[1].Score {
		t.Errorf("results not in descending score order: %f < %f", results[0].Score, results[1].Score)
	}
	if results[0].Score > 1.0001 {
		t.Errorf("cosine score above 1: %f", results[0].Score)
	}
}

func TestIndex_QueryLimitExceedsDocs(t *testing.T) {
	ctx := context.Background()
	idx, err := BuildIndex(ctx, "", testDocs(), testEmbedder())
	if err != nil {
		t.Fatal(err)
	}

	results, err := idx.Query(ctx, "chest x-ray", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Errorf("got %d results, want all 3", len(results))
	}
}

func TestBuildIndex_DuplicateCodesFirstWins(t *testing.T) {
	ctx := context.Background()
	emb := testEmbedder()

	docs := []record.Document{
		{Code: "10-001", ShortDescription: "X-RAY CHEST", Content: "chest imaging"},
		{Code: "10-001", ShortDescription: "CT BRAIN", Content: "brain imaging"},
	}
	idx, err := BuildIndex(ctx, "", docs, emb)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if idx.Count() != 1 {
		t.Fatalf("count = %d, want 1", idx.Count())
	}
	if got := emb.lastBatch; len(got) != 1 || got[0] != "chest imaging" {
		t.Errorf("embedded batch = %v, duplicate should not be embedded", got)
	}

	results, err := idx.Query(ctx, "chest x-ray", 1)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if results[0].Document.Content != "chest imaging" {
		t.Errorf("kept document = %q, want the first occurrence", results[0].Document.Content)
	}
}

func TestBuildIndex_EmptyDocs(t *testing.T) {
	if _, err := BuildIndex(context.Background(), "", nil, testEmbedder()); err == nil {
		t.Fatal("expected error for empty document set")
	}
}

func TestBuildIndex_CacheSkipsReembedding(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "embeddings.db")

	emb := testEmbedder()
	if _, err := BuildIndex(ctx, dbPath, testDocs(), emb); err != nil {
		t.Fatalf("first build: %v", err)
	}
	if emb.docCalls != 1 {
		t.Fatalf("first build made %d embed calls, want 1", emb.docCalls)
	}

	// Second build over the unchanged set embeds nothing.
	if _, err := BuildIndex(ctx, dbPath, testDocs(), emb); err != nil {
		t.Fatalf("second build: %v", err)
	}
	if emb.docCalls != 1 {
		t.Errorf("second build re-embedded: %d calls", emb.docCalls)
	}

	// Changing one document's content re-embeds only that document.
	docs := testDocs()
	docs[2].Content = "blood count"
	docs[0].Content = "chest imaging updated"
	emb.vectors["chest imaging updated"] = []float32{1, 0, 0.1}

	if _, err := BuildIndex(ctx, dbPath, docs, emb); err != nil {
		t.Fatalf("third build: %v", err)
	}
	if emb.docCalls != 2 {
		t.Fatalf("third build made %d total calls, want 2", emb.docCalls)
	}
	if len(emb.lastBatch) != 1 || emb.lastBatch[0] != "chest imaging updated" {
		t.Errorf("re-embedded batch = %v", emb.lastBatch)
	}
}

func TestNormalizeVec(t *testing.T) {
	v := normalizeVec([]float32{3, 4})
	if math.Abs(float64(v[0])-0.6) > 1e-6 || math.Abs(float64(v[1])-0.8) > 1e-6 {
		t.Errorf("normalizeVec = %v", v)
	}

	zero := normalizeVec([]float32{0, 0})
	if zero[0] != 0 || zero[1] != 0 {
		t.Errorf("zero vector should normalize to zeros, got %v", zero)
	}
}
