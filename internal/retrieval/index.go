// Package retrieval builds the vector index over the SBS reference documents
// and answers nearest-neighbor queries for the adjudicator. Search is exact
// brute-force cosine similarity over in-memory normalized vectors; at the
// reference set's size (<15K codes) this is sub-millisecond.
package retrieval

import (
	"container/heap"
	"context"
	"fmt"
	"math"

	"github.com/Andalusia-Data-Science-Team/AutoMapper/internal/record"
)

// Embedder generates vector embeddings for text content.
type Embedder interface {
	// EmbedDocuments embeds a batch of texts for indexing.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery embeds a search query.
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
}

// Scored pairs a document with its similarity to a query.
type Scored struct {
	Document record.Document
	Score    float64
}

// Index answers top-k similarity queries over one immutable document set.
// Construction is a one-time step per run; the index is read-only afterwards.
type Index struct {
	embedder Embedder
	docs     map[string]record.Document
	vectors  map[string][]float32 // code -> normalized embedding
}

// BuildIndex embeds every document and assembles the in-memory index.
// Embeddings are cached in SQLite at dbPath; only documents whose content
// changed since the last build are re-embedded. An empty dbPath disables
// the cache.
func BuildIndex(ctx context.Context, dbPath string, docs []record.Document, embedder Embedder) (*Index, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents to index")
	}

	idx := &Index{
		embedder: embedder,
		docs:     make(map[string]record.Document, len(docs)),
		vectors:  make(map[string][]float32, len(docs)),
	}

	var cache *embeddingCache
	if dbPath != "" {
		c, err := openCache(dbPath)
		if err != nil {
			return nil, err
		}
		cache = c
		defer cache.close()
	}

	// Resolve cached vectors first, collecting the documents still to embed.
	// Duplicate codes keep the first document, same as the reference-set
	// lookup tables.
	var missing []record.Document
	for _, d := range docs {
		if _, ok := idx.docs[d.Code]; ok {
			continue
		}
		idx.docs[d.Code] = d
		if cache != nil {
			if vec, ok := cache.get(d.Code, contentHash(d.Content)); ok {
				idx.vectors[d.Code] = normalizeVec(vec)
				continue
			}
		}
		missing = append(missing, d)
	}

	if len(missing) > 0 {
		texts := make([]string, len(missing))
		for i, d := range missing {
			texts[i] = d.Content
		}

		vecs, err := embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed documents: %w", err)
		}
		if len(vecs) != len(missing) {
			return nil, fmt.Errorf("expected %d embeddings, got %d", len(missing), len(vecs))
		}

		for i, d := range missing {
			idx.vectors[d.Code] = normalizeVec(vecs[i])
			if cache != nil {
				if err := cache.put(d.Code, contentHash(d.Content), vecs[i]); err != nil {
					return nil, fmt.Errorf("cache embedding for %s: %w", d.Code, err)
				}
			}
		}
	}

	return idx, nil
}

// Query returns up to k documents by descending cosine similarity.
func (idx *Index) Query(ctx context.Context, text string, k int) ([]Scored, error) {
	if k <= 0 {
		k = 3
	}

	queryVec, err := idx.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	normalized := normalizeVec(queryVec)

	h := &minHeap{}
	heap.Init(h)
	for code, vec := range idx.vectors {
		if len(vec) != len(normalized) {
			continue
		}
		score := dotProduct(normalized, vec)
		if h.Len() < k {
			heap.Push(h, scoredCode{code: code, score: score})
		} else if score > (*h)[0].score {
			(*h)[0] = scoredCode{code: code, score: score}
			heap.Fix(h, 0)
		}
	}

	// Extract results in descending score order.
	results := make([]Scored, h.Len())
	for i := len(results) - 1; i >= 0; i-- {
		sc := heap.Pop(h).(scoredCode)
		results[i] = Scored{Document: idx.docs[sc.code], Score: sc.score}
	}
	return results, nil
}

// Count returns the number of indexed documents.
func (idx *Index) Count() int {
	return len(idx.vectors)
}

type scoredCode struct {
	code  string
	score float64
}

// minHeap implements heap.Interface for top-K selection (min at root).
type minHeap []scoredCode

func (h minHeap) Len() int           { return len(h) }
func (h minHeap) Less(i, j int) bool { return h[i].score < h[j].score }
func (h minHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x any)        { *h = append(*h, x.(scoredCode)) }
func (h *minHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// --- math helpers ---

func normalizeVec(v []float32) []float32 {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return make([]float32, len(v))
	}

	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

func dotProduct(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
