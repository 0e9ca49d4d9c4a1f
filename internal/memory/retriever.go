package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/glowly/glowly-backend/internal/embedding"
	"github.com/glowly/glowly-backend/internal/search"
)

// Chunk is a ranked fragment of previously stored conversation content.
// Produced fresh per retrieval, ordered by rank, discarded after folding
// into a prompt.
type Chunk struct {
	Rank      int     `json:"rank"`
	Content   string  `json:"content"`
	Score     float64 `json:"similarity_score"`
	ID        string  `json:"id"`
	Timestamp string  `json:"timestamp"`
}

// Retriever fetches the top-k chunks for a query scoped to one user and a
// time cutoff.
type Retriever interface {
	TopK(ctx context.Context, query, uid string, before time.Time, k int) ([]Chunk, error)
}

// Embedder turns text into a query vector.
type Embedder interface {
	Embed(ctx context.Context, text, taskType string) ([]float32, error)
}

// Index runs filtered hybrid queries against the memory index.
type Index interface {
	Search(ctx context.Context, q search.Query) ([]search.Result, error)
}

// IndexRetriever embeds the query and performs a hybrid search against the
// memory index.
type IndexRetriever struct {
	embedder Embedder
	index    Index
}

// NewIndexRetriever builds an IndexRetriever.
func NewIndexRetriever(embedder Embedder, index Index) *IndexRetriever {
	return &IndexRetriever{embedder: embedder, index: index}
}

// TopK returns up to k chunks with 1-based ranks attached.
func (r *IndexRetriever) TopK(ctx context.Context, query, uid string, before time.Time, k int) ([]Chunk, error) {
	vector, err := r.embedder.Embed(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("memory: embed query: %w", err)
	}

	results, err := r.index.Search(ctx, search.Query{
		Text:   query,
		Vector: vector,
		UID:    uid,
		Before: before,
		Top:    k,
	})
	if err != nil {
		return nil, fmt.Errorf("memory: search index: %w", err)
	}

	chunks := make([]Chunk, 0, len(results))
	for i, res := range results {
		chunks = append(chunks, Chunk{
			Rank:      i + 1,
			Content:   res.Content,
			Score:     res.Score,
			ID:        res.ID,
			Timestamp: res.Timestamp,
		})
	}

	return chunks, nil
}
