// Package embedding produces text embeddings via the Gemini API.
package embedding

import (
	"context"
	"fmt"
	"math"
	"strings"

	"google.golang.org/genai"
)

const embeddingModel = "gemini-embedding-001"

// Available output dimensionalities are 768, 1536 and 3072. The provider
// returns unit-normalized vectors only at 3072; every other size is
// normalized client-side.
const (
	DefaultDimensions = 768
	maxDimensions     = 3072
)

// Task types understood by the embedding model.
const (
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
)

// Client embeds text through the Gemini embedding model.
type Client struct {
	genai      *genai.Client
	dimensions int32
}

// NewClient builds an embedding client. Fails when apiKey is empty.
// dimensions of 0 selects DefaultDimensions.
func NewClient(ctx context.Context, apiKey string, dimensions int32) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("embedding: GEMINI_API_KEY is not set")
	}
	if dimensions == 0 {
		dimensions = DefaultDimensions
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding: create gemini client: %w", err)
	}

	return &Client{genai: client, dimensions: dimensions}, nil
}

// Embed converts text into a unit-length embedding vector for the given
// task type.
func (c *Client) Embed(ctx context.Context, text, taskType string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("embedding: text must be non-empty")
	}

	resp, err := c.genai.Models.EmbedContent(ctx, embeddingModel, genai.Text(text), &genai.EmbedContentConfig{
		TaskType:             taskType,
		OutputDimensionality: genai.Ptr(c.dimensions),
	})
	if err != nil {
		return nil, fmt.Errorf("embedding: embed content: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("embedding: gemini returned no embedding vector")
	}

	values := resp.Embeddings[0].Values
	if c.dimensions != maxDimensions {
		values = Normalize(values)
	}

	return values, nil
}

// Dimensions returns the configured output dimensionality.
func (c *Client) Dimensions() int32 {
	return c.dimensions
}

// Normalize scales vec to unit length. A zero vector is returned unchanged.
func Normalize(vec []float32) []float32 {
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return vec
	}

	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out
}
