// Package search is the client for the Azure AI Search memory index.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

const apiVersion = "2024-07-01"

// Client talks to one search index over the Azure AI Search REST API.
type Client struct {
	http  *resty.Client
	index string
}

// NewClient builds a Client for the given service endpoint and index name.
// Fails when the endpoint or key is missing.
func NewClient(endpoint, apiKey, index string) (*Client, error) {
	if endpoint == "" || apiKey == "" {
		return nil, fmt.Errorf("search: AZURE_SEARCH_ENDPOINT and AZURE_SEARCH_API_KEY must be set")
	}

	http := resty.New().
		SetBaseURL(strings.TrimRight(endpoint, "/")).
		SetHeader("api-key", apiKey).
		SetHeader("Content-Type", "application/json").
		SetQueryParam("api-version", apiVersion).
		SetTimeout(30 * time.Second)

	return &Client{http: http, index: index}, nil
}

// Document is one memory record in the index.
type Document struct {
	ID        string    `json:"id"`
	UID       string    `json:"uid"`
	Timestamp string    `json:"timestamp"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"embedding,omitempty"`
}

// Result is one search hit with its relevance score.
type Result struct {
	ID        string  `json:"id"`
	UID       string  `json:"uid"`
	Timestamp string  `json:"timestamp"`
	Content   string  `json:"content"`
	Score     float64 `json:"@search.score"`
}

// Query scopes a hybrid search to one user and a time cutoff.
type Query struct {
	// Text drives full-text relevance. Empty matches all documents.
	Text string
	// Vector drives similarity ranking when non-empty.
	Vector []float32
	UID    string
	// Before is an inclusive upper bound on document timestamps.
	Before time.Time
	Top    int
}

type vectorQuery struct {
	Kind   string    `json:"kind"`
	Vector []float32 `json:"vector"`
	Fields string    `json:"fields"`
	K      int       `json:"k"`
}

type searchRequest struct {
	Search        string        `json:"search"`
	Filter        string        `json:"filter"`
	Top           int           `json:"top"`
	OrderBy       string        `json:"orderby"`
	Select        string        `json:"select"`
	VectorQueries []vectorQuery `json:"vectorQueries,omitempty"`
}

type searchResponse struct {
	Value []Result `json:"value"`
}

// BuildFilter renders the OData filter for a query: exact uid match plus an
// inclusive on-or-before timestamp bound. Single quotes in the uid are
// escaped per OData string-literal rules.
func BuildFilter(uid string, before time.Time) string {
	escaped := strings.ReplaceAll(uid, "'", "''")
	return fmt.Sprintf("uid eq '%s' and timestamp le %s", escaped, FormatTimestamp(before))
}

// FormatTimestamp renders t as an ISO-8601 UTC instant the way the index
// filter syntax expects.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

// Search runs a filtered hybrid query and returns up to q.Top results
// ordered newest-first.
func (c *Client) Search(ctx context.Context, q Query) ([]Result, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		text = "*"
	}
	top := q.Top
	if top <= 0 {
		top = 20
	}

	body := searchRequest{
		Search:  text,
		Filter:  BuildFilter(q.UID, q.Before),
		Top:     top,
		OrderBy: "timestamp desc",
		Select:  "id,uid,timestamp,content",
	}
	if len(q.Vector) > 0 {
		body.VectorQueries = []vectorQuery{{
			Kind:   "vector",
			Vector: q.Vector,
			Fields: "embedding",
			K:      top,
		}}
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post(fmt.Sprintf("/indexes/%s/docs/search", c.index))
	if err != nil {
		return nil, fmt.Errorf("search: query index: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("search: query index: status %d: %s", resp.StatusCode(), resp.String())
	}

	var out searchResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("search: decode query response: %w", err)
	}

	return out.Value, nil
}

type uploadAction struct {
	Action string `json:"@search.action"`
	Document
}

type uploadRequest struct {
	Value []uploadAction `json:"value"`
}

// Upload stores one memory document with a generated unique id and returns
// that id.
func (c *Client) Upload(ctx context.Context, uid, content string, embedding []float32, timestamp time.Time) (string, error) {
	doc := Document{
		ID:        uuid.NewString(),
		UID:       uid,
		Timestamp: FormatTimestamp(timestamp),
		Content:   content,
		Embedding: embedding,
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(uploadRequest{Value: []uploadAction{{Action: "mergeOrUpload", Document: doc}}}).
		Post(fmt.Sprintf("/indexes/%s/docs/index", c.index))
	if err != nil {
		return "", fmt.Errorf("search: upload document: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("search: upload document: status %d: %s", resp.StatusCode(), resp.String())
	}

	return doc.ID, nil
}

// EnsureIndex creates or updates the memory index schema: an HNSW cosine
// vector profile over the embedding field plus filterable uid/timestamp
// fields for scoping.
func (c *Client) EnsureIndex(ctx context.Context, dimensions int32) error {
	schema := map[string]any{
		"name": c.index,
		"fields": []map[string]any{
			{"name": "id", "type": "Edm.String", "key": true, "filterable": true},
			{"name": "uid", "type": "Edm.String", "filterable": true, "facetable": true},
			{"name": "timestamp", "type": "Edm.DateTimeOffset", "filterable": true, "sortable": true},
			{"name": "content", "type": "Edm.String", "searchable": true, "analyzer": "en.microsoft"},
			{
				"name":                "embedding",
				"type":                "Collection(Edm.Single)",
				"searchable":          true,
				"dimensions":          dimensions,
				"vectorSearchProfile": "vector-profile",
			},
		},
		"vectorSearch": map[string]any{
			"algorithms": []map[string]any{{
				"name": "hnsw-config",
				"kind": "hnsw",
				"hnswParameters": map[string]any{
					"m":              4,
					"efConstruction": 400,
					"efSearch":       500,
					"metric":         "cosine",
				},
			}},
			"profiles": []map[string]any{{
				"name":      "vector-profile",
				"algorithm": "hnsw-config",
			}},
		},
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(schema).
		Put(fmt.Sprintf("/indexes/%s", c.index))
	if err != nil {
		return fmt.Errorf("search: ensure index: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("search: ensure index: status %d: %s", resp.StatusCode(), resp.String())
	}

	return nil
}
