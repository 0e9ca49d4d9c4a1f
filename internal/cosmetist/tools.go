package cosmetist

import (
	"context"
	"fmt"

	"github.com/glowly/glowly-backend/internal/llm"
)

// Tool is a capability the model may invoke mid-conversation. Invoke errors
// are folded into tool-result text by the loop, never raised across a turn.
type Tool interface {
	Name() string
	Schema() llm.Tool
	Invoke(ctx context.Context, args map[string]any) (string, error)
}

// ShoppingSearcher is the slice of the serper client the shopping tool uses.
type ShoppingSearcher interface {
	ShoppingSearch(ctx context.Context, query, country string) (string, error)
}

// ShoppingTool exposes product search to the model, scoped to one country
// code for the lifetime of a request.
type ShoppingTool struct {
	searcher ShoppingSearcher
	country  string
}

// NewShoppingTool builds a ShoppingTool.
func NewShoppingTool(searcher ShoppingSearcher, country string) *ShoppingTool {
	return &ShoppingTool{searcher: searcher, country: country}
}

func (t *ShoppingTool) Name() string { return "serper" }

func (t *ShoppingTool) Schema() llm.Tool {
	return llm.Tool{
		Type: "function",
		Function: llm.FunctionSchema{
			Name:        t.Name(),
			Description: "Fetch shopping search results for skincare recommendations.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"q": map[string]any{
						"type":        "string",
						"description": "Search query describing the desired products",
					},
				},
				"required":             []string{"q"},
				"additionalProperties": false,
			},
		},
	}
}

// Invoke runs the search and returns the provider's shopping records as raw
// JSON text so the model can cite structured fields verbatim.
func (t *ShoppingTool) Invoke(ctx context.Context, args map[string]any) (string, error) {
	query, _ := args["q"].(string)
	if query == "" {
		return "", fmt.Errorf("cosmetist: serper tool requires a q argument")
	}
	return t.searcher.ShoppingSearch(ctx, query, t.country)
}
