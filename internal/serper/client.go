// Package serper calls the Serper shopping-search API.
package serper

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultBaseURL = "https://google.serper.dev"

// Number of product records requested per search.
const resultCount = 20

// Client performs scoped shopping searches.
type Client struct {
	http *resty.Client
}

// NewClient builds a Client. Fails when apiKey is empty.
func NewClient(apiKey string) (*Client, error) {
	return NewClientWithBaseURL(defaultBaseURL, apiKey)
}

// NewClientWithBaseURL is NewClient with an overridable endpoint, used by
// tests.
func NewClientWithBaseURL(baseURL, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("serper: SERPER_API_KEY is not set")
	}

	http := resty.New().
		SetBaseURL(baseURL).
		SetHeader("X-API-KEY", apiKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)

	return &Client{http: http}, nil
}

type searchRequest struct {
	Query   string `json:"q"`
	Country string `json:"gl"`
	Num     int    `json:"num"`
}

type searchResponse struct {
	Shopping []json.RawMessage `json:"shopping"`
}

// ShoppingSearch runs a product search scoped to the given country code and
// returns the raw shopping records serialized as JSON text, so downstream
// consumers can cite the provider's fields (title, price, link, image,
// rating) verbatim.
func (c *Client) ShoppingSearch(ctx context.Context, query, country string) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(searchRequest{Query: query, Country: country, Num: resultCount}).
		Post("/shopping")
	if err != nil {
		return "", fmt.Errorf("serper: shopping search: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("serper: shopping search: status %d: %s", resp.StatusCode(), resp.String())
	}

	var out searchResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("serper: decode shopping response: %w", err)
	}

	if out.Shopping == nil {
		return "[]", nil
	}

	serialized, err := json.Marshal(out.Shopping)
	if err != nil {
		return "", fmt.Errorf("serper: serialize shopping results: %w", err)
	}

	return string(serialized), nil
}
