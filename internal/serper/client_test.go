package serper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShoppingSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/shopping", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-API-KEY"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gentle cleanser", body["q"])
		assert.Equal(t, "de", body["gl"])
		assert.Equal(t, float64(20), body["num"])

		w.Write([]byte(`{"shopping":[{"title":"CeraVe Hydrating Cleanser","price":"$14.99","position":1}]}`))
	}))
	defer server.Close()

	client, err := NewClientWithBaseURL(server.URL, "secret")
	require.NoError(t, err)

	result, err := client.ShoppingSearch(context.Background(), "gentle cleanser", "de")
	require.NoError(t, err)

	var products []map[string]any
	require.NoError(t, json.Unmarshal([]byte(result), &products))
	require.Len(t, products, 1)
	assert.Equal(t, "CeraVe Hydrating Cleanser", products[0]["title"])
	assert.Equal(t, "$14.99", products[0]["price"])
}

func TestShoppingSearchEmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, err := NewClientWithBaseURL(server.URL, "secret")
	require.NoError(t, err)

	result, err := client.ShoppingSearch(context.Background(), "anything", "us")
	require.NoError(t, err)
	assert.Equal(t, "[]", result)
}

func TestShoppingSearchUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("bad key"))
	}))
	defer server.Close()

	client, err := NewClientWithBaseURL(server.URL, "secret")
	require.NoError(t, err)

	_, err = client.ShoppingSearch(context.Background(), "anything", "us")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "bad key")
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient("")
	require.Error(t, err)
}
