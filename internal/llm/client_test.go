package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL, "test-key", "test-model")
	require.NoError(t, err)
	return client
}

func completionBody(content string) string {
	return `{"choices":[{"message":{"content":` + mustJSON(content) + `}}]}`
}

func mustJSON(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(OpenAIBaseURL, "", "gpt-4o-mini")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key")
}

func TestCompleteReturnsContent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Write([]byte(completionBody("  hello there  ")))
	})

	msg, err := client.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello there", msg.Content)
	assert.Empty(t, msg.ToolCalls)
}

func TestCompleteSendsToolsWithAutoChoice(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "auto", body["tool_choice"])
		require.Len(t, body["tools"], 1)
		w.Write([]byte(completionBody("done")))
	})

	_, err := client.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "hi"}},
		Tools: []Tool{{
			Type:     "function",
			Function: FunctionSchema{Name: "serper"},
		}},
	})
	require.NoError(t, err)
}

func TestCompleteReasoningFlagOnlyForKnownModels(t *testing.T) {
	var lastBody map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		lastBody = body
		w.Write([]byte(completionBody("ok")))
	})

	_, err := client.Complete(context.Background(), Request{
		Model:           "openai/gpt-oss-20b:free",
		Messages:        []Message{{Role: "user", Content: "hi"}},
		EnableReasoning: true,
	})
	require.NoError(t, err)
	assert.Contains(t, lastBody, "reasoning")

	_, err = client.Complete(context.Background(), Request{
		Model:           "gpt-4o-mini",
		Messages:        []Message{{Role: "user", Content: "hi"}},
		EnableReasoning: true,
	})
	require.NoError(t, err)
	assert.NotContains(t, lastBody, "reasoning")
}

func TestCompleteReasoningFallback(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"","reasoning_details":[{"type":"reasoning.text","text":"{\"found\": true, "},{"type":"reasoning.text","text":"\"answer\": \"serum\"}"}]}}]}`))
	})

	msg, err := client.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"found": true, "answer": "serum"}`, msg.Content)
}

func TestCompleteReasoningIgnoredWhenContentPresent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"visible answer","reasoning_details":[{"text":"internal"}]}}]}`))
	})

	msg, err := client.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "visible answer", msg.Content)
}

func TestCompleteUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": "rate limited"}`))
	})

	_, err := client.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "rate limited")
}

func TestCompleteFreeModelHeader(t *testing.T) {
	var header string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get("X-Allow-Downstream-Training")
		w.Write([]byte(completionBody("ok")))
	})

	_, err := client.Complete(context.Background(), Request{
		Model:    "openai/gpt-oss-20b:free",
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "true", header)
}

func TestCompleteParsesToolCalls(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"","tool_calls":[{"id":"call_1","type":"function","function":{"name":"serper","arguments":"{\"q\": \"gentle cleanser\"}"}}]}}]}`))
	})

	msg, err := client.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	require.Len(t, msg.ToolCalls, 1)
	assert.Equal(t, "call_1", msg.ToolCalls[0].ID)
	assert.Equal(t, "serper", msg.ToolCalls[0].Function.Name)
	assert.Equal(t, map[string]any{"q": "gentle cleanser"}, msg.ToolCalls[0].Function.ParsedArguments())
}

func TestIsReasoningModel(t *testing.T) {
	assert.True(t, IsReasoningModel("openai/gpt-oss-20b:free"))
	assert.True(t, IsReasoningModel("DeepSeek-R1"))
	assert.True(t, IsReasoningModel("o3-mini"))
	assert.False(t, IsReasoningModel("gpt-4.1"))
	assert.False(t, IsReasoningModel("gemini-2.5-flash"))
}
