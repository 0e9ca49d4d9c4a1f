package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// Models known to accept the reasoning request block. Matched by substring
// so provider prefixes and version suffixes do not matter.
var reasoningModels = []string{
	"gpt-oss-120b",
	"gpt-oss-20b",
	"o3",
	"o4",
	"o1",
	"o3-mini",
	"o4-mini",
	"deepseek-r1",
}

// IsReasoningModel reports whether the model accepts reasoning parameters.
func IsReasoningModel(model string) bool {
	lowered := strings.ToLower(model)
	for _, rm := range reasoningModels {
		if strings.Contains(lowered, rm) {
			return true
		}
	}
	return false
}

// Client calls one OpenAI-compatible chat-completion endpoint. Construct one
// per provider at process start and share it across requests.
type Client struct {
	http         *resty.Client
	defaultModel string
}

// NewClient builds a Client for the given endpoint. Fails when apiKey is
// empty so a missing credential surfaces at startup rather than mid-request.
func NewClient(baseURL, apiKey, defaultModel string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("llm: api key is not set for %s", baseURL)
	}

	http := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json").
		// Reasoning models can deliberate for minutes before answering.
		SetTimeout(5 * time.Minute)

	if strings.Contains(baseURL, "openrouter.ai") {
		http.SetHeader("HTTP-Referer", "https://github.com/glowly/glowly-backend")
	}

	return &Client{http: http, defaultModel: defaultModel}, nil
}

type chatRequest struct {
	Model       string           `json:"model"`
	Messages    []Message        `json:"messages"`
	Tools       []Tool           `json:"tools,omitempty"`
	ToolChoice  string           `json:"tool_choice,omitempty"`
	Temperature *float64         `json:"temperature,omitempty"`
	Reasoning   *reasoningConfig `json:"reasoning,omitempty"`
}

type reasoningConfig struct {
	Enabled bool `json:"enabled"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content          string          `json:"content"`
			ToolCalls        []ToolCall      `json:"tool_calls"`
			ReasoningDetails json.RawMessage `json:"reasoning_details"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends the full message sequence and returns the assistant reply.
// A non-2xx response fails immediately with the status code and body; there
// are no retries.
func (c *Client) Complete(ctx context.Context, req Request) (*AssistantMessage, error) {
	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	body := chatRequest{
		Model:       model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
	}
	if len(req.Tools) > 0 {
		body.Tools = req.Tools
		body.ToolChoice = "auto"
	}
	if req.EnableReasoning && IsReasoningModel(model) {
		body.Reasoning = &reasoningConfig{Enabled: true}
	}

	httpReq := c.http.R().
		SetContext(ctx).
		SetBody(body)

	if strings.Contains(model, ":free") {
		// Free OpenRouter models require opting in to data sharing.
		httpReq.SetHeader("X-Allow-Downstream-Training", "true")
	}

	resp, err := httpReq.Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("llm: chat completion: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("llm: chat completion: status %d: %s", resp.StatusCode(), resp.String())
	}

	var out chatResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("llm: decode chat completion: %w", err)
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("llm: chat completion returned no choices")
	}

	msg := out.Choices[0].Message
	content := strings.TrimSpace(msg.Content)

	if reasoning := extractReasoningText(msg.ReasoningDetails); reasoning != "" {
		log.Debug().Str("model", model).Str("reasoning", truncate(reasoning, 500)).Msg("reasoning trace")
		// Some reasoning modes emit the final answer only in the trace.
		if content == "" {
			content = reasoning
		}
	}

	return &AssistantMessage{Content: content, ToolCalls: msg.ToolCalls}, nil
}

// extractReasoningText concatenates the text fragments of a reasoning trace.
// The field arrives either as a list of {text: …} objects or a bare string.
func extractReasoningText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var items []map[string]any
	if err := json.Unmarshal(raw, &items); err == nil {
		var sb strings.Builder
		for _, item := range items {
			if text, ok := item["text"].(string); ok {
				sb.WriteString(text)
			}
		}
		return sb.String()
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}

	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
