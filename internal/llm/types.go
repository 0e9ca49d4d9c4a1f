// Package llm is the adapter for OpenAI-compatible chat-completion APIs.
package llm

import "encoding/json"

// Provider endpoints the backend talks to.
const (
	OpenAIBaseURL     = "https://api.openai.com/v1"
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"
)

// Message is one turn of an outbound message sequence. Content is either a
// plain string or a []ContentPart multimodal payload.
type Message struct {
	Role       string     `json:"role"`
	Content    any        `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ContentPart is one element of a multimodal user message.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL carries an image reference, typically a base64 data URL.
type ImageURL struct {
	URL string `json:"url"`
}

// TextPart builds a text content part.
func TextPart(text string) ContentPart {
	return ContentPart{Type: "text", Text: text}
}

// ImagePart builds an image content part from a data or https URL.
func ImagePart(url string) ContentPart {
	return ContentPart{Type: "image_url", ImageURL: &ImageURL{URL: url}}
}

// ToolCall is a model-issued request to invoke a capability. ID correlates
// the eventual tool-role message back to this call.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type,omitempty"`
	Function FunctionCall `json:"function"`
}

// FunctionCall names the requested function. Arguments is the raw JSON
// string from the wire.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ParsedArguments decodes the call's JSON argument string. A malformed
// argument string yields an empty map so tool dispatch can still answer the
// call with an error result.
func (f FunctionCall) ParsedArguments() map[string]any {
	args := map[string]any{}
	if f.Arguments != "" {
		_ = json.Unmarshal([]byte(f.Arguments), &args)
	}
	return args
}

// Tool is a tool schema as declared to the model.
type Tool struct {
	Type     string         `json:"type"`
	Function FunctionSchema `json:"function"`
}

// FunctionSchema describes one callable function.
type FunctionSchema struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// Request is one chat-completion call.
type Request struct {
	// Model overrides the client default when non-empty.
	Model    string
	Messages []Message
	Tools    []Tool
	// Temperature is omitted from the wire request when nil, leaving the
	// provider default in effect.
	Temperature *float64
	// EnableReasoning asks the provider for a reasoning trace. Silently
	// ignored for models not in the reasoning-capable set.
	EnableReasoning bool
}

// Float is a convenience for literal temperature values.
func Float(v float64) *float64 { return &v }

// AssistantMessage is the model's reply: final text, zero or more tool
// calls, or both.
type AssistantMessage struct {
	Content   string
	ToolCalls []ToolCall
}
