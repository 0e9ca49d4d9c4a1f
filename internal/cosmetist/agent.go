// Package cosmetist drives the skincare-analysis chat agent.
package cosmetist

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/glowly/glowly-backend/internal/llm"
	"github.com/glowly/glowly-backend/internal/model"
)

// ErrMaxTurns signals the loop hit its turn budget without the model
// producing final text. Fail-fast: bounds cost and tool-call ping-pong.
var ErrMaxTurns = errors.New("cosmetist: agent exceeded max turns without producing a response")

const defaultMaxTurns = 6

const systemPrompt = `You are a licensed aesthetician and cosmetic chemist.
You can see the provided bare-face scan image via the companion user message. Never claim you cannot view it; describe what you observe and avoid asking for re-uploads.
Chat naturally using markdown. When the user asks for products or shopping links, call the serper tool with a focused query and return your reply with markdown bullets that include links and thumbnails.`

// ModelClient is the slice of the chat-completion adapter the agent needs.
type ModelClient interface {
	Complete(ctx context.Context, req llm.Request) (*llm.AssistantMessage, error)
}

// Agent runs tool-augmented chat turns against the analysis model.
type Agent struct {
	llm      ModelClient
	shopping ShoppingSearcher
	maxTurns int
}

// NewAgent builds an Agent with the default turn budget.
func NewAgent(client ModelClient, shopping ShoppingSearcher) *Agent {
	return &Agent{llm: client, shopping: shopping, maxTurns: defaultMaxTurns}
}

// ChatTurn runs one exchange: photos plus history in, final assistant
// markdown out. memoryContext, when non-empty, is recalled detail injected
// as an extra system turn.
func (a *Agent) ChatTurn(ctx context.Context, photoDataURLs []string, history []model.Turn, country, memoryContext string) (string, error) {
	messages := buildMessages(photoDataURLs, history, memoryContext)
	tools := []Tool{NewShoppingTool(a.shopping, country)}
	return a.run(ctx, messages, tools)
}

// run is the bounded chat loop. Each iteration sends the sequence to the
// model; tool calls are answered in order, one tool turn per call with the
// matching id, before the next model call.
func (a *Agent) run(ctx context.Context, messages []llm.Message, tools []Tool) (string, error) {
	registry := make(map[string]Tool, len(tools))
	schemas := make([]llm.Tool, 0, len(tools))
	for _, t := range tools {
		registry[t.Name()] = t
		schemas = append(schemas, t.Schema())
	}

	for turn := 0; turn < a.maxTurns; turn++ {
		reply, err := a.llm.Complete(ctx, llm.Request{Messages: messages, Tools: schemas})
		if err != nil {
			return "", err
		}

		if len(reply.ToolCalls) == 0 {
			if reply.Content != "" {
				return reply.Content, nil
			}
			continue
		}

		messages = append(messages, llm.Message{
			Role:      model.RoleAssistant,
			Content:   reply.Content,
			ToolCalls: reply.ToolCalls,
		})

		for _, call := range reply.ToolCalls {
			messages = append(messages, llm.Message{
				Role:       model.RoleTool,
				ToolCallID: call.ID,
				Content:    a.executeToolCall(ctx, registry, call),
			})
		}
	}

	return "", ErrMaxTurns
}

// executeToolCall dispatches one call by name. Failures become textual tool
// results so a single bad invocation cannot abort the exchange.
func (a *Agent) executeToolCall(ctx context.Context, registry map[string]Tool, call llm.ToolCall) string {
	name := call.Function.Name
	tool, ok := registry[name]
	if !ok {
		return fmt.Sprintf("Tool %q is not available.", name)
	}

	result, err := tool.Invoke(ctx, call.Function.ParsedArguments())
	if err != nil {
		log.Warn().Err(err).Str("tool", name).Msg("tool invocation failed")
		return fmt.Sprintf("Tool error: %v", err)
	}
	return result
}

func buildMessages(photoDataURLs []string, history []model.Turn, memoryContext string) []llm.Message {
	messages := []llm.Message{{Role: model.RoleSystem, Content: systemPrompt}}

	if memoryContext != "" {
		messages = append(messages, llm.Message{
			Role:    model.RoleSystem,
			Content: "Relevant details recalled from this user's earlier conversations: " + memoryContext,
		})
	}

	if len(photoDataURLs) > 0 {
		text := "Here is the bare-face scan image to analyze."
		if len(photoDataURLs) > 1 {
			text = "Here are the bare-face scan images to analyze."
		}
		parts := []llm.ContentPart{llm.TextPart(text)}
		for _, url := range photoDataURLs {
			parts = append(parts, llm.ImagePart(url))
		}
		messages = append(messages, llm.Message{Role: model.RoleUser, Content: parts})
	}

	for _, turn := range history {
		messages = append(messages, llm.Message{Role: turn.Role, Content: turn.Content})
	}

	return messages
}
