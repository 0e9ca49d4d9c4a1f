// Package memory answers questions from stored conversation history via an
// iterative retrieval agent.
package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/glowly/glowly-backend/internal/llm"
	"github.com/glowly/glowly-backend/internal/model"
	"github.com/glowly/glowly-backend/internal/parse"
)

const ragToolName = "RAGTool"

const (
	// defaultMaxRounds bounds the escalation loop so a model that keeps
	// asking for retrieval cannot spin forever.
	defaultMaxRounds = 3
	defaultTopK      = 5
	// At most this many chunks are folded into one prompt.
	maxPromptChunks = 5
)

const systemPrompt = `You are a search agent. Your task is to find answers in conversation history using RAGTool.

IMPORTANT: You must respond with ONLY valid JSON. No explanations, no markdown, no extra text.

Available tool:
- RAGTool: Searches conversation history. Args: query (string), k (number of results)

Response format (choose ONE):

1. To search for more context:
{"tool": "RAGTool", "args": {"query": "your search query", "k": 5}}

2. When you found the answer:
{"found": true, "answer": "the specific answer"}

3. When answer cannot be found:
{"found": false, "answer": ""}

Rules:
- Output ONLY the JSON object, nothing else
- If context is empty or insufficient, use RAGTool to search
- Extract specific answers, not summaries
- Do not wrap JSON in markdown code blocks`

// ModelClient is the slice of the chat-completion adapter the agent needs.
type ModelClient interface {
	Complete(ctx context.Context, req llm.Request) (*llm.AssistantMessage, error)
}

// Agent runs the bounded retrieval loop.
type Agent struct {
	llm       ModelClient
	retriever Retriever
	maxRounds int
}

// NewAgent builds an Agent with the default round cap.
func NewAgent(client ModelClient, retriever Retriever) *Agent {
	return &Agent{llm: client, retriever: retriever, maxRounds: defaultMaxRounds}
}

// Search answers question from uid's stored history on or before cutoff.
// A zero cutoff means "now". seed carries chunks from a prior round and is
// usually nil.
//
// Each round the model either answers, gives up, or requests a retrieval;
// retrieved chunks feed the next round. The loop ends with a not-found
// outcome when retrieval returns nothing or the round cap is hit. Upstream
// API failures are returned as errors; malformed model output is not an
// error but an OutcomeError.
func (a *Agent) Search(ctx context.Context, question, uid string, cutoff time.Time, seed []Chunk) (Outcome, error) {
	if cutoff.IsZero() {
		cutoff = time.Now().UTC()
	}

	chunks := seed
	for round := 0; round < a.maxRounds; round++ {
		outcome, err := a.step(ctx, question, chunks)
		if err != nil {
			return Outcome{}, err
		}
		if outcome.Kind != OutcomeRetrieve {
			return outcome, nil
		}

		k := outcome.K
		if k <= 0 {
			k = defaultTopK
		}
		log.Debug().Int("round", round+1).Str("query", outcome.Query).Int("k", k).Msg("memory agent retrieval")

		retrieved, err := a.retriever.TopK(ctx, outcome.Query, uid, cutoff, k)
		if err != nil {
			return Outcome{}, fmt.Errorf("memory: retrieve chunks: %w", err)
		}
		if len(retrieved) == 0 {
			return Outcome{Kind: OutcomeNotFound}, nil
		}
		chunks = retrieved
	}

	return Outcome{Kind: OutcomeNotFound}, nil
}

func (a *Agent) step(ctx context.Context, question string, chunks []Chunk) (Outcome, error) {
	reply, err := a.llm.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: model.RoleSystem, Content: systemPrompt},
			{Role: model.RoleUser, Content: buildUserContent(question, chunks)},
		},
		Temperature: llm.Float(0),
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("memory: agent completion: %w", err)
	}

	return outcomeFrom(parse.ExtractObject(reply.Content)), nil
}

func buildUserContent(question string, chunks []Chunk) string {
	contextStr := "No context provided. Use RAGTool to search."
	if len(chunks) > 0 {
		if len(chunks) > maxPromptChunks {
			chunks = chunks[:maxPromptChunks]
		}
		lines := make([]string, 0, len(chunks))
		for _, c := range chunks {
			lines = append(lines, fmt.Sprintf("[Chunk %d]: %s", c.Rank, c.Content))
		}
		contextStr = strings.Join(lines, "\n")
	}

	return fmt.Sprintf("Context:\n%s\n\nQuestion: %s\n\nRespond with JSON only:", contextStr, question)
}
