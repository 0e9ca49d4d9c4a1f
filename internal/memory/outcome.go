package memory

import "github.com/glowly/glowly-backend/internal/parse"

// OutcomeKind tags the variant of an agent outcome. Exactly one variant is
// active per outcome.
type OutcomeKind int

const (
	// OutcomeFound carries the answer text.
	OutcomeFound OutcomeKind = iota
	// OutcomeNotFound means the history holds no answer.
	OutcomeNotFound
	// OutcomeRetrieve requests another retrieval round. Never escapes the
	// agent loop.
	OutcomeRetrieve
	// OutcomeError is the non-exceptional fallback for replies the agent
	// protocol cannot make sense of.
	OutcomeError
)

// Outcome is the memory agent's decision for one round.
type Outcome struct {
	Kind   OutcomeKind
	Answer string
	// Query and K are set for OutcomeRetrieve.
	Query string
	K     int
	// Reason is set for OutcomeError.
	Reason string
}

// Response renders the outcome as the JSON object returned to API callers.
// An error outcome is distinguishable from a genuine not-found only by the
// presence of the error key.
func (o Outcome) Response() map[string]any {
	switch o.Kind {
	case OutcomeFound:
		return map[string]any{"found": true, "answer": o.Answer}
	case OutcomeError:
		return map[string]any{"found": false, "answer": "", "error": o.Reason}
	default:
		return map[string]any{"found": false, "answer": ""}
	}
}

// outcomeFrom classifies a parsed model reply into exactly one variant.
func outcomeFrom(obj map[string]any) Outcome {
	if tool, ok := obj["tool"].(string); ok && tool == ragToolName {
		args, ok := obj["args"].(map[string]any)
		if !ok {
			return Outcome{Kind: OutcomeError, Reason: "tool request without arguments"}
		}
		query, _ := args["query"].(string)
		if query == "" {
			return Outcome{Kind: OutcomeError, Reason: "tool request without a query"}
		}
		k := 0
		if n, ok := args["k"].(float64); ok {
			k = int(n)
		}
		return Outcome{Kind: OutcomeRetrieve, Query: query, K: k}
	}

	if reason, ok := obj[parse.ErrorKey].(string); ok {
		return Outcome{Kind: OutcomeError, Reason: reason}
	}

	found, ok := obj["found"].(bool)
	if !ok {
		return Outcome{Kind: OutcomeError, Reason: "unrecognized response shape"}
	}
	if !found {
		return Outcome{Kind: OutcomeNotFound}
	}

	answer, _ := obj["answer"].(string)
	return Outcome{Kind: OutcomeFound, Answer: answer}
}
