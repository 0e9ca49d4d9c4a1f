package cosmetist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowly/glowly-backend/internal/llm"
)

var testPhotos = []string{"data:image/jpeg;base64,front", "data:image/jpeg;base64,left", "data:image/jpeg;base64,right"}

func TestWorkflowVerificationFailureShortCircuits(t *testing.T) {
	m := &scriptedModel{replies: []*llm.AssistantMessage{
		textReply(`{"success": false, "message": "missing left profile"}`),
	}}
	agent := NewAgent(m, &fakeSearcher{})

	result, err := agent.RunInitialWorkflow(context.Background(), testPhotos, "us")
	require.NoError(t, err)

	assert.Empty(t, result.Analysis)
	assert.Empty(t, result.Ratings)
	assert.Empty(t, result.Shopping)
	require.Len(t, result.History, 2)
	assert.Equal(t, "user", result.History[0].Role)
	assert.Equal(t, "assistant", result.History[1].Role)

	message, failed := result.VerificationFailure()
	assert.True(t, failed)
	assert.Equal(t, "missing left profile", message)

	assert.Len(t, m.requests, 1)
}

func TestWorkflowRunsAllStages(t *testing.T) {
	m := &scriptedModel{replies: []*llm.AssistantMessage{
		textReply(`{"success": true, "message": "all angles present"}`),
		textReply("- mild redness on cheeks\nHydration: 3/5"),
		textReply(`{"hydration": 3, "oilBalance": 4, "tone": 3, "barrierStrength": 2, "sensitivity": 4}`),
		textReply("```json\n{\"products\": []}\n```"),
	}}
	agent := NewAgent(m, &fakeSearcher{})

	result, err := agent.RunInitialWorkflow(context.Background(), testPhotos, "us")
	require.NoError(t, err)

	assert.Contains(t, result.Verification, `"success": true`)
	assert.Contains(t, result.Analysis, "redness")
	assert.Contains(t, result.Ratings, "barrierStrength")
	assert.Contains(t, result.Shopping, "products")

	// Four user/assistant pairs, threaded in stage order.
	require.Len(t, result.History, 8)
	assert.Contains(t, result.History[0].Content, "front face")
	assert.Contains(t, result.History[6].Content, "shopping options")

	_, failed := result.VerificationFailure()
	assert.False(t, failed)

	// Every stage replays the accumulated history.
	assert.Len(t, m.requests, 4)
	assert.Greater(t, len(m.requests[3].Messages), len(m.requests[0].Messages))
}

func TestWorkflowUnparseableVerificationContinues(t *testing.T) {
	m := &scriptedModel{replies: []*llm.AssistantMessage{
		textReply("The photos look complete to me!"),
		textReply("analysis text"),
		textReply(`{"hydration": 3}`),
		textReply("shopping text"),
	}}
	agent := NewAgent(m, &fakeSearcher{})

	result, err := agent.RunInitialWorkflow(context.Background(), testPhotos, "us")
	require.NoError(t, err)

	assert.Equal(t, "analysis text", result.Analysis)
	assert.Len(t, result.History, 8)
}

func TestWorkflowRequiresPhotos(t *testing.T) {
	agent := NewAgent(&scriptedModel{}, &fakeSearcher{})
	_, err := agent.RunInitialWorkflow(context.Background(), nil, "us")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "photo")
}

func TestWorkflowFencedVerificationFailureDetected(t *testing.T) {
	m := &scriptedModel{replies: []*llm.AssistantMessage{
		textReply("```json\n{\"success\": false, \"message\": \"only one angle provided\"}\n```"),
	}}
	agent := NewAgent(m, &fakeSearcher{})

	result, err := agent.RunInitialWorkflow(context.Background(), testPhotos, "us")
	require.NoError(t, err)

	message, failed := result.VerificationFailure()
	assert.True(t, failed)
	assert.Equal(t, "only one angle provided", message)
	assert.Empty(t, result.Analysis)
}
