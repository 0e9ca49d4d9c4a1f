package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractObjectDirect(t *testing.T) {
	obj := ExtractObject(`  {"found": true, "answer": "rose toner"}  `)
	assert.Equal(t, true, obj["found"])
	assert.Equal(t, "rose toner", obj["answer"])
}

func TestExtractObjectFencedBlock(t *testing.T) {
	reply := "Sure! Here is the result you asked for:\n```json\n{\"hydration\": 3, \"tone\": 4}\n```\nLet me know if you need anything else."
	obj := ExtractObject(reply)
	require.NotContains(t, obj, ErrorKey)
	assert.Equal(t, float64(3), obj["hydration"])
	assert.Equal(t, float64(4), obj["tone"])
}

func TestExtractObjectFencedBlockNoLanguageTag(t *testing.T) {
	obj := ExtractObject("```\n{\"success\": false, \"message\": \"missing left profile\"}\n```")
	assert.Equal(t, false, obj["success"])
	assert.Equal(t, "missing left profile", obj["message"])
}

func TestExtractObjectSkipsUnparseableBlocks(t *testing.T) {
	reply := "```\nnot json at all\n```\nsome prose\n```json\n{\"found\": false, \"answer\": \"\"}\n```"
	obj := ExtractObject(reply)
	require.NotContains(t, obj, ErrorKey)
	assert.Equal(t, false, obj["found"])
}

func TestExtractObjectBraceScan(t *testing.T) {
	reply := `The model decided to search: {"tool": "RAGTool", "args": {"query": "toner order", "k": 5}} hope that helps`
	obj := ExtractObject(reply)
	assert.Equal(t, "RAGTool", obj["tool"])
	args, ok := obj["args"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "toner order", args["query"])
}

func TestExtractObjectSentinel(t *testing.T) {
	for _, reply := range []string{"", "no json here", "{broken", "just {words} in braces"} {
		obj := ExtractObject(reply)
		assert.Equal(t, false, obj["found"])
		assert.Equal(t, "", obj["answer"])
		assert.Equal(t, "Could not parse response", obj[ErrorKey])
	}
}

func TestExtractObjectRoundTrip(t *testing.T) {
	reply := "Of course! I looked through your history.\n\n```json\n{\"found\": true, \"answer\": \"you ordered the ceramide serum\"}\n```\n\nAnything else?"
	obj := ExtractObject(reply)
	require.NotContains(t, obj, ErrorKey)
	assert.Equal(t, true, obj["found"])
	assert.Equal(t, "you ordered the ceramide serum", obj["answer"])
}
