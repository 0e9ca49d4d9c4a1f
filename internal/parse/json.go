// Package parse recovers JSON objects from free-form model output.
package parse

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	codeBlockPattern = regexp.MustCompile("```(?:json)?\\s*\\n?([\\s\\S]*?)\\n?```")
	// Matches brace spans with at most one level of nesting, which covers the
	// agent protocol shapes without a full JSON scanner.
	bracePattern = regexp.MustCompile(`\{[^{}]*(?:\{[^{}]*\}[^{}]*)*\}`)
)

// ErrorKey marks the sentinel object returned when no JSON could be recovered.
const ErrorKey = "error"

// Sentinel returns the non-exceptional "could not parse" outcome. Callers
// distinguish it from a genuine not-found answer by the presence of ErrorKey.
func Sentinel() map[string]any {
	return map[string]any{"found": false, "answer": "", ErrorKey: "Could not parse response"}
}

// ExtractObject pulls the first parseable JSON object out of a model reply.
// Strategies are tried in order: the whole trimmed string, fenced code
// blocks, then balanced-looking brace spans. If nothing parses, the sentinel
// object is returned rather than an error, since model output is untrusted
// free text.
func ExtractObject(response string) map[string]any {
	if obj, ok := tryParse(strings.TrimSpace(response)); ok {
		return obj
	}

	for _, match := range codeBlockPattern.FindAllStringSubmatch(response, -1) {
		if obj, ok := tryParse(strings.TrimSpace(match[1])); ok {
			return obj
		}
	}

	for _, span := range bracePattern.FindAllString(response, -1) {
		if obj, ok := tryParse(span); ok {
			return obj
		}
	}

	return Sentinel()
}

func tryParse(s string) (map[string]any, bool) {
	if s == "" {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, false
	}
	return obj, true
}
