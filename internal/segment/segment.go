// Package segment assigns each task its slice of a combined natural-language
// instruction. The primary path is a small deterministic grammar over a fixed
// connector vocabulary; an external segmenter is used strictly as fallback.
package segment

import (
	"context"
	"regexp"
	"strings"

	"yqhp/assistant-engine/pkg/types"
)

// Segmenter resolves the natural-language slice for one task of a combined
// instruction. Implemented by the grammar segmenter here and by the LLM
// fallback in internal/nlu.
type Segmenter interface {
	Segment(ctx context.Context, fullText string, tasks []types.Task, targetIndex int) (string, error)
}

// connectorPattern matches the connector vocabulary that joins sibling
// clauses. Longest alternatives first so "and then" wins over "and".
var connectorPattern = regexp.MustCompile(`(?i)\s*,?\s+\b(?:and then|and also|then|and)\b\s+`)

// Split breaks a combined instruction into clause slices at connector
// boundaries. A text without connectors yields a single slice.
func Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	parts := connectorPattern.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{text}
	}
	return out
}

// Remainder rewrites a chained instruction after the first completed clauses
// have been executed: the tail slices become the new instruction. If the
// text has fewer clauses than completed steps, the last clause is returned
// so a step never receives an empty instruction.
func Remainder(text string, completed int) string {
	if completed <= 0 {
		return strings.TrimSpace(text)
	}

	parts := Split(text)
	if len(parts) == 0 {
		return strings.TrimSpace(text)
	}
	if completed >= len(parts) {
		return parts[len(parts)-1]
	}
	return strings.Join(parts[completed:], " then ")
}

// Grammar is the primary Segmenter: clause i of the split text belongs to
// task i. It fails over to the whole text when the clause count does not
// cover the requested index.
type Grammar struct{}

// NewGrammar creates the connector-grammar segmenter.
func NewGrammar() *Grammar {
	return &Grammar{}
}

// Segment implements Segmenter.
func (g *Grammar) Segment(_ context.Context, fullText string, tasks []types.Task, targetIndex int) (string, error) {
	parts := Split(fullText)
	if targetIndex >= 0 && targetIndex < len(parts) && len(parts) >= len(tasks) {
		return parts[targetIndex], nil
	}
	return strings.TrimSpace(fullText), nil
}
