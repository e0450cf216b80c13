package nlu

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"

	"yqhp/assistant-engine/pkg/types"
)

// Segmenter is the model-backed fallback for splitting a request into
// per-task slices when the connector grammar cannot. It satisfies the
// segment package's Segmenter interface.
type Segmenter struct {
	model model.ChatModel
}

// NewSegmenter creates a Segmenter.
func NewSegmenter(m model.ChatModel) *Segmenter {
	return &Segmenter{model: m}
}

// Segment returns the slice of fullText belonging to tasks[targetIndex].
func (s *Segmenter) Segment(ctx context.Context, fullText string, tasks []types.Task, targetIndex int) (string, error) {
	if targetIndex < 0 || targetIndex >= len(tasks) {
		return "", fmt.Errorf("segment index %d out of range", targetIndex)
	}

	system := fmt.Sprintf(segmenterSystemPrompt, len(tasks), targetIndex+1, fullText)
	slice, err := generate(ctx, s.model, system, fullText)
	if err != nil {
		return "", fmt.Errorf("fallback segmentation: %w", err)
	}

	slice = strings.TrimSpace(strings.Trim(strings.TrimSpace(slice), `"`))
	if slice == "" {
		return "", fmt.Errorf("fallback segmentation produced no slice")
	}
	return slice, nil
}
