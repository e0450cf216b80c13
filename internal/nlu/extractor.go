package nlu

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"

	"yqhp/assistant-engine/internal/capability"
)

// Extractor fills a capability's argument object from an utterance plus the
// carried context of earlier steps. It satisfies the engine's
// ArgumentExtractor interface.
type Extractor struct {
	model model.ChatModel
	caps  *capability.Registry
}

// NewExtractor creates an Extractor.
func NewExtractor(m model.ChatModel, caps *capability.Registry) *Extractor {
	return &Extractor{model: m, caps: caps}
}

// Extract returns the argument map for one invocation. Fields the
// instruction does not mention are simply absent; the confirmation gate
// decides whether that is fatal.
func (x *Extractor) Extract(ctx context.Context, capabilityName, utterance, carried string) (map[string]any, error) {
	fields := "any fields the instruction provides"
	if desc := x.caps.Get(capabilityName); desc != nil && len(desc.Required) > 0 {
		fields = strings.Join(desc.Required, ", ")
	}
	if carried == "" {
		carried = "(none)"
	}

	system := fmt.Sprintf(extractorSystemPrompt, capabilityName, fields, carried)
	content, err := generate(ctx, x.model, system, utterance)
	if err != nil {
		return nil, fmt.Errorf("argument extraction for %s: %w", capabilityName, err)
	}

	return parseArguments(content)
}

// parseArguments 解析提取器输出的参数 JSON
func parseArguments(content string) (map[string]any, error) {
	content = strings.TrimSpace(content)

	if idx := strings.Index(content, "{"); idx >= 0 {
		if endIdx := strings.LastIndex(content, "}"); endIdx > idx {
			content = content[idx : endIdx+1]
		}
	}

	args := make(map[string]any)
	if err := json.Unmarshal([]byte(content), &args); err != nil {
		return nil, fmt.Errorf("JSON 解析失败: %w", err)
	}
	return args, nil
}
