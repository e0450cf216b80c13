package nlu

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
)

// Oracle judges natural-language conditions against gathered data. The
// engine interprets the answer; the oracle only relays the model's verdict.
type Oracle struct {
	model model.ChatModel
}

// NewOracle creates an Oracle.
func NewOracle(m model.ChatModel) *Oracle {
	return &Oracle{model: m}
}

// Evaluate returns the model's free-text verdict for the condition.
func (o *Oracle) Evaluate(ctx context.Context, condition, data string) (string, error) {
	if data == "" {
		data = "(no data was gathered)"
	}
	system := fmt.Sprintf(oracleSystemPrompt, condition, data)
	answer, err := generate(ctx, o.model, system, "Answer now.")
	if err != nil {
		return "", fmt.Errorf("condition evaluation: %w", err)
	}
	return answer, nil
}
