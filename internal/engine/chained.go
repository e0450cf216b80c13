package engine

import (
	"context"

	"yqhp/assistant-engine/internal/segment"
	"yqhp/assistant-engine/pkg/types"
)

// runChained executes tasks strictly in order, feeding each step's useful
// output into the next through the accumulator. A failed step contributes
// nothing to the carried context but never halts the chain: later steps may
// not depend on it.
func (e *Engine) runChained(ctx context.Context, sessionID string, plan *types.ExecutionPlan) []*types.StepResult {
	if plan.TaskCount() == 0 {
		return []*types.StepResult{e.engineFailure("chained plan has no tasks")}
	}
	results := make([]*types.StepResult, 0, plan.TaskCount())
	acc := NewAccumulator("", plan, e.caps)

	for i, task := range plan.Tasks {
		instruction := task.Utterance
		if instruction == "" {
			if i == 0 {
				instruction = plan.RequestText
			} else {
				// Strip the clauses already handled so the extractor only
				// sees what remains to do.
				instruction = segment.Remainder(plan.RequestText, i)
			}
		}

		result := e.executeTask(ctx, sessionID, task, instruction, acc.Carried(), "")
		results = append(results, result)

		if result.RequiresConfirmation {
			// The chain pauses here pending the user's decision; the
			// remaining steps run on approval.
			continue
		}
		acc.Update(task, result)
	}

	return results
}
