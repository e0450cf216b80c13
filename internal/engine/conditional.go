package engine

import (
	"context"
	"fmt"
	"strings"

	"yqhp/assistant-engine/pkg/types"
)

// runConditional runs the gathering tasks, asks the oracle to judge the
// condition against what they produced, records the verdict as its own step
// result and then executes exactly one branch. A plan with no else branch
// and a false condition ends after the evaluation.
func (e *Engine) runConditional(ctx context.Context, sessionID string, plan *types.ExecutionPlan) []*types.StepResult {
	spec := plan.Conditional
	if spec == nil {
		return []*types.StepResult{e.engineFailure("conditional plan without a conditional spec")}
	}

	results := make([]*types.StepResult, 0, len(spec.ConditionTasks)+1+len(spec.Then)+len(spec.Else))
	acc := NewAccumulator("", plan, e.caps)

	// The oracle judges against everything the gathering tasks produced,
	// not just the last useful output.
	var gathered []string
	for _, task := range spec.ConditionTasks {
		instruction := task.Utterance
		if instruction == "" {
			instruction = spec.Condition
		}
		result := e.executeTask(ctx, sessionID, task, instruction, acc.Carried(), types.PhaseCondition)
		results = append(results, result)
		acc.Update(task, result)

		if result.Success {
			if text := strings.TrimSpace(OutputText(result.Output)); text != "" {
				gathered = append(gathered, text)
			}
		}
	}

	verdict, evalResult := e.evaluateCondition(ctx, spec.Condition, strings.Join(gathered, "\n"))
	results = append(results, evalResult)
	if !evalResult.Success {
		return results
	}

	branch := spec.Then
	phase := types.PhaseThen
	if !verdict {
		branch = spec.Else
		phase = types.PhaseElse
	}

	for _, task := range branch {
		instruction := task.Utterance
		if instruction == "" {
			instruction = plan.RequestText
		}
		result := e.executeTask(ctx, sessionID, task, instruction, acc.Carried(), phase)
		results = append(results, result)
		acc.Update(task, result)
	}

	return results
}

// evaluateCondition asks the oracle for a verdict and records it as a step
// result under the synthetic evaluation capability.
func (e *Engine) evaluateCondition(ctx context.Context, condition, data string) (bool, *types.StepResult) {
	result := types.NewStepResult(types.Task{Capability: "condition_evaluation"})
	result.Phase = types.PhaseEvaluation
	defer result.Finish()

	if e.oracle == nil {
		rec := types.NewErrorRecord(types.ErrExecution, "no condition oracle configured",
			"The assistant cannot evaluate conditions right now.")
		return false, result.Fail(rec.NotRetryable())
	}

	answer, err := e.oracle.Evaluate(ctx, condition, data)
	if err != nil {
		return false, result.Fail(e.classifier.Classify("condition_evaluation", err.Error(), nil))
	}

	verdict := decideAnswer(answer)
	result.Succeed(fmt.Sprintf("condition %q evaluated to %t", condition, verdict))
	return verdict, result
}

// decideAnswer interprets the oracle's free-text answer: any occurrence of
// TRUE, case-insensitively, affirms the condition. Everything else,
// including an empty answer, denies it.
func decideAnswer(answer string) bool {
	return strings.Contains(strings.ToUpper(answer), "TRUE")
}
