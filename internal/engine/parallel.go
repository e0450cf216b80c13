package engine

import (
	"context"
	"fmt"
	"sync"

	"yqhp/assistant-engine/pkg/types"
)

// runParallel fans the plan's tasks out onto goroutines, bounded by
// maxParallel, and collects results at each task's original index. A panic
// or failure in one task never disturbs its siblings.
func (e *Engine) runParallel(ctx context.Context, sessionID string, plan *types.ExecutionPlan) []*types.StepResult {
	if plan.TaskCount() == 0 {
		return []*types.StepResult{e.engineFailure("parallel plan has no tasks")}
	}
	results := make([]*types.StepResult, plan.TaskCount())

	var wg sync.WaitGroup
	sem := make(chan struct{}, e.maxParallel)

	for i := range plan.Tasks {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			// executeTask recovers its own panics, but the instruction
			// resolution above it must not take the goroutine down either.
			defer func() {
				if r := recover(); r != nil {
					e.log.Error("recovered from panic in parallel slot %d: %v", index, r)
					task := plan.Tasks[index]
					res := types.NewStepResult(task)
					rec := e.classifier.Classify(task.Capability, fmt.Sprintf("panic: %v", r), nil)
					results[index] = res.Fail(rec).Finish()
				}
			}()

			instruction := e.resolveInstruction(ctx, plan, index)
			results[index] = e.executeTask(ctx, sessionID, plan.Tasks[index], instruction, "", "")
		}(i)
	}
	wg.Wait()

	return results
}
