package engine

import (
	"context"
	"fmt"

	"yqhp/assistant-engine/pkg/types"
)

// Resume settles a previously surfaced confirmation. On approval the
// capability is invoked with the exact arguments the user saw; nothing is
// re-extracted between the preview and the action. On denial the step is
// closed out as a non-retryable failure without any invocation.
func (e *Engine) Resume(ctx context.Context, sessionID string, payload *types.ConfirmationPayload, approved bool) (result *types.StepResult) {
	task := types.Task{Capability: "", Ordinal: 0}
	if payload != nil {
		task.Capability = payload.Capability
	}
	result = types.NewStepResult(task)

	defer func() {
		if r := recover(); r != nil {
			e.log.Error("recovered from panic while resuming %s: %v", task.Capability, r)
			result.Fail(e.classifier.Classify(task.Capability, fmt.Sprintf("panic: %v", r), nil))
		}
		result.Finish()
		e.emitOutcome(result)
	}()

	if payload == nil || payload.Capability == "" {
		rec := types.NewErrorRecord(types.ErrInvalidFormat, "confirmation payload is empty",
			"The confirmation could not be matched to a pending action.")
		return result.Fail(rec.NotRetryable())
	}
	if !e.caps.Has(payload.Capability) {
		rec := types.NewErrorRecord(types.ErrNotFound,
			fmt.Sprintf("unknown capability: %s", payload.Capability),
			fmt.Sprintf("The assistant cannot %s; that capability is not available.", humanName(payload.Capability)))
		return result.Fail(rec.NotRetryable())
	}

	if !approved {
		rec := types.NewErrorRecord(types.ErrExecution, "user denied the action",
			fmt.Sprintf("Okay, I won't %s.", humanName(payload.Capability)))
		return result.Fail(rec.NotRetryable())
	}

	e.progress.Emit(types.ProgressEvent{
		Type:       types.EventTaskStarted,
		Capability: payload.Capability,
	})
	return e.invokeCapability(ctx, sessionID, task, payload.Arguments, result)
}
