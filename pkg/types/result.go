package types

import "time"

// Phase tags a step result with the conditional-strategy stage it belongs to.
// Empty for non-conditional plans.
type Phase string

const (
	// PhaseCondition marks results produced while gathering condition data.
	PhaseCondition Phase = "condition"
	// PhaseEvaluation marks the synthetic result of the oracle decision.
	PhaseEvaluation Phase = "evaluation"
	// PhaseThen marks results from the then branch.
	PhaseThen Phase = "then"
	// PhaseElse marks results from the else branch.
	PhaseElse Phase = "else"
)

// StepResult is the outcome of one task. Exactly one of Output,
// Confirmation or Error is populated, consistent with Success and
// RequiresConfirmation.
// 推荐使用 NewStepResult 创建，然后用 Succeed/RequireConfirmation/Fail
// 之一收尾，最后 defer result.Finish() 记录耗时。
type StepResult struct {
	Capability string `json:"capability"`
	Ordinal    int    `json:"ordinal"`
	Phase      Phase  `json:"phase,omitempty"`

	Success bool `json:"success"`

	// Duplicate is set when the step was short-circuited by the dedup
	// ledger instead of invoking the capability again.
	Duplicate bool `json:"duplicate,omitempty"`

	Output any `json:"output,omitempty"`

	RequiresConfirmation bool                 `json:"requires_confirmation,omitempty"`
	Confirmation         *ConfirmationPayload `json:"confirmation,omitempty"`

	Error *ErrorRecord `json:"error,omitempty"`

	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
}

// NewStepResult creates a StepResult for the given task.
func NewStepResult(task Task) *StepResult {
	return &StepResult{
		Capability: task.Capability,
		Ordinal:    task.Ordinal,
		StartTime:  time.Now(),
	}
}

// Succeed marks the step successful with the given output.
func (r *StepResult) Succeed(output any) *StepResult {
	r.Success = true
	r.Output = output
	r.RequiresConfirmation = false
	r.Confirmation = nil
	r.Error = nil
	return r
}

// RequireConfirmation suspends the step behind a confirmation payload.
func (r *StepResult) RequireConfirmation(payload *ConfirmationPayload) *StepResult {
	r.Success = false
	r.Output = nil
	r.RequiresConfirmation = true
	r.Confirmation = payload
	r.Error = nil
	return r
}

// Fail marks the step failed with a classified error.
func (r *StepResult) Fail(rec *ErrorRecord) *StepResult {
	r.Success = false
	r.Output = nil
	r.RequiresConfirmation = false
	r.Confirmation = nil
	r.Error = rec
	return r
}

// Finish sets EndTime and Duration.
func (r *StepResult) Finish() *StepResult {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	return r
}

// ConfirmationPayload carries a sensitive capability's proposed arguments so
// the caller can approve, edit or deny them before execution.
type ConfirmationPayload struct {
	Capability string         `json:"capability"`
	Arguments  map[string]any `json:"arguments"`
	Summary    string         `json:"summary"`
}
