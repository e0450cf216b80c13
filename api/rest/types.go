package rest

import "yqhp/assistant-engine/pkg/types"

// ExecuteRequest asks the assistant to plan and run one request text.
type ExecuteRequest struct {
	// SessionID groups requests into one conversation; generated when
	// absent.
	SessionID string `json:"session_id"`

	// Text is the user's natural-language request.
	Text string `json:"text"`

	// Plan optionally bypasses the planner: when set, the engine runs this
	// plan as-is. Used by callers that plan client-side.
	Plan *types.ExecutionPlan `json:"plan,omitempty"`
}

// ExecuteResponse returns the per-task results of one execution.
type ExecuteResponse struct {
	SessionID string              `json:"session_id"`
	Pattern   types.PlanPattern   `json:"pattern"`
	Results   []*types.StepResult `json:"results"`
}

// ConfirmRequest settles one pending confirmation.
type ConfirmRequest struct {
	SessionID    string                     `json:"session_id"`
	Approved     bool                       `json:"approved"`
	Confirmation *types.ConfirmationPayload `json:"confirmation"`
}

// ConfirmResponse returns the result of the resumed step.
type ConfirmResponse struct {
	SessionID string            `json:"session_id"`
	Result    *types.StepResult `json:"result"`
}

// CapabilityInfo describes one entry of the capability table.
type CapabilityInfo struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Communication bool     `json:"communication"`
	Required      []string `json:"required,omitempty"`
}

// StatsResponse exposes engine runtime statistics.
type StatsResponse struct {
	ActiveSessions int            `json:"active_sessions"`
	Latency        map[string]any `json:"latency"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
