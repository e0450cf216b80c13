package capability

import "context"

// Result is the normalized outcome of one capability invocation. Error is a
// plain message string; adapters never let backend failures escape as
// untyped errors.
type Result struct {
	Success bool   `json:"success"`
	Output  any    `json:"output,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Invoker is the uniform call boundary to the external automation surface.
// Implementations own their per-call timeout.
type Invoker interface {
	// Invoke runs the named capability. A non-nil error means the adapter
	// itself failed (transport, marshalling); a capability-level failure
	// is reported through Result.Error with a nil error.
	Invoke(ctx context.Context, capability string, args map[string]any) (*Result, error)
}

// Failure builds a failed Result from a message.
func Failure(message string) *Result {
	return &Result{Success: false, Error: message}
}

// Successful builds a successful Result carrying output.
func Successful(output any) *Result {
	return &Result{Success: true, Output: output}
}
