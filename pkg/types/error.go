package types

import "fmt"

// ErrorCategory is the stable failure taxonomy exposed to callers.
type ErrorCategory string

const (
	// ErrNetwork indicates a connectivity failure.
	ErrNetwork ErrorCategory = "network_error"
	// ErrAuthentication indicates missing or rejected credentials.
	ErrAuthentication ErrorCategory = "authentication_error"
	// ErrPermission indicates the action was denied by the platform.
	ErrPermission ErrorCategory = "permission_error"
	// ErrMissingParameter indicates a required argument was absent.
	ErrMissingParameter ErrorCategory = "missing_parameter"
	// ErrInvalidFormat indicates a malformed argument value.
	ErrInvalidFormat ErrorCategory = "invalid_format"
	// ErrNotFound indicates the referenced resource does not exist.
	ErrNotFound ErrorCategory = "not_found"
	// ErrServiceUnavailable indicates the capability backend timed out
	// or is temporarily down.
	ErrServiceUnavailable ErrorCategory = "service_unavailable"
	// ErrExecution is the fallback category.
	ErrExecution ErrorCategory = "execution_error"
)

// ErrorRecord is a classified failure attached to a StepResult. Detail is
// always human-actionable; Raw keeps the original message for logs.
type ErrorRecord struct {
	Category      ErrorCategory `json:"category"`
	Raw           string        `json:"raw_message"`
	Detail        string        `json:"detail"`
	MissingFields []string      `json:"missing_fields,omitempty"`
	Retryable     bool          `json:"retryable"`
}

// Error implements the error interface.
func (e *ErrorRecord) Error() string {
	return fmt.Sprintf("[%s] %s", e.Category, e.Detail)
}

// NewErrorRecord creates a record with the given category and detail.
// Retryable defaults to true; categories that cannot succeed on retry
// override it at classification time.
func NewErrorRecord(category ErrorCategory, raw, detail string) *ErrorRecord {
	return &ErrorRecord{
		Category:  category,
		Raw:       raw,
		Detail:    detail,
		Retryable: true,
	}
}

// WithMissingFields attaches the list of absent required fields.
func (e *ErrorRecord) WithMissingFields(fields ...string) *ErrorRecord {
	e.MissingFields = fields
	return e
}

// NotRetryable marks the record as not worth retrying unchanged.
func (e *ErrorRecord) NotRetryable() *ErrorRecord {
	e.Retryable = false
	return e
}
