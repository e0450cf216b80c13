package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"yqhp/assistant-engine/internal/capability"
	"yqhp/assistant-engine/pkg/types"
)

func TestClassifyTaxonomy(t *testing.T) {
	c := NewClassifier(capability.Builtins())

	cases := []struct {
		raw       string
		category  types.ErrorCategory
		retryable bool
	}{
		{"dial tcp 10.0.0.1:443: connection refused", types.ErrNetwork, true},
		{"network unreachable", types.ErrNetwork, true},
		{"401 Unauthorized: token expired", types.ErrAuthentication, false},
		{"invalid api key provided", types.ErrAuthentication, false},
		{"403 Forbidden: access denied by policy", types.ErrPermission, false},
		{"required field start_time is missing", types.ErrMissingParameter, false},
		{"malformed date string", types.ErrInvalidFormat, false},
		{"calendar not found", types.ErrNotFound, false},
		{"context deadline exceeded", types.ErrServiceUnavailable, true},
		{"503 service unavailable", types.ErrServiceUnavailable, true},
		{"upstream timed out", types.ErrServiceUnavailable, true},
		{"something exploded for no reason", types.ErrExecution, true},
		{"", types.ErrExecution, true},
	}

	for _, tc := range cases {
		rec := c.Classify("create_event", tc.raw, nil)
		assert.Equal(t, tc.category, rec.Category, "raw=%q", tc.raw)
		assert.Equal(t, tc.retryable, rec.Retryable, "raw=%q", tc.raw)
		assert.Equal(t, tc.raw, rec.Raw)
		assert.NotEmpty(t, rec.Detail)
	}
}

func TestClassifyRuleOrderAuthBeforeFormat(t *testing.T) {
	c := NewClassifier(capability.Builtins())

	// "invalid credentials" matches both the authentication and the
	// invalid-format vocabularies; authentication must win.
	rec := c.Classify("send_email", "invalid credentials supplied", nil)
	assert.Equal(t, types.ErrAuthentication, rec.Category)
}

func TestClassifyRefinesMissingParameterDetail(t *testing.T) {
	c := NewClassifier(capability.Builtins())

	rec := c.Classify("send_message", "missing field", map[string]any{"body": "hi"})
	assert.Equal(t, types.ErrMissingParameter, rec.Category)
	assert.Equal(t, []string{"recipient"}, rec.MissingFields)
	assert.Equal(t, "Who should receive the message?", rec.Detail)

	rec = c.Classify("send_message", "missing field", map[string]any{"recipient": "Bob"})
	assert.Equal(t, "What should the message say?", rec.Detail)
}

func TestMissingParameterRecord(t *testing.T) {
	c := NewClassifier(capability.Builtins())

	rec := c.MissingParameter("create_event", []string{"title", "start_time"})
	assert.Equal(t, types.ErrMissingParameter, rec.Category)
	assert.False(t, rec.Retryable)
	assert.Equal(t, []string{"title", "start_time"}, rec.MissingFields)
	assert.Equal(t, "Cannot create event without: title, start_time.", rec.Detail)
}

func TestFallbackDetailNamesCapability(t *testing.T) {
	c := NewClassifier(capability.Builtins())

	rec := c.Classify("read_sheet", "wat", nil)
	assert.Equal(t, types.ErrExecution, rec.Category)
	assert.Contains(t, rec.Detail, "read sheet")
}
