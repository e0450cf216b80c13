package engine

import (
	"fmt"
	"strings"

	"yqhp/assistant-engine/internal/capability"
	"yqhp/assistant-engine/pkg/types"
)

// classifyRule maps raw-message substrings to an error category.
type classifyRule struct {
	category  types.ErrorCategory
	patterns  []string
	detail    string
	retryable bool
}

// classifyRules are evaluated in order; the first matching rule wins. Order
// matters: an "unauthorized" message must not fall through to the generic
// invalid-format bucket.
var classifyRules = []classifyRule{
	{
		category:  types.ErrNetwork,
		patterns:  []string{"network", "connection refused", "connection reset", "dial tcp", "dns", "no route to host"},
		detail:    "Could not reach the service. Check the network connection and try again.",
		retryable: true,
	},
	{
		category:  types.ErrAuthentication,
		patterns:  []string{"unauthorized", "authentication", "credential", "token expired", "api key", "401"},
		detail:    "Authentication failed. Sign in again before retrying.",
		retryable: false,
	},
	{
		category:  types.ErrPermission,
		patterns:  []string{"permission", "forbidden", "access denied", "not allowed", "403"},
		detail:    "The platform denied this action. Grant the assistant access and try again.",
		retryable: false,
	},
	{
		category:  types.ErrMissingParameter,
		patterns:  []string{"missing", "required"},
		detail:    "Some required information was missing from the request.",
		retryable: false,
	},
	{
		category:  types.ErrInvalidFormat,
		patterns:  []string{"invalid", "malformed", "parse error", "bad format", "unparseable"},
		detail:    "Part of the request was in a format the service could not understand.",
		retryable: false,
	},
	{
		category:  types.ErrNotFound,
		patterns:  []string{"not found", "no such", "does not exist", "unknown capability", "404"},
		detail:    "The requested item could not be found.",
		retryable: false,
	},
	{
		category:  types.ErrServiceUnavailable,
		patterns:  []string{"unavailable", "timeout", "timed out", "deadline exceeded", "overloaded", "503"},
		detail:    "The service is temporarily unavailable. Try again in a moment.",
		retryable: true,
	},
}

// Classifier normalizes raw capability failures into the stable taxonomy,
// with per-capability refinement of the user-facing detail.
type Classifier struct {
	caps *capability.Registry
}

// NewClassifier creates a Classifier over the capability table.
func NewClassifier(caps *capability.Registry) *Classifier {
	return &Classifier{caps: caps}
}

// Classify maps a raw failure message to an ErrorRecord.
func (c *Classifier) Classify(capabilityName, raw string, args map[string]any) *types.ErrorRecord {
	lower := strings.ToLower(raw)

	for _, rule := range classifyRules {
		for _, p := range rule.patterns {
			if strings.Contains(lower, p) {
				rec := types.NewErrorRecord(rule.category, raw, rule.detail)
				rec.Retryable = rule.retryable
				return c.refine(capabilityName, rec, args)
			}
		}
	}

	detail := fmt.Sprintf("Something went wrong while running %s. Try again.", humanName(capabilityName))
	return types.NewErrorRecord(types.ErrExecution, raw, detail)
}

// MissingParameter builds the fail-fast record for absent required fields,
// used by the confirmation gate before any invocation happens.
func (c *Classifier) MissingParameter(capabilityName string, missing []string) *types.ErrorRecord {
	detail := missingFieldDetail(capabilityName, missing)
	rec := types.NewErrorRecord(types.ErrMissingParameter, "missing required fields", detail)
	return rec.WithMissingFields(missing...).NotRetryable()
}

// refine sharpens the generic detail using the capability's declared
// required fields, so a messaging failure says exactly which field to ask
// the user for.
func (c *Classifier) refine(capabilityName string, rec *types.ErrorRecord, args map[string]any) *types.ErrorRecord {
	if rec.Category != types.ErrMissingParameter {
		return rec
	}

	desc := c.caps.Get(capabilityName)
	if desc == nil {
		return rec
	}
	missing := desc.MissingFields(args)
	if len(missing) == 0 {
		return rec
	}
	rec.Detail = missingFieldDetail(capabilityName, missing)
	return rec.WithMissingFields(missing...)
}

// missingFieldDetail renders a prompt-ready description of what is missing.
func missingFieldDetail(capabilityName string, missing []string) string {
	if capabilityName == "send_message" {
		for _, f := range missing {
			switch f {
			case "recipient":
				return "Who should receive the message?"
			case "body":
				return "What should the message say?"
			}
		}
	}
	return fmt.Sprintf("Cannot %s without: %s.", humanName(capabilityName), strings.Join(missing, ", "))
}

func humanName(capabilityName string) string {
	return strings.ReplaceAll(capabilityName, "_", " ")
}
