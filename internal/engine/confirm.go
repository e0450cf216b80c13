package engine

import (
	"fmt"

	"yqhp/assistant-engine/internal/capability"
	"yqhp/assistant-engine/internal/session"
	"yqhp/assistant-engine/pkg/types"
)

// GateOutcome is the result of passing a task through the confirmation gate.
// Exactly one of Proceed, Payload, AlreadyGated or Err describes what to do.
type GateOutcome struct {
	// Proceed means the capability is not communication-class and may be
	// invoked directly.
	Proceed bool

	// Payload is the confirmation to surface, nil if none.
	Payload *types.ConfirmationPayload

	// AlreadyGated means this (capability, step) key has already produced
	// a confirmation in the session; no new payload is emitted.
	AlreadyGated bool

	// Err is the fail-fast missing-parameter record.
	Err *types.ErrorRecord
}

// Gate intercepts communication-class capabilities and turns their
// invocation into a confirmation payload, at most once per
// (capability, step) key within a session.
type Gate struct {
	caps       *capability.Registry
	sessions   *session.Store
	classifier *Classifier
}

// NewGate creates a confirmation gate.
func NewGate(caps *capability.Registry, sessions *session.Store, classifier *Classifier) *Gate {
	return &Gate{caps: caps, sessions: sessions, classifier: classifier}
}

// Check validates and gates one proposed invocation. Missing required
// arguments fail fast: an incomplete confirmation is never shown.
func (g *Gate) Check(sessionID, capabilityName string, ordinal int, args map[string]any) GateOutcome {
	desc := g.caps.Get(capabilityName)
	if desc == nil || !desc.Communication {
		return GateOutcome{Proceed: true}
	}

	if missing := desc.MissingFields(args); len(missing) > 0 {
		return GateOutcome{Err: g.classifier.MissingParameter(capabilityName, missing)}
	}

	key := confirmationKey(capabilityName, ordinal)
	if !g.sessions.FirstConfirmation(sessionID, key) {
		return GateOutcome{AlreadyGated: true}
	}

	return GateOutcome{Payload: &types.ConfirmationPayload{
		Capability: capabilityName,
		Arguments:  args,
		Summary:    desc.Summary(args),
	}}
}

func confirmationKey(capabilityName string, ordinal int) string {
	return fmt.Sprintf("%s#%d", capabilityName, ordinal)
}
