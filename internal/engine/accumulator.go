package engine

import (
	"strings"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"yqhp/assistant-engine/internal/capability"
	"yqhp/assistant-engine/pkg/types"
)

const (
	// minUsefulOutput is the usefulness threshold: trimmed outputs at or
	// below this length never update the carried context.
	minUsefulOutput = 5

	// emptyStructMarker is the stringified form of an empty structured
	// result.
	emptyStructMarker = "{}"
)

// textPaths are probed in order against structured outputs to find their
// designated text field.
var textPaths = []jp.Expr{
	mustPath("$.text"),
	mustPath("$.content"),
	mustPath("$.message"),
	mustPath("$.summary"),
	mustPath("$.result"),
}

func mustPath(s string) jp.Expr {
	expr, err := jp.ParseString(s)
	if err != nil {
		panic(err)
	}
	return expr
}

// Accumulator merges step outputs into the carried context of one plan
// execution. Not safe for concurrent use; only the sequential strategies
// carry context.
type Accumulator struct {
	carried string
	plan    *types.ExecutionPlan
	caps    *capability.Registry
}

// NewAccumulator creates an Accumulator starting from initial context.
func NewAccumulator(initial string, plan *types.ExecutionPlan, caps *capability.Registry) *Accumulator {
	return &Accumulator{carried: initial, plan: plan, caps: caps}
}

// Carried returns the current carried context.
func (a *Accumulator) Carried() string {
	return a.carried
}

// Update applies the merge rules for one successful step:
//
//  1. outputs at or below the usefulness threshold are discarded;
//  2. repeated producer steps whose data feeds a later communication task
//     append (aggregation);
//  3. communication steps consume context, they never overwrite it;
//  4. everything else replaces.
func (a *Accumulator) Update(task types.Task, result *types.StepResult) {
	if !result.Success || result.Duplicate {
		return
	}

	text := strings.TrimSpace(OutputText(result.Output))
	if len(text) <= minUsefulOutput || text == emptyStructMarker {
		return
	}

	isComm := a.caps.IsCommunication(task.Capability)

	if !isComm && a.carried != "" &&
		a.plan.CapabilityCount(task.Capability) > 1 &&
		a.hasLaterCommunicationTask(task.Ordinal) {
		a.carried = a.carried + "\n\n" + text
		return
	}

	if isComm && a.carried != "" {
		return
	}

	a.carried = text
}

// hasLaterCommunicationTask reports whether a communication-class task
// follows the given ordinal in the plan.
func (a *Accumulator) hasLaterCommunicationTask(ordinal int) bool {
	for _, t := range a.plan.Tasks {
		if t.Ordinal > ordinal && a.caps.IsCommunication(t.Capability) {
			return true
		}
	}
	return false
}

// OutputText extracts the textual form of a step output: strings pass
// through, structured results are probed for their designated text field,
// anything else is stringified.
func OutputText(output any) string {
	switch v := output.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	}

	for _, path := range textPaths {
		if hits := path.Get(output); len(hits) > 0 {
			if s, ok := hits[0].(string); ok && s != "" {
				return s
			}
		}
	}

	return oj.JSON(output)
}
