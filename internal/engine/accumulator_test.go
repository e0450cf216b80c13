package engine

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"

	"yqhp/assistant-engine/internal/capability"
	"yqhp/assistant-engine/pkg/types"
)

func succeeded(task types.Task, output any) *types.StepResult {
	return types.NewStepResult(task).Succeed(output).Finish()
}

func chainedPlanOf(tasks ...types.Task) *types.ExecutionPlan {
	return &types.ExecutionPlan{
		Pattern: types.PatternSequentialChained,
		Tasks:   tasks,
	}
}

func TestAccumulatorReplacesByDefault(t *testing.T) {
	caps := capability.Builtins()
	searchTask := types.Task{Capability: "web_search", Ordinal: 0}
	queryTask := types.Task{Capability: "query_model", Ordinal: 1}
	plan := chainedPlanOf(searchTask, queryTask)

	acc := NewAccumulator("", plan, caps)
	acc.Update(searchTask, succeeded(searchTask, "first finding about the topic"))
	assert.Equal(t, "first finding about the topic", acc.Carried())

	acc.Update(queryTask, succeeded(queryTask, "a refined summary of the finding"))
	assert.Equal(t, "a refined summary of the finding", acc.Carried())
}

func TestAccumulatorDiscardsUselessOutput(t *testing.T) {
	caps := capability.Builtins()
	task := types.Task{Capability: "web_search", Ordinal: 0}
	plan := chainedPlanOf(task)

	for _, output := range []any{"", "ok", "done!", "{}", nil, "     "} {
		acc := NewAccumulator("previous context", plan, caps)
		acc.Update(task, succeeded(task, output))
		assert.Equal(t, "previous context", acc.Carried(), "output %v must not update context", output)
	}
}

func TestAccumulatorSkipsFailuresAndDuplicates(t *testing.T) {
	caps := capability.Builtins()
	task := types.Task{Capability: "web_search", Ordinal: 0}
	plan := chainedPlanOf(task)

	acc := NewAccumulator("previous context", plan, caps)

	failed := types.NewStepResult(task).Fail(types.NewErrorRecord(types.ErrNetwork, "x", "y")).Finish()
	acc.Update(task, failed)
	assert.Equal(t, "previous context", acc.Carried())

	dup := succeeded(task, "a long duplicate output that would otherwise replace")
	dup.Duplicate = true
	acc.Update(task, dup)
	assert.Equal(t, "previous context", acc.Carried())
}

func TestAccumulatorAggregatesRepeatedProducersFeedingCommunication(t *testing.T) {
	caps := capability.Builtins()
	search0 := types.Task{Capability: "web_search", Ordinal: 0}
	search1 := types.Task{Capability: "web_search", Ordinal: 1}
	send := types.Task{Capability: "send_message", Ordinal: 2}
	plan := chainedPlanOf(search0, search1, send)

	acc := NewAccumulator("", plan, caps)
	acc.Update(search0, succeeded(search0, "weather in Paris: sunny"))
	acc.Update(search1, succeeded(search1, "weather in Lyon: raining"))

	carried := acc.Carried()
	assert.Contains(t, carried, "weather in Paris: sunny")
	assert.Contains(t, carried, "weather in Lyon: raining")
}

func TestAccumulatorCommunicationConsumesWithoutOverwriting(t *testing.T) {
	caps := capability.Builtins()
	search := types.Task{Capability: "web_search", Ordinal: 0}
	send := types.Task{Capability: "send_message", Ordinal: 1}
	query := types.Task{Capability: "query_model", Ordinal: 2}
	plan := chainedPlanOf(search, send, query)

	acc := NewAccumulator("", plan, caps)
	acc.Update(search, succeeded(search, "the gathered data to send"))
	acc.Update(send, succeeded(send, "message delivered to Alice successfully"))

	// The delivery receipt must not replace the gathered data.
	assert.Equal(t, "the gathered data to send", acc.Carried())
}

func TestOutputTextProbesStructuredOutputs(t *testing.T) {
	cases := []struct {
		name   string
		output any
		want   string
	}{
		{"plain string", "hello world", "hello world"},
		{"bytes", []byte("raw bytes"), "raw bytes"},
		{"text field", map[string]any{"text": "from text field", "id": 9}, "from text field"},
		{"content field", map[string]any{"content": "from content"}, "from content"},
		{"message field", map[string]any{"message": "from message"}, "from message"},
		{"nil", nil, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, OutputText(tc.output))
		})
	}

	// A structure without a designated text field is stringified.
	got := OutputText(map[string]any{"event_id": "evt-1"})
	assert.Contains(t, got, "evt-1")
}

// TestAccumulatorShortOutputProperty checks that no output at or below the
// usefulness threshold ever changes the carried context, regardless of
// content.
func TestAccumulatorShortOutputProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)
	caps := capability.Builtins()
	task := types.Task{Capability: "web_search", Ordinal: 0}
	plan := chainedPlanOf(task)

	properties.Property("short outputs never update context", prop.ForAll(
		func(output, initial string) bool {
			if len(output) > minUsefulOutput {
				return true
			}
			acc := NewAccumulator(initial, plan, caps)
			acc.Update(task, succeeded(task, output))
			return acc.Carried() == initial
		},
		gen.AlphaString(),
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
