package types

// PlanPattern identifies the execution strategy declared by the planner.
type PlanPattern string

const (
	// PatternSingle executes exactly one task.
	PatternSingle PlanPattern = "single"
	// PatternParallel executes independent tasks concurrently.
	PatternParallel PlanPattern = "parallel"
	// PatternSequentialChained executes tasks in order, carrying context.
	PatternSequentialChained PlanPattern = "sequential_chained"
	// PatternConditional evaluates a condition and runs one branch.
	PatternConditional PlanPattern = "conditional"
)

// Task is one unit of work inside an execution plan. Tasks are produced by
// the planner and are immutable once created.
type Task struct {
	// Capability is the name of the external capability to invoke.
	Capability string `json:"capability"`

	// Ordinal is the zero-based position of the task in the plan.
	Ordinal int `json:"ordinal"`

	// Utterance is the natural-language slice of the original request
	// that this task is responsible for.
	Utterance string `json:"utterance"`
}

// ConditionalSpec describes the condition/then/else structure carried by a
// conditional plan instead of a flat task list.
type ConditionalSpec struct {
	// Condition is the natural-language condition judged by the oracle.
	Condition string `json:"condition"`

	// ConditionTasks produce the data the condition is judged against.
	ConditionTasks []Task `json:"condition_tasks"`

	// Then runs when the condition evaluates true.
	Then []Task `json:"then"`

	// Else runs when the condition evaluates false. Optional.
	Else []Task `json:"else,omitempty"`
}

// ExecutionPlan is the structured output of the planner, consumed exactly
// once by the engine.
type ExecutionPlan struct {
	Pattern     PlanPattern      `json:"pattern,omitempty"`
	Tasks       []Task           `json:"tasks"`
	RequestText string           `json:"request_text"`
	Conditional *ConditionalSpec `json:"conditional,omitempty"`
}

// TaskCount returns the number of flat tasks in the plan.
func (p *ExecutionPlan) TaskCount() int {
	return len(p.Tasks)
}

// AllTasks returns every task the plan can execute, including the tasks
// nested inside a conditional spec.
func (p *ExecutionPlan) AllTasks() []Task {
	if p.Conditional == nil {
		return p.Tasks
	}
	all := make([]Task, 0, len(p.Tasks)+len(p.Conditional.ConditionTasks)+len(p.Conditional.Then)+len(p.Conditional.Else))
	all = append(all, p.Tasks...)
	all = append(all, p.Conditional.ConditionTasks...)
	all = append(all, p.Conditional.Then...)
	all = append(all, p.Conditional.Else...)
	return all
}

// CapabilityCount returns how many tasks in the plan target the given
// capability. Used to decide whether per-task segmentation is needed.
func (p *ExecutionPlan) CapabilityCount(capability string) int {
	n := 0
	for _, t := range p.Tasks {
		if t.Capability == capability {
			n++
		}
	}
	return n
}
