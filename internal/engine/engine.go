// Package engine is the task-execution orchestration core: it consumes an
// ExecutionPlan, selects an execution strategy, gates sensitive capabilities
// behind user confirmation, dedups side effects within a session, carries
// output between chained steps and normalizes every failure into the stable
// error taxonomy.
package engine

import (
	"context"
	"fmt"
	"time"

	"yqhp/assistant-engine/internal/capability"
	"yqhp/assistant-engine/internal/segment"
	"yqhp/assistant-engine/internal/session"
	"yqhp/assistant-engine/pkg/logger"
	"yqhp/assistant-engine/pkg/types"
)

// ArgumentExtractor maps a task's natural-language slice into the argument
// object for a capability. The carried context from earlier chained steps is
// provided so dependent steps can reference previous output.
type ArgumentExtractor interface {
	Extract(ctx context.Context, capabilityName, utterance, carried string) (map[string]any, error)
}

// Oracle judges a natural-language condition against gathered data and
// answers in free text; the engine interprets the answer (see decideAnswer).
type Oracle interface {
	Evaluate(ctx context.Context, condition, data string) (string, error)
}

// Options configures a new Engine. Zero-value fields get defaults.
type Options struct {
	Capabilities *capability.Registry
	Invoker      capability.Invoker
	Extractor    ArgumentExtractor
	Oracle       Oracle

	// FallbackSegmenter is consulted only when the connector grammar
	// cannot split the request confidently. Optional.
	FallbackSegmenter segment.Segmenter

	Sessions    *session.Store
	Progress    *ProgressEmitter
	MaxParallel int
}

// Engine orchestrates plan execution. Safe for concurrent use across
// sessions; per-session state lives in the session store.
type Engine struct {
	caps       *capability.Registry
	invoker    capability.Invoker
	extractor  ArgumentExtractor
	oracle     Oracle
	grammar    *segment.Grammar
	fallback   segment.Segmenter
	sessions   *session.Store
	classifier *Classifier
	gate       *Gate
	progress   *ProgressEmitter

	maxParallel int
	log         *logger.Component
}

// New creates an Engine.
func New(opts Options) *Engine {
	if opts.Capabilities == nil {
		opts.Capabilities = capability.Builtins()
	}
	if opts.Invoker == nil {
		opts.Invoker = capability.NewMemoryInvoker()
	}
	if opts.Sessions == nil {
		opts.Sessions = session.NewStore(30*time.Minute, 5*time.Minute)
	}
	if opts.Progress == nil {
		opts.Progress = NewProgressEmitter()
	}
	if opts.MaxParallel <= 0 {
		opts.MaxParallel = 4
	}

	classifier := NewClassifier(opts.Capabilities)
	return &Engine{
		caps:        opts.Capabilities,
		invoker:     opts.Invoker,
		extractor:   opts.Extractor,
		oracle:      opts.Oracle,
		grammar:     segment.NewGrammar(),
		fallback:    opts.FallbackSegmenter,
		sessions:    opts.Sessions,
		classifier:  classifier,
		gate:        NewGate(opts.Capabilities, opts.Sessions, classifier),
		progress:    opts.Progress,
		maxParallel: opts.MaxParallel,
		log:         logger.WithComponent("engine"),
	}
}

// Progress returns the engine's progress emitter.
func (e *Engine) Progress() *ProgressEmitter {
	return e.progress
}

// Capabilities returns the capability table the engine runs against.
func (e *Engine) Capabilities() *capability.Registry {
	return e.caps
}

// Run executes a plan and returns one StepResult per task, in task order.
// Run never panics and never returns an empty slice: any failure to produce
// results at all is itself returned as a one-element failure list.
func (e *Engine) Run(ctx context.Context, sessionID string, plan *types.ExecutionPlan) (results []*types.StepResult) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("recovered from panic during plan execution: %v", r)
			results = []*types.StepResult{e.engineFailure(fmt.Sprintf("panic: %v", r))}
		}
	}()

	if plan == nil {
		return []*types.StepResult{e.engineFailure("no execution plan")}
	}
	if plan.TaskCount() == 0 && plan.Conditional == nil {
		return []*types.StepResult{e.engineFailure("execution plan has no tasks")}
	}

	e.sessions.Touch(sessionID)
	e.log.Debug("running plan: pattern=%s tasks=%d", plan.Pattern, plan.TaskCount())

	switch plan.Pattern {
	case types.PatternConditional:
		return e.runConditional(ctx, sessionID, plan)
	case types.PatternSequentialChained:
		return e.runChained(ctx, sessionID, plan)
	case types.PatternParallel:
		return e.runParallel(ctx, sessionID, plan)
	case types.PatternSingle:
		if plan.TaskCount() > 1 {
			// Declared pattern does not match the data; degrade to
			// parallel rather than dropping tasks.
			e.log.Warn("single pattern with %d tasks, degrading to parallel", plan.TaskCount())
			return e.runParallel(ctx, sessionID, plan)
		}
		return e.runSingle(ctx, sessionID, plan)
	default:
		if plan.Conditional != nil {
			return e.runConditional(ctx, sessionID, plan)
		}
		if plan.TaskCount() == 1 {
			return e.runSingle(ctx, sessionID, plan)
		}
		return e.runParallel(ctx, sessionID, plan)
	}
}

// runSingle is the direct invocation path for one-task plans: no strategy
// overhead, no carried context.
func (e *Engine) runSingle(ctx context.Context, sessionID string, plan *types.ExecutionPlan) []*types.StepResult {
	task := plan.Tasks[0]
	instruction := task.Utterance
	if instruction == "" {
		instruction = plan.RequestText
	}
	return []*types.StepResult{e.executeTask(ctx, sessionID, task, instruction, "", "")}
}

// executeTask runs one task end to end: argument extraction, confirmation
// gating, dedup check, invocation and classification. It always returns a
// finished StepResult and never panics through.
func (e *Engine) executeTask(ctx context.Context, sessionID string, task types.Task, instruction, carried string, phase types.Phase) (result *types.StepResult) {
	result = types.NewStepResult(task)
	result.Phase = phase

	defer func() {
		if r := recover(); r != nil {
			e.log.Error("recovered from panic in task %s#%d: %v", task.Capability, task.Ordinal, r)
			result.Fail(e.classifier.Classify(task.Capability, fmt.Sprintf("panic: %v", r), nil))
		}
		result.Finish()
		e.emitOutcome(result)
	}()

	e.progress.Emit(types.ProgressEvent{
		Type:       types.EventTaskStarted,
		Capability: task.Capability,
		Ordinal:    task.Ordinal,
		Phase:      phase,
	})

	if !e.caps.Has(task.Capability) {
		rec := types.NewErrorRecord(types.ErrNotFound,
			fmt.Sprintf("unknown capability: %s", task.Capability),
			fmt.Sprintf("The assistant cannot %s; that capability is not available.", humanName(task.Capability)))
		return result.Fail(rec.NotRetryable())
	}

	args, err := e.extractArguments(ctx, task.Capability, instruction, carried)
	if err != nil {
		return result.Fail(e.classifier.Classify(task.Capability, err.Error(), nil))
	}

	outcome := e.gate.Check(sessionID, task.Capability, task.Ordinal, args)
	switch {
	case outcome.Err != nil:
		return result.Fail(outcome.Err)
	case outcome.AlreadyGated:
		// A confirmation for this key is already pending; do not emit
		// another payload.
		result.Success = false
		result.RequiresConfirmation = true
		return result
	case outcome.Payload != nil:
		return result.RequireConfirmation(outcome.Payload)
	}

	return e.invokeCapability(ctx, sessionID, task, args, result)
}

// invokeCapability performs the dedup check and the actual invocation.
func (e *Engine) invokeCapability(ctx context.Context, sessionID string, task types.Task, args map[string]any, result *types.StepResult) *types.StepResult {
	fingerprint := ""
	if desc := e.caps.Get(task.Capability); desc != nil {
		fingerprint = desc.Fingerprint(args)
	}

	if fingerprint != "" && e.sessions.SeenEffect(sessionID, fingerprint) {
		e.log.Debug("dedup hit for %s, skipping invocation", fingerprint)
		result.Duplicate = true
		return result.Succeed(fmt.Sprintf("Already done earlier in this session: %s", humanName(task.Capability)))
	}

	res, err := e.invoker.Invoke(ctx, task.Capability, args)
	if err != nil {
		return result.Fail(e.classifier.Classify(task.Capability, err.Error(), args))
	}
	if !res.Success {
		return result.Fail(e.classifier.Classify(task.Capability, res.Error, args))
	}

	if fingerprint != "" {
		e.sessions.RecordEffect(sessionID, fingerprint)
	}
	return result.Succeed(res.Output)
}

// extractArguments calls the external argument extractor; engines wired
// without one (tests, dry runs) fall back to passing the raw instruction.
func (e *Engine) extractArguments(ctx context.Context, capabilityName, instruction, carried string) (map[string]any, error) {
	if e.extractor == nil {
		return map[string]any{"instruction": instruction}, nil
	}
	return e.extractor.Extract(ctx, capabilityName, instruction, carried)
}

// resolveInstruction picks the natural-language slice for a parallel task:
// the planner's slice when present, per-task segmentation when several
// tasks share a capability, the whole request text otherwise.
func (e *Engine) resolveInstruction(ctx context.Context, plan *types.ExecutionPlan, index int) string {
	task := plan.Tasks[index]
	if task.Utterance != "" {
		return task.Utterance
	}

	if plan.TaskCount() > 1 && plan.CapabilityCount(task.Capability) > 1 {
		slice, err := e.grammar.Segment(ctx, plan.RequestText, plan.Tasks, index)
		if err == nil && slice != plan.RequestText {
			return slice
		}
		if e.fallback != nil {
			if slice, err := e.fallback.Segment(ctx, plan.RequestText, plan.Tasks, index); err == nil && slice != "" {
				return slice
			}
		}
	}

	return plan.RequestText
}

// emitOutcome publishes the lifecycle event for a finished result.
func (e *Engine) emitOutcome(result *types.StepResult) {
	evType := types.EventTaskSucceeded
	if !result.Success {
		evType = types.EventTaskFailed
	}
	e.progress.Emit(types.ProgressEvent{
		Type:       evType,
		Capability: result.Capability,
		Ordinal:    result.Ordinal,
		Phase:      result.Phase,
		Duration:   result.Duration,
	})
}

// engineFailure wraps a fatal orchestration failure as a one-element result.
func (e *Engine) engineFailure(raw string) *types.StepResult {
	result := types.NewStepResult(types.Task{Capability: "orchestrator"})
	rec := types.NewErrorRecord(types.ErrExecution, raw,
		"The assistant could not process this request. Try rephrasing it.")
	return result.Fail(rec.NotRetryable()).Finish()
}
