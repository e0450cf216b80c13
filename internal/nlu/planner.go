package nlu

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"

	"yqhp/assistant-engine/internal/capability"
	"yqhp/assistant-engine/pkg/logger"
	"yqhp/assistant-engine/pkg/types"
)

// Planner turns a natural-language request into an ExecutionPlan.
type Planner struct {
	model model.ChatModel
	caps  *capability.Registry
	log   *logger.Component
}

// NewPlanner creates a Planner over the capability table.
func NewPlanner(m model.ChatModel, caps *capability.Registry) *Planner {
	return &Planner{model: m, caps: caps, log: logger.WithComponent("planner")}
}

// plannedTask 规划器输出中的单个任务
type plannedTask struct {
	Capability string `json:"capability"`
	Utterance  string `json:"utterance"`
}

type plannedConditional struct {
	Condition      string        `json:"condition"`
	ConditionTasks []plannedTask `json:"condition_tasks"`
	Then           []plannedTask `json:"then"`
	Else           []plannedTask `json:"else"`
}

type plannedOutput struct {
	Pattern     string              `json:"pattern"`
	Tasks       []plannedTask       `json:"tasks"`
	Conditional *plannedConditional `json:"conditional"`
}

// Plan produces the ExecutionPlan for one request.
func (p *Planner) Plan(ctx context.Context, requestText string) (*types.ExecutionPlan, error) {
	system := fmt.Sprintf(plannerSystemPrompt, p.capabilityList())
	content, err := generate(ctx, p.model, system, requestText)
	if err != nil {
		return nil, fmt.Errorf("planner model call: %w", err)
	}

	parsed, err := parsePlannedOutput(content)
	if err != nil {
		return nil, fmt.Errorf("planner output: %w", err)
	}

	plan := &types.ExecutionPlan{
		Pattern:     types.PlanPattern(parsed.Pattern),
		RequestText: requestText,
		Tasks:       toTasks(parsed.Tasks, 0),
	}
	if parsed.Conditional != nil {
		plan.Conditional = &types.ConditionalSpec{
			Condition:      parsed.Conditional.Condition,
			ConditionTasks: toTasks(parsed.Conditional.ConditionTasks, 0),
			Then:           toTasks(parsed.Conditional.Then, len(parsed.Conditional.ConditionTasks)+1),
			Else:           toTasks(parsed.Conditional.Else, len(parsed.Conditional.ConditionTasks)+1),
		}
	}

	if err := p.validate(plan); err != nil {
		return nil, err
	}

	p.log.Debug("planned pattern=%s tasks=%d", plan.Pattern, plan.TaskCount())
	return plan, nil
}

// capabilityList renders the capability table for the planner prompt.
func (p *Planner) capabilityList() string {
	var sb strings.Builder
	for _, name := range p.caps.Names() {
		desc := p.caps.Get(name)
		sb.WriteString(fmt.Sprintf("- %s: %s\n", name, desc.Description))
	}
	return sb.String()
}

// validate rejects plans the engine cannot run.
func (p *Planner) validate(plan *types.ExecutionPlan) error {
	switch plan.Pattern {
	case types.PatternSingle, types.PatternParallel, types.PatternSequentialChained:
		if plan.TaskCount() == 0 {
			return fmt.Errorf("plan with pattern %s has no tasks", plan.Pattern)
		}
	case types.PatternConditional:
		if plan.Conditional == nil || plan.Conditional.Condition == "" {
			return fmt.Errorf("conditional plan without a condition")
		}
	default:
		return fmt.Errorf("unknown plan pattern: %q", plan.Pattern)
	}

	for _, t := range plan.AllTasks() {
		if !p.caps.Has(t.Capability) {
			return fmt.Errorf("plan references unknown capability: %s", t.Capability)
		}
	}
	return nil
}

func toTasks(in []plannedTask, ordinalOffset int) []types.Task {
	out := make([]types.Task, 0, len(in))
	for i, t := range in {
		out = append(out, types.Task{
			Capability: t.Capability,
			Ordinal:    ordinalOffset + i,
			Utterance:  strings.TrimSpace(t.Utterance),
		})
	}
	return out
}

// parsePlannedOutput 解析 LLM 输出的计划 JSON（可能被 markdown 代码块包裹）
func parsePlannedOutput(content string) (*plannedOutput, error) {
	content = strings.TrimSpace(content)

	if idx := strings.Index(content, "{"); idx >= 0 {
		if endIdx := strings.LastIndex(content, "}"); endIdx > idx {
			content = content[idx : endIdx+1]
		}
	}

	var out plannedOutput
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, fmt.Errorf("JSON 解析失败: %w", err)
	}
	if out.Pattern == "" {
		return nil, fmt.Errorf("计划缺少 pattern 字段")
	}
	return &out, nil
}
