package planner

import (
	"fmt"

	"github.com/sovereignhq/sovereign/internal/llm"
	"github.com/sovereignhq/sovereign/internal/task"
)

// planWire is the untrusted shape decoded straight from model output. Every
// field is checked before it becomes a typed plan.
type planWire struct {
	Title         *string    `json:"title"`
	Intent        *string    `json:"intent"`
	Reasoning     *string    `json:"reasoning"`
	RiskLevel     *string    `json:"riskLevel"`
	RequiredTools []string   `json:"requiredTools"`
	EstimatedCost string     `json:"estimatedCost"`
	Steps         []stepWire `json:"steps"`
}

type stepWire struct {
	ID          *string        `json:"id"`
	Description *string        `json:"description"`
	Tool        string         `json:"tool"`
	Params      map[string]any `json:"params"`
	Status      string         `json:"status"`
}

// validate enforces the plan schema: field presence, enum membership, step
// shape. Unknown tool names are deliberately tolerated (they surface at
// execution time instead).
func (w *planWire) validate() error {
	if w.Title == nil || *w.Title == "" {
		return llm.ValidationErr("missing field title")
	}
	if w.Intent == nil || *w.Intent == "" {
		return llm.ValidationErr("missing field intent")
	}
	if w.Reasoning == nil {
		return llm.ValidationErr("missing field reasoning")
	}
	if w.RiskLevel == nil {
		return llm.ValidationErr("missing field riskLevel")
	}
	if _, ok := task.ParseRiskLevel(*w.RiskLevel); !ok {
		return llm.ValidationErr(fmt.Sprintf("riskLevel %q not one of low/medium/high", *w.RiskLevel))
	}
	if w.RequiredTools == nil {
		return llm.ValidationErr("missing field requiredTools")
	}
	if len(w.Steps) == 0 {
		return llm.ValidationErr("steps must be a non-empty array")
	}
	for i, s := range w.Steps {
		if s.ID == nil || *s.ID == "" {
			return llm.ValidationErr(fmt.Sprintf("step %d missing id", i))
		}
		if s.Description == nil || *s.Description == "" {
			return llm.ValidationErr(fmt.Sprintf("step %d missing description", i))
		}
		if s.Status != "" && s.Status != string(task.StepPending) {
			return llm.ValidationErr(fmt.Sprintf("step %d status %q, planner may only emit pending", i, s.Status))
		}
	}
	return nil
}

// toPlan converts validated wire data into the canonical plan, coercing the
// lowercase risk string into the typed enum.
func (w *planWire) toPlan() *task.ExecutionPlan {
	risk, _ := task.ParseRiskLevel(*w.RiskLevel)

	steps := make([]task.ExecutionStep, len(w.Steps))
	for i, s := range w.Steps {
		steps[i] = task.ExecutionStep{
			ID:          *s.ID,
			Description: *s.Description,
			Tool:        s.Tool,
			Params:      s.Params,
			Status:      task.StepPending,
		}
	}

	return &task.ExecutionPlan{
		Title:         *w.Title,
		Intent:        *w.Intent,
		Reasoning:     *w.Reasoning,
		Steps:         steps,
		RiskLevel:     risk,
		EstimatedCost: w.EstimatedCost,
		RequiredTools: w.RequiredTools,
	}
}
