// Package task defines the core domain types for Sovereign: tasks, execution
// plans, results, and the user profile that grounds plan generation.
package task

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle position of a task.
type Status string

const (
	StatusAnalyzing        Status = "ANALYZING"
	StatusApprovalRequired Status = "APPROVAL_REQUIRED"
	StatusExecuting        Status = "EXECUTING"
	StatusCompleted        Status = "COMPLETED"
	StatusFailed           Status = "FAILED"
)

// Terminal reports whether no further transitions are possible from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// RiskLevel classifies the potential consequences of a plan. It sizes the
// approval friction shown to the user before execution.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// ParseRiskLevel normalizes a model-produced risk string ("low", "Medium",
// "HIGH") into the canonical representation. Returns false for vocabulary
// outside {low, medium, high}.
func ParseRiskLevel(s string) (RiskLevel, bool) {
	switch s {
	case "low", "Low", "LOW":
		return RiskLow, true
	case "medium", "Medium", "MEDIUM":
		return RiskMedium, true
	case "high", "High", "HIGH":
		return RiskHigh, true
	}
	return "", false
}

// StepStatus tracks fine-grained execution progress of a single step.
// The planner only ever produces "pending"; the remaining values are reserved
// for per-step execution tracking.
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepRunning   StepStatus = "running"
	StepCompleted StepStatus = "completed"
	StepFailed    StepStatus = "failed"
)

// ExecutionStep is a single entry in a plan's ordered step sequence.
type ExecutionStep struct {
	ID          string         `json:"id"`
	Description string         `json:"description"`
	Tool        string         `json:"tool,omitempty"`
	Params      map[string]any `json:"params,omitempty"`
	Status      StepStatus     `json:"status"`
}

// ExecutionPlan is the structured, risk-rated output of the planning phase.
// Immutable once generated; only the risk level is coerced post-parse.
type ExecutionPlan struct {
	Title         string          `json:"title"`
	Intent        string          `json:"intent"`
	Reasoning     string          `json:"reasoning"`
	Steps         []ExecutionStep `json:"steps"`
	RiskLevel     RiskLevel       `json:"riskLevel"`
	EstimatedCost string          `json:"estimatedCost,omitempty"`
	RequiredTools []string        `json:"requiredTools"`
}

// FirstPending returns the first step still marked pending, or nil when every
// step has been resolved.
func (p *ExecutionPlan) FirstPending() *ExecutionStep {
	for i := range p.Steps {
		if p.Steps[i].Status == StepPending {
			return &p.Steps[i]
		}
	}
	return nil
}

// Result is the outcome of one execution cycle, attached to a task only on
// success.
type Result struct {
	Summary      string    `json:"summary"`
	Artifacts    []string  `json:"artifacts,omitempty"`
	CostIncurred string    `json:"costIncurred,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// UserProfile is the free-text grounding injected into every planning prompt.
type UserProfile struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Context string `json:"context"`
}

// Task is the unit of work driven through the orchestration state machine.
// Created on submission, mutated only through defined transitions, removed on
// rejection or retry-replacement.
type Task struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId,omitempty"`
	RawInput  string         `json:"rawInput"`
	Status    Status         `json:"status"`
	Plan      *ExecutionPlan `json:"plan,omitempty"`
	Result    *Result        `json:"result,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// New creates a task in the ANALYZING state with a fresh identity.
func New(userID, rawInput string) *Task {
	return &Task{
		ID:        uuid.New().String(),
		UserID:    userID,
		RawInput:  rawInput,
		Status:    StatusAnalyzing,
		CreatedAt: time.Now(),
	}
}
