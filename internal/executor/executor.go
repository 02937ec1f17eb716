// Package executor resolves approved execution plans through the reasoning
// gateway. The agent narrates the outcome of the first step still marked
// pending; tool schemas from the registry are attached so the backend can
// reason in terms of concrete capabilities.
package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sovereignhq/sovereign/internal/llm"
	"github.com/sovereignhq/sovereign/internal/task"
	"github.com/sovereignhq/sovereign/internal/tools"
)

// Default model identifiers for the execution phase.
const (
	DefaultPrimaryModel  = "gemini-2.5-flash"
	DefaultFallbackModel = "gemini-2.5-flash"
)

const systemInstruction = "You are an execution agent."

// ExecutionError marks an irrecoverable execution failure after both models
// have been exhausted.
type ExecutionError struct {
	Err error
}

func (e *ExecutionError) Error() string { return fmt.Sprintf("execution failed: %v", e.Err) }
func (e *ExecutionError) Unwrap() error { return e.Err }

// Agent executes approved plans.
type Agent struct {
	gw       llm.Gateway
	registry *tools.Registry
	primary  string
	fallback string
	log      zerolog.Logger
	now      func() time.Time
}

// Option configures the Agent.
type Option func(*Agent)

// WithModels overrides the primary and fallback model identifiers.
func WithModels(primary, fallback string) Option {
	return func(a *Agent) {
		a.primary = primary
		a.fallback = fallback
	}
}

// WithLogger attaches a logger.
func WithLogger(log zerolog.Logger) Option {
	return func(a *Agent) { a.log = log }
}

// NewAgent creates an execution agent over the given gateway and registry.
func NewAgent(gw llm.Gateway, registry *tools.Registry, opts ...Option) *Agent {
	a := &Agent{
		gw:       gw,
		registry: registry,
		primary:  DefaultPrimaryModel,
		fallback: DefaultFallbackModel,
		log:      zerolog.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// resultWire is the untrusted shape decoded from model output.
type resultWire struct {
	Summary      *string  `json:"summary"`
	CostIncurred string   `json:"costIncurred"`
	Artifacts    []string `json:"artifacts"`
}

func (w *resultWire) validate() error {
	if w.Summary == nil || *w.Summary == "" {
		return llm.ValidationErr("missing field summary")
	}
	return nil
}

// Execute resolves the first pending step of the plan and returns the
// narrated result. Wallet state is untouched here; applying any cost
// deduction is the orchestrator's responsibility.
func (a *Agent) Execute(ctx context.Context, plan *task.ExecutionPlan) (*task.Result, error) {
	step := plan.FirstPending()
	if step == nil {
		return nil, &ExecutionError{Err: fmt.Errorf("plan %q has no pending step", plan.Title)}
	}

	prompt, err := buildPrompt(plan, step)
	if err != nil {
		return nil, &ExecutionError{Err: err}
	}

	req := &llm.GenerateRequest{
		Model:             a.primary,
		SystemInstruction: systemInstruction,
		Prompt:            prompt,
		Tools:             a.registry.Schemas(),
		GenerationConfig: &llm.GenerationConfig{
			ResponseMIMEType: "application/json",
		},
	}

	var wire resultWire
	err = llm.GenerateValidated(ctx, a.gw, req, a.fallback, func(clean string) error {
		wire = resultWire{}
		if err := json.Unmarshal([]byte(clean), &wire); err != nil {
			return llm.ParseErr(err)
		}
		return wire.validate()
	})
	if err != nil {
		a.log.Warn().Err(err).Str("plan", plan.Title).Msg("execution failed")
		return nil, &ExecutionError{Err: err}
	}

	result := &task.Result{
		Summary:      *wire.Summary,
		Artifacts:    wire.Artifacts,
		CostIncurred: wire.CostIncurred,
		Timestamp:    a.now(),
	}

	a.log.Info().
		Str("plan", plan.Title).
		Str("cost", result.CostIncurred).
		Msg("execution complete")
	return result, nil
}

// buildPrompt serializes the full plan and names the pending step the
// backend is expected to resolve.
func buildPrompt(plan *task.ExecutionPlan, step *task.ExecutionStep) (string, error) {
	planJSON, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal plan: %w", err)
	}

	return fmt.Sprintf(`EXECUTE THIS PLAN:
%s

Provide the result of the first PENDING step (%s: %s).
If a tool is needed, specify the tool call parameters.
RETURN ONLY JSON with:
summary: string
costIncurred: string (optional)
artifacts: array of strings (optional)
`, planJSON, step.ID, step.Description), nil
}
