// Package planner turns raw natural-language requests into structured,
// risk-rated execution plans. The reasoning backend is untrusted-input
// handling: it is free-text generation and may violate the contract, so
// schema validation here is the safety boundary that keeps malformed plans
// out of the approval and execution pipeline.
package planner

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sovereignhq/sovereign/internal/llm"
	"github.com/sovereignhq/sovereign/internal/task"
)

// Default model identifiers for the planning phase.
const (
	DefaultPrimaryModel  = "gemini-2.5-flash"
	DefaultFallbackModel = "gemini-2.5-flash"
)

const systemInstruction = "You are a planning agent. Return a valid JSON object with: " +
	"title (string), intent (string), reasoning (string), riskLevel (low/medium/high), " +
	"requiredTools (array of strings), steps (array of objects with id, description, tool, status='pending')."

// PlanningError marks an irrecoverable planning failure after both models
// have been exhausted.
type PlanningError struct {
	Err error
}

func (e *PlanningError) Error() string { return fmt.Sprintf("planning failed: %v", e.Err) }
func (e *PlanningError) Unwrap() error { return e.Err }

// Generator produces execution plans through the reasoning gateway.
type Generator struct {
	gw       llm.Gateway
	primary  string
	fallback string
	log      zerolog.Logger
}

// Option configures the Generator.
type Option func(*Generator)

// WithModels overrides the primary and fallback model identifiers.
func WithModels(primary, fallback string) Option {
	return func(g *Generator) {
		g.primary = primary
		g.fallback = fallback
	}
}

// WithLogger attaches a logger.
func WithLogger(log zerolog.Logger) Option {
	return func(g *Generator) { g.log = log }
}

// NewGenerator creates a plan generator over the given gateway.
func NewGenerator(gw llm.Gateway, opts ...Option) *Generator {
	g := &Generator{
		gw:       gw,
		primary:  DefaultPrimaryModel,
		fallback: DefaultFallbackModel,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// CreatePlan requests, validates, and normalizes an execution plan for the
// given user input. Any failure on the primary model (transport, parse,
// validation) triggers one attempt against the fallback model; if both fail
// the last error propagates wrapped in a PlanningError.
func (g *Generator) CreatePlan(ctx context.Context, rawInput string, profile task.UserProfile) (*task.ExecutionPlan, error) {
	prompt := buildPrompt(rawInput, profile)

	req := &llm.GenerateRequest{
		Model:             g.primary,
		SystemInstruction: systemInstruction,
		Prompt:            prompt,
		GenerationConfig: &llm.GenerationConfig{
			ResponseMIMEType: "application/json",
		},
	}

	var wire planWire
	err := llm.GenerateValidated(ctx, g.gw, req, g.fallback, func(clean string) error {
		wire = planWire{}
		if err := json.Unmarshal([]byte(clean), &wire); err != nil {
			return llm.ParseErr(err)
		}
		return wire.validate()
	})
	if err != nil {
		g.log.Warn().Err(err).Msg("plan generation failed")
		return nil, &PlanningError{Err: err}
	}

	plan := wire.toPlan()
	g.log.Info().
		Str("title", plan.Title).
		Str("risk", string(plan.RiskLevel)).
		Int("steps", len(plan.Steps)).
		Msg("plan generated")
	return plan, nil
}

// buildPrompt composes the deterministic planning prompt: the verbatim user
// request plus the serialized profile as contextual grounding.
func buildPrompt(rawInput string, profile task.UserProfile) string {
	profileJSON, _ := json.Marshal(profile)
	return fmt.Sprintf(`USER REQUEST: %q
USER CONTEXT: %s

Based on the available tools, create a step-by-step execution plan.
Title: Short title
Intent: What the user wants
Reasoning: Why this plan
RiskLevel: low/medium/high
Steps: Array of steps (id, description, tool, params, status='pending')
RequiredTools: Array of tool names

RETURN ONLY JSON.
`, rawInput, profileJSON)
}
