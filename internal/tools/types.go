// Package tools provides the capability layer for Sovereign task execution.
// Each tool is a named, schema-described capability the execution phase may
// invoke to produce a side effect. The current implementations simulate their
// external services; the contract is what any real implementation must honor.
package tools

import (
	"context"

	"github.com/sovereignhq/sovereign/internal/llm"
)

// PropertySpec describes a single parameter in a tool's schema.
type PropertySpec struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// ParameterSchema is the typed field descriptor set exposed to the reasoning
// backend's function-calling interface.
type ParameterSchema struct {
	Type       string                  `json:"type"`
	Properties map[string]PropertySpec `json:"properties"`
	Required   []string                `json:"required,omitempty"`
}

// Result is the contract every tool's Execute must honor.
type Result struct {
	// Success indicates whether the side effect was applied.
	Success bool `json:"success"`

	// Data carries tool-specific structured output.
	Data map[string]any `json:"data,omitempty"`

	// Error holds failure detail when Success is false.
	Error string `json:"error,omitempty"`

	// CostIncurred is the monetary amount (whole Naira) attributed to this
	// execution.
	CostIncurred int `json:"costIncurred,omitempty"`

	// Artifacts are references produced by the execution: receipt ids,
	// tracking links.
	Artifacts []string `json:"artifacts,omitempty"`
}

// Tool is the polymorphic capability interface. Adding a capability means
// adding an implementation and a registry entry; nothing else branches on
// tool names.
type Tool interface {
	// Name returns the stable tool identifier.
	Name() string

	// Description returns a human-readable summary for the function-calling
	// interface.
	Description() string

	// Parameters returns the machine-readable parameter schema.
	Parameters() ParameterSchema

	// Execute applies the tool's side effect.
	Execute(ctx context.Context, params map[string]any) (*Result, error)
}

// Schema converts a tool into the gateway's wire representation.
func Schema(t Tool) llm.ToolSchema {
	return llm.ToolSchema{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters:  t.Parameters(),
	}
}
