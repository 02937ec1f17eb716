package tools

import (
	"context"
	"time"
)

// EmailTool sends an email. Zero cost; simulated delivery.
type EmailTool struct {
	latency time.Duration
}

// NewEmailTool creates the email capability.
func NewEmailTool() *EmailTool {
	return &EmailTool{latency: time.Second}
}

func (t *EmailTool) Name() string        { return "send_email" }
func (t *EmailTool) Description() string { return "Send an email" }

func (t *EmailTool) Parameters() ParameterSchema {
	return ParameterSchema{
		Type: "OBJECT",
		Properties: map[string]PropertySpec{
			"to":      {Type: "STRING", Description: "Recipient email"},
			"subject": {Type: "STRING", Description: "Email subject"},
			"body":    {Type: "STRING", Description: "Email body"},
		},
		Required: []string{"to", "subject", "body"},
	}
}

// Execute sends the message and returns a sent-status marker.
func (t *EmailTool) Execute(ctx context.Context, params map[string]any) (*Result, error) {
	to, err := stringParam(params, "to")
	if err != nil {
		return failure(err), nil
	}
	if _, err := stringParam(params, "subject"); err != nil {
		return failure(err), nil
	}
	if _, err := stringParam(params, "body"); err != nil {
		return failure(err), nil
	}

	if err := simulateLatency(ctx, t.latency); err != nil {
		return nil, err
	}

	return &Result{
		Success:      true,
		CostIncurred: 0,
		Data: map[string]any{
			"status": "SENT",
			"to":     to,
		},
	}, nil
}
