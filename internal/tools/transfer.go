package tools

import (
	"context"
	"fmt"
	"time"
)

// TransferTool moves money to a bank account through the Moniepoint rails.
// The simulated variant always succeeds; the cost incurred equals the
// transfer amount.
type TransferTool struct {
	latency time.Duration
}

// NewTransferTool creates the transfer capability.
func NewTransferTool() *TransferTool {
	return &TransferTool{latency: 1500 * time.Millisecond}
}

func (t *TransferTool) Name() string        { return "moniepoint_transfer" }
func (t *TransferTool) Description() string { return "Transfer money via Moniepoint" }

func (t *TransferTool) Parameters() ParameterSchema {
	return ParameterSchema{
		Type: "OBJECT",
		Properties: map[string]PropertySpec{
			"amount":    {Type: "NUMBER", Description: "Amount in NGN"},
			"recipient": {Type: "STRING", Description: "Recipient name"},
			"bank":      {Type: "STRING", Description: "Bank name"},
		},
		Required: []string{"amount", "recipient", "bank"},
	}
}

// Execute performs the transfer and returns a synthetic receipt artifact.
func (t *TransferTool) Execute(ctx context.Context, params map[string]any) (*Result, error) {
	amount, err := numberParam(params, "amount")
	if err != nil {
		return failure(err), nil
	}
	recipient, err := stringParam(params, "recipient")
	if err != nil {
		return failure(err), nil
	}
	if _, err := stringParam(params, "bank"); err != nil {
		return failure(err), nil
	}
	if amount <= 0 {
		return failure(fmt.Errorf("amount must be positive, got %d", amount)), nil
	}

	if err := simulateLatency(ctx, t.latency); err != nil {
		return nil, err
	}

	return &Result{
		Success:      true,
		CostIncurred: amount,
		Artifacts:    []string{fmt.Sprintf("Transaction Receipt: MNP-%s", reference(6))},
		Data: map[string]any{
			"status":    "SUCCESS",
			"reference": fmt.Sprintf("Ref-%d", time.Now().UnixMilli()),
			"recipient": recipient,
		},
	}, nil
}
