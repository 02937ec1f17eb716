package tools

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// Delivery pricing bounds in whole Naira. The simulated cost is a stand-in
// for Chowdeck's dynamic pricing.
const (
	deliveryMinCost  = 1500
	deliveryCostSpan = 3000
)

// DeliveryTool places a food delivery order through Chowdeck.
type DeliveryTool struct {
	latency time.Duration
}

// NewDeliveryTool creates the delivery capability.
func NewDeliveryTool() *DeliveryTool {
	return &DeliveryTool{latency: 2 * time.Second}
}

func (t *DeliveryTool) Name() string        { return "chowdeck_delivery" }
func (t *DeliveryTool) Description() string { return "Order delivery via Chowdeck" }

func (t *DeliveryTool) Parameters() ParameterSchema {
	return ParameterSchema{
		Type: "OBJECT",
		Properties: map[string]PropertySpec{
			"item":       {Type: "STRING", Description: "Food item"},
			"restaurant": {Type: "STRING", Description: "Restaurant name"},
			"address":    {Type: "STRING", Description: "Delivery address"},
		},
		Required: []string{"item", "restaurant", "address"},
	}
}

// Execute places the order, returning a tracking artifact and an ETA.
func (t *DeliveryTool) Execute(ctx context.Context, params map[string]any) (*Result, error) {
	item, err := stringParam(params, "item")
	if err != nil {
		return failure(err), nil
	}
	restaurant, err := stringParam(params, "restaurant")
	if err != nil {
		return failure(err), nil
	}
	if _, err := stringParam(params, "address"); err != nil {
		return failure(err), nil
	}

	if err := simulateLatency(ctx, t.latency); err != nil {
		return nil, err
	}

	cost := deliveryMinCost + rand.Intn(deliveryCostSpan)

	return &Result{
		Success:      true,
		CostIncurred: cost,
		Artifacts: []string{
			fmt.Sprintf("Tracking Link: https://chowdeck.com/track/%s", strings.ToLower(reference(7))),
		},
		Data: map[string]any{
			"status":     "ORDER_PLACED",
			"eta":        "45 mins",
			"item":       item,
			"restaurant": restaurant,
		},
	}, nil
}
