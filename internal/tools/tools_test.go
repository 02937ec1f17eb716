package tools

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastTool returns a tool with near-zero simulated latency so tests stay quick.
func fastTransfer() *TransferTool {
	t := NewTransferTool()
	t.latency = time.Millisecond
	return t
}

func fastDelivery() *DeliveryTool {
	t := NewDeliveryTool()
	t.latency = time.Millisecond
	return t
}

func fastEmail() *EmailTool {
	t := NewEmailTool()
	t.latency = time.Millisecond
	return t
}

func TestRegistry(t *testing.T) {
	t.Run("default registry holds the three built-ins", func(t *testing.T) {
		r := DefaultRegistry()
		assert.Equal(t, []string{"chowdeck_delivery", "moniepoint_transfer", "send_email"}, r.Names())

		for _, name := range r.Names() {
			tool, ok := r.Get(name)
			require.True(t, ok)
			assert.Equal(t, name, tool.Name())
		}
	})

	t.Run("rejects duplicate names", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(NewEmailTool()))
		err := r.Register(NewEmailTool())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already registered")
	})

	t.Run("unknown lookup reports missing", func(t *testing.T) {
		r := DefaultRegistry()
		_, ok := r.Get("teleport")
		assert.False(t, ok)
	})

	t.Run("schemas carry parameter descriptors", func(t *testing.T) {
		schemas := DefaultRegistry().Schemas()
		require.Len(t, schemas, 3)

		// Ordered by name, so the transfer tool is in the middle.
		transfer := schemas[1]
		assert.Equal(t, "moniepoint_transfer", transfer.Name)
		params, ok := transfer.Parameters.(ParameterSchema)
		require.True(t, ok)
		assert.Equal(t, "OBJECT", params.Type)
		assert.Contains(t, params.Required, "amount")
	})
}

func TestTransferTool(t *testing.T) {
	ctx := context.Background()

	t.Run("cost equals transfer amount", func(t *testing.T) {
		res, err := fastTransfer().Execute(ctx, map[string]any{
			"amount":    float64(5000),
			"recipient": "IKEDC",
			"bank":      "GTBank",
		})
		require.NoError(t, err)
		require.True(t, res.Success)
		assert.Equal(t, 5000, res.CostIncurred)
		require.Len(t, res.Artifacts, 1)
		assert.Contains(t, res.Artifacts[0], "MNP-")
		assert.Equal(t, "SUCCESS", res.Data["status"])
	})

	t.Run("missing parameter fails without side effect", func(t *testing.T) {
		res, err := fastTransfer().Execute(ctx, map[string]any{"amount": float64(100)})
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Contains(t, res.Error, "recipient")
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		res, err := fastTransfer().Execute(ctx, map[string]any{
			"amount":    float64(0),
			"recipient": "A",
			"bank":      "B",
		})
		require.NoError(t, err)
		assert.False(t, res.Success)
	})
}

func TestDeliveryTool(t *testing.T) {
	res, err := fastDelivery().Execute(context.Background(), map[string]any{
		"item":       "Jollof rice",
		"restaurant": "Mama Put",
		"address":    "12 Admiralty Way, Lekki",
	})
	require.NoError(t, err)
	require.True(t, res.Success)

	assert.GreaterOrEqual(t, res.CostIncurred, deliveryMinCost)
	assert.Less(t, res.CostIncurred, deliveryMinCost+deliveryCostSpan)
	require.Len(t, res.Artifacts, 1)
	assert.Contains(t, res.Artifacts[0], "chowdeck.com/track/")
	assert.Equal(t, "ORDER_PLACED", res.Data["status"])
	assert.Equal(t, "45 mins", res.Data["eta"])
}

func TestEmailTool(t *testing.T) {
	res, err := fastEmail().Execute(context.Background(), map[string]any{
		"to":      "ada@example.com",
		"subject": "Hello",
		"body":    "Checking in.",
	})
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Zero(t, res.CostIncurred)
	assert.Equal(t, "SENT", res.Data["status"])
}

func TestToolCancellation(t *testing.T) {
	tool := NewEmailTool() // Full latency so cancellation wins
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tool.Execute(ctx, map[string]any{
		"to":      "ada@example.com",
		"subject": "s",
		"body":    "b",
	})
	require.ErrorIs(t, err, context.Canceled)
}
