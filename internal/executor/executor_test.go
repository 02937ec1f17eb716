package executor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sovereignhq/sovereign/internal/llm"
	"github.com/sovereignhq/sovereign/internal/task"
	"github.com/sovereignhq/sovereign/internal/tools"
)

type fakeGateway struct {
	replies []reply
	reqs    []*llm.GenerateRequest
}

type reply struct {
	text string
	err  error
}

func (g *fakeGateway) Generate(_ context.Context, req *llm.GenerateRequest) (string, error) {
	g.reqs = append(g.reqs, req)
	if len(g.replies) == 0 {
		return "", errors.New("no scripted reply")
	}
	r := g.replies[0]
	g.replies = g.replies[1:]
	return r.text, r.err
}

func testPlan() *task.ExecutionPlan {
	return &task.ExecutionPlan{
		Title:         "Pay IKEDC bill",
		Intent:        "Settle the bill",
		Reasoning:     "One transfer suffices.",
		RiskLevel:     task.RiskMedium,
		RequiredTools: []string{"moniepoint_transfer"},
		Steps: []task.ExecutionStep{
			{ID: "1", Description: "Transfer 5,000 NGN", Tool: "moniepoint_transfer", Status: task.StepPending},
		},
	}
}

func TestExecute(t *testing.T) {
	registry := tools.DefaultRegistry()

	t.Run("returns validated result with cost", func(t *testing.T) {
		gw := &fakeGateway{replies: []reply{
			{text: `{"summary":"Transferred ₦5,000 to IKEDC","costIncurred":"₦5,000","artifacts":["Transaction Receipt: MNP-ABC123"]}`},
		}}
		agent := NewAgent(gw, registry)

		res, err := agent.Execute(context.Background(), testPlan())
		require.NoError(t, err)
		assert.Equal(t, "Transferred ₦5,000 to IKEDC", res.Summary)
		assert.Equal(t, "₦5,000", res.CostIncurred)
		assert.Len(t, res.Artifacts, 1)
		assert.False(t, res.Timestamp.IsZero())
	})

	t.Run("attaches the full tool registry schemas", func(t *testing.T) {
		gw := &fakeGateway{replies: []reply{{text: `{"summary":"done"}`}}}
		agent := NewAgent(gw, registry)

		_, err := agent.Execute(context.Background(), testPlan())
		require.NoError(t, err)

		require.Len(t, gw.reqs, 1)
		require.Len(t, gw.reqs[0].Tools, 3)
		assert.Contains(t, gw.reqs[0].Prompt, "Pay IKEDC bill")
		assert.Contains(t, gw.reqs[0].Prompt, "first PENDING step")
	})

	t.Run("prompt names the pending step", func(t *testing.T) {
		gw := &fakeGateway{replies: []reply{{text: `{"summary":"done"}`}}}
		agent := NewAgent(gw, registry)

		plan := testPlan()
		plan.Steps = append([]task.ExecutionStep{
			{ID: "0", Description: "Look up the account", Status: task.StepCompleted},
		}, plan.Steps...)

		_, err := agent.Execute(context.Background(), plan)
		require.NoError(t, err)
		assert.Contains(t, gw.reqs[0].Prompt, "1: Transfer 5,000 NGN")
	})

	t.Run("fully resolved plan has nothing to execute", func(t *testing.T) {
		gw := &fakeGateway{}
		agent := NewAgent(gw, registry)

		plan := testPlan()
		plan.Steps[0].Status = task.StepCompleted

		_, err := agent.Execute(context.Background(), plan)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no pending step")
		assert.Empty(t, gw.reqs)
	})

	t.Run("missing summary is a validation failure", func(t *testing.T) {
		gw := &fakeGateway{replies: []reply{
			{text: `{"costIncurred":"₦100"}`},
			{text: `{"costIncurred":"₦100"}`},
		}}
		agent := NewAgent(gw, registry)

		_, err := agent.Execute(context.Background(), testPlan())
		require.Error(t, err)
		assert.Equal(t, llm.KindValidation, llm.KindOf(err))

		var eerr *ExecutionError
		require.ErrorAs(t, err, &eerr)
	})

	t.Run("fallback model rescues a failed primary", func(t *testing.T) {
		gw := &fakeGateway{replies: []reply{
			{err: errors.New("boom")},
			{text: `{"summary":"done on fallback"}`},
		}}
		agent := NewAgent(gw, registry, WithModels("primary-model", "fallback-model"))

		res, err := agent.Execute(context.Background(), testPlan())
		require.NoError(t, err)
		assert.Equal(t, "done on fallback", res.Summary)
		assert.Equal(t, "fallback-model", gw.reqs[1].Model)
	})
}

func TestParseCost(t *testing.T) {
	cases := map[string]int{
		"₦2,500":      2500,
		"NGN 5,000":   5000,
		"1500":        1500,
		"free":        0,
		"":            0,
		"₦1,234,567":  1234567,
		"about ₦300!": 300,
	}
	for display, want := range cases {
		assert.Equal(t, want, ParseCost(display), "display %q", display)
	}
}
