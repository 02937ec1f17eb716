package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sovereignhq/sovereign/internal/llm"
	"github.com/sovereignhq/sovereign/internal/task"
)

const validPlanJSON = `{
	"title": "Pay IKEDC bill",
	"intent": "Settle the electricity bill",
	"reasoning": "A single transfer covers the bill.",
	"riskLevel": "medium",
	"requiredTools": ["moniepoint_transfer"],
	"steps": [
		{"id": "1", "description": "Transfer 5,000 NGN to IKEDC", "tool": "moniepoint_transfer",
		 "params": {"amount": 5000, "recipient": "IKEDC", "bank": "GTBank"}, "status": "pending"}
	]
}`

// fakeGateway replays responses in order, one per Generate call.
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

func TestCreatePlan(t *testing.T) {
	profile := task.UserProfile{Name: "Ada", Email: "ada@example.com", Context: "lives in Lekki"}

	t.Run("valid JSON yields a typed plan", func(t *testing.T) {
		gw := &fakeGateway{replies: []reply{{text: validPlanJSON}}}
		gen := NewGenerator(gw)

		plan, err := gen.CreatePlan(context.Background(), "Pay my IKEDC bill of 5,000 NGN", profile)
		require.NoError(t, err)

		assert.Equal(t, task.RiskMedium, plan.RiskLevel)
		require.Len(t, plan.Steps, 1)
		assert.Equal(t, task.StepPending, plan.Steps[0].Status)
		assert.Equal(t, "moniepoint_transfer", plan.Steps[0].Tool)
		assert.Equal(t, []string{"moniepoint_transfer"}, plan.RequiredTools)
	})

	t.Run("prompt carries the verbatim input and profile context", func(t *testing.T) {
		gw := &fakeGateway{replies: []reply{{text: validPlanJSON}}}
		gen := NewGenerator(gw)

		_, err := gen.CreatePlan(context.Background(), "Pay my IKEDC bill of 5,000 NGN", profile)
		require.NoError(t, err)

		require.Len(t, gw.reqs, 1)
		assert.Contains(t, gw.reqs[0].Prompt, "Pay my IKEDC bill of 5,000 NGN")
		assert.Contains(t, gw.reqs[0].Prompt, "lives in Lekki")
		assert.Equal(t, "application/json", gw.reqs[0].GenerationConfig.ResponseMIMEType)
	})

	t.Run("fenced JSON is accepted", func(t *testing.T) {
		gw := &fakeGateway{replies: []reply{{text: "```json\n" + validPlanJSON + "\n```"}}}
		plan, err := NewGenerator(gw).CreatePlan(context.Background(), "pay bill", profile)
		require.NoError(t, err)
		assert.Equal(t, "Pay IKEDC bill", plan.Title)
	})

	t.Run("missing riskLevel is a validation failure on both models", func(t *testing.T) {
		noRisk := `{"title":"t","intent":"i","reasoning":"r","requiredTools":[],"steps":[{"id":"1","description":"d","status":"pending"}]}`
		gw := &fakeGateway{replies: []reply{{text: noRisk}, {text: noRisk}}}

		plan, err := NewGenerator(gw).CreatePlan(context.Background(), "x", profile)
		require.Error(t, err)
		assert.Nil(t, plan)
		assert.Equal(t, llm.KindValidation, llm.KindOf(err))

		var perr *PlanningError
		require.ErrorAs(t, err, &perr)
	})

	t.Run("empty steps fail validation", func(t *testing.T) {
		empty := `{"title":"t","intent":"i","reasoning":"r","riskLevel":"low","requiredTools":[],"steps":[]}`
		gw := &fakeGateway{replies: []reply{{text: empty}, {text: empty}}}

		_, err := NewGenerator(gw).CreatePlan(context.Background(), "x", profile)
		require.Error(t, err)
		assert.Equal(t, llm.KindValidation, llm.KindOf(err))
	})

	t.Run("fallback model rescues a failed primary", func(t *testing.T) {
		gw := &fakeGateway{replies: []reply{
			{err: errors.New("boom")},
			{text: validPlanJSON},
		}}
		gen := NewGenerator(gw, WithModels("primary-model", "fallback-model"))

		plan, err := gen.CreatePlan(context.Background(), "pay bill", profile)
		require.NoError(t, err)
		assert.Equal(t, "Pay IKEDC bill", plan.Title)

		require.Len(t, gw.reqs, 2)
		assert.Equal(t, "primary-model", gw.reqs[0].Model)
		assert.Equal(t, "fallback-model", gw.reqs[1].Model)
	})

	t.Run("prose refusal exhausts both models", func(t *testing.T) {
		gw := &fakeGateway{replies: []reply{
			{text: "I am unable to help with that request."},
			{text: "Still prose."},
		}}

		_, err := NewGenerator(gw).CreatePlan(context.Background(), "x", profile)
		require.Error(t, err)
		assert.Equal(t, llm.KindParse, llm.KindOf(err))
	})

	t.Run("unknown tool names are tolerated", func(t *testing.T) {
		exotic := `{
			"title":"t","intent":"i","reasoning":"r","riskLevel":"high",
			"requiredTools":["teleport"],
			"steps":[{"id":"1","description":"teleport home","tool":"teleport","status":"pending"}]
		}`
		gw := &fakeGateway{replies: []reply{{text: exotic}}}

		plan, err := NewGenerator(gw).CreatePlan(context.Background(), "x", profile)
		require.NoError(t, err)
		assert.Equal(t, "teleport", plan.Steps[0].Tool)
	})

	t.Run("risk vocabulary outside the enum is rejected", func(t *testing.T) {
		weird := `{"title":"t","intent":"i","reasoning":"r","riskLevel":"extreme","requiredTools":[],"steps":[{"id":"1","description":"d"}]}`
		gw := &fakeGateway{replies: []reply{{text: weird}, {text: weird}}}

		_, err := NewGenerator(gw).CreatePlan(context.Background(), "x", profile)
		require.Error(t, err)
		assert.Equal(t, llm.KindValidation, llm.KindOf(err))
	})
}
