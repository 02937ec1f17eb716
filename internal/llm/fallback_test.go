package llm

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedGateway returns canned responses per model, recording the order of
// attempts.
type scriptedGateway struct {
	responses map[string]string
	errors    map[string]error
	calls     []string
}

func (g *scriptedGateway) Generate(_ context.Context, req *GenerateRequest) (string, error) {
	g.calls = append(g.calls, req.Model)
	if err, ok := g.errors[req.Model]; ok {
		return "", err
	}
	return g.responses[req.Model], nil
}

func TestStripFences(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n{\"a\":1}\n```":     `{"a":1}`,
		`{"a":1}`:                 `{"a":1}`,
		"  {\"a\":1}  ":           `{"a":1}`,
	}
	for in, want := range cases {
		assert.Equal(t, want, StripFences(in))
	}
}

func TestGenerateValidated(t *testing.T) {
	parseJSON := func(out any) ParseFunc {
		return func(clean string) error {
			if err := json.Unmarshal([]byte(clean), out); err != nil {
				return ParseErr(err)
			}
			return nil
		}
	}

	t.Run("primary success skips fallback", func(t *testing.T) {
		gw := &scriptedGateway{responses: map[string]string{"primary": `{"ok":true}`}}
		var out map[string]bool

		err := GenerateValidated(context.Background(), gw,
			&GenerateRequest{Model: "primary", Prompt: "p"}, "fallback", parseJSON(&out))
		require.NoError(t, err)
		assert.True(t, out["ok"])
		assert.Equal(t, []string{"primary"}, gw.calls)
	})

	t.Run("fallback rescues a transport failure", func(t *testing.T) {
		gw := &scriptedGateway{
			errors:    map[string]error{"primary": statusErr(503, "overloaded")},
			responses: map[string]string{"fallback": `{"ok":true}`},
		}
		var out map[string]bool

		err := GenerateValidated(context.Background(), gw,
			&GenerateRequest{Model: "primary", Prompt: "p"}, "fallback", parseJSON(&out))
		require.NoError(t, err)
		assert.Equal(t, []string{"primary", "fallback"}, gw.calls)
	})

	t.Run("fallback rescues non-JSON output", func(t *testing.T) {
		gw := &scriptedGateway{responses: map[string]string{
			"primary":  "I cannot help with that.",
			"fallback": "```json\n{\"ok\":true}\n```",
		}}
		var out map[string]bool

		err := GenerateValidated(context.Background(), gw,
			&GenerateRequest{Model: "primary", Prompt: "p"}, "fallback", parseJSON(&out))
		require.NoError(t, err)
		assert.True(t, out["ok"])
	})

	t.Run("last error propagates when both fail", func(t *testing.T) {
		gw := &scriptedGateway{responses: map[string]string{
			"primary":  "prose",
			"fallback": "more prose",
		}}
		var out map[string]bool

		err := GenerateValidated(context.Background(), gw,
			&GenerateRequest{Model: "primary", Prompt: "p"}, "fallback", parseJSON(&out))
		require.Error(t, err)
		assert.Equal(t, KindParse, KindOf(err))
		assert.Equal(t, []string{"primary", "fallback"}, gw.calls)
	})

	t.Run("empty response is retried then fails as parse error", func(t *testing.T) {
		gw := &scriptedGateway{responses: map[string]string{}}
		err := GenerateValidated(context.Background(), gw,
			&GenerateRequest{Model: "primary", Prompt: "p"}, "fallback",
			func(string) error { return nil })
		require.Error(t, err)
		assert.Equal(t, KindParse, KindOf(err))
	})
}
