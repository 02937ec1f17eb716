package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sovereignhq/sovereign/internal/data"
	"github.com/sovereignhq/sovereign/internal/llm"
	"github.com/sovereignhq/sovereign/internal/orchestrator"
	"github.com/sovereignhq/sovereign/internal/task"
)

type gatewayFunc func(ctx context.Context, req *llm.GenerateRequest) (string, error)

func (f gatewayFunc) Generate(ctx context.Context, req *llm.GenerateRequest) (string, error) {
	return f(ctx, req)
}

func postGenerate(t *testing.T, ts *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+"/api/generate", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

func TestGenerateProxy(t *testing.T) {
	t.Run("success returns text", func(t *testing.T) {
		var got llm.GenerateRequest
		srv := New(gatewayFunc(func(ctx context.Context, req *llm.GenerateRequest) (string, error) {
			got = *req
			return `{"title":"ok"}`, nil
		}))
		ts := httptest.NewServer(srv.Handler())
		defer ts.Close()

		resp := postGenerate(t, ts, `{"model":"gemini-2.5-flash","prompt":"plan this"}`)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		var out struct {
			Text string `json:"text"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, `{"title":"ok"}`, out.Text)
		assert.Equal(t, "gemini-2.5-flash", got.Model)
		assert.Equal(t, "plan this", got.Prompt)
	})

	t.Run("rate limit status passes through", func(t *testing.T) {
		srv := New(gatewayFunc(func(ctx context.Context, req *llm.GenerateRequest) (string, error) {
			return "", &llm.Error{Kind: llm.KindRateLimited, Status: 429, Message: "quota exceeded"}
		}))
		ts := httptest.NewServer(srv.Handler())
		defer ts.Close()

		resp := postGenerate(t, ts, `{"model":"m","prompt":"p"}`)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
		var out struct {
			Error string `json:"error"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Contains(t, out.Error, "quota exceeded")
	})

	t.Run("overloaded status passes through", func(t *testing.T) {
		srv := New(gatewayFunc(func(ctx context.Context, req *llm.GenerateRequest) (string, error) {
			return "", &llm.Error{Kind: llm.KindOverloaded, Status: 503, Message: "model overloaded"}
		}))
		ts := httptest.NewServer(srv.Handler())
		defer ts.Close()

		resp := postGenerate(t, ts, `{"model":"m","prompt":"p"}`)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})

	t.Run("other upstream failures become 502", func(t *testing.T) {
		srv := New(gatewayFunc(func(ctx context.Context, req *llm.GenerateRequest) (string, error) {
			return "", &llm.Error{Kind: llm.KindTransport, Message: "connection refused"}
		}))
		ts := httptest.NewServer(srv.Handler())
		defer ts.Close()

		resp := postGenerate(t, ts, `{"model":"m","prompt":"p"}`)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	})

	t.Run("validation failures become 400", func(t *testing.T) {
		srv := New(gatewayFunc(func(ctx context.Context, req *llm.GenerateRequest) (string, error) {
			return "", llm.ValidationErr("model must not be empty")
		}))
		ts := httptest.NewServer(srv.Handler())
		defer ts.Close()

		resp := postGenerate(t, ts, `{"prompt":"p"}`)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("malformed body is rejected", func(t *testing.T) {
		srv := New(gatewayFunc(func(ctx context.Context, req *llm.GenerateRequest) (string, error) {
			t.Error("gateway should not be called")
			return "", nil
		}))
		ts := httptest.NewServer(srv.Handler())
		defer ts.Close()

		resp := postGenerate(t, ts, `{not json`)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("GET is not allowed", func(t *testing.T) {
		srv := New(gatewayFunc(func(ctx context.Context, req *llm.GenerateRequest) (string, error) {
			return "", nil
		}))
		ts := httptest.NewServer(srv.Handler())
		defer ts.Close()

		resp, err := http.Get(ts.URL + "/api/generate")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})

	t.Run("OPTIONS preflight succeeds with CORS headers", func(t *testing.T) {
		srv := New(gatewayFunc(func(ctx context.Context, req *llm.GenerateRequest) (string, error) {
			return "", nil
		}))
		ts := httptest.NewServer(srv.Handler())
		defer ts.Close()

		req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/generate", bytes.NewReader(nil))
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
		assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "POST")
	})
}

func TestEndToEndWithClient(t *testing.T) {
	// The llm.Client and the proxy speak the same wire format.
	srv := New(gatewayFunc(func(ctx context.Context, req *llm.GenerateRequest) (string, error) {
		return "generated text", nil
	}))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	client := llm.NewClient(ts.URL)
	text, err := client.Generate(context.Background(), &llm.GenerateRequest{
		Model:  "gemini-2.5-flash",
		Prompt: "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, "generated text", text)
}

func TestWebsocketEvents(t *testing.T) {
	srv := New(gatewayFunc(func(ctx context.Context, req *llm.GenerateRequest) (string, error) {
		return "", nil
	}))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Registration happens in the upgrade handler, so the client is visible
	// as soon as Dial returns.
	require.Equal(t, 1, srv.ClientCount())

	tk := task.New("user-1", "pay bill")
	srv.PublishEvent(orchestrator.Event{Type: orchestrator.EventTaskCreated, Task: tk})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev orchestrator.Event
	require.NoError(t, json.Unmarshal(data, &ev))
	assert.Equal(t, orchestrator.EventTaskCreated, ev.Type)
	require.NotNil(t, ev.Task)
	assert.Equal(t, tk.ID, ev.Task.ID)
}

type scriptedPlanner struct{ plan *task.ExecutionPlan }

func (p scriptedPlanner) CreatePlan(ctx context.Context, rawInput string, profile task.UserProfile) (*task.ExecutionPlan, error) {
	plan := *p.plan
	return &plan, nil
}

type noopExecutor struct{}

func (noopExecutor) Execute(ctx context.Context, plan *task.ExecutionPlan) (*task.Result, error) {
	return &task.Result{Summary: "done", Timestamp: time.Now()}, nil
}

func readEvent(t *testing.T, conn *websocket.Conn) orchestrator.Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev orchestrator.Event
	require.NoError(t, json.Unmarshal(raw, &ev))
	return ev
}

func TestOrchestratorEventsStreamToWebsocket(t *testing.T) {
	// The orchestrator feeds the hub through PublishEvent registered as an
	// observer, the same wiring the binary does.
	srv := New(gatewayFunc(func(ctx context.Context, req *llm.GenerateRequest) (string, error) {
		return "", nil
	}))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	store, err := data.OpenMemory()
	require.NoError(t, err)
	defer store.Close()

	plan := &task.ExecutionPlan{
		Title:     "Pay electricity bill",
		Intent:    "Settle the bill",
		Reasoning: "One transfer suffices.",
		RiskLevel: task.RiskMedium,
		Steps: []task.ExecutionStep{
			{ID: "s1", Description: "Transfer funds", Tool: "moniepoint_transfer", Status: task.StepPending},
		},
		RequiredTools: []string{"moniepoint_transfer"},
	}
	orch := orchestrator.New(scriptedPlanner{plan: plan}, noopExecutor{}, store)
	orch.Subscribe(srv.PublishEvent)
	require.NoError(t, orch.SetUser(context.Background(), "user-1"))

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Equal(t, 1, srv.ClientCount())

	submitted, err := orch.Submit(context.Background(), "pay the electricity bill")
	require.NoError(t, err)

	created := readEvent(t, conn)
	assert.Equal(t, orchestrator.EventTaskCreated, created.Type)
	require.NotNil(t, created.Task)
	assert.Equal(t, submitted.ID, created.Task.ID)

	updated := readEvent(t, conn)
	assert.Equal(t, orchestrator.EventTaskUpdated, updated.Type)
	require.NotNil(t, updated.Task)
	assert.Equal(t, task.StatusApprovalRequired, updated.Task.Status)
}
