// Package llm provides the reasoning gateway for Sovereign: a thin transport
// adapter that sends a prompt, a system instruction, and optional tool schemas
// to the generative backend and returns raw text. Retry is the caller's
// responsibility; the gateway performs a single round-trip per call.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// MaxErrorBodySize limits how much of an error response body is read.
// Prevents memory exhaustion from malformed error responses.
const MaxErrorBodySize = 1 * 1024 * 1024

// ToolSchema is a machine-readable capability descriptor attached to
// generation requests so the backend can reason about tool invocation.
// The JSON shape matches a function-calling declaration.
type ToolSchema struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  any    `json:"parameters"`
}

// GenerationConfig tunes a single generation request.
type GenerationConfig struct {
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
	Temperature      float64 `json:"temperature,omitempty"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
}

// GenerateRequest is the payload of one generation round-trip.
type GenerateRequest struct {
	Model             string            `json:"model"`
	SystemInstruction string            `json:"systemInstruction,omitempty"`
	Prompt            string            `json:"prompt"`
	Tools             []ToolSchema      `json:"tools,omitempty"`
	GenerationConfig  *GenerationConfig `json:"generationConfig,omitempty"`
}

// Gateway is the contract the planner and executor depend on. Implementations
// must treat empty-but-successful text as a valid return value.
type Gateway interface {
	Generate(ctx context.Context, req *GenerateRequest) (string, error)
}

// Client reaches the reasoning backend through the Sovereign generate proxy.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithLogger attaches a logger to the client.
func WithLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) { c.log = log }
}

// NewClient creates a gateway client for the proxy at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 120 * time.Second},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// generateResponse is the proxy's wire response: {text} on success, {error}
// on failure.
type generateResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// Generate performs one generation round-trip. It returns the backend's raw
// text, which may legitimately be empty; validating the content is the
// caller's job.
func (c *Client) Generate(ctx context.Context, req *GenerateRequest) (string, error) {
	if req.Model == "" {
		return "", ValidationErr("model must not be empty")
	}
	if req.Prompt == "" {
		return "", ValidationErr("prompt must not be empty")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", transportErr("marshal request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", transportErr("create request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", transportErr("execute request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, MaxErrorBodySize))
		msg := backendError(raw)
		if msg == "" {
			msg = fmt.Sprintf("server error: %d", resp.StatusCode)
		}
		c.log.Warn().Int("status", resp.StatusCode).Str("model", req.Model).Msg("generate failed")
		return "", statusErr(resp.StatusCode, msg)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", transportErr("decode response", err)
	}

	c.log.Debug().
		Str("model", req.Model).
		Dur("duration", time.Since(start)).
		Int("chars", len(out.Text)).
		Msg("generate ok")

	return out.Text, nil
}

// backendError extracts the {error} field from a failure body, tolerating
// non-JSON payloads.
func backendError(raw []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return string(raw)
	}
	return body.Error
}
