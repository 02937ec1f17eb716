package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultGeminiEndpoint is the Google Generative Language REST base URL.
const DefaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta"

// GeminiUpstream translates gateway requests into the Google Generative
// Language REST API. It backs the serve-side proxy; clients never talk to it
// directly.
type GeminiUpstream struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

// NewGeminiUpstream creates an upstream adapter. An empty endpoint selects the
// public Google API.
func NewGeminiUpstream(apiKey, endpoint string) *GeminiUpstream {
	if endpoint == "" {
		endpoint = DefaultGeminiEndpoint
	}
	return &GeminiUpstream{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 120 * time.Second},
	}
}

// Generate sends one generateContent call upstream and returns the
// concatenated candidate text.
func (g *GeminiUpstream) Generate(ctx context.Context, req *GenerateRequest) (string, error) {
	if g.apiKey == "" {
		return "", transportErr("gemini API key not configured", nil)
	}

	upReq := geminiGenerateRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}},
		},
	}
	if req.SystemInstruction != "" {
		upReq.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: req.SystemInstruction}},
		}
	}
	for _, tool := range req.Tools {
		upReq.Tools = append(upReq.Tools, geminiTool{
			FunctionDeclarations: []ToolSchema{tool},
		})
	}
	if req.GenerationConfig != nil {
		upReq.GenerationConfig = &geminiGenerationConfig{
			ResponseMIMEType: req.GenerationConfig.ResponseMIMEType,
			Temperature:      req.GenerationConfig.Temperature,
			MaxOutputTokens:  req.GenerationConfig.MaxOutputTokens,
		}
	}

	body, err := json.Marshal(upReq)
	if err != nil {
		return "", transportErr("marshal request", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.endpoint, req.Model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", transportErr("create request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	// Key goes in the header, not the URL, to keep it out of logs.
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.http.Do(httpReq)
	if err != nil {
		return "", transportErr("execute request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, MaxErrorBodySize))
		return "", statusErr(resp.StatusCode, fmt.Sprintf("gemini error: %s", raw))
	}

	var upResp geminiGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&upResp); err != nil {
		return "", transportErr("decode response", err)
	}

	// An empty candidate text is a valid result; only a missing candidate list
	// is a failure.
	if len(upResp.Candidates) == 0 {
		return "", transportErr("no candidates in response", nil)
	}

	var text string
	for _, part := range upResp.Candidates[0].Content.Parts {
		text += part.Text
	}
	return text, nil
}

// Gemini API wire types.
type geminiGenerateRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	Tools             []geminiTool            `json:"tools,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiTool struct {
	FunctionDeclarations []ToolSchema `json:"functionDeclarations"`
}

type geminiGenerationConfig struct {
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
	Temperature      float64 `json:"temperature,omitempty"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
}

type geminiGenerateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
			Role  string       `json:"role"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}
