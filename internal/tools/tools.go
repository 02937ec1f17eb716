package tools

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// simulateLatency stands in for real external-service latency. It respects
// context cancellation so tool execution stays abortable.
func simulateLatency(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// reference generates a short uppercase alphanumeric reference for synthetic
// receipts and tracking ids.
func reference(n int) string {
	const alphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteByte(alphabet[rand.Intn(len(alphabet))])
	}
	return b.String()
}

// stringParam extracts a required string parameter.
func stringParam(params map[string]any, key string) (string, error) {
	v, ok := params[key]
	if !ok {
		return "", fmt.Errorf("missing required parameter %q", key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("parameter %q must be a non-empty string", key)
	}
	return s, nil
}

// numberParam extracts a required numeric parameter. JSON decoding delivers
// numbers as float64; whole-Naira amounts are truncated.
func numberParam(params map[string]any, key string) (int, error) {
	v, ok := params[key]
	if !ok {
		return 0, fmt.Errorf("missing required parameter %q", key)
	}
	switch n := v.(type) {
	case float64:
		return int(n), nil
	case int:
		return n, nil
	default:
		return 0, fmt.Errorf("parameter %q must be a number", key)
	}
}

// failure wraps a parameter error into a tool result without applying any
// side effect.
func failure(err error) *Result {
	return &Result{Success: false, Error: err.Error()}
}
