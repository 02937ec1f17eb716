package llm

import (
	"context"
	"regexp"
	"strings"
)

var fenceRe = regexp.MustCompile("```(?:json)?")

// StripFences removes enclosing markdown code-fence markers from model
// output. Models asked for JSON-only responses still wrap them in fences
// often enough that parsing must tolerate it.
func StripFences(raw string) string {
	return strings.TrimSpace(fenceRe.ReplaceAllString(raw, ""))
}

// ParseFunc decodes and validates fence-stripped model output. It should
// return a parse- or validation-kind *Error on contract violations.
type ParseFunc func(clean string) error

// GenerateValidated issues req against its model, then once more against
// fallbackModel when anything fails: transport, JSON parse, or schema
// validation. The reasoning backend is free-text generation and may violate
// the contract on any given attempt; validation is the safety boundary, and a
// second model gets one chance to satisfy it. The last error propagates when
// both attempts fail.
func GenerateValidated(ctx context.Context, gw Gateway, req *GenerateRequest, fallbackModel string, parse ParseFunc) error {
	models := []string{req.Model, fallbackModel}

	var lastErr error
	for _, model := range models {
		if ctx.Err() != nil {
			return transportErr("context done", ctx.Err())
		}

		attempt := *req
		attempt.Model = model

		raw, err := gw.Generate(ctx, &attempt)
		if err != nil {
			lastErr = err
			continue
		}
		if raw == "" {
			lastErr = &Error{Kind: KindParse, Message: "empty response from model"}
			continue
		}

		if err := parse(StripFences(raw)); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
