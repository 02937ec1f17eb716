package orchestrator

import (
	"strings"

	"github.com/sovereignhq/sovereign/internal/llm"
)

// UserMessage maps an orchestration failure to user-facing text. The mapping
// branches on error kinds tagged at the gateway, not on message substrings.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	switch llm.KindOf(err) {
	case llm.KindRateLimited:
		return "You've hit the model rate limit. Please wait a moment and try again."
	case llm.KindOverloaded:
		return "The AI service is currently overloaded. Please try again later."
	case llm.KindValidation:
		return "The AI didn't return a valid plan. Please try rephrasing your request."
	}

	// Unrecognized errors surface near-verbatim, without the generic prefix.
	return strings.TrimPrefix(err.Error(), "Error: ")
}
