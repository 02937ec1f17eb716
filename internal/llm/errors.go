package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies gateway failures at their point of origin. Downstream layers
// branch on the kind instead of inspecting message text.
type Kind int

const (
	// KindTransport covers network failures and unclassified backend errors.
	KindTransport Kind = iota
	// KindRateLimited is a backend 429.
	KindRateLimited
	// KindOverloaded is a backend 503.
	KindOverloaded
	// KindParse means the response text was not valid JSON after fence stripping.
	KindParse
	// KindValidation means the JSON was well-formed but failed the required shape.
	KindValidation
)

// String returns a short identifier for the kind.
func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindRateLimited:
		return "rate_limited"
	case KindOverloaded:
		return "overloaded"
	case KindParse:
		return "parse"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Error is the typed failure surfaced by the gateway and by the schema
// validation layers built on top of it.
type Error struct {
	Kind    Kind
	Status  int // HTTP status when the backend answered, zero otherwise
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("llm %s (status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("llm %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the kind from err, defaulting to KindTransport for errors
// that did not originate in this package.
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return KindTransport
}

// kindFromStatus maps a backend HTTP status to an error kind. Rate-limit and
// overload signals are tagged here rather than inferred later from message
// content.
func kindFromStatus(status int) Kind {
	switch status {
	case http.StatusTooManyRequests:
		return KindRateLimited
	case http.StatusServiceUnavailable:
		return KindOverloaded
	default:
		return KindTransport
	}
}

// transportErr builds a transport-kind error wrapping a network failure.
func transportErr(msg string, err error) *Error {
	return &Error{Kind: KindTransport, Message: msg, Err: err}
}

// statusErr builds an error for a non-success backend response.
func statusErr(status int, msg string) *Error {
	return &Error{Kind: kindFromStatus(status), Status: status, Message: msg}
}

// ParseErr builds a parse-kind error for non-JSON model output.
func ParseErr(err error) *Error {
	return &Error{Kind: KindParse, Message: "response is not valid JSON", Err: err}
}

// ValidationErr builds a validation-kind error with field-level detail.
func ValidationErr(detail string) *Error {
	return &Error{Kind: KindValidation, Message: "schema validation failed: " + detail}
}
