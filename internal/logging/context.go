package logging

import (
	"context"
	"time"
)

// DetachContext creates a context that is not cancelled when parent is,
// while preserving parent's values. State writes that must land even when
// the originating UI action is cancelled run under a detached context.
func DetachContext(parent context.Context) context.Context {
	return context.WithoutCancel(parent)
}

// DetachContextWithTimeout is DetachContext with its own deadline, so a
// detached write cannot hang forever either.
func DetachContextWithTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(parent), timeout)
}
