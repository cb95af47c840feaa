package core

import (
	"context"
	"time"
)

// DefaultStartTimeout is the default start-phase budget (§4.3).
const DefaultStartTimeout = 30 * time.Second

// StartPhaseGuard scopes a timer around the synchronous portion of an
// invocation: up to and including the first observed chunk (streams) or
// the full response (non-stream). It never bounds anything past that
// point (§4.3, §4.11) — mid-stream stalls are not timeout-guarded.
type StartPhaseGuard struct {
	timeout time.Duration
}

// NewStartPhaseGuard creates a guard bounded by timeout. A zero or
// negative timeout falls back to DefaultStartTimeout.
func NewStartPhaseGuard(timeout time.Duration) StartPhaseGuard {
	if timeout <= 0 {
		timeout = DefaultStartTimeout
	}
	return StartPhaseGuard{timeout: timeout}
}

// Enter derives a child context bounded by the guard's timeout. Calling the
// returned cancel func releases the timer on every exit path, including
// non-timeout returns. Nesting is supported: if parent already carries an
// earlier deadline, Enter never loosens it — context.WithTimeout already
// has this property, since it only ever tightens a deadline.
func (g StartPhaseGuard) Enter(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, g.timeout)
}

// IsStartPhaseTimeout reports whether ctx's error indicates the start-phase
// guard (as opposed to an externally supplied, outer context) expired.
func IsStartPhaseTimeout(ctx context.Context) bool {
	return ctx.Err() == context.DeadlineExceeded
}
