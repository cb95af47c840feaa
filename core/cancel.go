package core

import "sync/atomic"

// CancellationToken is a cooperative, not preemptive, cancellation signal
// (§4.3). A single Cancel transition sets the token to signaled; it never
// un-signals. IsCancelled is checkpointed by the streaming adapter before
// each native chunk is translated, after successful drain, and before
// retry attempts.
type CancellationToken struct {
	signaled atomic.Bool
	reason   atomic.Value // string
}

// NewCancellationToken returns a token in the un-signaled state.
func NewCancellationToken() *CancellationToken {
	return &CancellationToken{}
}

// Cancel signals the token. Only the first call's reason is kept; later
// calls are no-ops on an already-signaled token.
func (t *CancellationToken) Cancel(reason string) {
	if t.signaled.CompareAndSwap(false, true) {
		t.reason.Store(reason)
	}
}

// IsCancelled reports whether Cancel has been called.
func (t *CancellationToken) IsCancelled() bool {
	return t.signaled.Load()
}

// Reason returns the reason passed to the first Cancel call, or "" if the
// token has not been cancelled.
func (t *CancellationToken) Reason() string {
	if v := t.reason.Load(); v != nil {
		return v.(string)
	}
	return ""
}
