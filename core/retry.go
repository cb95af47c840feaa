package core

import (
	"math"
	"math/rand"
	"time"
)

// RetryPolicy governs retry behavior for the start phase of an operation
// (§4.3, §4.4). It is never consulted once the first delta has been
// emitted or a non-stream response has begun parsing.
type RetryPolicy struct {
	MaxAttempts  int           // default 3
	BaseDelay    time.Duration // default 250ms
	MaxDelay     time.Duration // default 10s
	ExponentBase float64       // default 2

	// RetryableCodes is the set of ErrorCodes this policy will retry. Timeout
	// is included here because the retry loop only ever runs during the
	// start phase, where a timeout is retryable by definition (§4.1, §4.4).
	RetryableCodes map[ErrorCode]bool
}

// DefaultRetryPolicy returns the policy described in §4.4: 3 attempts,
// 250ms base delay, 10s cap, base-2 exponential backoff with full jitter,
// retrying transient, rate_limit, and start-phase timeout.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  3,
		BaseDelay:    250 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		ExponentBase: 2,
		RetryableCodes: map[ErrorCode]bool{
			ErrCodeTransient: true,
			ErrCodeRateLimit: true,
			ErrCodeTimeout:   true,
		},
	}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 3
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = 250 * time.Millisecond
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 10 * time.Second
	}
	if p.ExponentBase <= 1 {
		p.ExponentBase = 2
	}
	if p.RetryableCodes == nil {
		p.RetryableCodes = DefaultRetryPolicy().RetryableCodes
	}
	return p
}

// ShouldRetry reports whether attempt (0-indexed, the attempt that just
// failed) should be retried given code, and the full-jitter delay to wait
// before the next attempt.
func (p RetryPolicy) ShouldRetry(attempt int, code ErrorCode) (time.Duration, bool) {
	p = p.normalized()
	if attempt+1 >= p.MaxAttempts {
		return 0, false
	}
	if !p.RetryableCodes[code] {
		return 0, false
	}
	capDelay := float64(p.BaseDelay) * math.Pow(p.ExponentBase, float64(attempt))
	if capDelay > float64(p.MaxDelay) {
		capDelay = float64(p.MaxDelay)
	}
	// Full jitter: uniform random delay in [0, capDelay].
	delay := time.Duration(rand.Float64() * capDelay)
	return delay, true
}
