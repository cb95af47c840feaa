package core

import (
	"context"
	"time"
)

// CallWithRetry runs fn once per attempt under guard, retrying per policy
// exactly as the streaming adapter's start phase does (§4.3, §4.4). It is
// the non-streaming counterpart: for a non-stream call the entire request
// IS the start phase, so this covers the whole operation, not just an
// opening chunk. Provider Chat() implementations call this instead of
// hand-rolling a retry loop.
func CallWithRetry[T any](
	ctx context.Context,
	guard StartPhaseGuard,
	policy RetryPolicy,
	cancel *CancellationToken,
	fn func(context.Context) (T, error),
) (T, error) {
	policy = policy.normalized()
	var zero T

	for attempt := 0; ; attempt++ {
		if cancel != nil && cancel.IsCancelled() {
			var reason string
			reason = cancel.Reason()
			return zero, &ProviderError{Code: ErrCodeCancelled, Message: reason, Stage: StageStart}
		}

		guardCtx, done := guard.Enter(ctx)
		result, err := fn(guardCtx)
		done()

		if err == nil {
			return result, nil
		}

		code := Classify(0, err)
		if IsStartPhaseTimeout(guardCtx) && ctx.Err() == nil {
			code = ErrCodeTimeout
		}

		delay, retry := policy.ShouldRetry(attempt, code)
		if !retry {
			return zero, err
		}

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return zero, err
		}
	}
}
