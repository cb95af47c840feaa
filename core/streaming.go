package core

import (
	"context"
	"fmt"
	"time"
)

// Delta is an incremental fragment of assistant output.
type Delta struct {
	Text string `json:"text"`
}

// EventKind discriminates a ChatStreamEvent. Exactly one of Delta/Terminal
// is populated, matching Kind.
type EventKind string

const (
	EventKindDelta    EventKind = "delta"
	EventKindTerminal EventKind = "terminal"
)

// ChatStreamEvent is the single event type emitted on a stream's Events
// channel. A well-formed stream emits zero or more Delta events followed by
// exactly one Terminal event, then closes (§4.11). Terminal is never
// followed by anything else, success or error.
type ChatStreamEvent struct {
	Kind     EventKind
	Delta    *Delta
	Terminal *Terminal
}

// Terminal carries the single closing event of a stream: either the
// accumulated success metadata, or the error that ended it. ErrorCode is
// the zero value ("") on success.
type Terminal struct {
	ErrorCode  ErrorCode
	Error      string // "<code>:<message>", empty on success
	RequestID  string
	ResponseID string
	Tokens     TokenUsage
	Metrics    StreamMetrics
	ToolCalls  []ToolCall // assembled from fragments by ToolCallFinalizer, if set
}

// StreamMetrics is the per-stream measurement record defined in §4.12.
// Invariants enforced by the adapter before Terminal is built:
//   - EmittedCount == 0 iff TimeToFirstTokenMs == nil
//   - EmittedCount  > 0 implies 0 < TimeToFirstTokenMs <= TotalDurationMs
type StreamMetrics struct {
	EmittedCount       int
	TimeToFirstTokenMs *int
	TotalDurationMs    int
	Provider           string
	Model              ModelID
	Operation          string
	Attempt            int
	FailureClass       ErrorCode
	FallbackUsed       bool
}

// NativeChunk is an opaque provider-native stream element, passed unmodified
// from a NativeStream to the adapter's Translator.
type NativeChunk any

// NativeStream is the iterator contract a Starter hands back (§4.9). Next
// returns ok=false with a nil error on a clean end of stream. A non-nil
// error always takes precedence over ok.
type NativeStream interface {
	Next(ctx context.Context) (chunk NativeChunk, ok bool, err error)
}

// StarterResult is the single tagged record a Starter returns, replacing the
// three shapes (bare iterable, pair, mapping) the distilled contract
// describes: every adapter normalizes its provider's response into this one
// type at construction time, so the streaming core never branches on shape.
type StarterResult struct {
	Stream     NativeStream
	RequestID  string
	ResponseID string
}

// Starter performs the synchronous start phase of a streamed call (opening
// the HTTP connection, issuing the local-process invocation, etc.) and
// returns a StarterResult whose Stream is ready to be pulled from. It is
// re-invoked once per retry attempt and MUST be side-effect-idempotent: a
// previous attempt's partially-opened connection must not leak state into
// the next call.
type Starter func(ctx context.Context) (StarterResult, error)

// Translator converts a single native chunk into at most one Delta. A nil
// Delta with a nil error means the chunk carried no text (e.g. a metadata-
// only frame) and is silently skipped. A non-nil error means the chunk was
// malformed; per §4.11 the adapter suppresses the error, skips the chunk,
// and continues — a single malformed chunk never aborts the stream.
type Translator func(chunk NativeChunk) (*Delta, error)

// StreamingAdapter drives one stream's lifecycle: Init -> Starting ->
// Streaming -> Finalized. It owns the start-phase timeout and retry loop;
// once the first chunk has been pulled from the native stream, neither
// applies again for the remainder of the call (§4.3, §4.4, §4.11).
type StreamingAdapter struct {
	Provider   string
	Model      ModelID
	Operation  string // e.g. "stream_chat"
	Starter    Starter
	Translator Translator

	StartGuard  StartPhaseGuard
	RetryPolicy RetryPolicy
	Cancel      *CancellationToken

	Logger  Logger
	Metrics MetricsExporter

	// ToolCallFinalizer, if set, runs once after the native stream ends
	// successfully (never on a mid-stream failure). It assembles whatever
	// tool-call fragments the Translator fed into a provider-owned
	// accumulator (e.g. providers/internal/toolcalls.Assembler) into
	// canonical ToolCalls for Terminal. A provider with no streamed
	// tool-calling support leaves this nil and Terminal.ToolCalls stays empty.
	ToolCallFinalizer func() ([]ToolCall, error)
}

// StreamHandle is the consumer-facing view of a running stream.
type StreamHandle struct {
	Events <-chan ChatStreamEvent
	cancel *CancellationToken
}

// Cancel requests cooperative cancellation. It never blocks and never
// guarantees an immediate stop; the adapter observes it at its next
// checkpoint (§4.3).
func (h *StreamHandle) Cancel(reason string) {
	if h.cancel != nil {
		h.cancel.Cancel(reason)
	}
}

// Run starts the stream's lifecycle on a new goroutine and returns
// immediately with a handle whose Events channel is fed as the stream
// progresses. The channel is always closed exactly once, after the single
// Terminal event has been sent.
func (a *StreamingAdapter) Run(ctx context.Context) *StreamHandle {
	if a.Cancel == nil {
		a.Cancel = NewCancellationToken()
	}
	events := make(chan ChatStreamEvent, 16)
	handle := &StreamHandle{Events: events, cancel: a.Cancel}

	go a.run(ctx, events)

	return handle
}

func (a *StreamingAdapter) run(ctx context.Context, events chan<- ChatStreamEvent) {
	defer close(events)

	start := time.Now()
	metrics := StreamMetrics{Provider: a.Provider, Model: a.Model, Operation: a.Operation}

	result, attempt, startErr := a.startWithRetry(ctx)
	if startErr != nil {
		metrics.Attempt = attempt
		a.finalize(events, metrics, start, nil, startErr)
		return
	}
	metrics.Attempt = attempt
	metrics.FallbackUsed = attempt > 0

	var firstTokenAt time.Time
	emitted := 0

	for {
		if a.Cancel.IsCancelled() {
			cancelErr := &ProviderError{
				Code: ErrCodeCancelled, Message: a.Cancel.Reason(),
				Provider: a.Provider, Operation: a.Operation, Stage: StageMidStream,
			}
			metrics.EmittedCount = emitted
			a.finalize(events, metrics, start, &result, cancelErr)
			return
		}

		chunk, ok, err := result.Stream.Next(ctx)
		if err != nil {
			metrics.EmittedCount = emitted
			perr := NewProviderError(a.Provider, a.Operation, StageMidStream, 0,
				err.Error(), err)
			a.finalize(events, metrics, start, &result, perr)
			return
		}
		if !ok {
			break
		}

		delta, terr := a.Translator(chunk)
		if terr != nil {
			a.logDebug("chunk_translate_error", map[string]any{"error": terr.Error()})
			continue
		}
		if delta == nil {
			continue
		}

		if emitted == 0 {
			firstTokenAt = time.Now()
		}
		emitted++

		select {
		case events <- ChatStreamEvent{Kind: EventKindDelta, Delta: delta}:
		case <-ctx.Done():
			metrics.EmittedCount = emitted
			a.finalize(events, metrics, start, &result,
				NewProviderError(a.Provider, a.Operation, StageMidStream, 0, "context done", ctx.Err()))
			return
		}
	}

	metrics.EmittedCount = emitted
	if emitted > 0 {
		ttft := int(firstTokenAt.Sub(start).Milliseconds())
		metrics.TimeToFirstTokenMs = &ttft
	}

	var toolCalls []ToolCall
	if a.ToolCallFinalizer != nil {
		tc, err := a.ToolCallFinalizer()
		if err != nil {
			perr := NewProviderError(a.Provider, a.Operation, StageFinalize, 0, err.Error(), err)
			a.finalize(events, metrics, start, &result, perr)
			return
		}
		toolCalls = tc
	}

	a.finalizeWithToolCalls(events, metrics, start, &result, nil, toolCalls)
}

// startWithRetry runs the start phase under the start-phase guard, retrying
// per RetryPolicy on a retryable ErrorCode. It never retries once any
// native chunk has been observed.
func (a *StreamingAdapter) startWithRetry(ctx context.Context) (StarterResult, int, error) {
	policy := a.RetryPolicy.normalized()
	var lastErr error

	for attempt := 0; ; attempt++ {
		if a.Cancel.IsCancelled() {
			return StarterResult{}, attempt, &ProviderError{
				Code: ErrCodeCancelled, Message: a.Cancel.Reason(),
				Provider: a.Provider, Operation: a.Operation, Stage: StageStart,
			}
		}

		guardCtx, cancel := a.StartGuard.Enter(ctx)
		result, err := a.Starter(guardCtx)
		cancel()

		if err == nil {
			if result.Stream == nil {
				// A Starter returning a nil Stream with no error is an
				// internal contract violation: it never happens for a
				// well-formed adapter, so treat it as an internal error
				// rather than retrying indefinitely.
				return StarterResult{}, attempt, &ProviderError{
					Code: ErrCodeInternal, Message: "starter returned no stream",
					Provider: a.Provider, Operation: a.Operation, Stage: StageStart,
				}
			}
			return result, attempt, nil
		}

		status := 0
		if IsStartPhaseTimeout(guardCtx) && ctx.Err() == nil {
			status = 0
		}
		code := Classify(status, err)
		var startErr *ProviderError
		if asProviderError(err, &startErr) && startErr.Code != "" {
			code = startErr.Code
		}
		if IsStartPhaseTimeout(guardCtx) && ctx.Err() == nil {
			code = ErrCodeTimeout
		}
		lastErr = &ProviderError{
			Code: code, Message: err.Error(), Cause: err,
			Retryable: code.Retryable() || code == ErrCodeTimeout,
			Provider:  a.Provider, Operation: a.Operation, Stage: StageStart,
		}

		delay, retry := policy.ShouldRetry(attempt, code)
		if !retry {
			return StarterResult{}, attempt, lastErr
		}

		a.logDebug("start_retry", map[string]any{
			"attempt": attempt, "error_code": string(code), "delay_ms": delay.Milliseconds(),
		})

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return StarterResult{}, attempt, lastErr
		}
	}
}

func (a *StreamingAdapter) finalize(events chan<- ChatStreamEvent, metrics StreamMetrics, start time.Time, result *StarterResult, failure error) {
	a.finalizeWithToolCalls(events, metrics, start, result, failure, nil)
}

func (a *StreamingAdapter) finalizeWithToolCalls(events chan<- ChatStreamEvent, metrics StreamMetrics, start time.Time, result *StarterResult, failure error, toolCalls []ToolCall) {
	metrics.TotalDurationMs = int(time.Since(start).Milliseconds())

	term := Terminal{Metrics: metrics, Tokens: TokenUsage{}, ToolCalls: toolCalls}
	if result != nil {
		term.RequestID = result.RequestID
		term.ResponseID = result.ResponseID
	}

	if failure != nil {
		var perr *ProviderError
		code := ErrCodeUnknown
		message := failure.Error()
		if asProviderError(failure, &perr) {
			code = perr.Code
			message = perr.Message
		}
		term.ErrorCode = code
		term.Error = FormatTerminalError(code, message)
		metrics.FailureClass = code
	}

	a.logTerminal(metrics, term)
	a.emitMetrics(metrics)

	events <- ChatStreamEvent{Kind: EventKindTerminal, Terminal: &term}
}

func asProviderError(err error, out **ProviderError) bool {
	if pe, ok := err.(*ProviderError); ok {
		*out = pe
		return true
	}
	return false
}

func (a *StreamingAdapter) logDebug(event string, fields map[string]any) {
	if a.Logger == nil {
		return
	}
	a.Logger.Debug(event, fields)
}

func (a *StreamingAdapter) logTerminal(metrics StreamMetrics, term Terminal) {
	if a.Logger == nil {
		return
	}
	fields := map[string]any{
		"event":                  "stream_terminal",
		"provider":               a.Provider,
		"operation":              a.Operation,
		"stage":                  StageFinalize,
		"attempt":                metrics.Attempt,
		"fallback_used":          metrics.FallbackUsed,
		"emitted":                metrics.EmittedCount > 0,
		"emitted_count":          metrics.EmittedCount,
		"time_to_first_token_ms": metrics.TimeToFirstTokenMs,
		"total_duration_ms":      metrics.TotalDurationMs,
		"request_id":             term.RequestID,
		"response_id":            term.ResponseID,
		"error_code":             term.ErrorCode,
		"failure_class":          metrics.FailureClass,
	}
	if term.ErrorCode != "" {
		a.Logger.Error("stream_terminal", fields)
	} else {
		a.Logger.Info("stream_terminal", fields)
	}
}

// emitMetrics hands the terminal metrics to the configured exporter.
// Exporters MUST NOT raise; a panicking exporter is caught and logged as
// metrics.export.error rather than crashing the stream goroutine (§4.12, §7).
func (a *StreamingAdapter) emitMetrics(metrics StreamMetrics) {
	if a.Metrics == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil && a.Logger != nil {
			a.Logger.Error("metrics.export.error", map[string]any{
				"provider":  a.Provider,
				"operation": a.Operation,
				"error":     fmt.Sprintf("%v", r),
			})
		}
	}()
	a.Metrics.Emit(StreamMetricsPayload{
		Provider:           metrics.Provider,
		Model:              metrics.Model,
		Operation:          metrics.Operation,
		Attempt:            metrics.Attempt,
		FallbackUsed:       metrics.FallbackUsed,
		EmittedCount:       metrics.EmittedCount,
		TimeToFirstTokenMs: metrics.TimeToFirstTokenMs,
		TotalDurationMs:    metrics.TotalDurationMs,
		FailureClass:       metrics.FailureClass,
	})
}

// DrainStream collects a full stream into a single ChatResponse, for callers
// that want non-streaming ergonomics over a streaming adapter. It blocks
// until the stream's Terminal event arrives or ctx is done, in which case it
// requests cancellation on the handle before returning.
func DrainStream(ctx context.Context, h *StreamHandle) (*ChatResponse, error) {
	var text []byte

	for {
		select {
		case <-ctx.Done():
			h.Cancel("context done")
			return nil, ctx.Err()

		case ev, ok := <-h.Events:
			if !ok {
				return nil, &ProviderError{Code: ErrCodeInternal, Message: "stream closed without terminal event"}
			}
			switch ev.Kind {
			case EventKindDelta:
				text = append(text, ev.Delta.Text...)
			case EventKindTerminal:
				if ev.Terminal.ErrorCode != "" {
					return nil, &ProviderError{
						Code: ev.Terminal.ErrorCode, Message: ev.Terminal.Error,
					}
				}
				return &ChatResponse{
					Text:         string(text),
					FinishReason: FinishStop,
					Metadata: ProviderMetadata{
						RequestID:  ev.Terminal.RequestID,
						ResponseID: ev.Terminal.ResponseID,
						Tokens:     ev.Terminal.Tokens,
					},
					ToolCalls: ev.Terminal.ToolCalls,
				}, nil
			}
		}
	}
}
