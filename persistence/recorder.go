package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/petal-labs/iris/core"
)

// Recorder bundles the repository ports a RecordingProvider writes to. Any
// field left nil skips that concern, so callers can persist chat logs
// without also persisting capability evidence, or vice versa.
type Recorder struct {
	ChatLogs     ChatLogRepository
	Capabilities ObservedCapabilityStore
	Logger       core.Logger
}

// Wrap decorates p so every Chat/StreamChat call appends a ChatLog and
// records observed-capability evidence once the call completes, closing
// the gap between the request lifecycle and the persistence ports: neither
// core.Client nor a bare provider ever calls these repositories on its own
// (§4.10 adapter duties 4-5, §2's non-stream data flow).
func Wrap(p core.Provider, r Recorder) core.Provider {
	return &recordingProvider{Provider: p, rec: r}
}

type recordingProvider struct {
	core.Provider
	rec Recorder
}

func (rp *recordingProvider) logger() core.Logger {
	if rp.rec.Logger == nil {
		return core.NoopLogger{}
	}
	return rp.rec.Logger
}

// Chat delegates to the wrapped provider, then appends a ChatLog and records
// chat-capability evidence from the outcome.
func (rp *recordingProvider) Chat(ctx context.Context, req *core.ChatRequest) (*core.ChatResponse, error) {
	resp, err := rp.Provider.Chat(ctx, req)
	rp.recordChat(ctx, req, "chat", resp, err)
	rp.recordCapability(ctx, req.Model, core.FeatureChat, err)
	return resp, err
}

// StreamChat delegates to the wrapped provider, records streaming-capability
// evidence from the start-phase outcome, and tees the event channel so the
// ChatLog is appended once the stream's Terminal event is observed, without
// consuming events the caller still needs to read.
func (rp *recordingProvider) StreamChat(ctx context.Context, req *core.ChatRequest) (*core.StreamHandle, error) {
	handle, err := rp.Provider.StreamChat(ctx, req)
	rp.recordCapability(ctx, req.Model, core.FeatureChatStreaming, err)
	if req.ResponseFormat.Structured() {
		rp.recordCapability(ctx, req.Model, core.FeatureStructuredStreaming, err)
	}
	if err != nil {
		rp.recordChat(ctx, req, "stream_chat", nil, err)
		return nil, err
	}

	original := handle.Events
	tee := make(chan core.ChatStreamEvent, 16)
	handle.Events = tee

	go func() {
		defer close(tee)
		for ev := range original {
			tee <- ev
			if ev.Kind == core.EventKindTerminal && ev.Terminal != nil {
				rp.recordStreamTerminal(ctx, req, ev.Terminal)
			}
		}
	}()

	return handle, nil
}

func (rp *recordingProvider) recordChat(ctx context.Context, req *core.ChatRequest, operation string, resp *core.ChatResponse, callErr error) {
	if rp.rec.ChatLogs == nil {
		return
	}

	log := ChatLog{
		Provider:      rp.Provider.ID(),
		Model:         req.Model,
		Operation:     operation,
		CorrelationID: req.CorrelationID,
		CreatedAt:     time.Now(),
	}

	if resp != nil {
		log.RequestID = resp.Metadata.RequestID
		log.ResponseID = resp.Metadata.ResponseID
		log.FinishReason = resp.FinishReason
		log.Tokens = resp.Metadata.Tokens
	}

	var provErr *core.ProviderError
	if errors.As(callErr, &provErr) {
		log.ErrorCode = provErr.Code
	}

	if err := rp.rec.ChatLogs.AppendChatLog(ctx, log); err != nil {
		rp.logger().Error("chat_log.append.error", map[string]any{
			"provider": rp.Provider.ID(), "operation": operation, "error": err.Error(),
		})
	}
}

func (rp *recordingProvider) recordStreamTerminal(ctx context.Context, req *core.ChatRequest, term *core.Terminal) {
	if rp.rec.ChatLogs == nil {
		return
	}

	log := ChatLog{
		Provider:      rp.Provider.ID(),
		Model:         req.Model,
		Operation:     "stream_chat",
		CorrelationID: req.CorrelationID,
		RequestID:     term.RequestID,
		ResponseID:    term.ResponseID,
		Tokens:        term.Tokens,
		ErrorCode:     term.ErrorCode,
		CreatedAt:     time.Now(),
	}
	if term.ErrorCode == "" {
		log.FinishReason = core.FinishStop
	}

	if err := rp.rec.ChatLogs.AppendChatLog(ctx, log); err != nil {
		rp.logger().Error("chat_log.append.error", map[string]any{
			"provider": rp.Provider.ID(), "operation": "stream_chat", "error": err.Error(),
		})
	}
}

func (rp *recordingProvider) recordCapability(ctx context.Context, model core.ModelID, feature core.Feature, callErr error) {
	if rp.rec.Capabilities == nil {
		return
	}

	state := core.CapabilitySupported
	var provErr *core.ProviderError
	if errors.As(callErr, &provErr) && provErr.Code == core.ErrCodeUnsupported {
		// provErr.Feature, when set, names exactly which capability the
		// rejection is evidence about (e.g. a stream rejected for requesting
		// structured output on a model that otherwise streams fine is
		// evidence against structured_streaming, not against streaming
		// itself). A rejection naming a different feature than the one
		// being recorded here is not evidence either way for this feature.
		if provErr.Feature != "" && provErr.Feature != feature {
			return
		}
		state = core.CapabilityRejected
	} else if callErr != nil {
		// A failure unrelated to capability (timeout, rate limit, auth, ...)
		// is not evidence either way; only unsupported rejections and clean
		// successes are recorded (§4.7).
		return
	}

	obs := core.ObservedCapability{
		Provider:   rp.Provider.ID(),
		Model:      model,
		Feature:    feature,
		State:      state,
		ObservedAt: time.Now(),
	}
	if err := rp.rec.Capabilities.Record(ctx, obs); err != nil {
		rp.logger().Error("observed_capability.record.error", map[string]any{
			"provider": rp.Provider.ID(), "feature": string(feature), "error": err.Error(),
		})
	}
}

var _ core.Provider = (*recordingProvider)(nil)

// metricsExporter adapts a MetricsRepository to core.MetricsExporter, so a
// *sqlite.Store (or any MetricsRepository) can be passed directly to a
// provider's WithMetrics option and receive every StreamMetricsPayload a
// stream finalizes with.
type metricsExporter struct {
	repo   MetricsRepository
	logger core.Logger
}

// MetricsExporter wraps repo as a core.MetricsExporter. Failures to persist
// are logged, never propagated: Emit must not block or panic (§4.12).
func MetricsExporter(repo MetricsRepository, logger core.Logger) core.MetricsExporter {
	if logger == nil {
		logger = core.NoopLogger{}
	}
	return &metricsExporter{repo: repo, logger: logger}
}

func (e *metricsExporter) Emit(payload core.StreamMetricsPayload) {
	record := MetricsRecord{
		Provider:           payload.Provider,
		Model:              payload.Model,
		Operation:          payload.Operation,
		Attempt:            payload.Attempt,
		FallbackUsed:       payload.FallbackUsed,
		EmittedCount:       payload.EmittedCount,
		TimeToFirstTokenMs: payload.TimeToFirstTokenMs,
		TotalDurationMs:    payload.TotalDurationMs,
		FailureClass:       payload.FailureClass,
		CreatedAt:          time.Now(),
	}
	if err := e.repo.AppendMetrics(context.Background(), record); err != nil {
		e.logger.Error("metrics_record.append.error", map[string]any{"error": err.Error()})
	}
}

var _ core.MetricsExporter = (*metricsExporter)(nil)
