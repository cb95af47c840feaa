package mock

import (
	"context"
	"fmt"

	"github.com/petal-labs/iris/core"
)

// doStreamChat composes a core.StreamingAdapter around a fixture stream, so
// callers exercise the same Delta/Terminal lifecycle (§4.11) a real provider
// would produce.
func (p *Mock) doStreamChat(ctx context.Context, req *core.ChatRequest) (*core.StreamHandle, error) {
	if !p.Supports(core.FeatureChatStreaming) {
		return nil, &core.ProviderError{
			Code:      core.ErrCodeUnsupported,
			Message:   fmt.Sprintf("model %s does not support chat streaming", req.Model),
			Provider:  "mock",
			Operation: "stream_chat",
			Stage:     core.StageStart,
			Feature:   core.FeatureChatStreaming,
		}
	}
	if req.ResponseFormat.Structured() && !p.Supports(core.FeatureStructuredStreaming) {
		return nil, &core.ProviderError{
			Code:      core.ErrCodeUnsupported,
			Message:   fmt.Sprintf("model %s does not support a structured response format on a stream", req.Model),
			Provider:  "mock",
			Operation: "stream_chat",
			Stage:     core.StageStart,
			Feature:   core.FeatureStructuredStreaming,
		}
	}

	adapter := &core.StreamingAdapter{
		Provider:    "mock",
		Model:       modelOf(req),
		Operation:   "stream_chat",
		Starter:     p.streamStarter(),
		Translator:  translateChunk,
		StartGuard:  p.startGuard(),
		RetryPolicy: p.retryPolicy(),
		Logger:      core.NoopLogger{},
		Metrics:     core.NoopMetricsExporter{},
	}
	return adapter.Run(ctx), nil
}

func (p *Mock) streamStarter() core.Starter {
	return func(ctx context.Context) (core.StarterResult, error) {
		if p.config.FailWith != nil {
			return core.StarterResult{}, p.config.FailWith
		}

		deltas := p.config.StreamScript
		if deltas == nil {
			deltas = []string{"Hel", "lo"}
		}

		return core.StarterResult{
			Stream: &scriptedStream{ctx: ctx, deltas: deltas, delay: p.config.StreamDelay},
		}, nil
	}
}

// scriptedStream replays a fixed sequence of text fragments as a
// core.NativeStream, honoring context cancellation between fragments.
type scriptedStream struct {
	ctx    context.Context
	deltas []string
	delay  func(index int)
	index  int
}

func (s *scriptedStream) Next(ctx context.Context) (core.NativeChunk, bool, error) {
	if s.index >= len(s.deltas) {
		return nil, false, nil
	}

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	default:
	}

	if s.delay != nil {
		s.delay(s.index)
	}

	chunk := s.deltas[s.index]
	s.index++
	return chunk, true, nil
}

var _ core.NativeStream = (*scriptedStream)(nil)

func translateChunk(native core.NativeChunk) (*core.Delta, error) {
	text, _ := native.(string)
	if text == "" {
		return nil, nil
	}
	return &core.Delta{Text: text}, nil
}
