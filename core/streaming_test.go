package core

import (
	"context"
	"errors"
	"testing"
)

// sliceStream replays a fixed list of native chunks.
type sliceStream struct {
	chunks []NativeChunk
	index  int
}

func (s *sliceStream) Next(ctx context.Context) (NativeChunk, bool, error) {
	if s.index >= len(s.chunks) {
		return nil, false, nil
	}
	chunk := s.chunks[s.index]
	s.index++
	return chunk, true, nil
}

func textTranslator(chunk NativeChunk) (*Delta, error) {
	text, _ := chunk.(string)
	if text == "" {
		return nil, nil
	}
	return &Delta{Text: text}, nil
}

func drainAll(t *testing.T, handle *StreamHandle) (string, *Terminal) {
	t.Helper()
	var text string
	var term *Terminal
	for ev := range handle.Events {
		switch ev.Kind {
		case EventKindDelta:
			text += ev.Delta.Text
		case EventKindTerminal:
			term = ev.Terminal
		}
	}
	return text, term
}

func TestStreamingAdapterToolCallFinalizer(t *testing.T) {
	calls := []ToolCall{{ID: "call_1", Name: "get_weather", Arguments: []byte(`{"location":"NYC"}`)}}

	adapter := &StreamingAdapter{
		Provider:  "test",
		Model:     "test-model",
		Operation: "stream_chat",
		Starter: func(ctx context.Context) (StarterResult, error) {
			return StarterResult{Stream: &sliceStream{chunks: []NativeChunk{"hello"}}}, nil
		},
		Translator:        textTranslator,
		ToolCallFinalizer: func() ([]ToolCall, error) { return calls, nil },
		StartGuard:        NewStartPhaseGuard(0),
	}

	handle := adapter.Run(context.Background())
	text, term := drainAll(t, handle)

	if text != "hello" {
		t.Errorf("text = %q, want hello", text)
	}
	if term == nil {
		t.Fatal("expected a Terminal event")
	}
	if len(term.ToolCalls) != 1 || term.ToolCalls[0].Name != "get_weather" {
		t.Errorf("ToolCalls = %+v, want one get_weather call", term.ToolCalls)
	}
}

func TestStreamingAdapterToolCallFinalizerError(t *testing.T) {
	finalizeErr := errors.New("malformed tool call arguments")

	adapter := &StreamingAdapter{
		Provider:  "test",
		Model:     "test-model",
		Operation: "stream_chat",
		Starter: func(ctx context.Context) (StarterResult, error) {
			return StarterResult{Stream: &sliceStream{chunks: []NativeChunk{"hi"}}}, nil
		},
		Translator:        textTranslator,
		ToolCallFinalizer: func() ([]ToolCall, error) { return nil, finalizeErr },
		StartGuard:        NewStartPhaseGuard(0),
	}

	handle := adapter.Run(context.Background())
	_, term := drainAll(t, handle)

	if term == nil {
		t.Fatal("expected a Terminal event")
	}
	if term.ErrorCode == "" {
		t.Error("expected a non-empty ErrorCode when the finalizer fails")
	}
	if len(term.ToolCalls) != 0 {
		t.Errorf("ToolCalls = %+v, want none on finalize failure", term.ToolCalls)
	}
}

func TestStreamingAdapterNoToolCallFinalizer(t *testing.T) {
	adapter := &StreamingAdapter{
		Provider:  "test",
		Model:     "test-model",
		Operation: "stream_chat",
		Starter: func(ctx context.Context) (StarterResult, error) {
			return StarterResult{Stream: &sliceStream{chunks: []NativeChunk{"hi"}}}, nil
		},
		Translator: textTranslator,
		StartGuard: NewStartPhaseGuard(0),
	}

	handle := adapter.Run(context.Background())
	_, term := drainAll(t, handle)

	if term == nil {
		t.Fatal("expected a Terminal event")
	}
	if term.ToolCalls != nil {
		t.Errorf("ToolCalls = %+v, want nil when no finalizer is configured", term.ToolCalls)
	}
}
