package anthropic

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/petal-labs/iris/core"
)

func TestDoStreamChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("x-api-key = %q, want 'test-key'", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") != DefaultVersion {
			t.Errorf("anthropic-version = %q, want %q", r.Header.Get("anthropic-version"), DefaultVersion)
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("request-id", "req_stream_123")
		w.WriteHeader(http.StatusOK)

		events := []string{
			`event: message_start`,
			`data: {"type":"message_start","message":{"id":"msg_stream","model":"claude-sonnet-4-5","usage":{"input_tokens":10,"output_tokens":0}}}`,
			``,
			`event: content_block_start`,
			`data: {"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`,
			``,
			`event: content_block_delta`,
			`data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hello"}}`,
			``,
			`event: content_block_delta`,
			`data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":" world!"}}`,
			``,
			`event: content_block_stop`,
			`data: {"type":"content_block_stop","index":0}`,
			``,
			`event: message_delta`,
			`data: {"type":"message_delta","delta":{"stop_reason":"end_turn"},"usage":{"output_tokens":5}}`,
			``,
			`event: message_stop`,
			`data: {"type":"message_stop"}`,
			``,
		}

		for _, line := range events {
			w.Write([]byte(line + "\n"))
		}
	}))
	defer server.Close()

	p := New("test-key", WithBaseURL(server.URL))

	req := &core.ChatRequest{
		Model: "claude-sonnet-4-5",
		Messages: []core.Message{
			{Role: core.RoleUser, Content: "Hello"},
		},
	}

	handle, err := p.StreamChat(context.Background(), req)
	if err != nil {
		t.Fatalf("StreamChat() error = %v", err)
	}

	var chunks []string
	var terminal *core.Terminal
	for ev := range handle.Events {
		switch ev.Kind {
		case core.EventKindDelta:
			chunks = append(chunks, ev.Delta.Text)
		case core.EventKindTerminal:
			terminal = ev.Terminal
		}
	}

	if len(chunks) != 2 {
		t.Errorf("chunks count = %d, want 2", len(chunks))
	}

	accumulated := strings.Join(chunks, "")
	if accumulated != "Hello world!" {
		t.Errorf("accumulated = %q, want 'Hello world!'", accumulated)
	}

	if terminal == nil {
		t.Fatal("terminal event missing")
	}

	if terminal.ErrorCode != "" {
		t.Errorf("ErrorCode = %q, want empty", terminal.ErrorCode)
	}

	if terminal.Metrics.EmittedCount != 2 {
		t.Errorf("EmittedCount = %d, want 2", terminal.Metrics.EmittedCount)
	}

	if terminal.Metrics.TimeToFirstTokenMs == nil {
		t.Error("TimeToFirstTokenMs should be set")
	}
}

func TestDoStreamChatToolUseOnly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)

		events := []string{
			`event: message_start`,
			`data: {"type":"message_start","message":{"id":"msg_tool","model":"claude-sonnet-4-5","usage":{"input_tokens":20,"output_tokens":0}}}`,
			``,
			`event: content_block_start`,
			`data: {"type":"content_block_start","index":0,"content_block":{"type":"tool_use","id":"tool_abc","name":"get_weather"}}`,
			``,
			`event: content_block_delta`,
			`data: {"type":"content_block_delta","index":0,"delta":{"type":"input_json_delta","partial_json":"{\"location\":\"NYC\"}"}}`,
			``,
			`event: content_block_stop`,
			`data: {"type":"content_block_stop","index":0}`,
			``,
			`event: message_delta`,
			`data: {"type":"message_delta","delta":{"stop_reason":"tool_use"},"usage":{"output_tokens":10}}`,
			``,
			`event: message_stop`,
			`data: {"type":"message_stop"}`,
			``,
		}

		for _, line := range events {
			w.Write([]byte(line + "\n"))
		}
	}))
	defer server.Close()

	p := New("test-key", WithBaseURL(server.URL))

	req := &core.ChatRequest{
		Model: "claude-sonnet-4-5",
		Messages: []core.Message{
			{Role: core.RoleUser, Content: "What's the weather?"},
		},
	}

	handle, err := p.StreamChat(context.Background(), req)
	if err != nil {
		t.Fatalf("StreamChat() error = %v", err)
	}

	var chunks []string
	var terminal *core.Terminal
	for ev := range handle.Events {
		switch ev.Kind {
		case core.EventKindDelta:
			chunks = append(chunks, ev.Delta.Text)
		case core.EventKindTerminal:
			terminal = ev.Terminal
		}
	}

	if len(chunks) != 0 {
		t.Errorf("chunks count = %d, want 0 (tool use only)", len(chunks))
	}

	if terminal == nil {
		t.Fatal("terminal event missing")
	}

	if terminal.ErrorCode != "" {
		t.Errorf("ErrorCode = %q, want empty", terminal.ErrorCode)
	}

	if terminal.Metrics.EmittedCount != 0 {
		t.Errorf("EmittedCount = %d, want 0", terminal.Metrics.EmittedCount)
	}

	if len(terminal.ToolCalls) != 1 {
		t.Fatalf("ToolCalls count = %d, want 1", len(terminal.ToolCalls))
	}
	if terminal.ToolCalls[0].ID != "tool_abc" || terminal.ToolCalls[0].Name != "get_weather" {
		t.Errorf("ToolCalls[0] = %+v", terminal.ToolCalls[0])
	}
	if string(terminal.ToolCalls[0].Arguments) != `{"location":"NYC"}` {
		t.Errorf("ToolCalls[0].Arguments = %s, want {\"location\":\"NYC\"}", terminal.ToolCalls[0].Arguments)
	}
}

func TestDoStreamChatStructuredFormatUnsupported(t *testing.T) {
	p := New("test-key")

	req := &core.ChatRequest{
		Model:          "claude-sonnet-4-5",
		Messages:       []core.Message{{Role: core.RoleUser, Content: "Hello"}},
		ResponseFormat: core.ResponseFormat{Kind: core.ResponseFormatJSONObject},
	}

	_, err := p.StreamChat(context.Background(), req)
	if err == nil {
		t.Fatal("StreamChat() error = nil, want unsupported")
	}

	var perr *core.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("error is not a *core.ProviderError: %v", err)
	}
	if perr.Code != core.ErrCodeUnsupported {
		t.Errorf("Code = %q, want unsupported", perr.Code)
	}
	if perr.Feature != core.FeatureStructuredStreaming {
		t.Errorf("Feature = %q, want structured_streaming", perr.Feature)
	}
}

func TestDoStreamChatError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"Invalid API key"}}`))
	}))
	defer server.Close()

	p := New("bad-key", WithBaseURL(server.URL), WithRetryPolicy(core.RetryPolicy{MaxAttempts: 1}))

	req := &core.ChatRequest{
		Model: "claude-sonnet-4-5",
		Messages: []core.Message{
			{Role: core.RoleUser, Content: "Hello"},
		},
	}

	handle, err := p.StreamChat(context.Background(), req)
	if err != nil {
		t.Fatalf("StreamChat() error = %v", err)
	}

	var terminal *core.Terminal
	for ev := range handle.Events {
		if ev.Kind == core.EventKindTerminal {
			terminal = ev.Terminal
		}
	}

	if terminal == nil {
		t.Fatal("terminal event missing")
	}

	if terminal.ErrorCode != core.ErrCodeAuth {
		t.Errorf("ErrorCode = %q, want auth", terminal.ErrorCode)
	}

	if !strings.Contains(terminal.Error, "Invalid API key") {
		t.Errorf("Error = %q, want to contain 'Invalid API key'", terminal.Error)
	}
}

func TestDoStreamChatMidStreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)

		events := []string{
			`event: content_block_delta`,
			`data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hello"}}`,
			``,
			`event: error`,
			`data: {"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`,
			``,
		}

		for _, line := range events {
			w.Write([]byte(line + "\n"))
		}
	}))
	defer server.Close()

	p := New("test-key", WithBaseURL(server.URL))

	req := &core.ChatRequest{
		Model: "claude-sonnet-4-5",
		Messages: []core.Message{
			{Role: core.RoleUser, Content: "Hello"},
		},
	}

	handle, err := p.StreamChat(context.Background(), req)
	if err != nil {
		t.Fatalf("StreamChat() error = %v", err)
	}

	var chunks []string
	var terminal *core.Terminal
	for ev := range handle.Events {
		switch ev.Kind {
		case core.EventKindDelta:
			chunks = append(chunks, ev.Delta.Text)
		case core.EventKindTerminal:
			terminal = ev.Terminal
		}
	}

	if len(chunks) != 1 {
		t.Errorf("chunks count = %d, want 1", len(chunks))
	}

	if terminal == nil {
		t.Fatal("terminal event missing")
	}

	if terminal.ErrorCode == "" {
		t.Error("ErrorCode should be set for mid-stream error")
	}
}
