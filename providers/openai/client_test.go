package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/petal-labs/iris/core"
)

func TestDoChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Method = %q, want POST", r.Method)
		}
		if r.URL.Path != chatCompletionsPath {
			t.Errorf("Path = %q, want %q", r.URL.Path, chatCompletionsPath)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Authorization header incorrect")
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type header incorrect")
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("reading body: %v", err)
		}

		var req openAIRequest
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("unmarshaling request: %v", err)
		}

		if req.Model != "gpt-4o" {
			t.Errorf("Model = %q, want gpt-4o", req.Model)
		}
		if len(req.Messages) != 1 {
			t.Errorf("Messages count = %d, want 1", len(req.Messages))
		}

		w.Header().Set("x-request-id", "req-abc123")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(openAIResponse{
			ID:    "chatcmpl-123",
			Model: "gpt-4o",
			Choices: []openAIChoice{
				{
					Message:      openAIRespMsg{Role: "assistant", Content: "Hello! How can I help you?"},
					FinishReason: "stop",
				},
			},
			Usage: openAIUsage{PromptTokens: 10, CompletionTokens: 8, TotalTokens: 18},
		})
	}))
	defer server.Close()

	p := New("test-key", WithBaseURL(server.URL))

	req := &core.ChatRequest{
		Model: "gpt-4o",
		Messages: []core.Message{
			{Role: core.RoleUser, Content: "Hello"},
		},
	}

	resp, err := p.Chat(context.Background(), req)
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	if resp.Metadata.ResponseID != "chatcmpl-123" {
		t.Errorf("ResponseID = %q, want 'chatcmpl-123'", resp.Metadata.ResponseID)
	}

	if resp.Metadata.Model != "gpt-4o" {
		t.Errorf("Model = %q, want 'gpt-4o'", resp.Metadata.Model)
	}

	if resp.Text != "Hello! How can I help you?" {
		t.Errorf("Text = %q, want 'Hello! How can I help you?'", resp.Text)
	}

	if *resp.Metadata.Tokens.Prompt != 10 {
		t.Errorf("Prompt tokens = %d, want 10", *resp.Metadata.Tokens.Prompt)
	}

	if *resp.Metadata.Tokens.Completion != 8 {
		t.Errorf("Completion tokens = %d, want 8", *resp.Metadata.Tokens.Completion)
	}

	if *resp.Metadata.Tokens.Total != 18 {
		t.Errorf("Total tokens = %d, want 18", *resp.Metadata.Tokens.Total)
	}
}

func TestDoChatWithToolCalls(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(openAIResponse{
			ID:    "chatcmpl-456",
			Model: "gpt-4o",
			Choices: []openAIChoice{
				{
					Message: openAIRespMsg{
						Role: "assistant",
						ToolCalls: []openAIToolCall{
							{
								ID:   "call_abc123",
								Type: "function",
								Function: openAIFunctionCall{
									Name:      "get_weather",
									Arguments: `{"location":"San Francisco","unit":"celsius"}`,
								},
							},
						},
					},
					FinishReason: "tool_calls",
				},
			},
			Usage: openAIUsage{PromptTokens: 15, CompletionTokens: 20, TotalTokens: 35},
		})
	}))
	defer server.Close()

	p := New("test-key", WithBaseURL(server.URL))

	req := &core.ChatRequest{
		Model: "gpt-4o",
		Messages: []core.Message{
			{Role: core.RoleUser, Content: "What's the weather?"},
		},
	}

	resp, err := p.Chat(context.Background(), req)
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	if resp.FinishReason != core.FinishToolUse {
		t.Errorf("FinishReason = %q, want tool_use", resp.FinishReason)
	}

	if len(resp.ToolCalls) != 1 {
		t.Fatalf("ToolCalls count = %d, want 1", len(resp.ToolCalls))
	}

	tc := resp.ToolCalls[0]
	if tc.ID != "call_abc123" {
		t.Errorf("ToolCalls[0].ID = %q, want 'call_abc123'", tc.ID)
	}
	if tc.Name != "get_weather" {
		t.Errorf("ToolCalls[0].Name = %q, want 'get_weather'", tc.Name)
	}

	expectedArgs := `{"location":"San Francisco","unit":"celsius"}`
	if string(tc.Arguments) != expectedArgs {
		t.Errorf("ToolCalls[0].Arguments = %s, want %s", tc.Arguments, expectedArgs)
	}
}

func TestDoChatInvalidToolCallJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(openAIResponse{
			ID:    "chatcmpl-789",
			Model: "gpt-4o",
			Choices: []openAIChoice{
				{
					Message: openAIRespMsg{
						Role: "assistant",
						ToolCalls: []openAIToolCall{
							{ID: "call_invalid", Type: "function", Function: openAIFunctionCall{Name: "broken", Arguments: `{not valid json`}},
						},
					},
				},
			},
		})
	}))
	defer server.Close()

	p := New("test-key", WithBaseURL(server.URL))
	_, err := p.Chat(context.Background(), &core.ChatRequest{
		Model: "gpt-4o",
		Messages: []core.Message{
			{Role: core.RoleUser, Content: "Test"},
		},
	})

	if !errors.Is(err, ErrToolArgsInvalidJSON) {
		t.Errorf("expected ErrToolArgsInvalidJSON, got %v", err)
	}
}

func TestDoChatBadRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"Invalid model","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	p := New("test-key", WithBaseURL(server.URL), WithRetryPolicy(core.RetryPolicy{MaxAttempts: 1}))

	req := &core.ChatRequest{
		Model: "invalid-model",
		Messages: []core.Message{
			{Role: core.RoleUser, Content: "Test"},
		},
	}

	_, err := p.Chat(context.Background(), req)
	if err == nil {
		t.Fatal("Chat() should return error")
	}

	provErr, ok := err.(*core.ProviderError)
	if !ok {
		t.Fatalf("error should be *core.ProviderError, got %T", err)
	}

	if provErr.Code != core.ErrCodeBadRequest {
		t.Errorf("Code = %q, want bad_request", provErr.Code)
	}

	if provErr.Message != "Invalid model" {
		t.Errorf("Message = %q, want 'Invalid model'", provErr.Message)
	}
}

func TestDoChatUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Invalid API key"}}`))
	}))
	defer server.Close()

	p := New("bad-key", WithBaseURL(server.URL), WithRetryPolicy(core.RetryPolicy{MaxAttempts: 1}))

	req := &core.ChatRequest{
		Model: "gpt-4o",
		Messages: []core.Message{
			{Role: core.RoleUser, Content: "Test"},
		},
	}

	_, err := p.Chat(context.Background(), req)
	if err == nil {
		t.Fatal("Chat() should return error")
	}

	provErr, ok := err.(*core.ProviderError)
	if !ok {
		t.Fatalf("error should be *core.ProviderError, got %T", err)
	}
	if provErr.Code != core.ErrCodeAuth {
		t.Errorf("Code = %q, want auth", provErr.Code)
	}
}

func TestDoChatRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"Rate limit exceeded"}}`))
	}))
	defer server.Close()

	p := New("test-key", WithBaseURL(server.URL), WithRetryPolicy(core.RetryPolicy{MaxAttempts: 1}))

	req := &core.ChatRequest{
		Model: "gpt-4o",
		Messages: []core.Message{
			{Role: core.RoleUser, Content: "Test"},
		},
	}

	_, err := p.Chat(context.Background(), req)
	if err == nil {
		t.Fatal("Chat() should return error")
	}

	provErr, ok := err.(*core.ProviderError)
	if !ok {
		t.Fatalf("error should be *core.ProviderError, got %T", err)
	}
	if provErr.Code != core.ErrCodeRateLimit {
		t.Errorf("Code = %q, want rate_limit", provErr.Code)
	}
}

func TestDoChatServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"Internal error"}}`))
	}))
	defer server.Close()

	p := New("test-key", WithBaseURL(server.URL), WithRetryPolicy(core.RetryPolicy{MaxAttempts: 1}))

	req := &core.ChatRequest{
		Model: "gpt-4o",
		Messages: []core.Message{
			{Role: core.RoleUser, Content: "Test"},
		},
	}

	_, err := p.Chat(context.Background(), req)
	if err == nil {
		t.Fatal("Chat() should return error")
	}

	provErr, ok := err.(*core.ProviderError)
	if !ok {
		t.Fatalf("error should be *core.ProviderError, got %T", err)
	}
	if provErr.Code != core.ErrCodeTransient {
		t.Errorf("Code = %q, want transient", provErr.Code)
	}
}

func TestDoChatContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	p := New("test-key", WithBaseURL(server.URL))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Chat(ctx, &core.ChatRequest{
		Model: "gpt-4o",
		Messages: []core.Message{
			{Role: core.RoleUser, Content: "Test"},
		},
	})

	if err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestDoChatWithTemperature(t *testing.T) {
	temp := 0.5

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		var req openAIRequest
		json.Unmarshal(body, &req)

		if req.Temperature == nil || *req.Temperature != 0.5 {
			t.Errorf("Temperature = %v, want 0.5", req.Temperature)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(openAIResponse{
			ID:      "chatcmpl-temp",
			Model:   "gpt-4o",
			Choices: []openAIChoice{{Message: openAIRespMsg{Content: "Response"}}},
		})
	}))
	defer server.Close()

	p := New("test-key", WithBaseURL(server.URL))

	req := &core.ChatRequest{
		Model:       "gpt-4o",
		Messages:    []core.Message{{Role: core.RoleUser, Content: "Hi"}},
		Temperature: &temp,
	}

	_, err := p.Chat(context.Background(), req)
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
}

func TestDoChatWithMaxTokens(t *testing.T) {
	maxTokens := 500

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		var req openAIRequest
		json.Unmarshal(body, &req)

		if req.MaxTokens == nil || *req.MaxTokens != 500 {
			t.Errorf("MaxTokens = %v, want 500", req.MaxTokens)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(openAIResponse{
			ID:      "chatcmpl-max",
			Model:   "gpt-4o",
			Choices: []openAIChoice{{Message: openAIRespMsg{Content: "Response"}}},
		})
	}))
	defer server.Close()

	p := New("test-key", WithBaseURL(server.URL))

	req := &core.ChatRequest{
		Model:     "gpt-4o",
		Messages:  []core.Message{{Role: core.RoleUser, Content: "Hi"}},
		MaxTokens: &maxTokens,
	}

	_, err := p.Chat(context.Background(), req)
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
}

func TestDoChatWithOrgAndProject(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("OpenAI-Organization") != "my-org" {
			t.Errorf("OpenAI-Organization = %q, want %q", r.Header.Get("OpenAI-Organization"), "my-org")
		}
		if r.Header.Get("OpenAI-Project") != "my-project" {
			t.Errorf("OpenAI-Project = %q, want %q", r.Header.Get("OpenAI-Project"), "my-project")
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(openAIResponse{
			ID:      "chatcmpl-test",
			Model:   "gpt-4o",
			Choices: []openAIChoice{{Message: openAIRespMsg{Content: "OK"}}},
		})
	}))
	defer server.Close()

	p := New("test-key",
		WithBaseURL(server.URL),
		WithOrgID("my-org"),
		WithProjectID("my-project"),
	)

	_, err := p.Chat(context.Background(), &core.ChatRequest{
		Model: "gpt-4o",
		Messages: []core.Message{
			{Role: core.RoleUser, Content: "Test"},
		},
	})

	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
}
