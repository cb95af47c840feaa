package openai

import (
	"errors"
	"testing"

	"github.com/petal-labs/iris/core"
)

func TestNormalizeError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     []byte
		wantMsg  string
		wantCode core.ErrorCode
	}{
		{
			name:     "400 bad request",
			status:   400,
			body:     []byte(`{"error":{"message":"Invalid model","type":"invalid_request_error","code":"invalid_model"}}`),
			wantMsg:  "Invalid model",
			wantCode: core.ErrCodeBadRequest,
		},
		{
			name:     "401 unauthorized",
			status:   401,
			body:     []byte(`{"error":{"message":"Invalid API key"}}`),
			wantMsg:  "Invalid API key",
			wantCode: core.ErrCodeAuth,
		},
		{
			name:     "403 forbidden",
			status:   403,
			body:     []byte(`{"error":{"message":"Access denied"}}`),
			wantMsg:  "Access denied",
			wantCode: core.ErrCodeAuth,
		},
		{
			name:     "429 rate limited",
			status:   429,
			body:     []byte(`{"error":{"message":"Rate limit exceeded"}}`),
			wantMsg:  "Rate limit exceeded",
			wantCode: core.ErrCodeRateLimit,
		},
		{
			name:     "500 server error",
			status:   500,
			body:     []byte(`{"error":{"message":"Internal server error"}}`),
			wantMsg:  "Internal server error",
			wantCode: core.ErrCodeTransient,
		},
		{
			name:     "502 bad gateway, empty body",
			status:   502,
			body:     []byte(`{}`),
			wantMsg:  "Bad Gateway",
			wantCode: core.ErrCodeTransient,
		},
		{
			name:     "503 service unavailable",
			status:   503,
			body:     []byte(`{"error":{"message":"Service unavailable"}}`),
			wantMsg:  "Service unavailable",
			wantCode: core.ErrCodeTransient,
		},
		{
			name:     "empty body falls back to status text",
			status:   500,
			body:     []byte{},
			wantMsg:  "Internal Server Error",
			wantCode: core.ErrCodeTransient,
		},
		{
			name:     "invalid json falls back to status text",
			status:   400,
			body:     []byte(`not json`),
			wantMsg:  "Bad Request",
			wantCode: core.ErrCodeBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := normalizeError("chat", core.StageStart, tt.status, tt.body)

			var provErr *core.ProviderError
			if !errors.As(err, &provErr) {
				t.Fatal("error should be *core.ProviderError")
			}

			if provErr.Provider != "openai" {
				t.Errorf("Provider = %q, want 'openai'", provErr.Provider)
			}

			if provErr.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", provErr.Message, tt.wantMsg)
			}

			if provErr.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", provErr.Code, tt.wantCode)
			}
		})
	}
}

func TestNewNetworkError(t *testing.T) {
	origErr := errors.New("connection refused")
	err := newNetworkError("chat", core.StageStart, origErr)

	var provErr *core.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatal("error should be *core.ProviderError")
	}

	if provErr.Provider != "openai" {
		t.Errorf("Provider = %q, want 'openai'", provErr.Provider)
	}

	if provErr.Message != "connection refused" {
		t.Errorf("Message = %q, want 'connection refused'", provErr.Message)
	}

	if provErr.Code != core.ErrCodeTransient {
		t.Errorf("Code = %q, want transient", provErr.Code)
	}
}

func TestNewDecodeError(t *testing.T) {
	origErr := errors.New("unexpected EOF")
	err := newDecodeError("chat", core.StageStart, origErr)

	var provErr *core.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatal("error should be *core.ProviderError")
	}

	if provErr.Provider != "openai" {
		t.Errorf("Provider = %q, want 'openai'", provErr.Provider)
	}

	if provErr.Message != "unexpected EOF" {
		t.Errorf("Message = %q, want 'unexpected EOF'", provErr.Message)
	}

	if provErr.Code != core.ErrCodeInternal {
		t.Errorf("Code = %q, want internal", provErr.Code)
	}
}

func TestErrToolArgsInvalidJSON(t *testing.T) {
	if ErrToolArgsInvalidJSON == nil {
		t.Error("ErrToolArgsInvalidJSON should not be nil")
	}
}
