package anthropic

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
			body:     []byte(`{"type":"error","error":{"type":"invalid_request_error","message":"Invalid request"}}`),
			wantMsg:  "Invalid request",
			wantCode: core.ErrCodeBadRequest,
		},
		{
			name:     "401 unauthorized",
			status:   401,
			body:     []byte(`{"type":"error","error":{"type":"authentication_error","message":"Invalid API key"}}`),
			wantMsg:  "Invalid API key",
			wantCode: core.ErrCodeAuth,
		},
		{
			name:     "403 forbidden",
			status:   403,
			body:     []byte(`{"type":"error","error":{"type":"permission_error","message":"Not allowed"}}`),
			wantMsg:  "Not allowed",
			wantCode: core.ErrCodeAuth,
		},
		{
			name:     "404 not found",
			status:   404,
			body:     []byte(`{"type":"error","error":{"type":"not_found_error","message":"File not found"}}`),
			wantMsg:  "File not found",
			wantCode: core.ErrCodeNotFound,
		},
		{
			name:     "429 rate limited",
			status:   429,
			body:     []byte(`{"type":"error","error":{"type":"rate_limit_error","message":"Too many requests"}}`),
			wantMsg:  "Too many requests",
			wantCode: core.ErrCodeRateLimit,
		},
		{
			name:     "500 server error",
			status:   500,
			body:     []byte(`{"type":"error","error":{"type":"api_error","message":"Internal error"}}`),
			wantMsg:  "Internal error",
			wantCode: core.ErrCodeTransient,
		},
		{
			name:     "503 overloaded",
			status:   503,
			body:     []byte(`{"type":"error","error":{"type":"overloaded_error","message":"Service overloaded"}}`),
			wantMsg:  "Service overloaded",
			wantCode: core.ErrCodeTransient,
		},
		{
			name:     "invalid json body",
			status:   500,
			body:     []byte(`not json`),
			wantMsg:  "Internal Server Error",
			wantCode: core.ErrCodeTransient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := normalizeError("chat", core.StageStart, tt.status, tt.body)

			var provErr *core.ProviderError
			if !errors.As(err, &provErr) {
				t.Fatal("error should be *core.ProviderError")
			}

			if provErr.Provider != "anthropic" {
				t.Errorf("Provider = %q, want 'anthropic'", provErr.Provider)
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

	if provErr.Provider != "anthropic" {
		t.Errorf("Provider = %q, want 'anthropic'", provErr.Provider)
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

	if provErr.Provider != "anthropic" {
		t.Errorf("Provider = %q, want 'anthropic'", provErr.Provider)
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
