// Package normalize provides shared provider error normalization helpers
// on top of core.Classify (§4.1), so each provider adapter's errors.go only
// has to supply the provider-specific envelope parsing.
package normalize

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/petal-labs/iris/core"
)

// openAIStyleErrorResponse matches the {"error":{"message":...}} envelope
// shared by OpenAI, DeepSeek, OpenRouter, xAI, and most OpenAI-compatible
// APIs.
type openAIStyleErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// OpenAIStyleHTTPError parses an OpenAI-style error envelope and returns a
// classified *core.ProviderError for the given operation/stage.
func OpenAIStyleHTTPError(provider, operation string, stage core.Stage, status int, body []byte) *core.ProviderError {
	var errResp openAIStyleErrorResponse
	_ = json.Unmarshal(body, &errResp)

	message := errResp.Error.Message
	if message == "" {
		message = http.StatusText(status)
	}
	return core.NewProviderError(provider, operation, stage, status, message, nil)
}

// NetworkError wraps a transport failure (dial, TLS, connection reset) as a
// classified *core.ProviderError. status is 0: classification falls back to
// cause inspection (context deadline/cancel, net.Error.Timeout, ...).
func NetworkError(provider, operation string, stage core.Stage, err error) *core.ProviderError {
	return core.NewProviderError(provider, operation, stage, 0, err.Error(), fmt.Errorf("%w: %w", core.ErrNetwork, err))
}

// DecodeError wraps a response-body decode failure as an internal error:
// a malformed body from a 2xx response is an adapter contract violation,
// never a retryable condition.
func DecodeError(provider, operation string, stage core.Stage, err error) *core.ProviderError {
	return &core.ProviderError{
		Code:      core.ErrCodeInternal,
		Message:   err.Error(),
		Cause:     err,
		Retryable: false,
		Provider:  provider,
		Operation: operation,
		Stage:     stage,
	}
}
