package openai

import (
	"errors"

	"github.com/petal-labs/iris/core"
	"github.com/petal-labs/iris/providers/internal/normalize"
)

// ErrToolArgsInvalidJSON is returned when tool call arguments contain invalid JSON.
var ErrToolArgsInvalidJSON = errors.New("openai: tool args invalid json")

// openAIErrorResponse represents an OpenAI API error response.
type openAIErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// normalizeError converts an HTTP error response to a core.ProviderError.
func normalizeError(operation string, stage core.Stage, status int, body []byte) error {
	return normalize.OpenAIStyleHTTPError("openai", operation, stage, status, body)
}

// newNetworkError creates a ProviderError for network-related failures.
func newNetworkError(operation string, stage core.Stage, err error) error {
	return normalize.NetworkError("openai", operation, stage, err)
}

// newDecodeError creates a ProviderError for JSON decode failures.
func newDecodeError(operation string, stage core.Stage, err error) error {
	return normalize.DecodeError("openai", operation, stage, err)
}

// newStreamError builds a mid-stream ProviderError for an inline stream
// error event.
func newStreamError(operation, message string) error {
	return core.NewProviderError("openai", operation, core.StageMidStream, 0, message, core.ErrServer)
}
