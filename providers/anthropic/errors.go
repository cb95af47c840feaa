package anthropic

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/petal-labs/iris/core"
	"github.com/petal-labs/iris/providers/internal/normalize"
)

// ErrToolArgsInvalidJSON is returned when tool call arguments contain invalid JSON.
var ErrToolArgsInvalidJSON = errors.New("anthropic: tool args invalid json")

// normalizeError converts an Anthropic HTTP error response to a classified
// *core.ProviderError.
func normalizeError(operation string, stage core.Stage, status int, body []byte) error {
	var errResp anthropicErrorResponse
	_ = json.Unmarshal(body, &errResp)

	message := errResp.Error.Message
	if message == "" {
		message = http.StatusText(status)
	}

	return core.NewProviderError("anthropic", operation, stage, status, message, nil)
}

// newNetworkError creates a ProviderError for network-related failures.
func newNetworkError(operation string, stage core.Stage, err error) error {
	return normalize.NetworkError("anthropic", operation, stage, err)
}

// newDecodeError creates a ProviderError for JSON decode/encode failures.
func newDecodeError(operation string, stage core.Stage, err error) error {
	return normalize.DecodeError("anthropic", operation, stage, err)
}

// newStreamError builds an error from an inline error event carried within
// an otherwise-200 SSE stream.
func newStreamError(operation, errType, message string) error {
	return core.NewProviderError("anthropic", operation, core.StageMidStream, 0, message, core.ErrServer)
}
