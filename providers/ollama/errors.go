package ollama

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/petal-labs/iris/core"
	"github.com/petal-labs/iris/providers/internal/normalize"
)

// parseErrorResponse reads and classifies an error response from Ollama.
func parseErrorResponse(operation string, stage core.Stage, resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return normalize.DecodeError("ollama", operation, stage, err)
	}

	var errResp ollamaErrorResponse
	if jsonErr := json.Unmarshal(body, &errResp); jsonErr != nil || errResp.Error == "" {
		return mapOllamaError("ollama", operation, stage, resp.StatusCode, string(body))
	}

	return mapOllamaError("ollama", operation, stage, resp.StatusCode, errResp.Error)
}

// mapOllamaError classifies an Ollama HTTP error response into a
// *core.ProviderError via the shared core.Classify rules.
func mapOllamaError(provider, operation string, stage core.Stage, status int, message string) error {
	return core.NewProviderError(provider, operation, stage, status, message, nil)
}

// newStreamError builds an error from an inline error carried within an
// otherwise-200 ndjson stream body.
func newStreamError(operation string, errMsg string) error {
	return core.NewProviderError("ollama", operation, core.StageMidStream, 0, errMsg, core.ErrServer)
}
