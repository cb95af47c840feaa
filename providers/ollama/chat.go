package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/petal-labs/iris/core"
	"github.com/petal-labs/iris/providers/internal/normalize"
)

// doChat sends a non-streaming chat request to the Ollama API. The whole
// call is the start phase: CallWithRetry owns the timeout and retry loop
// around it (§4.3, §4.4).
func (p *Ollama) doChat(ctx context.Context, req *core.ChatRequest) (*core.ChatResponse, error) {
	return core.CallWithRetry(ctx, p.startGuard(), p.retryPolicy(), nil, func(ctx context.Context) (*core.ChatResponse, error) {
		return p.chatOnce(ctx, req)
	})
}

func (p *Ollama) chatOnce(ctx context.Context, req *core.ChatRequest) (*core.ChatResponse, error) {
	ollamaReq := mapRequest(req, false)

	body, err := json.Marshal(ollamaReq)
	if err != nil {
		return nil, normalize.DecodeError("ollama", "chat", core.StageStart, err)
	}

	url := p.config.BaseURL + "/api/chat"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, normalize.DecodeError("ollama", "chat", core.StageStart, err)
	}

	for key, values := range p.buildHeaders() {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	resp, err := p.config.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, normalize.NetworkError("ollama", "chat", core.StageStart, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, parseErrorResponse("chat", core.StageStart, resp)
	}

	var ollamaResp ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return nil, normalize.DecodeError("ollama", "chat", core.StageStart, err)
	}

	if ollamaResp.Error != "" {
		return nil, mapOllamaError("ollama", "chat", core.StageStart, resp.StatusCode, ollamaResp.Error)
	}

	return mapResponse(&ollamaResp), nil
}
