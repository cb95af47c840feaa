package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/petal-labs/iris/core"
)

// messagesPath is the API endpoint for messages.
const messagesPath = "/v1/messages"

// doChat sends a non-streaming chat request to the Anthropic API. The whole
// call is the start phase: CallWithRetry owns the timeout and retry loop
// around it (§4.3, §4.4).
func (p *Anthropic) doChat(ctx context.Context, req *core.ChatRequest) (*core.ChatResponse, error) {
	return core.CallWithRetry(ctx, p.startGuard(), p.retryPolicy(), nil, func(ctx context.Context) (*core.ChatResponse, error) {
		return p.chatOnce(ctx, req)
	})
}

func (p *Anthropic) chatOnce(ctx context.Context, req *core.ChatRequest) (*core.ChatResponse, error) {
	antReq := buildRequest(req, false)

	body, err := json.Marshal(antReq)
	if err != nil {
		return nil, newDecodeError("chat", core.StageStart, err)
	}

	url := p.config.BaseURL + messagesPath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, newDecodeError("chat", core.StageStart, err)
	}

	for key, values := range p.buildHeaders() {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	resp, err := p.config.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, newNetworkError("chat", core.StageStart, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newNetworkError("chat", core.StageStart, err)
	}

	if resp.StatusCode >= 400 {
		return nil, normalizeError("chat", core.StageStart, resp.StatusCode, respBody)
	}

	var antResp anthropicResponse
	if err := json.Unmarshal(respBody, &antResp); err != nil {
		return nil, newDecodeError("chat", core.StageStart, err)
	}

	return mapResponse(&antResp)
}
