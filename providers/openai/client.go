package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/petal-labs/iris/core"
)

// chatCompletionsPath is the API endpoint for chat completions.
const chatCompletionsPath = "/chat/completions"

// doChat performs a non-streaming chat completion request, retrying during
// the start phase per the provider's retry policy.
func (p *OpenAI) doChat(ctx context.Context, req *core.ChatRequest) (*core.ChatResponse, error) {
	return core.CallWithRetry(ctx, p.startGuard(), p.retryPolicy(), nil, func(ctx context.Context) (*core.ChatResponse, error) {
		return p.chatOnce(ctx, req)
	})
}

func (p *OpenAI) chatOnce(ctx context.Context, req *core.ChatRequest) (*core.ChatResponse, error) {
	oaiReq := buildRequest(req, false)

	body, err := json.Marshal(oaiReq)
	if err != nil {
		return nil, newDecodeError("chat", core.StageStart, err)
	}

	url := p.config.BaseURL + chatCompletionsPath
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

	var oaiResp openAIResponse
	if err := json.Unmarshal(respBody, &oaiResp); err != nil {
		return nil, newDecodeError("chat", core.StageFinalize, err)
	}

	return mapResponse(&oaiResp)
}
