package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/petal-labs/iris/core"
	"github.com/petal-labs/iris/providers/internal/normalize"
)

// doStreamChat sends a streaming chat request to the Ollama API, composing
// a core.StreamingAdapter around the HTTP start phase and the ndjson
// response body.
func (p *Ollama) doStreamChat(ctx context.Context, req *core.ChatRequest) (*core.StreamHandle, error) {
	if !p.Supports(core.FeatureChatStreaming) {
		return nil, &core.ProviderError{
			Code:      core.ErrCodeUnsupported,
			Message:   fmt.Sprintf("model %s does not support chat streaming", req.Model),
			Provider:  "ollama",
			Operation: "stream_chat",
			Stage:     core.StageStart,
			Feature:   core.FeatureChatStreaming,
		}
	}
	if req.ResponseFormat.Structured() && !p.Supports(core.FeatureStructuredStreaming) {
		return nil, &core.ProviderError{
			Code:      core.ErrCodeUnsupported,
			Message:   fmt.Sprintf("model %s does not support a structured response format on a stream", req.Model),
			Provider:  "ollama",
			Operation: "stream_chat",
			Stage:     core.StageStart,
			Feature:   core.FeatureStructuredStreaming,
		}
	}

	var toolCalls []core.ToolCall

	adapter := &core.StreamingAdapter{
		Provider:          "ollama",
		Model:             req.Model,
		Operation:         "stream_chat",
		Starter:           p.streamStarter(req),
		Translator:        translateChunk(&toolCalls),
		ToolCallFinalizer: func() ([]core.ToolCall, error) { return toolCalls, nil },
		StartGuard:        p.startGuard(),
		RetryPolicy:       p.retryPolicy(),
		Logger:            p.logger(),
		Metrics:           p.metricsExporter(),
	}
	return adapter.Run(ctx), nil
}

// streamStarter opens the HTTP connection to Ollama's /api/chat endpoint in
// streaming mode. It is re-invoked once per retry attempt and never leaks a
// partially-opened connection into the next call.
func (p *Ollama) streamStarter(req *core.ChatRequest) core.Starter {
	return func(ctx context.Context) (core.StarterResult, error) {
		ollamaReq := mapRequest(req, true)

		body, err := json.Marshal(ollamaReq)
		if err != nil {
			return core.StarterResult{}, normalize.DecodeError("ollama", "stream_chat", core.StageStart, err)
		}

		url := p.config.BaseURL + "/api/chat"
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return core.StarterResult{}, normalize.DecodeError("ollama", "stream_chat", core.StageStart, err)
		}
		for key, values := range p.buildHeaders() {
			for _, v := range values {
				httpReq.Header.Add(key, v)
			}
		}

		resp, err := p.config.HTTPClient.Do(httpReq)
		if err != nil {
			return core.StarterResult{}, normalize.NetworkError("ollama", "stream_chat", core.StageStart, err)
		}

		if resp.StatusCode != http.StatusOK {
			defer resp.Body.Close()
			return core.StarterResult{}, parseErrorResponse("stream_chat", core.StageStart, resp)
		}

		return core.StarterResult{
			Stream: &ndjsonStream{resp: resp, scanner: bufio.NewScanner(resp.Body)},
		}, nil
	}
}

// ndjsonStream adapts Ollama's newline-delimited JSON response body to
// core.NativeStream, decoding one ollamaResponse per line.
type ndjsonStream struct {
	resp    *http.Response
	scanner *bufio.Scanner
	closed  bool
}

func (s *ndjsonStream) Next(ctx context.Context) (core.NativeChunk, bool, error) {
	for {
		if !s.scanner.Scan() {
			s.close()
			return nil, false, s.scanner.Err()
		}

		line := s.scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var chunk ollamaResponse
		if err := json.Unmarshal(line, &chunk); err != nil {
			s.close()
			return nil, false, err
		}
		if chunk.Error != "" {
			s.close()
			return nil, false, newStreamError("stream_chat", chunk.Error)
		}
		return &chunk, true, nil
	}
}

func (s *ndjsonStream) close() {
	if !s.closed {
		s.closed = true
		s.resp.Body.Close()
	}
}

var _ core.NativeStream = (*ndjsonStream)(nil)

// translateChunk returns a Translator that writes any tool calls carried on
// the closing Done:true frame into *toolCalls, for later pickup by the
// adapter's ToolCallFinalizer: unlike OpenAI/Anthropic, Ollama does not
// fragment tool-call arguments across chunks, delivering the complete array
// in one frame, so no providers/internal/toolcalls.Assembler is needed.
func translateChunk(toolCalls *[]core.ToolCall) core.Translator {
	return func(native core.NativeChunk) (*core.Delta, error) {
		chunk, ok := native.(*ollamaResponse)
		if !ok {
			return nil, fmt.Errorf("ollama: unexpected native chunk type %T", native)
		}
		if len(chunk.Message.ToolCalls) > 0 {
			*toolCalls = mapToolCalls(chunk.Message.ToolCalls)
		}
		if chunk.Message.Content == "" {
			return nil, nil
		}
		return &core.Delta{Text: chunk.Message.Content}, nil
	}
}
