package openai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/petal-labs/iris/core"
	"github.com/petal-labs/iris/providers/internal/toolcalls"
)

// doStreamChat sends a streaming chat completion request, composing a
// core.StreamingAdapter around the HTTP start phase and the SSE response
// body.
func (p *OpenAI) doStreamChat(ctx context.Context, req *core.ChatRequest) (*core.StreamHandle, error) {
	if !p.streamingSupported(req.Model) {
		return nil, &core.ProviderError{
			Code:      core.ErrCodeUnsupported,
			Message:   fmt.Sprintf("model %s does not support chat streaming", req.Model),
			Provider:  "openai",
			Operation: "stream_chat",
			Stage:     core.StageStart,
			Feature:   core.FeatureChatStreaming,
		}
	}
	if req.ResponseFormat.Structured() && !p.structuredStreamingSupported(req.Model) {
		return nil, &core.ProviderError{
			Code:      core.ErrCodeUnsupported,
			Message:   fmt.Sprintf("model %s does not support a structured response format on a stream", req.Model),
			Provider:  "openai",
			Operation: "stream_chat",
			Stage:     core.StageStart,
			Feature:   core.FeatureStructuredStreaming,
		}
	}

	asm := toolcalls.NewAssembler(toolcalls.Config{EmptyArgumentsJSON: "{}"})

	adapter := &core.StreamingAdapter{
		Provider:          "openai",
		Model:             req.Model,
		Operation:         "stream_chat",
		Starter:           p.streamStarter(req),
		Translator:        translateChunk(asm),
		ToolCallFinalizer: asm.Finalize,
		StartGuard:        p.startGuard(),
		RetryPolicy:       p.retryPolicy(),
		Logger:            p.logger(),
		Metrics:           p.metricsExporter(),
	}
	return adapter.Run(ctx), nil
}

// streamingSupported reports whether model declares FeatureChatStreaming.
// Known models are checked against their static capability list (embedding
// models, for example, don't carry it); an unrecognized model ID falls back
// to the provider-level Supports check.
func (p *OpenAI) streamingSupported(model core.ModelID) bool {
	if info := GetModelInfo(model); info != nil {
		for _, f := range info.Capabilities {
			if f == core.FeatureChatStreaming {
				return true
			}
		}
		return false
	}
	return p.Supports(core.FeatureChatStreaming)
}

// structuredStreamingSupported reports whether model declares
// FeatureStructuredStreaming. An unrecognized model ID falls back to the
// provider-level Supports check.
func (p *OpenAI) structuredStreamingSupported(model core.ModelID) bool {
	if info := GetModelInfo(model); info != nil {
		for _, f := range info.Capabilities {
			if f == core.FeatureStructuredStreaming {
				return true
			}
		}
		return false
	}
	return p.Supports(core.FeatureStructuredStreaming)
}

// streamStarter opens the HTTP connection to OpenAI's chat completions
// endpoint in streaming mode. It is re-invoked once per retry attempt and
// never leaks a partially-opened connection into the next call.
func (p *OpenAI) streamStarter(req *core.ChatRequest) core.Starter {
	return func(ctx context.Context) (core.StarterResult, error) {
		oaiReq := buildRequest(req, true)

		body, err := json.Marshal(oaiReq)
		if err != nil {
			return core.StarterResult{}, newDecodeError("stream_chat", core.StageStart, err)
		}

		url := p.config.BaseURL + chatCompletionsPath
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return core.StarterResult{}, newDecodeError("stream_chat", core.StageStart, err)
		}
		for key, values := range p.buildHeaders() {
			for _, v := range values {
				httpReq.Header.Add(key, v)
			}
		}

		resp, err := p.config.HTTPClient.Do(httpReq)
		if err != nil {
			return core.StarterResult{}, newNetworkError("stream_chat", core.StageStart, err)
		}

		requestID := resp.Header.Get("x-request-id")

		if resp.StatusCode >= 400 {
			defer resp.Body.Close()
			respBody, _ := io.ReadAll(resp.Body)
			return core.StarterResult{}, normalizeError("stream_chat", core.StageStart, resp.StatusCode, respBody)
		}

		return core.StarterResult{
			Stream:    &sseStream{resp: resp, reader: bufio.NewReader(resp.Body)},
			RequestID: requestID,
		}, nil
	}
}

// sseStream adapts OpenAI's Server-Sent Events response body to
// core.NativeStream, decoding one openAIStreamChunk per "data:" line until
// the literal "data: [DONE]" terminator.
type sseStream struct {
	resp   *http.Response
	reader *bufio.Reader
	closed bool
}

func (s *sseStream) Next(ctx context.Context) (core.NativeChunk, bool, error) {
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			s.close()
			if err == io.EOF {
				return nil, false, nil
			}
			if line == "" {
				return nil, false, err
			}
		}

		line = strings.TrimSpace(line)
		if line == "" {
			if err != nil {
				return nil, false, nil
			}
			continue
		}
		if !strings.HasPrefix(line, "data:") {
			continue
		}

		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			s.close()
			return nil, false, nil
		}

		var chunk openAIStreamChunk
		if jsonErr := json.Unmarshal([]byte(payload), &chunk); jsonErr != nil {
			s.close()
			return nil, false, jsonErr
		}

		return &chunk, true, nil
	}
}

func (s *sseStream) close() {
	if !s.closed {
		s.closed = true
		s.resp.Body.Close()
	}
}

var _ core.NativeStream = (*sseStream)(nil)

// translateChunk returns a Translator bound to asm: every chunk's tool-call
// fragments (if any) are fed into asm for later finalization via
// core.StreamingAdapter.ToolCallFinalizer, while the first choice's text
// content is surfaced as a Delta. Role-only frames and tool-call-only
// fragments carry no user-visible text and yield a nil Delta.
func translateChunk(asm *toolcalls.Assembler) core.Translator {
	return func(native core.NativeChunk) (*core.Delta, error) {
		chunk, ok := native.(*openAIStreamChunk)
		if !ok {
			return nil, fmt.Errorf("openai: unexpected native chunk type %T", native)
		}
		if len(chunk.Choices) == 0 {
			return nil, nil
		}
		delta := chunk.Choices[0].Delta
		for _, tc := range delta.ToolCalls {
			asm.AddFragment(toolcalls.Fragment{
				Index:     tc.Index,
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			})
		}
		if delta.Content == "" {
			return nil, nil
		}
		return &core.Delta{Text: delta.Content}, nil
	}
}
