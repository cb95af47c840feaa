package anthropic

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

// doStreamChat sends a streaming chat request to the Anthropic Messages API,
// composing a core.StreamingAdapter around the HTTP start phase and the SSE
// response body.
func (p *Anthropic) doStreamChat(ctx context.Context, req *core.ChatRequest) (*core.StreamHandle, error) {
	if !p.streamingSupported(req.Model) {
		return nil, &core.ProviderError{
			Code:      core.ErrCodeUnsupported,
			Message:   fmt.Sprintf("model %s does not support chat streaming", req.Model),
			Provider:  "anthropic",
			Operation: "stream_chat",
			Stage:     core.StageStart,
			Feature:   core.FeatureChatStreaming,
		}
	}
	if req.ResponseFormat.Structured() && !p.structuredStreamingSupported(req.Model) {
		return nil, &core.ProviderError{
			Code:      core.ErrCodeUnsupported,
			Message:   fmt.Sprintf("model %s does not support a structured response format on a stream", req.Model),
			Provider:  "anthropic",
			Operation: "stream_chat",
			Stage:     core.StageStart,
			Feature:   core.FeatureStructuredStreaming,
		}
	}

	asm := toolcalls.NewAssembler(toolcalls.Config{EmptyArgumentsJSON: "{}"})

	adapter := &core.StreamingAdapter{
		Provider:          "anthropic",
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
// An unrecognized model ID falls back to the provider-level Supports check.
func (p *Anthropic) streamingSupported(model core.ModelID) bool {
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
func (p *Anthropic) structuredStreamingSupported(model core.ModelID) bool {
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

// streamStarter opens the HTTP connection to Anthropic's /v1/messages
// endpoint in streaming mode. It is re-invoked once per retry attempt and
// never leaks a partially-opened connection into the next call.
func (p *Anthropic) streamStarter(req *core.ChatRequest) core.Starter {
	return func(ctx context.Context) (core.StarterResult, error) {
		antReq := buildRequest(req, true)

		body, err := json.Marshal(antReq)
		if err != nil {
			return core.StarterResult{}, newDecodeError("stream_chat", core.StageStart, err)
		}

		url := p.config.BaseURL + messagesPath
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

		requestID := resp.Header.Get("request-id")

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

// sseStream adapts Anthropic's Server-Sent Events response body to
// core.NativeStream, decoding one anthropicStreamEvent per "data:" line.
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
		var event anthropicStreamEvent
		if jsonErr := json.Unmarshal([]byte(payload), &event); jsonErr != nil {
			s.close()
			return nil, false, jsonErr
		}

		switch event.Type {
		case "message_stop":
			s.close()
			return nil, false, nil
		case "error":
			s.close()
			msg := "anthropic: stream error"
			if event.Error != nil {
				msg = event.Error.Message
			}
			return nil, false, newStreamError("stream_chat", "", msg)
		}

		return &event, true, nil
	}
}

func (s *sseStream) close() {
	if !s.closed {
		s.closed = true
		s.resp.Body.Close()
	}
}

var _ core.NativeStream = (*sseStream)(nil)

// translateChunk returns a Translator bound to asm. content_block_start
// events that open a tool_use block register the call with asm; the
// input_json_delta fragments that follow accumulate its arguments.
// content_block_delta/text_delta events carry user-visible text and are
// surfaced as a Delta; everything else yields a nil Delta.
func translateChunk(asm *toolcalls.Assembler) core.Translator {
	return func(native core.NativeChunk) (*core.Delta, error) {
		event, ok := native.(*anthropicStreamEvent)
		if !ok {
			return nil, fmt.Errorf("anthropic: unexpected native chunk type %T", native)
		}

		switch event.Type {
		case "content_block_start":
			if event.ContentBlock != nil && event.ContentBlock.Type == "tool_use" {
				asm.StartCall(event.Index, event.ContentBlock.ID, event.ContentBlock.Name)
			}
			return nil, nil
		case "content_block_delta":
			if event.Delta == nil {
				return nil, nil
			}
			if event.Delta.Type == "input_json_delta" {
				asm.AddArguments(event.Index, event.Delta.PartialJSON)
				return nil, nil
			}
			if event.Delta.Type != "text_delta" || event.Delta.Text == "" {
				return nil, nil
			}
			return &core.Delta{Text: event.Delta.Text}, nil
		default:
			return nil, nil
		}
	}
}
