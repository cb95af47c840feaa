package ollama

import (
	"encoding/json"
	"fmt"

	"github.com/petal-labs/iris/core"
)

// schemaProvider is an optional interface a core.Tool may implement to
// supply its JSON Schema parameters. Tools that don't implement it get an
// empty object schema.
type schemaProvider interface {
	JSONSchema() json.RawMessage
}

// mapRequest converts a core.ChatRequest to an ollamaRequest.
func mapRequest(req *core.ChatRequest, stream bool) *ollamaRequest {
	ollamaReq := &ollamaRequest{
		Model:    string(req.Model),
		Messages: mapMessages(req.Messages),
		Stream:   stream,
	}

	if len(req.Tools) > 0 {
		ollamaReq.Tools = mapTools(req.Tools)
	}

	if think := mapThinking(req.Extras); think != nil {
		ollamaReq.Think = think
	}

	if format := mapResponseFormat(req.ResponseFormat); format != nil {
		ollamaReq.Format = format
	}

	if opts := mapOptions(req); opts != nil {
		ollamaReq.Options = opts
	}

	return ollamaReq
}

// mapMessages converts core messages to Ollama messages.
func mapMessages(messages []core.Message) []ollamaMessage {
	result := make([]ollamaMessage, 0, len(messages))

	for _, msg := range messages {
		result = append(result, ollamaMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	return result
}

// mapTools converts core tools to Ollama tools.
func mapTools(coreTools []core.Tool) []ollamaTool {
	if len(coreTools) == 0 {
		return nil
	}

	result := make([]ollamaTool, 0, len(coreTools))

	for _, t := range coreTools {
		var params map[string]interface{}

		if sp, ok := t.(schemaProvider); ok {
			if raw := sp.JSONSchema(); len(raw) > 0 {
				if err := json.Unmarshal(raw, &params); err != nil {
					params = map[string]interface{}{}
				}
			}
		}

		if params == nil {
			params = map[string]interface{}{}
		}

		result = append(result, ollamaTool{
			Type: "function",
			Function: ollamaToolFunction{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  params,
			},
		})
	}

	return result
}

// mapThinking reads an opt-in "think" extension field. Ollama's think
// parameter has no equivalent in the normalized request, so callers that
// want it opt in explicitly via Extras rather than the core inferring it
// from model name or any other capability signal.
func mapThinking(extras map[string]any) *bool {
	v, ok := extras["think"]
	if !ok {
		return nil
	}
	b, ok := v.(bool)
	if !ok || !b {
		return nil
	}
	think := true
	return &think
}

// mapResponseFormat converts a core.ResponseFormat to Ollama's format field.
func mapResponseFormat(f core.ResponseFormat) interface{} {
	switch f.Kind {
	case core.ResponseFormatJSONObject:
		return "json"
	case core.ResponseFormatJSONSchema:
		if len(f.Schema) == 0 {
			return "json"
		}
		var schema interface{}
		if err := json.Unmarshal(f.Schema, &schema); err != nil {
			return "json"
		}
		return schema
	default:
		return nil
	}
}

// mapOptions converts request parameters to Ollama options.
func mapOptions(req *core.ChatRequest) *ollamaOptions {
	opts := &ollamaOptions{}
	hasOpts := false

	if req.Temperature != nil && *req.Temperature > 0 {
		opts.Temperature = float32(*req.Temperature)
		hasOpts = true
	}

	if req.MaxTokens != nil && *req.MaxTokens > 0 {
		opts.NumPredict = *req.MaxTokens
		hasOpts = true
	}

	if !hasOpts {
		return nil
	}

	return opts
}

// mapResponse converts an Ollama response to a core.ChatResponse.
func mapResponse(resp *ollamaResponse) *core.ChatResponse {
	finish := core.FinishStop
	if len(resp.Message.ToolCalls) > 0 {
		finish = core.FinishToolUse
	} else if resp.DoneReason == "length" {
		finish = core.FinishLength
	}

	usage := mapUsage(resp)

	extra := map[string]any{}
	if resp.Message.Thinking != "" {
		extra["thinking"] = resp.Message.Thinking
	}

	chatResp := &core.ChatResponse{
		Text:         resp.Message.Content,
		FinishReason: finish,
		Metadata: core.ProviderMetadata{
			Provider:   "ollama",
			Model:      core.ModelID(resp.Model),
			ResponseID: resp.CreatedAt, // Ollama has no response ID; timestamp stands in.
			Tokens:     usage,
		},
	}
	if len(extra) > 0 {
		chatResp.Metadata.Extra = extra
	}

	if len(resp.Message.ToolCalls) > 0 {
		chatResp.ToolCalls = mapToolCalls(resp.Message.ToolCalls)
	}

	return chatResp
}

// mapToolCalls converts Ollama tool calls to core tool calls.
func mapToolCalls(toolCalls []ollamaToolCall) []core.ToolCall {
	result := make([]core.ToolCall, 0, len(toolCalls))

	for i, tc := range toolCalls {
		// Ollama doesn't provide tool call IDs, generate one.
		callID := fmt.Sprintf("call_%d", i)

		argsJSON, err := json.Marshal(tc.Function.Arguments)
		if err != nil {
			argsJSON = json.RawMessage(`{}`)
		}

		result = append(result, core.ToolCall{
			ID:        callID,
			Name:      tc.Function.Name,
			Arguments: argsJSON,
		})
	}

	return result
}

// mapUsage calculates token usage from an Ollama response.
func mapUsage(resp *ollamaResponse) core.TokenUsage {
	prompt := resp.PromptEvalCount
	completion := resp.EvalCount
	total := prompt + completion
	return core.TokenUsage{
		Prompt:     &prompt,
		Completion: &completion,
		Total:      &total,
	}
}
