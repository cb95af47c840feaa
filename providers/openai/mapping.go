package openai

import (
	"encoding/json"

	"github.com/petal-labs/iris/core"
)

// schemaProvider is a local duck-typed interface for tools that expose a
// JSON schema alongside their name/description.
type schemaProvider interface {
	JSONSchema() json.RawMessage
}

// mapMessages converts Iris messages to OpenAI message format.
func mapMessages(msgs []core.Message) []openAIMessage {
	result := make([]openAIMessage, 0, len(msgs))

	for _, msg := range msgs {
		switch msg.Role {
		case core.RoleTool:
			for _, tr := range msg.ToolResults {
				content := marshalToolResultContent(tr.Content)
				result = append(result, openAIMessage{
					Role:       "tool",
					Content:    content,
					ToolCallID: tr.CallID,
				})
			}

		case core.RoleAssistant:
			oaiMsg := openAIMessage{
				Role:    "assistant",
				Content: msg.Content,
			}
			if len(msg.ToolCalls) > 0 {
				oaiMsg.ToolCalls = mapToolCallsToOpenAI(msg.ToolCalls)
			}
			result = append(result, oaiMsg)

		default:
			result = append(result, openAIMessage{
				Role:    string(msg.Role),
				Content: messageContent(msg),
			})
		}
	}

	return result
}

// messageContent renders a message's content as the plain string OpenAI
// expects when there are no multimodal parts, or as a content-part array
// when Parts is populated (the vision path, core/client.go's MessageBuilder).
func messageContent(msg core.Message) any {
	if len(msg.Parts) == 0 {
		return msg.Content
	}

	parts := make([]openAIContentPart, 0, len(msg.Parts))
	for _, p := range msg.Parts {
		switch part := p.(type) {
		case core.InputText:
			parts = append(parts, openAIContentPart{Type: "text", Text: part.Text})
		case core.InputImage:
			parts = append(parts, openAIContentPart{
				Type: "image_url",
				ImageURL: &openAIImageURL{
					URL:    part.ImageURL,
					Detail: string(part.Detail),
				},
			})
		}
	}
	return parts
}

// mapToolCallsToOpenAI converts Iris ToolCalls to OpenAI format.
func mapToolCallsToOpenAI(calls []core.ToolCall) []openAIToolCall {
	result := make([]openAIToolCall, len(calls))
	for i, tc := range calls {
		result[i] = openAIToolCall{
			ID:   tc.ID,
			Type: "function",
			Function: openAIFunctionCall{
				Name:      tc.Name,
				Arguments: string(tc.Arguments),
			},
		}
	}
	return result
}

// marshalToolResultContent converts tool result content to a JSON string.
func marshalToolResultContent(content any) string {
	switch v := content.(type) {
	case string:
		return v
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return `{"error": "failed to marshal tool result"}`
		}
		return string(data)
	}
}

// mapTools converts Iris tools to OpenAI tool format.
func mapTools(irisTools []core.Tool) []openAITool {
	if len(irisTools) == 0 {
		return nil
	}

	result := make([]openAITool, len(irisTools))
	for i, t := range irisTools {
		var params json.RawMessage
		if sp, ok := t.(schemaProvider); ok {
			params = sp.JSONSchema()
		}
		if params == nil {
			params = json.RawMessage(`{}`)
		}

		result[i] = openAITool{
			Type: "function",
			Function: openAIFunction{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  params,
			},
		}
	}
	return result
}

// mapResponseFormat converts an Iris ResponseFormat to the OpenAI wire shape.
func mapResponseFormat(format core.ResponseFormat) *openAIRespFormat {
	switch format.Kind {
	case core.ResponseFormatJSONObject:
		return &openAIRespFormat{Type: "json_object"}
	case core.ResponseFormatJSONSchema:
		return &openAIRespFormat{
			Type: "json_schema",
			JSONSchema: &openAIJSONSchemaFmt{
				Name:   "response",
				Schema: format.Schema,
				Strict: true,
			},
		}
	default:
		return nil
	}
}

// buildRequest creates an OpenAI API request from an Iris ChatRequest.
func buildRequest(req *core.ChatRequest, stream bool) *openAIRequest {
	oaiReq := &openAIRequest{
		Model:    string(req.Model),
		Messages: mapMessages(req.Messages),
		Stream:   stream,
	}

	if stream {
		oaiReq.StreamOptions = &openAIStreamOpts{IncludeUsage: true}
	}

	if req.Temperature != nil {
		temp := float32(*req.Temperature)
		oaiReq.Temperature = &temp
	}

	if req.MaxTokens != nil {
		oaiReq.MaxTokens = req.MaxTokens
	}

	if len(req.Tools) > 0 {
		oaiReq.Tools = mapTools(req.Tools)
		oaiReq.ToolChoice = "auto"
	}

	oaiReq.ResponseFormat = mapResponseFormat(req.ResponseFormat)

	return oaiReq
}

// mapFinishReason converts an OpenAI finish_reason string to core.FinishReason.
func mapFinishReason(reason string) core.FinishReason {
	switch reason {
	case "length":
		return core.FinishLength
	case "content_filter":
		return core.FinishContentFilter
	case "tool_calls":
		return core.FinishToolUse
	default:
		return core.FinishStop
	}
}

// mapUsage converts OpenAI token usage to the pointer-based core.TokenUsage.
func mapUsage(u openAIUsage) core.TokenUsage {
	prompt, completion, total := u.PromptTokens, u.CompletionTokens, u.TotalTokens
	return core.TokenUsage{
		Prompt:     &prompt,
		Completion: &completion,
		Total:      &total,
	}
}

// mapResponse converts an OpenAI response to an Iris ChatResponse.
func mapResponse(resp *openAIResponse) (*core.ChatResponse, error) {
	result := &core.ChatResponse{
		Metadata: core.ProviderMetadata{
			Provider:   "openai",
			Model:      core.ModelID(resp.Model),
			ResponseID: resp.ID,
			Tokens:     mapUsage(resp.Usage),
		},
	}

	if len(resp.Choices) > 0 {
		choice := resp.Choices[0]
		result.Text = choice.Message.Content
		result.FinishReason = mapFinishReason(choice.FinishReason)

		if len(choice.Message.ToolCalls) > 0 {
			toolCalls, err := mapToolCalls(choice.Message.ToolCalls)
			if err != nil {
				return nil, err
			}
			result.ToolCalls = toolCalls
		}
	}

	return result, nil
}

// mapToolCalls converts OpenAI tool calls to Iris ToolCalls.
func mapToolCalls(calls []openAIToolCall) ([]core.ToolCall, error) {
	result := make([]core.ToolCall, len(calls))

	for i, call := range calls {
		if !json.Valid([]byte(call.Function.Arguments)) {
			return nil, ErrToolArgsInvalidJSON
		}

		result[i] = core.ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: json.RawMessage(call.Function.Arguments),
		}
	}

	return result, nil
}
