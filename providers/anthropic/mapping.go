package anthropic

import (
	"encoding/json"
	"strings"

	"github.com/petal-labs/iris/core"
)

// defaultMaxTokens is the default max_tokens value when not specified.
// Anthropic requires max_tokens, so we provide a reasonable default.
const defaultMaxTokens = 1024

// schemaProvider is an optional interface a core.Tool may implement to
// supply its JSON Schema parameters. Tools that don't implement it get an
// empty object schema.
type schemaProvider interface {
	JSONSchema() json.RawMessage
}

// buildRequest creates an Anthropic API request from a core.ChatRequest.
func buildRequest(req *core.ChatRequest, stream bool) *anthropicRequest {
	system, messages := mapMessages(req.Messages)

	maxTokens := defaultMaxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}

	antReq := &anthropicRequest{
		Model:     string(req.Model),
		Messages:  messages,
		MaxTokens: maxTokens,
		System:    system,
		Stream:    stream,
	}

	if req.Temperature != nil {
		temp := float32(*req.Temperature)
		antReq.Temperature = &temp
	}

	if len(req.Tools) > 0 {
		antReq.Tools = mapTools(req.Tools)
		antReq.ToolChoice = map[string]string{"type": "auto"}
	}

	return antReq
}

// mapMessages converts core messages to Anthropic format. System messages
// are extracted into a single string; user/assistant messages become
// single-block text content.
func mapMessages(msgs []core.Message) (system string, messages []anthropicMessage) {
	var systemParts []string

	for _, msg := range msgs {
		switch msg.Role {
		case core.RoleSystem:
			systemParts = append(systemParts, msg.Content)
		case core.RoleUser, core.RoleAssistant:
			messages = append(messages, anthropicMessage{
				Role:    string(msg.Role),
				Content: messageContentBlocks(msg),
			})
		}
	}

	if len(systemParts) > 0 {
		system = strings.Join(systemParts, "\n\n")
	}

	return system, messages
}

// messageContentBlocks renders a single user/assistant message as Anthropic
// content blocks, consulting msg.Parts for multimodal content (the vision
// path, core/client.go's MessageBuilder) and falling back to a single text
// block when Parts is empty.
func messageContentBlocks(msg core.Message) []anthropicContentBlock {
	if len(msg.Parts) == 0 {
		return []anthropicContentBlock{{Type: "text", Text: msg.Content}}
	}

	blocks := make([]anthropicContentBlock, 0, len(msg.Parts))
	for _, p := range msg.Parts {
		switch part := p.(type) {
		case core.InputText:
			blocks = append(blocks, anthropicContentBlock{Type: "text", Text: part.Text})
		case core.InputImage:
			blocks = append(blocks, anthropicContentBlock{
				Type:   "image",
				Source: &anthropicImageSource{Type: "url", URL: part.ImageURL},
			})
		}
	}
	return blocks
}

// mapTools converts core tools to Anthropic tool format. Tools that
// implement schemaProvider have their schema included.
func mapTools(coreTools []core.Tool) []anthropicTool {
	if len(coreTools) == 0 {
		return nil
	}

	result := make([]anthropicTool, len(coreTools))
	for i, t := range coreTools {
		var inputSchema json.RawMessage

		if sp, ok := t.(schemaProvider); ok {
			inputSchema = sp.JSONSchema()
		}

		if len(inputSchema) == 0 {
			inputSchema = json.RawMessage(`{}`)
		}

		result[i] = anthropicTool{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: inputSchema,
		}
	}
	return result
}

// mapResponse converts an Anthropic response to a core.ChatResponse.
func mapResponse(resp *anthropicResponse) (*core.ChatResponse, error) {
	var textParts []string
	var toolCalls []core.ToolCall

	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			textParts = append(textParts, block.Text)
		case "tool_use":
			if !json.Valid(block.Input) {
				return nil, ErrToolArgsInvalidJSON
			}
			toolCalls = append(toolCalls, core.ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: block.Input,
			})
		}
	}

	usage := mapUsage(resp.Usage)

	result := &core.ChatResponse{
		Text:         strings.Join(textParts, ""),
		FinishReason: mapStopReason(resp.StopReason),
		ToolCalls:    toolCalls,
		Metadata: core.ProviderMetadata{
			Provider:   "anthropic",
			Model:      core.ModelID(resp.Model),
			ResponseID: resp.ID,
			Tokens:     usage,
		},
	}

	return result, nil
}

// mapStopReason converts Anthropic's stop_reason to a core.FinishReason.
func mapStopReason(reason string) core.FinishReason {
	switch reason {
	case "end_turn", "stop_sequence":
		return core.FinishStop
	case "max_tokens":
		return core.FinishLength
	case "tool_use":
		return core.FinishToolUse
	default:
		return core.FinishStop
	}
}

// mapUsage converts Anthropic usage counters to pointer-based core.TokenUsage.
func mapUsage(u anthropicUsage) core.TokenUsage {
	prompt := u.InputTokens
	completion := u.OutputTokens
	total := prompt + completion
	return core.TokenUsage{
		Prompt:     &prompt,
		Completion: &completion,
		Total:      &total,
	}
}
