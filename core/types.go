// Package core provides the Iris SDK client and types for interacting
// with AI providers behind a single, normalized surface.
package core

import (
	"encoding/json"
	"strings"
	"time"
)

// Feature (called "Capability" in the data model) represents a capability
// that a provider or model may support. The set is closed: callers and
// providers only ever see these eight tags.
type Feature string

const (
	FeatureChat                Feature = "chat"
	FeatureChatStreaming       Feature = "streaming"
	FeatureJSONOutput          Feature = "json_output"
	FeatureStructuredStreaming Feature = "structured_streaming"
	FeatureToolCalling         Feature = "tool_use"
	FeatureVision              Feature = "vision"
	FeatureEmbeddings          Feature = "embeddings"
	FeatureResponsesAPI        Feature = "responses_api"
)

// AllFeatures lists the closed Capability set, in a stable order.
func AllFeatures() []Feature {
	return []Feature{
		FeatureChat,
		FeatureChatStreaming,
		FeatureJSONOutput,
		FeatureStructuredStreaming,
		FeatureToolCalling,
		FeatureVision,
		FeatureEmbeddings,
		FeatureResponsesAPI,
	}
}

// ModelID is a string identifier for a model. Using string avoids coupling
// to provider-specific enums.
type ModelID string

// Provenance describes how a ModelInfo entry was obtained.
type Provenance struct {
	FetchedVia string `json:"fetched_via"` // "live" or "cache"
	Source     string `json:"source"`      // provider identifier, or "snapshot"
}

// ModelInfo describes a model available from a provider.
type ModelInfo struct {
	ID            ModelID    `json:"id"`
	Name          string     `json:"name,omitempty"`
	ContextLength *int       `json:"context_length,omitempty"`
	Capabilities  []Feature  `json:"capabilities"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
	Provenance    Provenance `json:"provenance"`
}

// HasCapability reports whether the model supports the given feature.
func (m ModelInfo) HasCapability(f Feature) bool {
	for _, cap := range m.Capabilities {
		if cap == f {
			return true
		}
	}
	return false
}

// Role represents a message participant role.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message represents a single, immutable message in a conversation.
type Message struct {
	Role       Role   `json:"role"`
	Content    string `json:"content,omitempty"`
	Name       string `json:"name,omitempty"`
	ToolCallID string `json:"tool_call_id,omitempty"`

	// ToolCalls carries assistant tool invocations; ToolResults carries the
	// outcome of executing them. Both are provider-agnostic and translated
	// into native shape at the adapter boundary.
	ToolCalls   []ToolCall   `json:"tool_calls,omitempty"`
	ToolResults []ToolResult `json:"tool_results,omitempty"`

	// Parts carries multimodal content (text/image/file) for a vision
	// request. Providers that declare FeatureVision translate it into
	// their own content-part shape; providers that don't reject it with
	// ErrCodeUnsupported rather than silently dropping it.
	Parts []ContentPart `json:"-"`
}

// ResponseFormatKind selects how the model should shape its output.
type ResponseFormatKind string

const (
	ResponseFormatText       ResponseFormatKind = "text"
	ResponseFormatJSONObject ResponseFormatKind = "json_object"
	ResponseFormatJSONSchema ResponseFormatKind = "json_schema"
)

// ResponseFormat constrains the shape of the model's output.
type ResponseFormat struct {
	Kind   ResponseFormatKind `json:"kind"`
	Schema json.RawMessage    `json:"schema,omitempty"` // only for ResponseFormatJSONSchema
}

// Structured reports whether this format constrains a stream to emit a
// single well-formed JSON value rather than free-running text, the case
// FeatureStructuredStreaming gates. The zero value (Kind == "") is
// unconstrained, same as ResponseFormatText.
func (f ResponseFormat) Structured() bool {
	return f.Kind == ResponseFormatJSONObject || f.Kind == ResponseFormatJSONSchema
}

// TokenUsage tracks token consumption for a request. All three keys are
// always present on a ChatResponse; any of the pointer values may be nil
// when a provider doesn't report that figure.
type TokenUsage struct {
	Prompt     *int `json:"prompt"`
	Completion *int `json:"completion"`
	Total      *int `json:"total"`
}

// ToolCall represents a tool invocation requested by the model. Arguments
// MUST be valid JSON bytes and MUST preserve raw JSON (no reformatting).
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolResult represents the outcome of executing a tool.
type ToolResult struct {
	CallID  string `json:"call_id"`
	Content any    `json:"content"`
	IsError bool   `json:"is_error"`
}

// Tool is a provider-agnostic tool definition. Providers translate it into
// their own function/tool schema at the adapter boundary.
type Tool interface {
	Name() string
	Description() string
}

// ChatRequest represents a request to a chat model. Immutable once built;
// adapters are read-only consumers.
type ChatRequest struct {
	Model          ModelID        `json:"model"`
	Messages       []Message      `json:"messages"`
	MaxTokens      *int           `json:"max_tokens,omitempty"`  // > 0 if set
	Temperature    *float64       `json:"temperature,omitempty"` // 0..2
	ResponseFormat ResponseFormat `json:"response_format"`
	Tools          []Tool         `json:"-"`
	Stream         bool           `json:"stream"`

	// Extras carries provider-opaque, caller-supplied extension fields.
	// The core never inspects it; only the targeted adapter may.
	Extras map[string]any `json:"extras,omitempty"`

	CorrelationID string `json:"correlation_id,omitempty"`
}

// JoinedUserText concatenates a request's user-message content for
// providers/translators that want a single flattened prompt string.
// Whitespace-only segments are trimmed and dropped before joining, per the
// request-normalization invariant in §3.
func (r *ChatRequest) JoinedUserText(sep string) string {
	var parts []string
	for _, m := range r.Messages {
		if m.Role != RoleUser {
			continue
		}
		trimmed := strings.TrimSpace(m.Content)
		if trimmed == "" {
			continue
		}
		parts = append(parts, trimmed)
	}
	return strings.Join(parts, sep)
}

// FinishReason is the closed set of terminal states for a non-stream
// ChatResponse.
type FinishReason string

const (
	FinishStop          FinishReason = "stop"
	FinishLength        FinishReason = "length"
	FinishContentFilter FinishReason = "content_filter"
	FinishToolUse       FinishReason = "tool_use"
	FinishError         FinishReason = "error"
)

// ProviderMetadata is always present on a ChatResponse.
type ProviderMetadata struct {
	Provider          string         `json:"provider"`
	Model             ModelID        `json:"model"`
	RequestID         string         `json:"request_id,omitempty"`
	ResponseID        string         `json:"response_id,omitempty"`
	Tokens            TokenUsage     `json:"tokens"`
	TokenUsageDetails map[string]any `json:"token_usage_details,omitempty"`
	Extra             map[string]any `json:"extra,omitempty"`
}

// ChatResponse represents a response from a chat model.
type ChatResponse struct {
	Text         string           `json:"text"`
	FinishReason FinishReason     `json:"finish_reason"`
	Metadata     ProviderMetadata `json:"metadata"`
	ToolCalls    []ToolCall       `json:"tool_calls,omitempty"`
	Raw          any              `json:"-"`
}

// HasToolCalls reports whether the response contains any tool calls.
func (r *ChatResponse) HasToolCalls() bool {
	return len(r.ToolCalls) > 0
}

// FirstToolCall returns the first tool call, or nil if there are none.
func (r *ChatResponse) FirstToolCall() *ToolCall {
	if len(r.ToolCalls) > 0 {
		return &r.ToolCalls[0]
	}
	return nil
}
