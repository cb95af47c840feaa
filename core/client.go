package core

import (
	"context"
	"fmt"
	"time"
)

// Provider is the interface that LLM providers must implement. Providers
// SHOULD be safe for concurrent calls; a provider that cannot be must
// document it.
type Provider interface {
	// ID returns the provider identifier (e.g., "openai", "anthropic").
	ID() string

	// Models returns the list of models available from this provider,
	// overlaid with any observed-capability data (§4.7, §4.8).
	Models() []ModelInfo

	// Supports reports whether the provider supports the given feature.
	Supports(feature Feature) bool

	// Chat sends a non-streaming chat request. The entire call is the
	// start phase: timeout and retry apply across the whole request
	// (§4.3).
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// StreamChat sends a streaming chat request and returns a handle whose
	// Events channel is fed as the stream progresses (§4.11).
	StreamChat(ctx context.Context, req *ChatRequest) (*StreamHandle, error)
}

// Client is the main entry point for interacting with LLM providers.
// Client is safe for concurrent use.
type Client struct {
	provider       Provider
	logger         Logger
	metrics        MetricsExporter
	warningHandler WarningHandler
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WarningHandler receives non-fatal warnings emitted by the SDK.
// Implementations should be safe for concurrent use.
type WarningHandler func(message string)

// NewClient creates a new Client with the given provider and options.
func NewClient(p Provider, opts ...ClientOption) *Client {
	c := &Client{
		provider:       p,
		logger:         NoopLogger{},
		metrics:        NoopMetricsExporter{},
		warningHandler: func(string) {},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithLogger sets the structured-logging port for the client.
func WithLogger(l Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics sets the metrics-export port for the client.
func WithMetrics(m MetricsExporter) ClientOption {
	return func(c *Client) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithWarningHandler sets a handler for non-fatal SDK warnings. Pass nil to
// keep the default no-op handler.
func WithWarningHandler(h WarningHandler) ClientOption {
	return func(c *Client) {
		if h != nil {
			c.warningHandler = h
		}
	}
}

// Provider returns the underlying provider.
func (c *Client) Provider() Provider {
	return c.provider
}

// Chat returns a ChatBuilder for constructing and executing a chat request.
func (c *Client) Chat(model ModelID) *ChatBuilder {
	return &ChatBuilder{
		client: c,
		req:    ChatRequest{Model: model},
	}
}

// ChatBuilder provides a fluent API for building chat requests.
// ChatBuilder is NOT thread-safe and should not be shared across goroutines.
type ChatBuilder struct {
	client  *Client
	req     ChatRequest
	timeout time.Duration // optional timeout for GetResponse
}

// System appends a system message.
func (b *ChatBuilder) System(s string) *ChatBuilder {
	b.req.Messages = append(b.req.Messages, Message{Role: RoleSystem, Content: s})
	return b
}

// User appends a user message.
func (b *ChatBuilder) User(s string) *ChatBuilder {
	b.req.Messages = append(b.req.Messages, Message{Role: RoleUser, Content: s})
	return b
}

// Assistant appends an assistant message.
func (b *ChatBuilder) Assistant(s string) *ChatBuilder {
	b.req.Messages = append(b.req.Messages, Message{Role: RoleAssistant, Content: s})
	return b
}

// Temperature sets the temperature parameter.
func (b *ChatBuilder) Temperature(v float64) *ChatBuilder {
	b.req.Temperature = &v
	return b
}

// MaxTokens sets the maximum tokens parameter.
func (b *ChatBuilder) MaxTokens(n int) *ChatBuilder {
	b.req.MaxTokens = &n
	return b
}

// Tools sets the tools available for the request.
func (b *ChatBuilder) Tools(ts ...Tool) *ChatBuilder {
	b.req.Tools = ts
	return b
}

// ResponseFormat sets the response-format constraint for the request.
func (b *ChatBuilder) ResponseFormat(f ResponseFormat) *ChatBuilder {
	b.req.ResponseFormat = f
	return b
}

// Extra sets a single provider-opaque extension field.
func (b *ChatBuilder) Extra(key string, value any) *ChatBuilder {
	if b.req.Extras == nil {
		b.req.Extras = make(map[string]any)
	}
	b.req.Extras[key] = value
	return b
}

// CorrelationID sets the caller-supplied correlation ID threaded through
// logs, metrics, and persisted chat logs (§3, §4.13).
func (b *ChatBuilder) CorrelationID(id string) *ChatBuilder {
	b.req.CorrelationID = id
	return b
}

// Timeout sets an optional timeout for the request. When set, GetResponse
// creates a context with this timeout if ctx has no deadline of its own;
// Stream does not apply it.
//
//	resp, err := client.Chat(model).User("Hello").Timeout(30*time.Second).GetResponse(context.Background())
func (b *ChatBuilder) Timeout(d time.Duration) *ChatBuilder {
	b.timeout = d
	return b
}

// Clone creates a deep copy of the ChatBuilder. The original builder
// remains unchanged after cloning.
func (b *ChatBuilder) Clone() *ChatBuilder {
	clone := &ChatBuilder{
		client:  b.client,
		timeout: b.timeout,
		req: ChatRequest{
			Model:          b.req.Model,
			ResponseFormat: b.req.ResponseFormat,
			Stream:         b.req.Stream,
			CorrelationID:  b.req.CorrelationID,
		},
	}

	if b.req.Temperature != nil {
		t := *b.req.Temperature
		clone.req.Temperature = &t
	}
	if b.req.MaxTokens != nil {
		m := *b.req.MaxTokens
		clone.req.MaxTokens = &m
	}

	if len(b.req.Messages) > 0 {
		clone.req.Messages = make([]Message, len(b.req.Messages))
		for i, msg := range b.req.Messages {
			clone.req.Messages[i] = Message{Role: msg.Role, Content: msg.Content, Name: msg.Name, ToolCallID: msg.ToolCallID}
			if len(msg.ToolCalls) > 0 {
				clone.req.Messages[i].ToolCalls = append([]ToolCall(nil), msg.ToolCalls...)
			}
			if len(msg.ToolResults) > 0 {
				clone.req.Messages[i].ToolResults = append([]ToolResult(nil), msg.ToolResults...)
			}
			if len(msg.Parts) > 0 {
				clone.req.Messages[i].Parts = append([]ContentPart(nil), msg.Parts...)
			}
		}
	}

	if len(b.req.Tools) > 0 {
		clone.req.Tools = append([]Tool(nil), b.req.Tools...)
	}

	if len(b.req.Extras) > 0 {
		clone.req.Extras = make(map[string]any, len(b.req.Extras))
		for k, v := range b.req.Extras {
			clone.req.Extras[k] = v
		}
	}

	return clone
}

// ToolResults returns a new ChatBuilder (immutable) with tool execution
// results appended. The assistant message containing the original tool
// calls is automatically included. If fewer results are provided than tool
// calls, or a result ID doesn't match any tool call, a warning is emitted
// via the client's warning handler.
func (b *ChatBuilder) ToolResults(assistantResp *ChatResponse, results []ToolResult) *ChatBuilder {
	newBuilder := b.Clone()

	if assistantResp == nil || !assistantResp.HasToolCalls() {
		return newBuilder
	}

	callIDs := make(map[string]string)
	for _, tc := range assistantResp.ToolCalls {
		callIDs[tc.ID] = tc.Name
	}

	providedIDs := make(map[string]bool)
	for _, r := range results {
		providedIDs[r.CallID] = true
		if _, ok := callIDs[r.CallID]; !ok {
			b.client.warnf("tool result ID %q does not match any tool call", r.CallID)
		}
	}
	for id, name := range callIDs {
		if !providedIDs[id] {
			b.client.warnf("no result provided for tool call %q (tool: %s)", id, name)
		}
	}

	newBuilder.req.Messages = append(newBuilder.req.Messages, Message{
		Role:      RoleAssistant,
		ToolCalls: assistantResp.ToolCalls,
	})
	newBuilder.req.Messages = append(newBuilder.req.Messages, Message{
		Role:        RoleTool,
		ToolResults: results,
	})

	return newBuilder
}

// ToolResult is a convenience method for adding a single successful tool
// result. Returns a new builder (immutable).
func (b *ChatBuilder) ToolResult(assistantResp *ChatResponse, callID string, content any) *ChatBuilder {
	return b.ToolResults(assistantResp, []ToolResult{{CallID: callID, Content: content}})
}

// ToolError is a convenience method for adding a single tool error result.
// Returns a new builder (immutable).
func (b *ChatBuilder) ToolError(assistantResp *ChatResponse, callID string, err error) *ChatBuilder {
	return b.ToolResults(assistantResp, []ToolResult{{CallID: callID, Content: err.Error(), IsError: true}})
}

// validate checks that the request is valid.
func (b *ChatBuilder) validate() error {
	if b.req.Model == "" {
		return ErrModelRequired
	}
	if len(b.req.Messages) == 0 {
		return ErrNoMessages
	}
	for _, msg := range b.req.Messages {
		hasContent := msg.Content != "" || len(msg.ToolCalls) > 0 || len(msg.ToolResults) > 0 || len(msg.Parts) > 0
		if !hasContent {
			return ErrNoMessages
		}
	}
	return nil
}

func (b *ChatBuilder) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.timeout <= 0 {
		return ctx, func() {}
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, b.timeout)
}

// GetResponse executes the chat request and returns the response. Timeout
// and retry are owned by the provider's Chat implementation, not by the
// builder (§4.3, §4.4).
func (b *ChatBuilder) GetResponse(ctx context.Context) (*ChatResponse, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	return b.client.provider.Chat(ctx, &b.req)
}

// Stream executes the chat request and returns a streaming handle.
//
// Note: Timeout() is NOT applied here, since the returned handle must
// outlive this call. For a bounded stream, derive ctx externally:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
//	defer cancel()
//	stream, err := client.Chat(model).User("...").Stream(ctx)
func (b *ChatBuilder) Stream(ctx context.Context) (*StreamHandle, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	return b.client.provider.StreamChat(ctx, &b.req)
}

// MessageBuilder provides a fluent API for building multimodal messages.
type MessageBuilder struct {
	parent *ChatBuilder
	role   Role
	parts  []ContentPart
}

// UserMultimodal starts building a multimodal user message.
func (b *ChatBuilder) UserMultimodal() *MessageBuilder {
	return &MessageBuilder{parent: b, role: RoleUser, parts: make([]ContentPart, 0)}
}

// Text adds a text content part to the message.
func (m *MessageBuilder) Text(s string) *MessageBuilder {
	m.parts = append(m.parts, InputText{Text: s})
	return m
}

// ImageURL adds an image by URL (HTTPS or data URL).
func (m *MessageBuilder) ImageURL(url string) *MessageBuilder {
	m.parts = append(m.parts, InputImage{ImageURL: url})
	return m
}

// ImageURLWithDetail adds an image by URL with a specific detail level.
func (m *MessageBuilder) ImageURLWithDetail(url string, detail ImageDetail) *MessageBuilder {
	m.parts = append(m.parts, InputImage{ImageURL: url, Detail: detail})
	return m
}

// Done completes the message and returns to the ChatBuilder.
func (m *MessageBuilder) Done() *ChatBuilder {
	m.parent.req.Messages = append(m.parent.req.Messages, Message{Role: m.role, Parts: m.parts})
	return m.parent
}

// UserWithImageURL adds a user message with text and an image URL. A
// convenience method for the common vision use case.
func (b *ChatBuilder) UserWithImageURL(text, imageURL string) *ChatBuilder {
	return b.UserMultimodal().Text(text).ImageURL(imageURL).Done()
}

func (c *Client) warnf(format string, args ...any) {
	c.warningHandler(fmt.Sprintf(format, args...))
}
