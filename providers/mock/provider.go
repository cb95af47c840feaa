// Package mock provides a deterministic fixture provider used when
// USE_MOCKS is set, so integration tests and local development can exercise
// the full call/streaming lifecycle without reaching a real API.
package mock

import (
	"context"
	"strings"

	"github.com/petal-labs/iris/core"
)

// ModelSmall is the default fixture model; Chat and StreamChat recognize it
// regardless of what is configured, and fall back to its fixture for any
// other model ID.
const ModelSmall core.ModelID = "mock-small"

// Mock is a fixture LLM provider. It never makes network calls; Chat and
// StreamChat return a canned response built from the last user message.
// Mock is safe for concurrent use.
type Mock struct {
	config Config
}

// New creates a new Mock provider with the given options.
func New(opts ...Option) *Mock {
	cfg := Config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Mock{config: cfg}
}

// ID returns the provider identifier.
func (p *Mock) ID() string {
	return "mock"
}

// Models returns the fixture model list.
func (p *Mock) Models() []core.ModelInfo {
	return []core.ModelInfo{
		{
			ID:   ModelSmall,
			Name: "Mock Small",
			Capabilities: []core.Feature{
				core.FeatureChat,
				core.FeatureChatStreaming,
				core.FeatureJSONOutput,
			},
			Provenance: core.Provenance{FetchedVia: "cache", Source: "snapshot"},
		},
	}
}

// Supports reports whether the provider supports the given feature.
func (p *Mock) Supports(feature core.Feature) bool {
	switch feature {
	case core.FeatureChat, core.FeatureChatStreaming, core.FeatureJSONOutput:
		return true
	default:
		return false
	}
}

func (p *Mock) startGuard() core.StartPhaseGuard {
	return core.NewStartPhaseGuard(p.config.StartTimeout)
}

func (p *Mock) retryPolicy() core.RetryPolicy {
	return p.config.RetryPolicy
}

// Chat returns a deterministic response. The fixture text is "hello"
// unless a scripted reply was configured via WithReply for the request's
// last user message.
func (p *Mock) Chat(ctx context.Context, req *core.ChatRequest) (*core.ChatResponse, error) {
	return core.CallWithRetry(ctx, p.startGuard(), p.retryPolicy(), nil, func(ctx context.Context) (*core.ChatResponse, error) {
		return p.chatOnce(req)
	})
}

func (p *Mock) chatOnce(req *core.ChatRequest) (*core.ChatResponse, error) {
	if err := p.config.FailWith; err != nil {
		return nil, err
	}

	return &core.ChatResponse{
		Text:         p.replyFor(req),
		FinishReason: core.FinishStop,
		Metadata: core.ProviderMetadata{
			Provider: "mock",
			Model:    modelOf(req),
		},
	}, nil
}

func (p *Mock) replyFor(req *core.ChatRequest) string {
	last := lastUserContent(req)
	if reply, ok := p.config.Replies[last]; ok {
		return reply
	}
	return "hello"
}

func lastUserContent(req *core.ChatRequest) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == core.RoleUser {
			return strings.TrimSpace(req.Messages[i].Content)
		}
	}
	return ""
}

func modelOf(req *core.ChatRequest) core.ModelID {
	if req.Model != "" {
		return req.Model
	}
	return ModelSmall
}

// StreamChat sends a streaming chat request, replaying the scripted fixture
// deltas through the same lifecycle a real provider's stream goes through.
func (p *Mock) StreamChat(ctx context.Context, req *core.ChatRequest) (*core.StreamHandle, error) {
	return p.doStreamChat(ctx, req)
}

var _ core.Provider = (*Mock)(nil)
