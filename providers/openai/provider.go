package openai

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/petal-labs/iris/core"
	"github.com/petal-labs/iris/httppool"
)

// DefaultAPIKeyEnvVar is the environment variable name for the OpenAI API key.
const DefaultAPIKeyEnvVar = "OPENAI_API_KEY"

// ErrAPIKeyNotFound is returned when the API key environment variable is not set.
var ErrAPIKeyNotFound = errors.New("openai: OPENAI_API_KEY environment variable not set")

// NewFromEnv creates a new OpenAI provider using the OPENAI_API_KEY environment variable.
func NewFromEnv(opts ...Option) (*OpenAI, error) {
	apiKey := os.Getenv(DefaultAPIKeyEnvVar)
	if apiKey == "" {
		return nil, ErrAPIKeyNotFound
	}
	return New(apiKey, opts...), nil
}

// OpenAI is an LLM provider implementation for the OpenAI Chat Completions API.
// OpenAI is safe for concurrent use.
type OpenAI struct {
	config Config
}

// New creates a new OpenAI provider with the given API key and options.
func New(apiKey string, opts ...Option) *OpenAI {
	cfg := Config{
		APIKey:     core.NewSecret(apiKey),
		BaseURL:    DefaultBaseURL,
		HTTPClient: httppool.Get("openai", DefaultBaseURL),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	p := &OpenAI{config: cfg}
	p.logger().Debug("provider.configured", map[string]any{
		"provider": "openai", "base_url": cfg.BaseURL, "api_key": cfg.APIKey.Preview(),
	})
	return p
}

// ID returns the provider identifier.
func (p *OpenAI) ID() string {
	return "openai"
}

// Models returns the list of available models.
func (p *OpenAI) Models() []core.ModelInfo {
	result := make([]core.ModelInfo, len(models))
	copy(result, models)
	return result
}

// Supports reports whether the provider supports the given feature.
func (p *OpenAI) Supports(feature core.Feature) bool {
	switch feature {
	case core.FeatureChat, core.FeatureChatStreaming, core.FeatureToolCalling, core.FeatureJSONOutput, core.FeatureVision, core.FeatureEmbeddings:
		return true
	default:
		return false
	}
}

// buildHeaders constructs the HTTP headers for an API request.
func (p *OpenAI) buildHeaders() http.Header {
	headers := make(http.Header)

	headers.Set("Authorization", "Bearer "+p.config.APIKey.Expose())
	headers.Set("Content-Type", "application/json")

	if p.config.OrgID != "" {
		headers.Set("OpenAI-Organization", p.config.OrgID)
	}

	if p.config.ProjectID != "" {
		headers.Set("OpenAI-Project", p.config.ProjectID)
	}

	for key, values := range p.config.Headers {
		for _, v := range values {
			headers.Add(key, v)
		}
	}

	return headers
}

func (p *OpenAI) startGuard() core.StartPhaseGuard {
	return core.NewStartPhaseGuard(p.config.StartTimeout)
}

func (p *OpenAI) retryPolicy() core.RetryPolicy {
	return p.config.RetryPolicy
}

func (p *OpenAI) logger() core.Logger {
	if p.config.Logger == nil {
		return core.NoopLogger{}
	}
	return p.config.Logger
}

func (p *OpenAI) metricsExporter() core.MetricsExporter {
	if p.config.Metrics == nil {
		return core.NoopMetricsExporter{}
	}
	return p.config.Metrics
}

// Chat sends a non-streaming chat request.
func (p *OpenAI) Chat(ctx context.Context, req *core.ChatRequest) (*core.ChatResponse, error) {
	return p.doChat(ctx, req)
}

// StreamChat sends a streaming chat request.
func (p *OpenAI) StreamChat(ctx context.Context, req *core.ChatRequest) (*core.StreamHandle, error) {
	return p.doStreamChat(ctx, req)
}

// Compile-time check that OpenAI implements Provider and EmbeddingProvider.
var _ core.Provider = (*OpenAI)(nil)
var _ core.EmbeddingProvider = (*OpenAI)(nil)
