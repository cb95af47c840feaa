package ollama

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/petal-labs/iris/core"
	"github.com/petal-labs/iris/httppool"
)

// Environment variable names for Ollama configuration.
const (
	OllamaAPIKeyEnvVar      = "OLLAMA_API_KEY"
	LocalProviderHostEnvVar = "LOCAL_PROVIDER_HOST"
)

// ErrAPIKeyNotFound is returned when the API key environment variable is not set.
var ErrAPIKeyNotFound = errors.New("ollama: OLLAMA_API_KEY environment variable not set")

// NewLocal creates a new Ollama provider for a local Ollama instance.
// This is a convenience factory for quick local setup:
//
//	provider := ollama.NewLocal()
//	client := core.NewClient(provider)
//
// If LOCAL_PROVIDER_HOST is set, it uses that URL; otherwise defaults to
// DefaultLocalURL.
func NewLocal(opts ...Option) *Ollama {
	baseOpts := make([]Option, 0, len(opts)+1)

	if host := os.Getenv(LocalProviderHostEnvVar); host != "" {
		baseOpts = append(baseOpts, WithBaseURL(host))
	}

	baseOpts = append(baseOpts, opts...)
	return New(baseOpts...)
}

// NewCloudFromEnv creates a new Ollama provider for Ollama Cloud using the
// OLLAMA_API_KEY environment variable.
//
//	provider, err := ollama.NewCloudFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := core.NewClient(provider)
func NewCloudFromEnv(opts ...Option) (*Ollama, error) {
	apiKey := os.Getenv(OllamaAPIKeyEnvVar)
	if apiKey == "" {
		return nil, ErrAPIKeyNotFound
	}
	baseOpts := []Option{WithCloud(), WithAPIKey(apiKey)}
	baseOpts = append(baseOpts, opts...)
	return New(baseOpts...), nil
}

// Ollama is an LLM provider implementation for the Ollama API, covering both
// local instances and Ollama Cloud. Ollama is safe for concurrent use.
type Ollama struct {
	config Config
}

// New creates a new Ollama provider with the given options. For local
// instances, no API key is required. For Ollama Cloud, use WithCloud() and
// WithAPIKey().
func New(opts ...Option) *Ollama {
	cfg := Config{
		BaseURL:    DefaultLocalURL,
		HTTPClient: httppool.Get("ollama", DefaultLocalURL),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	p := &Ollama{config: cfg}
	p.logger().Debug("provider.configured", map[string]any{
		"provider": "ollama", "base_url": cfg.BaseURL, "api_key": cfg.APIKey.Preview(),
	})
	return p
}

// ID returns the provider identifier.
func (p *Ollama) ID() string {
	return "ollama"
}

// Models returns example models available through Ollama. Ollama models are
// dynamic: any model pulled locally can be used even if absent from this
// list, which exists only so Models() has something to report (§4.7).
func (p *Ollama) Models() []core.ModelInfo {
	names := []string{"llama3.2", "llama3.2:70b", "mistral", "mixtral", "qwen3", "gemma3", "deepseek-coder", "codellama"}
	models := make([]core.ModelInfo, 0, len(names))
	for _, name := range names {
		models = append(models, core.ModelInfo{
			ID:           core.ModelID(name),
			Name:         name,
			Capabilities: []core.Feature{core.FeatureChat, core.FeatureChatStreaming, core.FeatureToolCalling},
			Provenance:   core.Provenance{FetchedVia: "cache", Source: "snapshot"},
		})
	}
	return models
}

// Supports reports whether the provider supports the given feature.
func (p *Ollama) Supports(feature core.Feature) bool {
	switch feature {
	case core.FeatureChat, core.FeatureChatStreaming, core.FeatureToolCalling, core.FeatureJSONOutput:
		return true
	default:
		return false
	}
}

// buildHeaders constructs the HTTP headers for an API request.
func (p *Ollama) buildHeaders() http.Header {
	headers := make(http.Header)
	headers.Set("Content-Type", "application/json")

	if !p.config.APIKey.IsEmpty() {
		headers.Set("Authorization", "Bearer "+p.config.APIKey.Expose())
	}

	for key, values := range p.config.Headers {
		for _, v := range values {
			headers.Add(key, v)
		}
	}

	return headers
}

func (p *Ollama) startGuard() core.StartPhaseGuard {
	return core.NewStartPhaseGuard(p.config.StartTimeout)
}

func (p *Ollama) retryPolicy() core.RetryPolicy {
	return p.config.RetryPolicy
}

func (p *Ollama) logger() core.Logger {
	if p.config.Logger == nil {
		return core.NoopLogger{}
	}
	return p.config.Logger
}

func (p *Ollama) metricsExporter() core.MetricsExporter {
	if p.config.Metrics == nil {
		return core.NoopMetricsExporter{}
	}
	return p.config.Metrics
}

// Chat sends a non-streaming chat request.
func (p *Ollama) Chat(ctx context.Context, req *core.ChatRequest) (*core.ChatResponse, error) {
	return p.doChat(ctx, req)
}

// StreamChat sends a streaming chat request.
func (p *Ollama) StreamChat(ctx context.Context, req *core.ChatRequest) (*core.StreamHandle, error) {
	return p.doStreamChat(ctx, req)
}

// Compile-time check that Ollama implements Provider.
var _ core.Provider = (*Ollama)(nil)
