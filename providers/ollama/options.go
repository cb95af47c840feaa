package ollama

import (
	"net/http"
	"time"

	"github.com/petal-labs/iris/core"
)

// Default base URLs for Ollama API.
const (
	// DefaultLocalURL is the default URL for local Ollama instances.
	DefaultLocalURL = "http://127.0.0.1:11434"

	// DefaultCloudURL is the URL for Ollama Cloud (ollama.com).
	DefaultCloudURL = "https://ollama.com/api"
)

// Config holds the configuration for the Ollama provider.
type Config struct {
	// APIKey is the API key for Ollama Cloud. Optional for local instances.
	APIKey core.Secret

	// BaseURL is the base URL for the Ollama API.
	// Defaults to DefaultLocalURL.
	BaseURL string

	// HTTPClient is the HTTP client to use for requests.
	// Defaults to the process-wide httppool client for this provider.
	HTTPClient *http.Client

	// Headers contains additional HTTP headers to include in requests.
	Headers http.Header

	// Timeout is stored by WithTimeout; no request made by this provider
	// reads it.
	Timeout time.Duration

	// StartTimeout bounds the start phase (§4.3). Zero falls back to
	// core.DefaultStartTimeout.
	StartTimeout time.Duration

	// RetryPolicy governs start-phase retries (§4.4). Zero value falls back
	// to core.DefaultRetryPolicy.
	RetryPolicy core.RetryPolicy

	// Logger is the structured-logging port. Defaults to core.NoopLogger.
	Logger core.Logger

	// Metrics is the metrics-export port. Defaults to core.NoopMetricsExporter.
	Metrics core.MetricsExporter
}

// Option is a function that configures the Ollama provider.
type Option func(*Config)

// WithAPIKey sets the API key for Ollama Cloud.
// This is optional for local Ollama instances.
func WithAPIKey(key string) Option {
	return func(c *Config) {
		c.APIKey = core.NewSecret(key)
	}
}

// WithBaseURL sets a custom base URL for the Ollama API.
func WithBaseURL(url string) Option {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithCloud configures the provider for Ollama Cloud (ollama.com).
// This sets the base URL to DefaultCloudURL. You should also call
// WithAPIKey to provide authentication.
func WithCloud() Option {
	return func(c *Config) {
		c.BaseURL = DefaultCloudURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Config) {
		c.HTTPClient = client
	}
}

// WithHeaders sets additional HTTP headers to include in requests.
func WithHeaders(headers http.Header) Option {
	return func(c *Config) {
		c.Headers = headers
	}
}

// WithTimeout sets Config.Timeout, which no request made by this provider
// reads.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithStartTimeout overrides the start-phase guard timeout (§4.3).
func WithStartTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.StartTimeout = timeout
	}
}

// WithRetryPolicy overrides the start-phase retry policy (§4.4).
func WithRetryPolicy(policy core.RetryPolicy) Option {
	return func(c *Config) {
		c.RetryPolicy = policy
	}
}

// WithLogger sets the structured-logging port (§4.13).
func WithLogger(logger core.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithMetrics sets the metrics-export port (§4.12).
func WithMetrics(metrics core.MetricsExporter) Option {
	return func(c *Config) {
		c.Metrics = metrics
	}
}
