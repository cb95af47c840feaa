package anthropic

import (
	"net/http"
	"time"

	"github.com/petal-labs/iris/core"
)

// Config holds configuration for the Anthropic provider.
type Config struct {
	// APIKey is the Anthropic API key (required).
	APIKey core.Secret

	// BaseURL is the API base URL. Defaults to https://api.anthropic.com
	BaseURL string

	// HTTPClient is the HTTP client to use. Defaults to the process-wide
	// httppool client for this provider.
	HTTPClient *http.Client

	// Version is the Anthropic API version. Defaults to 2023-06-01.
	Version string

	// Headers contains optional extra headers to include in requests.
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

// DefaultBaseURL is the default Anthropic API base URL.
const DefaultBaseURL = "https://api.anthropic.com"

// DefaultVersion is the default Anthropic API version.
const DefaultVersion = "2023-06-01"

// Option configures the Anthropic provider.
type Option func(*Config)

// WithBaseURL sets the API base URL.
func WithBaseURL(url string) Option {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Config) {
		c.HTTPClient = client
	}
}

// WithVersion sets the Anthropic API version.
func WithVersion(version string) Option {
	return func(c *Config) {
		c.Version = version
	}
}

// WithHeader adds an extra header to include in requests.
func WithHeader(key, value string) Option {
	return func(c *Config) {
		if c.Headers == nil {
			c.Headers = make(http.Header)
		}
		c.Headers.Set(key, value)
	}
}

// WithTimeout sets Config.Timeout, which no request made by this provider
// reads.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Timeout = d
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
