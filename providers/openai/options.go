package openai

import (
	"net/http"
	"time"

	"github.com/petal-labs/iris/core"
)

// Config holds configuration for the OpenAI provider.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey core.Secret

	// BaseURL is the API base URL. Defaults to https://api.openai.com/v1
	BaseURL string

	// HTTPClient is the HTTP client to use. Defaults to the process-wide
	// httppool client for this provider.
	HTTPClient *http.Client

	// OrgID is the optional OpenAI organization ID.
	OrgID string

	// ProjectID is the optional OpenAI project ID.
	ProjectID string

	// Headers contains optional extra headers to include in requests.
	Headers http.Header

	// Timeout is stored by WithTimeout; no request made by this provider
	// reads it.
	Timeout time.Duration

	// StartTimeout bounds how long a call may spend before its first byte
	// of response (or first stream event) arrives.
	StartTimeout time.Duration

	// RetryPolicy controls retry behavior during the start phase.
	RetryPolicy core.RetryPolicy

	// Logger receives structured diagnostic events. Defaults to a no-op.
	Logger core.Logger

	// Metrics receives stream and call measurements. Defaults to a no-op.
	Metrics core.MetricsExporter
}

// DefaultBaseURL is the default OpenAI API base URL.
const DefaultBaseURL = "https://api.openai.com/v1"

// Option configures the OpenAI provider.
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

// WithOrgID sets the OpenAI organization ID header.
func WithOrgID(org string) Option {
	return func(c *Config) {
		c.OrgID = org
	}
}

// WithProjectID sets the OpenAI project ID header.
func WithProjectID(project string) Option {
	return func(c *Config) {
		c.ProjectID = project
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

// WithStartTimeout sets the start-phase timeout.
func WithStartTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.StartTimeout = d
	}
}

// WithRetryPolicy sets the retry policy used during the start phase.
func WithRetryPolicy(policy core.RetryPolicy) Option {
	return func(c *Config) {
		c.RetryPolicy = policy
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger core.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithMetrics sets the metrics exporter.
func WithMetrics(metrics core.MetricsExporter) Option {
	return func(c *Config) {
		c.Metrics = metrics
	}
}
