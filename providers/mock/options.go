package mock

import (
	"time"

	"github.com/petal-labs/iris/core"
)

// Config holds Mock provider configuration.
type Config struct {
	StartTimeout time.Duration
	RetryPolicy  core.RetryPolicy

	// Replies maps a trimmed last-user-message to a scripted response text.
	// Unmatched messages fall back to "hello".
	Replies map[string]string

	// FailWith, when set, is returned by every call instead of a fixture
	// response. Used to script Scenario-E-style contract-violation tests.
	FailWith error

	// StreamScript, when set, overrides the default two-delta
	// "Hel"/"lo" fixture for StreamChat.
	StreamScript []string

	// StreamDelay is inserted between each scripted delta, used to exercise
	// start-phase timeouts and cooperative cancellation.
	StreamDelay func(index int)
}

// Option configures a Mock provider.
type Option func(*Config)

// WithReply scripts a deterministic reply for a given last-user-message.
func WithReply(forMessage, reply string) Option {
	return func(c *Config) {
		if c.Replies == nil {
			c.Replies = make(map[string]string)
		}
		c.Replies[forMessage] = reply
	}
}

// WithFailure makes every call return err instead of a fixture response.
func WithFailure(err error) Option {
	return func(c *Config) { c.FailWith = err }
}

// WithStreamScript overrides the default delta sequence used by StreamChat.
func WithStreamScript(deltas ...string) Option {
	return func(c *Config) { c.StreamScript = deltas }
}

// WithStreamDelay installs a hook invoked before each scripted delta is
// emitted, keyed by delta index; used to simulate slow starts or to give a
// caller a window to cancel mid-stream.
func WithStreamDelay(fn func(index int)) Option {
	return func(c *Config) { c.StreamDelay = fn }
}

// WithStartTimeout sets the start-phase timeout.
func WithStartTimeout(d time.Duration) Option {
	return func(c *Config) { c.StartTimeout = d }
}

// WithRetryPolicy sets the retry policy applied to the start phase.
func WithRetryPolicy(policy core.RetryPolicy) Option {
	return func(c *Config) { c.RetryPolicy = policy }
}
