package core

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrorCode is the closed set of normalized error classifications produced
// by classify() and carried on every ProviderError / Terminal event.
type ErrorCode string

const (
	ErrCodeInternal    ErrorCode = "internal"
	ErrCodeCancelled   ErrorCode = "cancelled"
	ErrCodeTimeout     ErrorCode = "timeout"
	ErrCodeTransient   ErrorCode = "transient"
	ErrCodeRateLimit   ErrorCode = "rate_limit"
	ErrCodeAuth        ErrorCode = "auth"
	ErrCodeBadRequest  ErrorCode = "bad_request"
	ErrCodeNotFound    ErrorCode = "not_found"
	ErrCodeUnsupported ErrorCode = "unsupported"
	ErrCodeProvider    ErrorCode = "provider"
	ErrCodeUnknown     ErrorCode = "unknown"
)

// Stage identifies where in an operation's lifecycle an error or log record
// originated.
type Stage string

const (
	StageStart     Stage = "start"
	StageMidStream Stage = "mid_stream"
	StageFinalize  Stage = "finalize"
	StageRetry     Stage = "retry"
)

// ProviderError carries full normalized context for a failed operation.
type ProviderError struct {
	Code      ErrorCode
	Message   string
	Cause     error
	Retryable bool
	Provider  string
	Operation string
	Stage     Stage

	// Feature names the capability this error is evidence about, when the
	// error itself constitutes an observed-capability rejection (§4.7) —
	// e.g. FeatureStructuredStreaming when a stream is rejected for
	// requesting a structured response format the provider can't stream.
	// Left zero-valued for errors that aren't capability evidence.
	Feature Feature
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("%s: %s: %s", e.Provider, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error chaining.
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// TerminalString formats the error as the wire-level "<code>:<message>"
// string used on Terminal stream events, truncating the message to 256
// characters and collapsing newlines, per §4.1.
func (e *ProviderError) TerminalString() string {
	return FormatTerminalError(e.Code, e.Message)
}

// FormatTerminalError builds the "<code>:<truncated_message>" string used
// on error Terminal events, independent of any ProviderError instance.
func FormatTerminalError(code ErrorCode, message string) string {
	msg := strings.ReplaceAll(message, "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	const maxLen = 256
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return fmt.Sprintf("%s:%s", code, msg)
}

// Sentinel errors used by classify() and by adapters constructing causes.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("rate limited")
	ErrBadRequest   = errors.New("bad request")
	ErrNotFound     = errors.New("not found")
	ErrServer       = errors.New("server error")
	ErrNetwork      = errors.New("network error")
	ErrDecode       = errors.New("decode error")
	ErrNotSupported = errors.New("operation not supported")

	// ErrModelRequired and ErrNoMessages are request-validation errors with
	// actionable guidance; they classify as bad_request.
	ErrModelRequired = errors.New("model required: pass a model ID, e.g. core.ChatRequest{Model: \"gpt-4o\"}")
	ErrNoMessages    = errors.New("no messages: add at least one message to the request")

	// ErrNoInput and ErrEmptyInput are embedding-request-validation errors,
	// same treatment as ErrModelRequired/ErrNoMessages.
	ErrNoInput    = errors.New("no input: add at least one EmbeddingInput to the request")
	ErrEmptyInput = errors.New("empty input: every EmbeddingInput needs non-empty Text")
)

// Retryable reports whether code is ever retryable. rate_limit and
// transient are always retryable; timeout is retryable only during the
// start phase (callers check that separately); cancelled and internal are
// never retryable.
func (c ErrorCode) Retryable() bool {
	switch c {
	case ErrCodeRateLimit, ErrCodeTransient:
		return true
	case ErrCodeCancelled, ErrCodeInternal:
		return false
	default:
		return false
	}
}

// Classify maps a native SDK/HTTP cause deterministically to an ErrorCode.
// status is the HTTP status code, or 0 if the cause did not come from an
// HTTP round trip.
func Classify(status int, cause error) ErrorCode {
	if cause != nil {
		if errors.Is(cause, context.Canceled) {
			return ErrCodeCancelled
		}
		if errors.Is(cause, context.DeadlineExceeded) {
			return ErrCodeTimeout
		}
		var netErr net.Error
		if errors.As(cause, &netErr) && netErr.Timeout() {
			return ErrCodeTimeout
		}
		if errors.Is(cause, ErrDecode) {
			return ErrCodeInternal
		}
		if errors.Is(cause, ErrNotSupported) {
			return ErrCodeUnsupported
		}
		if errors.Is(cause, ErrNetwork) {
			return ErrCodeTransient
		}
		if errors.Is(cause, ErrModelRequired) || errors.Is(cause, ErrNoMessages) ||
			errors.Is(cause, ErrNoInput) || errors.Is(cause, ErrEmptyInput) {
			return ErrCodeBadRequest
		}
	}

	switch {
	case status == 0:
		if cause == nil {
			return ErrCodeUnknown
		}
		return ErrCodeProvider
	case status == 408:
		return ErrCodeTransient
	case status == 429:
		return ErrCodeRateLimit
	case status == 401 || status == 403:
		return ErrCodeAuth
	case status == 400:
		return ErrCodeBadRequest
	case status == 404:
		return ErrCodeNotFound
	case status >= 500 && status < 600:
		return ErrCodeTransient
	default:
		return ErrCodeProvider
	}
}

// NewProviderError builds a ProviderError with Retryable and Code derived
// from Classify(status, cause).
func NewProviderError(provider, operation string, stage Stage, status int, message string, cause error) *ProviderError {
	code := Classify(status, cause)
	return &ProviderError{
		Code:      code,
		Message:   message,
		Cause:     cause,
		Retryable: code.Retryable(),
		Provider:  provider,
		Operation: operation,
		Stage:     stage,
	}
}
