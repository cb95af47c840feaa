package core

import (
	"context"
	"log/slog"
	"os"
)

// Logger is the structured-logging port (§4.13). Adapters and the
// streaming core call it with a fixed set of required keys; implementations
// are free to route, sample, or redact beyond that. NoopLogger discards
// everything and is the default when none is configured.
type Logger interface {
	Debug(event string, fields map[string]any)
	Info(event string, fields map[string]any)
	Warn(event string, fields map[string]any)
	Error(event string, fields map[string]any)
}

// NoopLogger discards every record.
type NoopLogger struct{}

func (NoopLogger) Debug(string, map[string]any) {}
func (NoopLogger) Info(string, map[string]any)  {}
func (NoopLogger) Warn(string, map[string]any)  {}
func (NoopLogger) Error(string, map[string]any) {}

var _ Logger = NoopLogger{}

// SlogLogger adapts a *slog.Logger to the Logger port, flattening fields
// into attributes on a single JSON record per call. This is the adapter
// wired by NewDefaultLogger.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger wraps an existing *slog.Logger.
func NewSlogLogger(logger *slog.Logger) SlogLogger {
	return SlogLogger{logger: logger}
}

// NewDefaultLogger builds a JSON slog.Logger writing to stderr, with level
// taken from the LOG_LEVEL environment variable (DEBUG, INFO, WARNING,
// ERROR, CRITICAL; unrecognized or unset values default to INFO). WARNING
// and CRITICAL are mapped onto slog's Warn/Error levels since slog has no
// matching native levels (§4.13).
func NewDefaultLogger() SlogLogger {
	level := levelFromEnv(os.Getenv("LOG_LEVEL"))
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return SlogLogger{logger: slog.New(handler)}
}

func levelFromEnv(raw string) slog.Level {
	switch raw {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO", "":
		return slog.LevelInfo
	case "WARNING", "WARN":
		return slog.LevelWarn
	case "ERROR", "CRITICAL":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l SlogLogger) Debug(event string, fields map[string]any) { l.log(slog.LevelDebug, event, fields) }
func (l SlogLogger) Info(event string, fields map[string]any)  { l.log(slog.LevelInfo, event, fields) }
func (l SlogLogger) Warn(event string, fields map[string]any)  { l.log(slog.LevelWarn, event, fields) }
func (l SlogLogger) Error(event string, fields map[string]any) { l.log(slog.LevelError, event, fields) }

func (l SlogLogger) log(level slog.Level, event string, fields map[string]any) {
	args := make([]any, 0, len(fields)*2+2)
	args = append(args, "event", event)
	for k, v := range fields {
		args = append(args, k, v)
	}
	l.logger.Log(context.Background(), level, event, args...)
}

var _ Logger = SlogLogger{}
