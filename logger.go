package tokgo

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with tokgo-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// LogPrefetch logs a prefetch operation.
func (l *Logger) LogPrefetch(ctx context.Context, blocks int, tokens int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "prefetch failed",
			"blocks", blocks,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "prefetch completed",
			"blocks", blocks,
			"tokens", tokens,
		)
	}
}

// LogGet logs a sample fetch.
func (l *Logger) LogGet(ctx context.Context, id, length int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "get failed",
			"block", id,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "get completed",
			"block", id,
			"length", length,
		)
	}
}
