package vectis

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with vectis-specific context.
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
	return NewWriterLogger(os.Stderr, level)
}

// NewWriterLogger creates a text Logger writing to w.
func NewWriterLogger(w io.Writer, level slog.Level) *Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithEndpoint adds the remote base URL to the logger.
func (l *Logger) WithEndpoint(endpoint string) *Logger {
	return &Logger{
		Logger: l.Logger.With("endpoint", endpoint),
	}
}

// WithRequestID adds a request ID field to the logger.
func (l *Logger) WithRequestID(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("request_id", id),
	}
}

// WithK adds a k (neighbor count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogConnect logs the liveness probe performed by New.
func (l *Logger) LogConnect(ctx context.Context, endpoint string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "connect failed",
			"endpoint", endpoint,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "connected",
			"endpoint", endpoint,
		)
	}
}

// LogRequest logs a single round trip. An absent key is not a failure.
func (l *Logger) LogRequest(ctx context.Context, op, requestID string, status int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "request failed",
			"op", op,
			"request_id", requestID,
			"status", status,
			"duration", duration,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "request completed",
			"op", op,
			"request_id", requestID,
			"status", status,
			"duration", duration,
		)
	}
}

// LogBatch logs a batch operation.
func (l *Logger) LogBatch(ctx context.Context, op string, count, missing int, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "batch failed",
			"op", op,
			"count", count,
			"error", err,
		)
	case missing > 0:
		l.DebugContext(ctx, "batch completed with missing keys",
			"op", op,
			"count", count,
			"missing", missing,
		)
	default:
		l.DebugContext(ctx, "batch completed",
			"op", op,
			"count", count,
		)
	}
}

// LogSearch logs a search operation.
func (l *Logger) LogSearch(ctx context.Context, k, resultsFound int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"k", k,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "search completed",
			"k", k,
			"results", resultsFound,
		)
	}
}

// LogClose logs client shutdown.
func (l *Logger) LogClose(ctx context.Context, endpoint string) {
	l.InfoContext(ctx, "client closed",
		"endpoint", endpoint,
	)
}
