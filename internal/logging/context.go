package logging

import (
	"context"
	"log/slog"
)

type contextKey string

const (
	taskIDKey    contextKey = "task_id"
	opKey        contextKey = "op"
	requestIDKey contextKey = "request_id"
)

// WithTaskID annotates a context with the task row id being processed.
func WithTaskID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, taskIDKey, id)
}

// TaskIDFromContext extracts the task id if present.
func TaskIDFromContext(ctx context.Context) (int64, bool) {
	v, ok := ctx.Value(taskIDKey).(int64)
	return v, ok
}

// WithOp annotates a context with the op type ("transfer", "stage", "delete").
func WithOp(ctx context.Context, op string) context.Context {
	if op == "" {
		return ctx
	}
	return context.WithValue(ctx, opKey, op)
}

// OpFromContext returns the op type if present.
func OpFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(opKey).(string)
	return v, ok && v != ""
}

// WithRequestID annotates a context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(requestIDKey).(string)
	return v, ok && v != ""
}

// WithContext returns a logger with any task/op/request-id attributes found
// in ctx attached, so every subsequent log line from that call chain carries
// them without the caller repeating itself.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return NewNop()
	}
	if ctx == nil {
		return logger
	}
	if id, ok := TaskIDFromContext(ctx); ok {
		logger = logger.With(Int64(FieldTaskID, id))
	}
	if op, ok := OpFromContext(ctx); ok {
		logger = logger.With(String(FieldOp, op))
	}
	if reqID, ok := RequestIDFromContext(ctx); ok {
		logger = logger.With(String(FieldRequestID, reqID))
	}
	return logger
}

// NewNop returns a logger that discards all output.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(discardWriter{}, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
