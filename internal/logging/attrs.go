package logging

import (
	"log/slog"
	"time"
)

// Well-known field names used consistently across log lines so downstream
// log aggregation can key on them without parsing messages.
const (
	FieldEventType = "event_type"
	FieldTaskID    = "task_id"
	FieldBatchID   = "batch_id"
	FieldStatus    = "status"
	FieldOp        = "op"
	FieldPoolKey   = "pool_key"
	FieldAttempt   = "attempt"
	FieldErrorHint = "error_hint"
	FieldRequestID = "request_id"
)

type Attr = slog.Attr

func Any(key string, value any) Attr { return slog.Any(key, value) }

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Float64(key string, value float64) Attr { return slog.Float64(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func Int64(key string, value int64) Attr { return slog.Int64(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

func Group(key string, attrs ...Attr) Attr {
	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}
	return slog.Group(key, args...)
}

func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}
