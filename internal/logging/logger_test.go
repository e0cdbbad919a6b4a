package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/dynamo-fod/fod/internal/logging"
)

func TestNewBuildsConsoleLogger(t *testing.T) {
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", OutputPaths: []string{"stderr"}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNewRejectsUnsupportedFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAttachesAttributes(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := logging.WithTaskID(context.Background(), 42)
	ctx = logging.WithOp(ctx, "transfer")

	logging.WithContext(ctx, base).Info("task started")

	out := buf.String()
	if !strings.Contains(out, "task_id=42") {
		t.Fatalf("expected task_id attribute in output: %q", out)
	}
	if !strings.Contains(out, "op=transfer") {
		t.Fatalf("expected op attribute in output: %q", out)
	}
}
