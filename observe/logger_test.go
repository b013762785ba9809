package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	zapobserver "go.uber.org/zap/zaptest/observer"
)

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("failed to parse log output as JSON: %v\nOutput: %s", err, buf.String())
	}
	return entry
}

// TestLogger_IncludesOperationFields verifies operation fields are present in log output.
func TestLogger_IncludesOperationFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	logger.WithOperation(OperationMeta{Name: "generate", BlockType: "text", CourseID: "c1"}).
		Info(context.Background(), "operation completed", F("duration_ms", 12.5))

	entry := decodeEntry(t, &buf)

	if entry["operation"] != "generate" {
		t.Errorf("operation = %v, want generate", entry["operation"])
	}
	if entry["block_type"] != "text" {
		t.Errorf("block_type = %v, want text", entry["block_type"])
	}
	if entry["course_id"] != "c1" {
		t.Errorf("course_id = %v, want c1", entry["course_id"])
	}
	if entry["duration_ms"] != 12.5 {
		t.Errorf("duration_ms = %v, want 12.5", entry["duration_ms"])
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v, want info", entry["level"])
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Error("timestamp missing")
	}
}

// TestLogger_Redaction verifies sensitive keys never reach the output.
func TestLogger_Redaction(t *testing.T) {
	for _, key := range RedactedFields {
		t.Run(key, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLoggerWithWriter("debug", &buf)

			logger.Info(context.Background(), "msg", F(key, "sensitive-value"))

			if strings.Contains(buf.String(), "sensitive-value") {
				t.Errorf("value of %q leaked: %s", key, buf.String())
			}
			if entry := decodeEntry(t, &buf); entry[key] != redacted {
				t.Errorf("%s = %v, want %s", key, entry[key], redacted)
			}
		})
	}
}

// TestLogger_LevelFiltering verifies entries below the level are dropped.
func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("warn", &buf)

	logger.Debug(context.Background(), "debug")
	logger.Info(context.Background(), "info")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below warn, got %s", buf.String())
	}

	logger.Warn(context.Background(), "warn")
	if entry := decodeEntry(t, &buf); entry["msg"] != "warn" {
		t.Errorf("msg = %v, want warn", entry["msg"])
	}
}

// TestLogger_ErrorValues verifies error fields are rendered as strings.
func TestLogger_ErrorValues(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	logger.Error(context.Background(), "failed", F("error", errors.New("connection reset")))

	if entry := decodeEntry(t, &buf); entry["error"] != "connection reset" {
		t.Errorf("error = %v, want connection reset", entry["error"])
	}
}

// TestLogger_TraceCorrelation verifies trace and span IDs are attached.
func TestLogger_TraceCorrelation(t *testing.T) {
	core, logs := zapobserver.New(zap.DebugLevel)
	logger := NewZapLogger(zap.New(core))

	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	logger.Info(ctx, "inside span")
	logger.Info(context.Background(), "outside span")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	inside := entries[0].ContextMap()
	if inside["trace_id"] != span.SpanContext().TraceID().String() {
		t.Errorf("trace_id = %v, want %s", inside["trace_id"], span.SpanContext().TraceID())
	}
	if _, ok := entries[1].ContextMap()["trace_id"]; ok {
		t.Error("trace_id should be absent without a span")
	}
}

// TestLogger_With verifies persistent fields.
func TestLogger_With(t *testing.T) {
	core, logs := zapobserver.New(zap.InfoLevel)
	logger := NewZapLogger(zap.New(core)).With(F("request_id", "r-1"), F("token", "abc"))

	logger.Info(context.Background(), "hello")

	fields := logs.All()[0].ContextMap()
	if fields["request_id"] != "r-1" {
		t.Errorf("request_id = %v, want r-1", fields["request_id"])
	}
	if fields["token"] != redacted {
		t.Errorf("token = %v, want redacted", fields["token"])
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]string{
		"debug":   "debug",
		"info":    "info",
		"warn":    "warn",
		"error":   "error",
		"":        "info",
		"verbose": "info",
	}
	for in, want := range tests {
		if got := ParseLogLevel(in).String(); got != want {
			t.Errorf("ParseLogLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestNopLogger(t *testing.T) {
	l := NopLogger()
	l.Info(context.Background(), "ignored")
	l.With(F("k", "v")).WithOperation(OperationMeta{Name: "x"}).Error(context.Background(), "ignored")

	if Zap(l) == nil {
		t.Error("Zap() should never return nil")
	}
	if NewZapLogger(nil) == nil {
		t.Error("NewZapLogger(nil) should return a usable logger")
	}
}
