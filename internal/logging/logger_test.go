package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestConsoleHandlerFormatsComponentAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	NewComponentLogger(logger, "collector").Info("date stored",
		String("date", "2025-01-03"),
		Int("records", 12))

	line := buf.String()
	if !strings.Contains(line, "INFO collector: date stored") {
		t.Fatalf("line %q missing component prefix", line)
	}
	if !strings.Contains(line, "date=2025-01-03") || !strings.Contains(line, "records=12") {
		t.Fatalf("line %q missing attrs", line)
	}
	if strings.Contains(line, FieldComponent+"=") {
		t.Fatalf("line %q should fold the component attr into the prefix", line)
	}
}

func TestConsoleHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger.Warn("row dropped", String("reason", "missing title cell"))

	if !strings.Contains(buf.String(), `reason="missing title cell"`) {
		t.Fatalf("line %q should quote spaced values", buf.String())
	}
}

func TestConsoleHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelWarn)
	handler := newConsoleHandler(&buf, lvl)

	if handler.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("info should be disabled at warn level")
	}
	slog.New(handler).Info("suppressed")
	if buf.Len() != 0 {
		t.Fatalf("suppressed record still wrote %q", buf.String())
	}
}

func TestJSONHandlerUsesShortKeys(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newJSONHandler(&buf, lvl))

	logger.Info("run started", String("run_id", "abc"))

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if payload["msg"] != "run started" {
		t.Fatalf("msg = %v", payload["msg"])
	}
	if payload["level"] != "info" {
		t.Fatalf("level = %v, want lowercase", payload["level"])
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatal("expected ts key")
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
