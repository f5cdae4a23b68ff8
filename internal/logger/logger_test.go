package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/garyellow/gourmet-linebot-go/internal/ctxutil"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("failed to decode log line %q: %v", buf.String(), err)
	}
	return entry
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"error", slog.LevelError},
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLogSchema(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("debug", &buf)

	log.WithModule("gourmet").Warn("search slow", "duration_ms", 1200)

	entry := decodeLine(t, &buf)
	if entry["level"] != "warning" {
		t.Errorf("level = %v, want warning", entry["level"])
	}
	if entry["message"] != "search slow" {
		t.Errorf("message = %v, want 'search slow'", entry["message"])
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Error("timestamp key missing")
	}
	if entry["module"] != "gourmet" {
		t.Errorf("module = %v, want gourmet", entry["module"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("error", &buf)

	log.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info log written at error level: %s", buf.String())
	}

	log.Error("failed", "code", 42)
	entry := decodeLine(t, &buf)
	if entry["message"] != "failed" {
		t.Errorf("message = %v", entry["message"])
	}
}

func TestFluentFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.WithRequestID("req-1").
		WithError(errors.New("boom")).
		WithField("endpoint", "gourmet").
		WithField("count", 2).
		Info("done")

	entry := decodeLine(t, &buf)
	if entry["request_id"] != "req-1" {
		t.Errorf("request_id = %v", entry["request_id"])
	}
	if entry["error"] != "boom" {
		t.Errorf("error = %v", entry["error"])
	}
	if entry["endpoint"] != "gourmet" {
		t.Errorf("endpoint = %v", entry["endpoint"])
	}
	if entry["count"] != float64(2) {
		t.Errorf("count = %v", entry["count"])
	}
}

func TestContextTracingFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	ctx := ctxutil.WithUserID(context.Background(), "U123")
	ctx = ctxutil.WithChatID(ctx, "C456")
	ctx = ctxutil.WithEventID(ctx, "E789")
	log.InfoContext(ctx, "event")

	entry := decodeLine(t, &buf)
	for key, want := range map[string]string{"user_id": "U123", "chat_id": "C456", "event_id": "E789"} {
		if entry[key] != want {
			t.Errorf("%s = %v, want %s", key, entry[key], want)
		}
	}
	if _, ok := entry["request_id"]; ok {
		t.Error("request_id should be absent")
	}
}

func TestShutdownWithoutRemote(t *testing.T) {
	log := NewWithWriter("info", &bytes.Buffer{})
	if err := log.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() = %v, want nil", err)
	}
	// Derived loggers share the same sinks
	if err := log.WithModule("x").Shutdown(context.Background()); err != nil {
		t.Errorf("derived Shutdown() = %v, want nil", err)
	}
}
