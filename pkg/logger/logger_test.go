package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestWithContext_AddsKnownKeys(t *testing.T) {
	var buf bytes.Buffer
	prev := Default()
	SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	defer SetDefault(prev)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, BrowserIDKey, "browser-1")
	ctx = context.WithValue(ctx, ServiceKey, "web")

	InfoContext(ctx, "hello", "k", "v")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("Expected JSON log line, got %q: %v", buf.String(), err)
	}
	for key, want := range map[string]string{"request_id": "req-1", "browser_id": "browser-1", "service": "web", "k": "v", "msg": "hello"} {
		if line[key] != want {
			t.Fatalf("Expected %s=%s, got %v", key, want, line[key])
		}
	}
	if _, ok := line["user_id"]; ok {
		t.Fatal("Expected no user_id without a context value")
	}
}

func TestNew_RedactsSecretsAndHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "warn", "json")

	l.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("Expected info suppressed at warn level, got %q", buf.String())
	}

	l.Warn("login", "password", "admin123", "Authorization", "Bearer tok", "status", 401)
	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("Expected JSON log line, got %q: %v", buf.String(), err)
	}
	if line["password"] != "[REDACTED]" || line["Authorization"] != "[REDACTED]" {
		t.Fatalf("Expected secrets redacted, got %v", line)
	}
	if line["status"] != float64(401) {
		t.Fatalf("Expected other attributes kept, got %v", line["status"])
	}
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "bogus", "text").Info("hello")
	if !bytes.Contains(buf.Bytes(), []byte("msg=hello")) {
		t.Fatalf("Expected text output at default info level, got %q", buf.String())
	}
}
