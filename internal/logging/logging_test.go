package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestNew_DefaultLevel(t *testing.T) {
	logger := New("", "text")
	if logger == nil {
		t.Fatal("Expected non-nil logger")
	}
}

func TestNew_DebugLevel(t *testing.T) {
	logger := New("debug", "text")
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Expected debug level to be enabled")
	}
}

func TestNew_WarnLevel(t *testing.T) {
	logger := New("warn", "json")
	if logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("Expected info level to be disabled at warn level")
	}
	if !logger.Enabled(context.Background(), slog.LevelWarn) {
		t.Error("Expected warn level to be enabled")
	}
}

func TestNew_UnknownLevelDefaultsToInfo(t *testing.T) {
	logger := New("verbose", "text")
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Expected debug disabled when level string is unrecognized")
	}
	if !logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("Expected info enabled by default")
	}
}

func TestNew_ErrorLevel(t *testing.T) {
	logger := New("error", "json")
	if logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("Expected info level to be disabled at error level")
	}
}

func TestWithRequestID_And_RequestID(t *testing.T) {
	ctx := context.Background()

	if id := RequestID(ctx); id != "" {
		t.Errorf("Expected empty request ID, got %q", id)
	}

	ctx = WithRequestID(ctx, "req-123")
	if id := RequestID(ctx); id != "req-123" {
		t.Errorf("Expected req-123, got %q", id)
	}
}

func TestWithLogger_And_FromContext(t *testing.T) {
	ctx := context.Background()

	if FromContext(ctx) == nil {
		t.Fatal("Expected default logger")
	}

	custom := New("debug", "json")
	ctx = WithLogger(ctx, custom)
	if FromContext(ctx) != custom {
		t.Error("Expected custom logger from context")
	}
}

func TestL_WithRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-456")
	ctx = WithLogger(ctx, New("info", "text"))

	if L(ctx) == nil {
		t.Fatal("Expected non-nil logger from L()")
	}
}
