package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_Environments(t *testing.T) {
	for _, env := range []string{"prod", "local", "dev", "docker", "test"} {
		t.Run(env, func(t *testing.T) {
			l, err := NewLogger(env)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if l == nil {
				t.Fatal("expected logger")
			}
		})
	}
}

func TestNewLogger_UnknownEnv(t *testing.T) {
	if _, err := NewLogger("staging"); err == nil {
		t.Fatal("expected error for unknown env")
	}
}

func TestNewLogger_LevelOverride(t *testing.T) {
	l, err := NewLogger("prod", "error")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Core().Enabled(zapcore.WarnLevel) {
		t.Error("warn should be disabled at error level")
	}
	if !l.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("error should be enabled")
	}

	if _, err := NewLogger("prod", "loud"); err == nil {
		t.Fatal("expected error for invalid level")
	}
}

func TestNewLogger_TestEnvIsQuiet(t *testing.T) {
	l, err := NewLogger("test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled in test env")
	}
}

func TestFromContext(t *testing.T) {
	if l := FromContext(context.Background()); l == nil {
		t.Fatal("expected nop logger, got nil")
	}

	want := zap.NewExample()
	ctx := ContextWithLogger(context.Background(), want)
	if got := FromContext(ctx); got != want {
		t.Error("expected stored logger")
	}
}

func TestFromContextOr(t *testing.T) {
	def := zap.NewExample()
	if got := FromContextOr(context.Background(), def); got != def {
		t.Error("expected fallback logger")
	}

	var nilLogger *zap.Logger
	ctx := ContextWithLogger(context.Background(), nilLogger)
	if got := FromContextOr(ctx, def); got != def {
		t.Error("nil logger in context must fall back")
	}
}
