package logger_test

import (
	"context"
	"testing"

	"lotcheck/logger"
)

func TestWithContext_FromContext_RoundTrip(t *testing.T) {
	nop := logger.NewNop()
	ctx := logger.WithContext(context.Background(), nop)

	if got := logger.FromContext(ctx); got != nop {
		t.Errorf("FromContext returned %v, want %v", got, nop)
	}
}

func TestFromContext_FallbackIsSingleton(t *testing.T) {
	a := logger.FromContext(context.Background())
	b := logger.FromContext(context.Background())

	if a == nil || b == nil {
		t.Fatal("expected non-nil fallback logger")
	}
	if a != b {
		t.Error("FromContext returned different fallback instances")
	}

	// Must not panic.
	a.Warn("fallback works", logger.String("key", "value"))
}

func TestNew_UnknownLevelDefaultsToInfo(t *testing.T) {
	l, err := logger.New(logger.Config{Level: "loud", OutputPaths: []string{"stderr"}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	enriched := l.With(logger.String("service", "test"))
	if enriched == l {
		t.Error("With() should return a new logger")
	}
}
