package utils

import (
	"testing"
	"time"
)

func TestGetEnvDurationOrDefault(t *testing.T) {
	t.Setenv("TEST_DURATION", "250ms")
	if got := GetEnvDurationOrDefault("TEST_DURATION", time.Second); got != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %v", got)
	}

	t.Setenv("TEST_DURATION", "-5s")
	if got := GetEnvDurationOrDefault("TEST_DURATION", time.Second); got != time.Second {
		t.Fatalf("expected default for negative duration, got %v", got)
	}

	t.Setenv("TEST_DURATION", "soon")
	if got := GetEnvDurationOrDefault("TEST_DURATION", time.Second); got != time.Second {
		t.Fatalf("expected default for garbage, got %v", got)
	}
}

func TestGetEnvIntOrDefault(t *testing.T) {
	t.Setenv("TEST_INT", " 42 ")
	if got := GetEnvIntOrDefault("TEST_INT", 7); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}

	t.Setenv("TEST_INT", "0")
	if got := GetEnvIntOrDefault("TEST_INT", 7); got != 7 {
		t.Fatalf("expected default for zero, got %d", got)
	}
}

func TestTracingDefaults(t *testing.T) {
	t.Setenv("OTEL_TRACES_ENABLED", "")
	t.Setenv("OTEL_SERVICE_NAME", "")

	if IsTracingEnabled() {
		t.Fatalf("tracing must be off unless enabled explicitly")
	}
	if OTelServiceName() != "heijo-waitlist" {
		t.Fatalf("unexpected default service name %q", OTelServiceName())
	}

	t.Setenv("OTEL_TRACES_ENABLED", "true")
	if !IsTracingEnabled() {
		t.Fatalf("expected tracing enabled")
	}
}
