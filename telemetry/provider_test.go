package telemetry_test

import (
	"context"
	"testing"

	"github.com/wricardo/chat-board-games/telemetry"
)

func TestSetup(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		enabled  string
	}{
		{"no endpoint", "", ""},
		{"explicitly disabled", "http://localhost:4318", "false"},
		// non-routable, so nothing is exported
		{"endpoint set", "http://192.0.2.1:4318", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(telemetry.EndpointEnv, tt.endpoint)
			t.Setenv(telemetry.EnabledEnv, tt.enabled)

			shutdown, err := telemetry.Setup(context.Background(), "board-games-test")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if err := shutdown(context.Background()); err != nil {
				t.Fatalf("shutdown error: %v", err)
			}
		})
	}
}

func TestSetup_NoopShutdownIgnoresCancelledContext(t *testing.T) {
	t.Setenv(telemetry.EndpointEnv, "")

	shutdown, err := telemetry.Setup(context.Background(), "noop-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := shutdown(ctx); err != nil {
		t.Fatalf("noop shutdown should not error: %v", err)
	}
}
