package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/wricardo/chat-board-games/game/config"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName != "Chat Board Games" {
		t.Errorf("Unexpected app name %s", AppName)
	}
}

func TestCommandTree(t *testing.T) {
	cmd := newCommand()

	want := map[string]bool{"serve": false, "telegram": false, "mcp": false}
	for _, sub := range cmd.Commands {
		if _, ok := want[sub.Name]; ok {
			want[sub.Name] = true
		}
		if sub.Action == nil {
			t.Errorf("Command %s has no action", sub.Name)
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("Missing command %s", name)
		}
	}

	if cmd.DefaultCommand != "serve" {
		t.Errorf("Expected serve as default command, got %q", cmd.DefaultCommand)
	}
}

func TestLoadSettingsFlagOverrides(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		lifetime time.Duration
		interval time.Duration
		dir      string
		wantErr  bool
	}{
		{"defaults", nil, time.Hour, 3 * time.Second, "", false},
		{"overrides", []string{"--session-lifetime", "10m", "--sweep-interval", "1s", "--preset-dir", "presets"}, 10 * time.Minute, time.Second, "presets", false},
		{"invalid lifetime", []string{"--session-lifetime", "0s"}, 0, 0, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got config.Settings
			var loadErr error
			cmd := &cli.Command{
				Name:  "test",
				Flags: globalFlags(),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					got, loadErr = loadSettings(cmd)
					return nil
				},
			}

			if err := cmd.Run(context.Background(), append([]string{"test"}, tt.args...)); err != nil {
				t.Fatalf("Run: %v", err)
			}

			if tt.wantErr {
				if loadErr == nil {
					t.Error("Expected validation error")
				}
				return
			}
			if loadErr != nil {
				t.Fatalf("loadSettings: %v", loadErr)
			}
			if got.SessionLifetime != tt.lifetime || got.SweepInterval != tt.interval || got.PresetDir != tt.dir {
				t.Errorf("Unexpected settings %+v", got)
			}
		})
	}
}

func TestBaseURLFor(t *testing.T) {
	tests := map[string]string{
		"localhost:8080": "http://localhost:8080",
		":9090":          "http://127.0.0.1:9090",
		"0.0.0.0:80":     "http://127.0.0.1:80",
		"example.com":    "http://example.com",
	}
	for addr, want := range tests {
		if got := baseURLFor(addr); got != want {
			t.Errorf("baseURLFor(%q) = %q, want %q", addr, got, want)
		}
	}
}

func newTestRuntime(t *testing.T) *runtime {
	t.Helper()
	rt, err := newRuntime(config.Settings{
		SessionLifetime:      time.Hour,
		SweepInterval:        time.Second,
		MaxConcurrentUpdates: 4,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("newRuntime: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	rt.start(ctx)
	return rt
}

func TestNewRuntime_InvalidPresetDir(t *testing.T) {
	_, err := newRuntime(config.Settings{
		SessionLifetime: time.Hour,
		SweepInterval:   time.Second,
		PresetDir:       "/non/existent/path",
	}, zap.NewNop())
	if err == nil {
		t.Error("Expected error for non-existent preset directory")
	}
}

func TestRuntimeServesAPIAndMCP(t *testing.T) {
	rt := newTestRuntime(t)
	server := httptest.NewServer(rt.api)
	defer server.Close()
	rt.mountMCP(server.URL)

	if !probeAPI(context.Background(), server.URL) {
		t.Fatal("Expected probe to find the API")
	}

	resp, err := http.Post(server.URL+"/api/games/tictactoe", "application/json", bytes.NewBufferString(`{"chat_id": 1, "message_id": 2}`))
	if err != nil {
		t.Fatalf("start game: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", resp.StatusCode)
	}

	call := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"game_state","arguments":{"variant":"tictactoe","key":"1:2"}}}`
	resp, err = http.Post(server.URL+"/mcp", "application/json", bytes.NewBufferString(call))
	if err != nil {
		t.Fatalf("mcp call: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 from /mcp, got %d", resp.StatusCode)
	}

	var rpc struct {
		Result struct {
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
			IsError bool `json:"isError"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rpc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rpc.Result.IsError || len(rpc.Result.Content) == 0 {
		t.Fatalf("Unexpected MCP result %+v", rpc.Result)
	}
}

func TestProbeAPI_NoServer(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	if probeAPI(context.Background(), url) {
		t.Error("Expected probe to fail against a closed server")
	}
}

func TestServeHTTPStopsOnCancel(t *testing.T) {
	rt := newTestRuntime(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- rt.serveHTTP(ctx, "127.0.0.1:0", ngrokOptions{}, nil)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serveHTTP returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serveHTTP did not stop")
	}
}
