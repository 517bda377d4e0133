package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/evanschultz/stack/internal/adapters/server/common"
	"github.com/evanschultz/stack/internal/adapters/storage/sqlite"
	"github.com/evanschultz/stack/internal/app"
)

// newBoardService builds a real adapter over an in-memory store.
func newBoardService(t *testing.T) *common.AppServiceAdapter {
	t.Helper()
	repo, err := sqlite.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	svc := app.NewService(repo, time.Now, app.ServiceConfig{})
	if _, err := svc.CreateStory(context.Background(), app.CreateStoryInput{Title: "Write spec"}); err != nil {
		t.Fatalf("CreateStory() error = %v", err)
	}
	return common.NewAppServiceAdapter(svc)
}

// TestNewHandlerRequiresBoard verifies the board dependency is mandatory.
func TestNewHandlerRequiresBoard(t *testing.T) {
	if _, _, err := NewHandler(Config{}, Dependencies{}); err == nil {
		t.Fatalf("expected error without board dependency")
	}
}

// TestNewHandlerRoutes verifies health, API and MCP mounts on one mux.
func TestNewHandlerRoutes(t *testing.T) {
	handler, cfg, err := NewHandler(Config{APIEndpoint: "api/v1/", MCPEndpoint: "/mcp/"}, Dependencies{Board: newBoardService(t)})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	if cfg.APIEndpoint != "/api/v1" || cfg.MCPEndpoint != "/mcp" || cfg.ServerName != "stack" || cfg.HTTPBind != defaultBindAddress {
		t.Fatalf("unexpected normalized config %#v", cfg)
	}

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK || rec.Body.String() != "{\"status\":\"ok\"}\n" {
			t.Fatalf("%s = %d %q", path, rec.Code, rec.Body.String())
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/board", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("board status = %d body %s", rec.Code, rec.Body.String())
	}
	var board common.BoardDTO
	if err := json.NewDecoder(rec.Body).Decode(&board); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(board.Columns) != 4 || len(board.Columns[0].Stories) != 1 {
		t.Fatalf("unexpected board %#v", board)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stories/99", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing story status = %d, want 404", rec.Code)
	}
}

// TestNormalizeConfigRejectsEqualEndpoints verifies endpoint collision checks.
func TestNormalizeConfigRejectsEqualEndpoints(t *testing.T) {
	if _, err := normalizeConfig(Config{APIEndpoint: "/x", MCPEndpoint: "x/"}); err == nil {
		t.Fatalf("expected collision error")
	}
}

// TestNormalizeEndpoint verifies path canonicalization and fallbacks.
func TestNormalizeEndpoint(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", "/api/v1"},
		{"/", "/api/v1"},
		{"v2", "/v2"},
		{"/v2/", "/v2"},
		{" /a/b/ ", "/a/b"},
	}
	for _, tc := range cases {
		if got := normalizeEndpoint(tc.in, "/api/v1"); got != tc.want {
			t.Fatalf("normalizeEndpoint(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

// TestRunStopsOnCancel verifies graceful shutdown once the context ends.
func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Config{HTTPBind: "127.0.0.1:0"}, Dependencies{Board: newBoardService(t)})
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run() did not stop after cancel")
	}
}

// recordingLogger captures debug messages with their key-value pairs.
type recordingLogger struct {
	debug []string
}

func (l *recordingLogger) Debug(msg any, keyvals ...any) {
	l.debug = append(l.debug, fmt.Sprint(append([]any{msg}, keyvals...)...))
}
func (l *recordingLogger) Info(any, ...any)  {}
func (l *recordingLogger) Error(any, ...any) {}

// TestNewHandlerLogsRequests verifies each request gets one debug line with its status.
func TestNewHandlerLogsRequests(t *testing.T) {
	logger := &recordingLogger{}
	handler, _, err := NewHandler(Config{}, Dependencies{Board: newBoardService(t), Logger: logger})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stories/99", nil))
	if len(logger.debug) != 1 {
		t.Fatalf("expected one request log line, got %#v", logger.debug)
	}
	line := logger.debug[0]
	if !strings.Contains(line, "/api/v1/stories/99") || !strings.Contains(line, "404") {
		t.Fatalf("unexpected request log %q", line)
	}
}

// TestRunReportsListenError verifies a bad bind address fails fast.
func TestRunReportsListenError(t *testing.T) {
	err := Run(context.Background(), Config{HTTPBind: "127.0.0.1:-1"}, Dependencies{Board: newBoardService(t)})
	if err == nil || !strings.Contains(err.Error(), "listen on") {
		t.Fatalf("expected listen error, got %v", err)
	}
}
