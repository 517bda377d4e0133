// Package server mounts the read API, the MCP tools and health probes on one HTTP listener.
package server

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/evanschultz/stack/internal/adapters/server/common"
	"github.com/evanschultz/stack/internal/adapters/server/httpapi"
	"github.com/evanschultz/stack/internal/adapters/server/mcpapi"
)

const (
	defaultBindAddress     = "127.0.0.1:8080"
	defaultAPIEndpoint     = "/api/v1"
	defaultMCPEndpoint     = "/mcp"
	defaultShutdownTimeout = 5 * time.Second
)

// Config holds the listener address, mount points and MCP identity.
type Config struct {
	HTTPBind      string
	APIEndpoint   string
	MCPEndpoint   string
	ServerName    string
	ServerVersion string
}

// Logger is the subset of charmbracelet/log shared by every transport.
type Logger interface {
	Debug(msg any, keyvals ...any)
	Info(msg any, keyvals ...any)
	Error(msg any, keyvals ...any)
}

// Dependencies carries the board service and logger into the transports.
type Dependencies struct {
	Board  common.BoardService
	Logger Logger
}

// NewHandler builds the root mux and returns it with the normalized config.
func NewHandler(cfg Config, deps Dependencies) (http.Handler, Config, error) {
	cfg, err := normalizeConfig(cfg)
	if err != nil {
		return nil, Config{}, err
	}
	if deps.Board == nil {
		return nil, Config{}, errors.New("board dependency is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = nopLogger{}
	}

	mcpHandler, err := mcpapi.NewHandler(mcpapi.Config{
		ServerName:    cfg.ServerName,
		ServerVersion: cfg.ServerVersion,
		EndpointPath:  cfg.MCPEndpoint,
	}, deps.Board, logger)
	if err != nil {
		return nil, Config{}, fmt.Errorf("configure mcp handler: %w", err)
	}
	api := http.StripPrefix(cfg.APIEndpoint, httpapi.NewHandler(deps.Board, logger))

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", writeHealthStatus)
	mux.HandleFunc("/readyz", writeHealthStatus)
	mux.Handle(cfg.MCPEndpoint, mcpHandler)
	mux.Handle(cfg.APIEndpoint, api)
	mux.Handle(cfg.APIEndpoint+"/", api)
	return logRequests(mux, logger), cfg, nil
}

// Run listens on cfg.HTTPBind and serves until ctx is cancelled.
func Run(ctx context.Context, cfg Config, deps Dependencies) error {
	if ctx == nil {
		ctx = context.Background()
	}
	handler, cfg, err := NewHandler(cfg, deps)
	if err != nil {
		return fmt.Errorf("build server handler: %w", err)
	}
	logger := deps.Logger
	if logger == nil {
		logger = nopLogger{}
	}

	ln, err := net.Listen("tcp", cfg.HTTPBind)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.HTTPBind, err)
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	logger.Info("serving", "addr", ln.Addr().String(), "api", cfg.APIEndpoint, "mcp", cfg.MCPEndpoint)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", "addr", ln.Addr().String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve after shutdown: %w", err)
	}
	return nil
}

func normalizeConfig(cfg Config) (Config, error) {
	cfg.HTTPBind = strings.TrimSpace(cfg.HTTPBind)
	if cfg.HTTPBind == "" {
		cfg.HTTPBind = defaultBindAddress
	}
	cfg.APIEndpoint = normalizeEndpoint(cfg.APIEndpoint, defaultAPIEndpoint)
	cfg.MCPEndpoint = normalizeEndpoint(cfg.MCPEndpoint, defaultMCPEndpoint)
	if cfg.APIEndpoint == cfg.MCPEndpoint {
		return Config{}, fmt.Errorf("api and mcp endpoints must differ: %q", cfg.APIEndpoint)
	}
	cfg.ServerName = cmp.Or(strings.TrimSpace(cfg.ServerName), "stack")
	cfg.ServerVersion = cmp.Or(strings.TrimSpace(cfg.ServerVersion), "dev")
	return cfg, nil
}

// normalizeEndpoint returns path as "/a/b" with no trailing slash, or fallback for blank and "/".
func normalizeEndpoint(path, fallback string) string {
	path = strings.Trim(strings.TrimSpace(path), "/")
	if path == "" {
		return fallback
	}
	return "/" + path
}

func writeHealthStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}` + "\n"))
}

// statusRecorder remembers the status code a handler wrote.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps streamed MCP responses working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// logRequests writes one debug line per request.
func logRequests(next http.Handler, logger Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

type nopLogger struct{}

func (nopLogger) Debug(any, ...any) {}
func (nopLogger) Info(any, ...any)  {}
func (nopLogger) Error(any, ...any) {}
