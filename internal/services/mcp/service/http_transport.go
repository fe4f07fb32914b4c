package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/louisbranch/db-timetables-mcp/internal/platform/timeouts"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var listenTCP = net.Listen

const (
	defaultHTTPAddr = "localhost:8080"
	defaultEndpoint = "/sse"
	healthPath      = "/health"
)

// HTTPTransport serves one MCP server over SSE or streamable HTTP. Every
// request passes the Host/Origin guard and, when configured, the bearer token
// check before it reaches the SDK handler.
type HTTPTransport struct {
	addr       string
	endpoint   string
	kind       TransportKind
	hosts      hostPolicy
	authToken  string
	locale     string
	server     *mcp.Server
	logger     *slog.Logger
	httpServer *http.Server
}

// NewHTTPTransport creates a transport for server. It defaults to
// localhost-only binding.
func NewHTTPTransport(cfg Config, server *mcp.Server, logger *slog.Logger) *HTTPTransport {
	addr := strings.TrimSpace(cfg.HTTPAddr)
	if addr == "" {
		addr = defaultHTTPAddr
	}
	kind := cfg.Transport
	if kind != TransportHTTP {
		kind = TransportSSE
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPTransport{
		addr:      addr,
		endpoint:  normalizeEndpoint(cfg.Endpoint),
		kind:      kind,
		hosts:     newHostPolicy(cfg.AllowedHosts),
		authToken: strings.TrimSpace(cfg.AuthToken),
		locale:    cfg.Locale,
		server:    server,
		logger:    logger,
	}
}

// normalizeEndpoint adds the leading slash and falls back to /sse.
func normalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return defaultEndpoint
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return endpoint
}

// Handler returns the routed handler: the MCP endpoint and the health check.
func (t *HTTPTransport) Handler() http.Handler {
	getServer := func(*http.Request) *mcp.Server { return t.server }

	var mcpHandler http.Handler
	switch t.kind {
	case TransportHTTP:
		mcpHandler = mcp.NewStreamableHTTPHandler(getServer, nil)
	default:
		mcpHandler = mcp.NewSSEHandler(getServer, nil)
	}

	mux := http.NewServeMux()
	mux.HandleFunc(healthPath, t.handleHealth)
	mux.Handle(t.endpoint, t.guard(mcpHandler))
	return mux
}

// guard applies the host and token checks in front of next.
func (t *HTTPTransport) guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := t.hosts.check(r); err != nil {
			t.logger.Warn("rejected MCP request", "reason", err.Error(), "host", r.Host, "origin", r.Header.Get("Origin"))
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		if !t.authorizeRequest(w, r) {
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Start serves HTTP until ctx ends, then shuts down within the shutdown
// timeout.
func (t *HTTPTransport) Start(ctx context.Context) error {
	listener, err := listenTCP("tcp", t.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", t.addr, err)
	}
	return t.Serve(ctx, listener)
}

// Serve serves HTTP on listener until ctx ends. Request contexts derive from
// ctx so long-lived SSE streams end with it.
func (t *HTTPTransport) Serve(ctx context.Context, listener net.Listener) error {
	t.httpServer = &http.Server{
		Handler:           t.Handler(),
		ReadHeaderTimeout: timeouts.ReadHeader,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	t.logger.Info("serving MCP over HTTP",
		"transport", string(t.kind),
		"addr", listener.Addr().String(),
		"endpoint", t.endpoint,
	)

	errChan := make(chan error, 1)
	go func() {
		if err := t.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		t.logger.Info("shutting down MCP HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := t.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown HTTP server: %w", err)
		}
		return nil
	case err, ok := <-errChan:
		if !ok {
			return nil
		}
		return fmt.Errorf("HTTP server error: %w", err)
	}
}
