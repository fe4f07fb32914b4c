package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/louisbranch/db-timetables-mcp/internal/platform/branding"
	"github.com/louisbranch/db-timetables-mcp/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// serverName identifies this MCP server to clients.
var serverName = branding.AppName + " MCP"

// TransportKind identifies the MCP transport implementation.
type TransportKind string

const (
	// TransportStdio uses standard input/output for MCP.
	TransportStdio TransportKind = "stdio"
	// TransportSSE serves MCP over server-sent events.
	TransportSSE TransportKind = "sse"
	// TransportHTTP serves MCP over the streamable HTTP transport.
	TransportHTTP TransportKind = "http"
)

// ParseTransportKind normalizes a configured transport name.
func ParseTransportKind(value string) (TransportKind, error) {
	switch kind := TransportKind(strings.ToLower(strings.TrimSpace(value))); kind {
	case "":
		return TransportStdio, nil
	case TransportStdio, TransportSSE, TransportHTTP:
		return kind, nil
	default:
		return "", fmt.Errorf("transport %q is not supported", value)
	}
}

// Config configures the MCP server.
type Config struct {
	Transport TransportKind
	// HTTPAddr is the listener address for network transports. Defaults to
	// localhost:8080.
	HTTPAddr string
	// Endpoint is the listener path for network transports. Defaults to /sse.
	Endpoint string
	// AllowedHosts extends the loopback hosts accepted in Host/Origin headers.
	AllowedHosts []string
	// AuthToken, when set, is required as a bearer token on the listener.
	AuthToken string
	// Locale selects the language of client-facing error messages.
	Locale string
}

// Server hosts the MCP server.
type Server struct {
	cfg       Config
	mcpServer *mcp.Server
	logger    *slog.Logger
}

// New creates an MCP server whose tools and resources are backed by client.
func New(cfg Config, client domain.TimetableClient, logger *slog.Logger) (*Server, error) {
	if client == nil {
		return nil, fmt.Errorf("timetable client is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	mcpServer, err := newMCPServer(domain.NewOperations(client), logger, cfg.Locale)
	if err != nil {
		return nil, err
	}
	return &Server{cfg: cfg, mcpServer: mcpServer, logger: logger}, nil
}

// newMCPServer binds every registration module to a fresh SDK server.
func newMCPServer(ops *domain.Operations, logger *slog.Logger, locale string) (*mcp.Server, error) {
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: branding.Version}, &mcp.ServerOptions{
		InitializedHandler: sessionInitializedHandler(logger),
	})

	for _, module := range newMCPRegistrationModules(ops, logger, locale) {
		if err := module.register(mcpServerRegistrationAdapter{server: mcpServer}); err != nil {
			return nil, fmt.Errorf("register MCP module %q: %w", module.name, err)
		}
	}
	return mcpServer, nil
}

// sessionInitializedHandler logs each client that completes the handshake.
func sessionInitializedHandler(logger *slog.Logger) func(context.Context, *mcp.InitializedRequest) {
	return func(ctx context.Context, req *mcp.InitializedRequest) {
		attrs := []any{}
		if req != nil && req.Session != nil {
			attrs = append(attrs, "session_id", req.Session.ID())
			if params := req.Session.InitializeParams(); params != nil && params.ClientInfo != nil {
				attrs = append(attrs, "client", params.ClientInfo.Name, "client_version", params.ClientInfo.Version)
			}
		}
		logger.InfoContext(ctx, "mcp client connected", attrs...)
	}
}

// Run serves MCP over the configured transport and blocks until ctx ends.
func (s *Server) Run(ctx context.Context) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	transport := s.cfg.Transport
	if transport == "" {
		transport = TransportStdio
	}

	switch transport {
	case TransportStdio:
		s.logger.Info("serving MCP over stdio")
		return s.serveWithTransport(ctx, &mcp.StdioTransport{})
	case TransportSSE, TransportHTTP:
		return NewHTTPTransport(s.cfg, s.mcpServer, s.logger).Start(ctx)
	default:
		return fmt.Errorf("transport %q is not supported", transport)
	}
}

// serveWithTransport runs the MCP server on transport until the session or
// ctx ends. Cancellation is a normal stop.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

// Run builds a server for cfg and serves it until ctx ends.
func Run(ctx context.Context, cfg Config, client domain.TimetableClient, logger *slog.Logger) error {
	server, err := New(cfg, client, logger)
	if err != nil {
		return err
	}
	return server.Run(ctx)
}
