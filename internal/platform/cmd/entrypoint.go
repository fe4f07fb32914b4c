// Package cmd holds the entry-point plumbing shared by binaries.
package cmd

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"strings"
	"time"

	"github.com/louisbranch/db-timetables-mcp/internal/platform/config"
	"github.com/louisbranch/db-timetables-mcp/internal/platform/otel"
	"github.com/louisbranch/db-timetables-mcp/internal/platform/timeouts"
)

// ServiceMCP names the MCP server in telemetry resources.
const ServiceMCP = "db-timetables-mcp"

// RunOptions tunes Run.
type RunOptions struct {
	// ShutdownTimeout bounds the telemetry flush; zero uses timeouts.TelemetryShutdown.
	ShutdownTimeout time.Duration
	Logger          *slog.Logger
}

// ParseConfig fills cfg from environ, or from the process environment when
// environ is nil. Flags bound afterwards see these values as their defaults.
func ParseConfig[T any](cfg *T, environ map[string]string) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	if environ == nil {
		return config.ParseEnv(cfg)
	}
	return config.ParseEnvFrom(cfg, environ)
}

// ParseArgs parses args into fs. A nil args slice parses nothing.
func ParseArgs(fs *flag.FlagSet, args []string) error {
	if fs == nil {
		return errors.New("flag set is required")
	}
	if args == nil {
		args = []string{}
	}
	return fs.Parse(args)
}

// Run installs telemetry for service, calls run, and flushes telemetry once
// run returns.
func Run(ctx context.Context, service string, options RunOptions, run func(context.Context) error) error {
	service = strings.TrimSpace(service)
	switch {
	case service == "":
		return errors.New("service name is required")
	case run == nil:
		return errors.New("run function is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	shutdown, err := otel.Setup(ctx, service)
	if err != nil {
		return err
	}
	defer flush(shutdown, options.ShutdownTimeout, logger.With("service", service))

	return run(ctx)
}

func flush(shutdown func(context.Context) error, timeout time.Duration, logger *slog.Logger) {
	if timeout <= 0 {
		timeout = timeouts.TelemetryShutdown
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		logger.Warn("telemetry shutdown failed", "error", err)
	}
}
