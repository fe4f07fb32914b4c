package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	timetablescmd "github.com/louisbranch/db-timetables-mcp/internal/cmd/timetables"
	"github.com/louisbranch/db-timetables-mcp/internal/platform/config"
	"github.com/louisbranch/db-timetables-mcp/internal/platform/logging"
)

// main starts the timetables MCP server on stdio, SSE or streamable HTTP.
func main() {
	cfg, parseErr := timetablescmd.ParseConfig(flag.CommandLine, os.Args[1:])

	logger, err := cfg.NewLogger()
	if err != nil {
		fallback, _ := logging.New(logging.Config{})
		config.Exitf(fallback, "configure logging: %v", err)
	}
	if parseErr != nil {
		config.Exitf(logger, "parse config: %v", parseErr)
	}
	if err := cfg.Validate(); err != nil {
		config.Exitf(logger, "invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := timetablescmd.Run(ctx, cfg, logger); err != nil {
		config.Exitf(logger, "failed to serve MCP: %v", err)
	}
	logger.Info("server stopped")
}
