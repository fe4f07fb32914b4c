// Package timeouts holds the shared listener and shutdown timeouts.
package timeouts

import "time"

// ReadHeader limits how long the MCP HTTP listener waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long the MCP HTTP listener waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// TelemetryShutdown caps the time spent flushing spans on exit.
const TelemetryShutdown = 5 * time.Second
