// Package service wires MCP transports to the timetable domain handlers.
//
// It is the transport adapter layer: it knows how to run MCP over stdio, SSE or
// streamable HTTP and how failures are presented to clients. Lookup meaning
// lives in the domain package.
package service
