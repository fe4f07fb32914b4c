package domain

import (
	"context"
	"log/slog"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	evaNoDescription   = "EVA number of the station (e.g. 8000105 for Frankfurt Hbf)"
	dateDescription    = "date in YYMMDD format (e.g. 230401 for 1 April 2023)"
	hourDescription    = "hour in HH format (e.g. 14 for 2 pm)"
	patternDescription = "station search pattern (e.g. Frankfurt or 8000105)"
)

// Input schemas only describe the fields; rules live in the validators so
// every rejection is reported the same way.
func objectSchema(properties map[string]string) *jsonschema.Schema {
	props := make(map[string]*jsonschema.Schema, len(properties))
	for name, description := range properties {
		props[name] = &jsonschema.Schema{Type: "string", Description: description}
	}
	return &jsonschema.Schema{Type: "object", Properties: props}
}

// CurrentTimetableTool defines the MCP tool schema for the current timetable.
func CurrentTimetableTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        OpCurrentTimetable,
		Description: "Returns the current timetable of a station: arrivals, departures, platforms, delays and other real-time information for the current operating day, as XML.",
		InputSchema: objectSchema(map[string]string{"evaNo": evaNoDescription}),
	}
}

// RecentChangesTool defines the MCP tool schema for recent changes.
func RecentChangesTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        OpRecentChanges,
		Description: "Returns the latest timetable changes of a station: delays, platform changes, cancellations and other short-term adjustments, as XML.",
		InputSchema: objectSchema(map[string]string{"evaNo": evaNoDescription}),
	}
}

// PlannedTimetableTool defines the MCP tool schema for the planned timetable.
func PlannedTimetableTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        OpPlannedTimetable,
		Description: "Returns the planned timetable of a station for a given date and hour, as XML.",
		InputSchema: objectSchema(map[string]string{
			"evaNo": evaNoDescription,
			"date":  dateDescription,
			"hour":  hourDescription,
		}),
	}
}

// FindStationsTool defines the MCP tool schema for the station search.
func FindStationsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        OpFindStations,
		Description: "Searches stations by name or EVA number and returns the matching stations as XML.",
		InputSchema: objectSchema(map[string]string{"pattern": patternDescription}),
	}
}

// CurrentTimetableHandler executes a current timetable lookup.
func CurrentTimetableHandler(ops *Operations, logger *slog.Logger) mcp.ToolHandlerFor[TimetableParams, any] {
	return toolHandler(Dispatch(logger, SurfaceTool, OpCurrentTimetable, ops.CurrentTimetable))
}

// RecentChangesHandler executes a recent changes lookup.
func RecentChangesHandler(ops *Operations, logger *slog.Logger) mcp.ToolHandlerFor[TimetableParams, any] {
	return toolHandler(Dispatch(logger, SurfaceTool, OpRecentChanges, ops.RecentChanges))
}

// PlannedTimetableHandler executes a planned timetable lookup.
func PlannedTimetableHandler(ops *Operations, logger *slog.Logger) mcp.ToolHandlerFor[PlanParams, any] {
	return toolHandler(Dispatch(logger, SurfaceTool, OpPlannedTimetable, ops.PlannedTimetable))
}

// FindStationsHandler executes a station search.
func FindStationsHandler(ops *Operations, logger *slog.Logger) mcp.ToolHandlerFor[StationParams, any] {
	return toolHandler(Dispatch(logger, SurfaceTool, OpFindStations, ops.FindStations))
}

func toolHandler[P any](op Operation[P]) mcp.ToolHandlerFor[P, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input P) (*mcp.CallToolResult, any, error) {
		body, err := op(ctx, input)
		if err != nil {
			return nil, nil, err
		}
		return TextResult(body), nil, nil
	}
}

// TextResult wraps body as the single text content of a tool result.
func TextResult(body string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: body}},
	}
}
