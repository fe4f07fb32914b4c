package domain

import (
	"context"
	"log/slog"

	apperrors "github.com/louisbranch/db-timetables-mcp/internal/platform/errors"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/yosida95/uritemplate/v3"
)

// XMLMIMEType is the content type of every resource.
const XMLMIMEType = "application/xml"

// Resource URI templates.
const (
	CurrentTimetableURITemplate = "db-api:timetable/current/{evaNo}"
	RecentChangesURITemplate    = "db-api:timetable/changes/{evaNo}"
	PlannedTimetableURITemplate = "db-api:timetable/planned/{evaNo}/{date}/{hour}"
	StationURITemplate          = "db-api:station/{pattern}"
)

// ResourceText is the loaded body of a resource.
type ResourceText struct {
	Text string
}

// Resource pairs a URI template with the operation that loads it.
type Resource struct {
	Template *mcp.ResourceTemplate
	load     Operation[string]
}

// Load resolves uri against the template and runs the lookup. A uri that does
// not match the template is a not-found error.
func (r Resource) Load(ctx context.Context, uri string) (ResourceText, error) {
	body, err := r.load(ctx, uri)
	if err != nil {
		return ResourceText{}, err
	}
	return ResourceText{Text: body}, nil
}

// Handler adapts the resource to the MCP runtime.
func (r Resource) Handler() mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		uri := ""
		if req != nil && req.Params != nil {
			uri = req.Params.URI
		}
		text, err := r.Load(ctx, uri)
		if err != nil {
			return nil, err
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      uri,
					MIMEType: XMLMIMEType,
					Text:     text.Text,
				},
			},
		}, nil
	}
}

// Resources returns the four timetable resources backed by ops.
func Resources(ops *Operations, logger *slog.Logger) []Resource {
	return []Resource{
		newResource(logger, OpCurrentTimetable, &mcp.ResourceTemplate{
			Name:        "current_timetable",
			Title:       "Current timetable",
			Description: "Current timetable of a station with arrivals, departures, platforms and delays, fetched live from the DB Timetables API as XML.",
			MIMEType:    XMLMIMEType,
			URITemplate: CurrentTimetableURITemplate,
		}, func(ctx context.Context, values uritemplate.Values) (string, error) {
			return ops.CurrentTimetable(ctx, TimetableParams{EvaNo: values.Get("evaNo").String()})
		}),
		newResource(logger, OpRecentChanges, &mcp.ResourceTemplate{
			Name:        "recent_changes",
			Title:       "Recent changes",
			Description: "Real-time timetable changes of a station: delays, platform changes and cancellations, as XML.",
			MIMEType:    XMLMIMEType,
			URITemplate: RecentChangesURITemplate,
		}, func(ctx context.Context, values uritemplate.Values) (string, error) {
			return ops.RecentChanges(ctx, TimetableParams{EvaNo: values.Get("evaNo").String()})
		}),
		newResource(logger, OpPlannedTimetable, &mcp.ResourceTemplate{
			Name:        "planned_timetable",
			Title:       "Planned timetable",
			Description: "Planned timetable of a station for a date (YYMMDD) and hour (HH), as XML.",
			MIMEType:    XMLMIMEType,
			URITemplate: PlannedTimetableURITemplate,
		}, func(ctx context.Context, values uritemplate.Values) (string, error) {
			return ops.PlannedTimetable(ctx, PlanParams{
				EvaNo: values.Get("evaNo").String(),
				Date:  values.Get("date").String(),
				Hour:  values.Get("hour").String(),
			})
		}),
		newResource(logger, OpFindStations, &mcp.ResourceTemplate{
			Name:        "station_search",
			Title:       "Station search",
			Description: "Stations matching a name or EVA number pattern, as XML.",
			MIMEType:    XMLMIMEType,
			URITemplate: StationURITemplate,
		}, func(ctx context.Context, values uritemplate.Values) (string, error) {
			return ops.FindStations(ctx, StationParams{Pattern: values.Get("pattern").String()})
		}),
	}
}

func newResource(logger *slog.Logger, operation string, template *mcp.ResourceTemplate, load func(context.Context, uritemplate.Values) (string, error)) Resource {
	tmpl := uritemplate.MustNew(template.URITemplate)
	return Resource{
		Template: template,
		load: Dispatch(logger, SurfaceResource, operation, func(ctx context.Context, uri string) (string, error) {
			values := tmpl.Match(uri)
			if values == nil {
				return "", apperrors.ResourceNotFound(uri, template.URITemplate)
			}
			return load(ctx, values)
		}),
	}
}
