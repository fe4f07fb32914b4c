package domain

import (
	"context"
	stderrors "errors"
	"log/slog"
	"reflect"
	"testing"

	apperrors "github.com/louisbranch/db-timetables-mcp/internal/platform/errors"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func resourceByTemplate(t *testing.T, resources []Resource, uriTemplate string) Resource {
	t.Helper()
	for _, resource := range resources {
		if resource.Template.URITemplate == uriTemplate {
			return resource
		}
	}
	t.Fatalf("no resource for %s", uriTemplate)
	return Resource{}
}

func TestResourcesLoad(t *testing.T) {
	tests := []struct {
		name     string
		template string
		uri      string
		call     string
		args     []string
	}{
		{name: "current", template: CurrentTimetableURITemplate, uri: "db-api:timetable/current/8000105", call: "CurrentTimetable", args: []string{"8000105"}},
		{name: "changes", template: RecentChangesURITemplate, uri: "db-api:timetable/changes/8000105", call: "RecentChanges", args: []string{"8000105"}},
		{name: "planned", template: PlannedTimetableURITemplate, uri: "db-api:timetable/planned/8000105/230401/14", call: "PlannedTimetable", args: []string{"8000105", "230401", "14"}},
		{name: "station", template: StationURITemplate, uri: "db-api:station/Frankfurt", call: "FindStations", args: []string{"Frankfurt"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeTimetableClient{body: "<stations>Station Data</stations>"}
			resource := resourceByTemplate(t, Resources(NewOperations(client), slog.New(newRecordingHandler())), tt.template)
			text, err := resource.Load(context.Background(), tt.uri)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if text != (ResourceText{Text: "<stations>Station Data</stations>"}) {
				t.Fatalf("text = %#v", text)
			}
			if len(client.calls) != 1 || client.calls[0] != tt.call {
				t.Fatalf("calls = %v", client.calls)
			}
			if !reflect.DeepEqual(client.args[0], tt.args) {
				t.Fatalf("args = %v, want %v", client.args[0], tt.args)
			}
		})
	}
}

func TestResourcesShareValidation(t *testing.T) {
	client := &fakeTimetableClient{}
	logs := newRecordingHandler()
	resource := resourceByTemplate(t, Resources(NewOperations(client), slog.New(logs)), PlannedTimetableURITemplate)

	_, err := resource.Load(context.Background(), "db-api:timetable/planned/8000105/2304/24")
	var appErr *apperrors.Error
	if !stderrors.As(err, &appErr) || appErr.Kind != apperrors.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if appErr.Message != "invalid parameters for getPlannedTimetable" {
		t.Fatalf("message = %q", appErr.Message)
	}
	if client.callCount() != 0 {
		t.Fatal("client should not be called")
	}
	errorsLogged := logs.at(slog.LevelError)
	if len(errorsLogged) != 1 {
		t.Fatalf("expected one error record, got %d", len(errorsLogged))
	}
	if v, _ := attrValue(errorsLogged[0], "surface"); v.String() != SurfaceResource {
		t.Fatalf("surface = %q", v.String())
	}
}

func TestResourceUnknownURI(t *testing.T) {
	client := &fakeTimetableClient{}
	resource := resourceByTemplate(t, Resources(NewOperations(client), slog.New(newRecordingHandler())), StationURITemplate)

	_, err := resource.Load(context.Background(), "db-api:timetable/current/8000105")
	var appErr *apperrors.Error
	if !stderrors.As(err, &appErr) || appErr.Kind != apperrors.KindResourceNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
	if appErr.StatusCode() != 404 {
		t.Fatalf("status = %d", appErr.StatusCode())
	}
	if appErr.Details["uri"] != "db-api:timetable/current/8000105" || appErr.Details["template"] != StationURITemplate {
		t.Fatalf("details = %v", appErr.Details)
	}
	if client.callCount() != 0 {
		t.Fatal("client should not be called")
	}
}

func TestResourceHandler(t *testing.T) {
	client := &fakeTimetableClient{body: "<timetable>Test XML</timetable>"}
	resource := resourceByTemplate(t, Resources(NewOperations(client), slog.New(newRecordingHandler())), CurrentTimetableURITemplate)

	result, err := resource.Handler()(context.Background(), &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: "db-api:timetable/current/8000105"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Contents) != 1 {
		t.Fatalf("contents = %d", len(result.Contents))
	}
	content := result.Contents[0]
	if content.URI != "db-api:timetable/current/8000105" || content.MIMEType != XMLMIMEType || content.Text != client.body {
		t.Fatalf("unexpected content: %#v", content)
	}
}

func TestResourceTemplatesUseXML(t *testing.T) {
	resources := Resources(NewOperations(&fakeTimetableClient{}), nil)
	if len(resources) != 4 {
		t.Fatalf("resources = %d, want 4", len(resources))
	}
	for _, resource := range resources {
		if resource.Template.MIMEType != XMLMIMEType {
			t.Errorf("%s: mime = %q", resource.Template.Name, resource.Template.MIMEType)
		}
	}
}
