package service

import (
	"fmt"
	"log/slog"

	"github.com/louisbranch/db-timetables-mcp/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type mcpRegistrationKind int

const (
	mcpRegistrationKindTools mcpRegistrationKind = iota
	mcpRegistrationKindResources
)

type mcpRegistrationModule struct {
	name     string
	kind     mcpRegistrationKind
	register func(mcpRegistrationTarget) error
}

const (
	mcpTimetableToolsModuleName     = "timetable-tools"
	mcpStationToolsModuleName       = "station-tools"
	mcpTimetableResourcesModuleName = "timetable-resources"
)

type mcpRegistrationTarget interface {
	AddTool(*mcp.Tool, any) error
	AddResourceTemplate(*mcp.ResourceTemplate, mcp.ResourceHandler)
}

type mcpServerRegistrationAdapter struct {
	server *mcp.Server
}

func (r mcpServerRegistrationAdapter) AddTool(tool *mcp.Tool, handler any) error {
	return addMCPTool(r.server, tool, handler)
}

func (r mcpServerRegistrationAdapter) AddResourceTemplate(resourceTemplate *mcp.ResourceTemplate, handler mcp.ResourceHandler) {
	r.server.AddResourceTemplate(resourceTemplate, handler)
}

type mcpToolRegistrar struct {
	matches func(any) bool
	add     func(*mcp.Server, *mcp.Tool, any)
}

func newMCPToolRegistrar[I any]() mcpToolRegistrar {
	return mcpToolRegistrar{
		matches: func(handler any) bool {
			_, ok := handler.(mcp.ToolHandlerFor[I, any])
			return ok
		},
		add: func(server *mcp.Server, tool *mcp.Tool, handler any) {
			mcp.AddTool(server, tool, handler.(mcp.ToolHandlerFor[I, any]))
		},
	}
}

var mcpToolRegistrars = []mcpToolRegistrar{
	newMCPToolRegistrar[domain.TimetableParams](),
	newMCPToolRegistrar[domain.PlanParams](),
	newMCPToolRegistrar[domain.StationParams](),
}

func addMCPTool(server *mcp.Server, tool *mcp.Tool, handler any) error {
	for _, registrar := range mcpToolRegistrars {
		if registrar.matches(handler) {
			registrar.add(server, tool, handler)
			return nil
		}
	}
	toolName := "<nil>"
	if tool != nil {
		toolName = tool.Name
	}
	return fmt.Errorf("mcp registration adapter does not support handler type %T for tool %q", handler, toolName)
}

func newMCPRegistrationModules(ops *domain.Operations, logger *slog.Logger, locale string) []mcpRegistrationModule {
	return []mcpRegistrationModule{
		{
			name: mcpTimetableToolsModuleName,
			kind: mcpRegistrationKindTools,
			register: func(registrar mcpRegistrationTarget) error {
				return registerTimetableTools(registrar, ops, logger, locale)
			},
		},
		{
			name: mcpStationToolsModuleName,
			kind: mcpRegistrationKindTools,
			register: func(registrar mcpRegistrationTarget) error {
				return registerTool(registrar, domain.FindStationsTool(), localizedTool(locale, domain.FindStationsHandler(ops, logger)))
			},
		},
		{
			name: mcpTimetableResourcesModuleName,
			kind: mcpRegistrationKindResources,
			register: func(registrar mcpRegistrationTarget) error {
				registerTimetableResources(registrar, domain.Resources(ops, logger), locale)
				return nil
			},
		},
	}
}

func registerTimetableTools(registrar mcpRegistrationTarget, ops *domain.Operations, logger *slog.Logger, locale string) error {
	if err := registerTool(registrar, domain.CurrentTimetableTool(), localizedTool(locale, domain.CurrentTimetableHandler(ops, logger))); err != nil {
		return err
	}
	if err := registerTool(registrar, domain.RecentChangesTool(), localizedTool(locale, domain.RecentChangesHandler(ops, logger))); err != nil {
		return err
	}
	return registerTool(registrar, domain.PlannedTimetableTool(), localizedTool(locale, domain.PlannedTimetableHandler(ops, logger)))
}

func registerTool(registrar mcpRegistrationTarget, tool *mcp.Tool, handler any) error {
	if tool == nil {
		return fmt.Errorf("tool is nil")
	}
	return registrar.AddTool(tool, handler)
}

// registerTimetableResources registers the readable timetable templates.
func registerTimetableResources(registrar mcpRegistrationTarget, resources []domain.Resource, locale string) {
	for _, resource := range resources {
		registrar.AddResourceTemplate(resource.Template, localizedResource(locale, resource.Handler()))
	}
}
