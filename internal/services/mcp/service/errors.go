package service

import (
	"context"
	"sort"
	"strings"

	apperrors "github.com/louisbranch/db-timetables-mcp/internal/platform/errors"
	"github.com/louisbranch/db-timetables-mcp/internal/platform/errors/i18n"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// localizedError carries the client-facing text of an *errors.Error while
// keeping the original in the chain.
type localizedError struct {
	text string
	err  *apperrors.Error
}

func (e *localizedError) Error() string { return e.text }

func (e *localizedError) Unwrap() error { return e.err }

func localize(locale string, err error) *localizedError {
	appErr := apperrors.From(err)
	message := i18n.GetCatalog(locale).Format(string(appErr.Code), messageMetadata(appErr))
	return &localizedError{
		text: string(appErr.Code) + ": " + message,
		err:  appErr,
	}
}

// messageMetadata exposes the details the message templates reference.
func messageMetadata(err *apperrors.Error) map[string]string {
	metadata := map[string]string{"message": err.Message}
	if operation, ok := err.Details["operation"].(string); ok {
		metadata["operation"] = operation
	}
	if uri, ok := err.Details["uri"].(string); ok {
		metadata["uri"] = uri
	}
	if fields, ok := err.Details["fields"].(map[string][]string); ok {
		metadata["fields"] = formatFields(fields)
	}
	return metadata
}

func formatFields(fields map[string][]string) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+" "+strings.Join(fields[name], ", "))
	}
	return strings.Join(parts, "; ")
}

// localizedTool reports handler failures as tool results with IsError set so
// the model sees the message instead of a protocol error.
func localizedTool[P any](locale string, handler mcp.ToolHandlerFor[P, any]) mcp.ToolHandlerFor[P, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input P) (*mcp.CallToolResult, any, error) {
		result, out, err := handler(ctx, req, input)
		if err == nil {
			return result, out, nil
		}
		localized := localize(locale, err)
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: localized.text}},
			StructuredContent: map[string]any{
				"code":      string(localized.err.Code),
				"status":    localized.err.StatusCode(),
				"retryable": localized.err.Retryable(),
				"details":   localized.err.Details,
			},
		}, nil, nil
	}
}

// localizedResource maps not-found failures to the protocol's resource error
// and localizes everything else.
func localizedResource(locale string, handler mcp.ResourceHandler) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		result, err := handler(ctx, req)
		if err == nil {
			return result, nil
		}
		localized := localize(locale, err)
		if localized.err.Kind == apperrors.KindResourceNotFound {
			uri := ""
			if req != nil && req.Params != nil {
				uri = req.Params.URI
			}
			return nil, mcp.ResourceNotFoundError(uri)
		}
		return nil, localized
	}
}

// authenticationBody is the JSON body of a rejected listener request.
type authenticationBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func newAuthenticationBody(locale, reason string) authenticationBody {
	localized := localize(locale, apperrors.Authentication(reason))
	return authenticationBody{
		Code:    string(localized.err.Code),
		Message: strings.TrimPrefix(localized.text, string(localized.err.Code)+": "),
		Status:  localized.err.StatusCode(),
	}
}
