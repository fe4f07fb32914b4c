package domain

import (
	"context"
	"log/slog"

	apperrors "github.com/louisbranch/db-timetables-mcp/internal/platform/errors"
	"github.com/louisbranch/db-timetables-mcp/internal/platform/id"
)

// Surfaces a call can arrive through.
const (
	SurfaceTool     = "tool"
	SurfaceResource = "resource"
)

// Operation runs one lookup and returns the upstream body.
type Operation[P any] func(ctx context.Context, params P) (string, error)

// Dispatch wraps fn so every call is logged on entry with an invocation id and
// every failure leaves as an *errors.Error logged exactly once at error level.
// Panics inside fn are recovered and reported as internal errors.
func Dispatch[P any](logger *slog.Logger, surface, operation string, fn Operation[P]) Operation[P] {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, params P) (body string, err error) {
		invocationID, idErr := id.NewID()
		if idErr != nil {
			// Correlation is best effort; the call itself still runs.
			logger.WarnContext(ctx, "generate invocation id", "error", idErr)
		}
		callLogger := logger.With(
			"surface", surface,
			"operation", operation,
			"invocation_id", invocationID,
		)
		callLogger.InfoContext(ctx, "handling call", "params", params)

		defer func() {
			if recovered := recover(); recovered != nil {
				err = apperrors.FromPanic(recovered)
			}
			if err == nil {
				return
			}
			appErr := apperrors.From(err)
			callLogger.ErrorContext(ctx, appErr.Kind.String()+": "+appErr.Message,
				"kind", appErr.Kind.String(),
				"code", string(appErr.Code),
				"status", appErr.StatusCode(),
				"details", appErr.Details,
			)
			body, err = "", appErr
		}()

		return fn(ctx, params)
	}
}
