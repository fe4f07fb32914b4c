package domain

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"testing"

	apperrors "github.com/louisbranch/db-timetables-mcp/internal/platform/errors"
)

func TestDispatch(t *testing.T) {
	t.Run("success logs entry only", func(t *testing.T) {
		handler := newRecordingHandler()
		op := Dispatch(slog.New(handler), SurfaceTool, "op", func(context.Context, string) (string, error) {
			return "<ok/>", nil
		})
		body, err := op(context.Background(), "x")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if body != "<ok/>" {
			t.Fatalf("body = %q", body)
		}
		infos := handler.at(slog.LevelInfo)
		if len(infos) != 1 {
			t.Fatalf("expected one info record, got %d", len(infos))
		}
		if v, ok := attrValue(infos[0], "invocation_id"); !ok || v.String() == "" {
			t.Fatal("expected invocation id on entry log")
		}
		if len(handler.at(slog.LevelError)) != 0 {
			t.Fatal("expected no error records")
		}
	})

	t.Run("known error passes through", func(t *testing.T) {
		handler := newRecordingHandler()
		want := apperrors.APIError("API error: 503 Service Unavailable", map[string]any{"status": 503}, nil)
		op := Dispatch(slog.New(handler), SurfaceTool, "op", func(context.Context, string) (string, error) {
			return "partial", want
		})
		body, err := op(context.Background(), "x")
		if body != "" {
			t.Fatalf("expected empty body on failure, got %q", body)
		}
		var appErr *apperrors.Error
		if !stderrors.As(err, &appErr) || appErr != want {
			t.Fatalf("expected the same *errors.Error, got %v", err)
		}
		records := handler.at(slog.LevelError)
		if len(records) != 1 {
			t.Fatalf("expected exactly one error record, got %d", len(records))
		}
		if v, _ := attrValue(records[0], "code"); v.String() != string(apperrors.CodeAPI) {
			t.Fatalf("code attr = %q", v.String())
		}
		if v, _ := attrValue(records[0], "status"); v.Int64() != 500 {
			t.Fatalf("status attr = %v", v)
		}
		if v, _ := attrValue(records[0], "kind"); v.String() != "ApiError" {
			t.Fatalf("kind attr = %q", v.String())
		}
	})

	t.Run("unknown error becomes internal", func(t *testing.T) {
		handler := newRecordingHandler()
		op := Dispatch(slog.New(handler), SurfaceResource, "op", func(context.Context, string) (string, error) {
			return "", fmt.Errorf("boom")
		})
		_, err := op(context.Background(), "x")
		var appErr *apperrors.Error
		if !stderrors.As(err, &appErr) {
			t.Fatalf("expected *errors.Error, got %T", err)
		}
		if appErr.Kind != apperrors.KindInternal || appErr.Code != apperrors.CodeInternal {
			t.Fatalf("unexpected error: %#v", appErr)
		}
		if appErr.Details["originalError"] != "boom" {
			t.Fatalf("originalError = %v", appErr.Details["originalError"])
		}
		if len(handler.at(slog.LevelError)) != 1 {
			t.Fatal("expected exactly one error record")
		}
	})

	t.Run("panic is recovered", func(t *testing.T) {
		handler := newRecordingHandler()
		op := Dispatch(slog.New(handler), SurfaceTool, "op", func(context.Context, string) (string, error) {
			panic("bad state")
		})
		_, err := op(context.Background(), "x")
		var appErr *apperrors.Error
		if !stderrors.As(err, &appErr) || appErr.Kind != apperrors.KindInternal {
			t.Fatalf("expected internal error, got %v", err)
		}
		if len(handler.at(slog.LevelError)) != 1 {
			t.Fatal("expected exactly one error record")
		}
	})

	t.Run("nil logger falls back to default", func(t *testing.T) {
		op := Dispatch(nil, SurfaceTool, "op", func(context.Context, int) (string, error) {
			return "ok", nil
		})
		if body, err := op(context.Background(), 1); err != nil || body != "ok" {
			t.Fatalf("got %q, %v", body, err)
		}
	})
}
