// Package client issues authenticated GET requests against the DB Timetables
// API and returns the raw XML body unparsed.
package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/louisbranch/db-timetables-mcp/internal/platform/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultBaseURL is the DB API Marketplace endpoint of the timetables API.
const DefaultBaseURL = "https://apis.deutschebahn.com/db-api-marketplace/apis/timetables/v1"

const (
	headerClientID  = "DB-Client-Id"
	headerAPIKey    = "DB-Api-Key"
	headerAccept    = "Accept"
	acceptXML       = "application/xml"
	instrumentation = "github.com/louisbranch/db-timetables-mcp/internal/services/timetable/client"
)

// Config configures a Client.
type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	// Timeout bounds a whole request; zero leaves requests unbounded.
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client is safe for concurrent use; every call is an independent round trip.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	logger       *slog.Logger
	tracer       trace.Tracer
}

// New validates cfg and returns a Client.
func New(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must use http or https", baseURL)
	}
	if strings.TrimSpace(cfg.ClientID) == "" || strings.TrimSpace(cfg.ClientSecret) == "" {
		return nil, fmt.Errorf("client id and client secret are required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:      baseURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient:   httpClient,
		logger:       logger,
		tracer:       otel.Tracer(instrumentation),
	}, nil
}

// CurrentTimetable returns the full changes (fchg) document for a station.
func (c *Client) CurrentTimetable(ctx context.Context, evaNo string) (string, error) {
	return c.get(ctx, "current_timetable", "fchg", evaNo)
}

// RecentChanges returns the recent changes (rchg) document for a station.
func (c *Client) RecentChanges(ctx context.Context, evaNo string) (string, error) {
	return c.get(ctx, "recent_changes", "rchg", evaNo)
}

// PlannedTimetable returns the planned timetable slice for a station, date
// (YYMMDD) and hour (HH).
func (c *Client) PlannedTimetable(ctx context.Context, evaNo, date, hour string) (string, error) {
	return c.get(ctx, "planned_timetable", "plan", evaNo, date, hour)
}

// FindStations returns the stations matching pattern.
func (c *Client) FindStations(ctx context.Context, pattern string) (string, error) {
	return c.get(ctx, "find_stations", "station", pattern)
}

// get performs one GET against base + "/" + segments. Segments are
// path-escaped so a station pattern stays a single path element.
func (c *Client) get(ctx context.Context, operation string, segments ...string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	escaped := make([]string, len(segments))
	for i, segment := range segments {
		escaped[i] = url.PathEscape(segment)
	}
	path := "/" + strings.Join(escaped, "/")

	ctx, span := c.tracer.Start(ctx, "timetable."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("timetable.path", path)),
	)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return "", c.fail(ctx, span, apperrors.APIError("build request: "+err.Error(), map[string]any{"path": path}, err))
	}
	req.Header.Set(headerClientID, c.clientID)
	req.Header.Set(headerAPIKey, c.clientSecret)
	req.Header.Set(headerAccept, acceptXML)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", c.fail(ctx, span, apperrors.APIError("API request failed: "+err.Error(), map[string]any{"path": path}, err))
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusText := statusText(resp)
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", c.fail(ctx, span, apperrors.APIError(
			fmt.Sprintf("API error: %d %s", resp.StatusCode, statusText),
			map[string]any{"status": resp.StatusCode, "statusText": statusText, "path": path},
			nil,
		))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", c.fail(ctx, span, apperrors.APIError("read response body: "+err.Error(), map[string]any{"path": path}, err))
	}
	return string(body), nil
}

// fail records err on the span and logs it with the upstream details under
// the span's context. The error-level line for the failure is written by the
// dispatch boundary.
func (c *Client) fail(ctx context.Context, span trace.Span, err *apperrors.Error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Message)
	c.logger.WarnContext(ctx, "timetable api request failed", "error", err.Message, "details", err.Details)
	return err
}

// statusText extracts the reason phrase from resp.Status ("404 Not Found"),
// falling back to the canonical text for the code.
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
