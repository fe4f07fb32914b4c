package domain

import (
	"context"

	apperrors "github.com/louisbranch/db-timetables-mcp/internal/platform/errors"
)

// TimetableClient is the upstream API used by the operations.
type TimetableClient interface {
	CurrentTimetable(ctx context.Context, evaNo string) (string, error)
	RecentChanges(ctx context.Context, evaNo string) (string, error)
	PlannedTimetable(ctx context.Context, evaNo, date, hour string) (string, error)
	FindStations(ctx context.Context, pattern string) (string, error)
}

// Operations validates parameters and forwards them to the client. Invalid
// parameters never reach the client.
type Operations struct {
	client TimetableClient
}

// NewOperations returns the lookups backed by client.
func NewOperations(client TimetableClient) *Operations {
	return &Operations{client: client}
}

// CurrentTimetable returns the current timetable of a station.
func (o *Operations) CurrentTimetable(ctx context.Context, params TimetableParams) (string, error) {
	if err := ValidateTimetable(OpCurrentTimetable, params); err != nil {
		return "", err
	}
	if err := o.ready(); err != nil {
		return "", err
	}
	return o.client.CurrentTimetable(ctx, params.EvaNo)
}

// RecentChanges returns the recent changes of a station.
func (o *Operations) RecentChanges(ctx context.Context, params TimetableParams) (string, error) {
	if err := ValidateTimetable(OpRecentChanges, params); err != nil {
		return "", err
	}
	if err := o.ready(); err != nil {
		return "", err
	}
	return o.client.RecentChanges(ctx, params.EvaNo)
}

// PlannedTimetable returns one hour of a station's planned timetable.
func (o *Operations) PlannedTimetable(ctx context.Context, params PlanParams) (string, error) {
	if err := ValidatePlan(params); err != nil {
		return "", err
	}
	if err := o.ready(); err != nil {
		return "", err
	}
	return o.client.PlannedTimetable(ctx, params.EvaNo, params.Date, params.Hour)
}

// FindStations searches stations by name or EVA number.
func (o *Operations) FindStations(ctx context.Context, params StationParams) (string, error) {
	if err := ValidateStation(params); err != nil {
		return "", err
	}
	if err := o.ready(); err != nil {
		return "", err
	}
	return o.client.FindStations(ctx, params.Pattern)
}

func (o *Operations) ready() error {
	if o == nil || o.client == nil {
		return apperrors.New(apperrors.KindInternal, "timetable client is not configured")
	}
	return nil
}
