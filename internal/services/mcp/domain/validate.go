package domain

import (
	"regexp"

	apperrors "github.com/louisbranch/db-timetables-mcp/internal/platform/errors"
)

// Operation names, shared by tools, resources and log lines.
const (
	OpCurrentTimetable = "getCurrentTimetable"
	OpRecentChanges    = "getRecentChanges"
	OpPlannedTimetable = "getPlannedTimetable"
	OpFindStations     = "findStations"
)

const (
	reasonRequired = "is required"
	reasonDate     = "must be six digits in YYMMDD format"
	reasonHour     = "must be a two digit hour from 00 to 23"
)

var (
	datePattern = regexp.MustCompile(`^\d{6}$`)
	hourPattern = regexp.MustCompile(`^([0-1][0-9]|2[0-3])$`)
)

// TimetableParams selects a station by EVA number.
type TimetableParams struct {
	EvaNo string `json:"evaNo"`
}

// PlanParams selects one hour of a station's planned timetable.
type PlanParams struct {
	EvaNo string `json:"evaNo"`
	Date  string `json:"date"`
	Hour  string `json:"hour"`
}

// StationParams is a station search pattern (name or EVA number).
type StationParams struct {
	Pattern string `json:"pattern"`
}

// fieldErrors collects every failing field before building the error.
type fieldErrors map[string][]string

func (f fieldErrors) add(field, reason string) {
	f[field] = append(f[field], reason)
}

func (f fieldErrors) required(field, value string) bool {
	if value == "" {
		f.add(field, reasonRequired)
		return false
	}
	return true
}

func (f fieldErrors) err(operation string) error {
	if len(f) == 0 {
		return nil
	}
	return apperrors.Validation("invalid parameters for "+operation, map[string]any{
		"operation": operation,
		"fields":    map[string][]string(f),
	})
}

// ValidateTimetable checks params for the current timetable and recent
// changes lookups.
func ValidateTimetable(operation string, params TimetableParams) error {
	fields := fieldErrors{}
	fields.required("evaNo", params.EvaNo)
	return fields.err(operation)
}

// ValidatePlan checks params for the planned timetable lookup.
func ValidatePlan(params PlanParams) error {
	fields := fieldErrors{}
	fields.required("evaNo", params.EvaNo)
	if fields.required("date", params.Date) && !datePattern.MatchString(params.Date) {
		fields.add("date", reasonDate)
	}
	if fields.required("hour", params.Hour) && !hourPattern.MatchString(params.Hour) {
		fields.add("hour", reasonHour)
	}
	return fields.err(OpPlannedTimetable)
}

// ValidateStation checks params for the station search.
func ValidateStation(params StationParams) error {
	fields := fieldErrors{}
	fields.required("pattern", params.Pattern)
	return fields.err(OpFindStations)
}
