package domain

import (
	"context"
	"log/slog"
	"sync"
)

type fakeTimetableClient struct {
	mu    sync.Mutex
	calls []string
	args  [][]string
	body  string
	err   error
	panic any
}

func (f *fakeTimetableClient) record(name string, args ...string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.args = append(f.args, args)
	f.mu.Unlock()
	if f.panic != nil {
		panic(f.panic)
	}
	if f.err != nil {
		return "", f.err
	}
	return f.body, nil
}

func (f *fakeTimetableClient) CurrentTimetable(_ context.Context, evaNo string) (string, error) {
	return f.record("CurrentTimetable", evaNo)
}

func (f *fakeTimetableClient) RecentChanges(_ context.Context, evaNo string) (string, error) {
	return f.record("RecentChanges", evaNo)
}

func (f *fakeTimetableClient) PlannedTimetable(_ context.Context, evaNo, date, hour string) (string, error) {
	return f.record("PlannedTimetable", evaNo, date, hour)
}

func (f *fakeTimetableClient) FindStations(_ context.Context, pattern string) (string, error) {
	return f.record("FindStations", pattern)
}

func (f *fakeTimetableClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// recordingHandler keeps every record, including those from derived loggers.
type recordingHandler struct {
	mu      *sync.Mutex
	records *[]slog.Record
	attrs   []slog.Attr
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{mu: &sync.Mutex{}, records: &[]slog.Record{}}
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, record slog.Record) error {
	record = record.Clone()
	record.AddAttrs(h.attrs...)
	h.mu.Lock()
	defer h.mu.Unlock()
	*h.records = append(*h.records, record)
	return nil
}

func (h *recordingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &next
}

func (h *recordingHandler) WithGroup(string) slog.Handler { return h }

func (h *recordingHandler) at(level slog.Level) []slog.Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []slog.Record
	for _, record := range *h.records {
		if record.Level == level {
			out = append(out, record)
		}
	}
	return out
}

func attrValue(record slog.Record, key string) (slog.Value, bool) {
	var (
		value slog.Value
		found bool
	)
	record.Attrs(func(attr slog.Attr) bool {
		if attr.Key == key {
			value, found = attr.Value, true
			return false
		}
		return true
	})
	return value, found
}
