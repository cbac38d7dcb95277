package testutil

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// LogRecord is one captured log call with its attributes flattened.
type LogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// TestLogger records what pipelines and reports log.
type TestLogger struct {
	Logger *slog.Logger

	mu      sync.Mutex
	records []LogRecord
}

// NewTestLogger returns a logger that keeps every record at debug and above.
func NewTestLogger(t *testing.T) *TestLogger {
	t.Helper()
	tl := &TestLogger{}
	tl.Logger = slog.New(&recorder{tl: tl})
	return tl
}

// Records returns a copy of everything logged so far.
func (l *TestLogger) Records() []LogRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]LogRecord(nil), l.records...)
}

// Matching returns the records whose attribute key equals value.
func (l *TestLogger) Matching(key string, value any) []LogRecord {
	var out []LogRecord
	for _, r := range l.Records() {
		if v, ok := r.Attrs[key]; ok && cmp.Equal(v, value) {
			out = append(out, r)
		}
	}
	return out
}

// Count returns the number of records at level.
func (l *TestLogger) Count(level slog.Level) int {
	n := 0
	for _, r := range l.Records() {
		if r.Level == level {
			n++
		}
	}
	return n
}

// Codes returns the error codes attached to warn and error records, in order.
func (l *TestLogger) Codes() []string {
	var codes []string
	for _, r := range l.Records() {
		if code, ok := r.Attrs["code"].(string); ok && r.Level >= slog.LevelWarn && code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

// AssertAttr fails t unless some record has key=value.
func (l *TestLogger) AssertAttr(t *testing.T, key string, value any) {
	t.Helper()
	if len(l.Matching(key, value)) == 0 {
		t.Errorf("no log record with %s=%v", key, value)
	}
}

// recorder is a slog.Handler appending to a TestLogger. Attributes added
// through With are carried on the handler; groups prefix keys with "group.".
type recorder struct {
	tl     *TestLogger
	attrs  []slog.Attr
	prefix string
}

func (h *recorder) Enabled(context.Context, slog.Level) bool { return true }

func (h *recorder) Handle(_ context.Context, r slog.Record) error {
	rec := LogRecord{Level: r.Level, Message: r.Message, Attrs: make(map[string]any)}
	for _, a := range h.attrs {
		rec.Attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		rec.Attrs[h.prefix+a.Key] = a.Value.Any()
		return true
	})

	h.tl.mu.Lock()
	h.tl.records = append(h.tl.records, rec)
	h.tl.mu.Unlock()
	return nil
}

func (h *recorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &recorder{tl: h.tl, prefix: h.prefix}
	next.attrs = append(next.attrs, h.attrs...)
	for _, a := range attrs {
		next.attrs = append(next.attrs, slog.Attr{Key: h.prefix + a.Key, Value: a.Value})
	}
	return next
}

func (h *recorder) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &recorder{tl: h.tl, attrs: h.attrs, prefix: h.prefix + name + "."}
}
