package testfixtures

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/example/smart-office/internal/activity"
)

// SQLiteHarness provides an activity journal backed by a temporary SQLite
// database for integration-style tests.
type SQLiteHarness struct {
	Sink    *activity.SQLiteSink
	Journal *activity.Journal
	Path    string

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness opens an activity_log table in a temporary file. Callers
// may optionally invoke Close, but the helper also registers a cleanup
// callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB, clock *Clock) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "activity.db")
	sink, err := activity.OpenSQLiteSink(context.Background(), activity.DefaultSQLiteConfig(path))
	if err != nil {
		tb.Fatalf("failed to open activity database: %v", err)
	}

	harness := &SQLiteHarness{
		Sink:    sink,
		Journal: activity.NewJournal(sink, clock.NowFunc(), io.Discard, nil),
		Path:    path,
		cleanup: func() {
			_ = sink.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
