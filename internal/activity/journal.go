package activity

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/example/smart-office/internal/logging"
)

// Journal stamps messages and forwards them to a Sink. It never returns an
// error to the caller. The first sink failure is written to errOut and logged;
// later failures are counted and dropped.
type Journal struct {
	sink   Sink
	now    func() time.Time
	errOut io.Writer
	logger *slog.Logger

	mu       sync.Mutex
	firstErr error
	failures int
}

// NewJournal wires a journal. A nil sink discards entries; a nil errOut
// disables the error channel.
func NewJournal(sink Sink, now func() time.Time, errOut io.Writer, logger *slog.Logger) *Journal {
	if sink == nil {
		sink = Discard{}
	}
	if now == nil {
		now = time.Now
	}
	if errOut == nil {
		errOut = io.Discard
	}
	return &Journal{sink: sink, now: now, errOut: errOut, logger: logger}
}

// Record appends message to the trail.
func (j *Journal) Record(ctx context.Context, message string) {
	if j == nil {
		return
	}
	entry := Entry{Time: j.now(), Message: message}
	if err := j.sink.Write(ctx, entry); err != nil {
		j.fail(ctx, err)
	}
}

// RecordBatch appends several messages sharing one timestamp, each tagged
// "[BATCH]".
func (j *Journal) RecordBatch(ctx context.Context, messages ...string) {
	if j == nil {
		return
	}
	ts := j.now()
	for _, msg := range messages {
		if err := j.sink.Write(ctx, Entry{Time: ts, Message: "[BATCH] " + msg}); err != nil {
			j.fail(ctx, err)
		}
	}
}

func (j *Journal) fail(ctx context.Context, err error) {
	j.mu.Lock()
	j.failures++
	first := j.firstErr == nil
	if first {
		j.firstErr = err
	}
	j.mu.Unlock()

	if !first {
		return
	}
	fmt.Fprintf(j.errOut, "Error: Could not write to activity log: %v\n", err)

	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = j.logger
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.ErrorContext(ctx, "activity sink write failed", "error", err, "error_kind", "sink_write_failed")
}

// Err returns the first sink failure, if any.
func (j *Journal) Err() error {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.firstErr
}

// Failures reports how many writes have failed.
func (j *Journal) Failures() int {
	if j == nil {
		return 0
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.failures
}

// Recent returns the last limit entries when the sink can be read back.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if j == nil {
		return nil, nil
	}
	reader, ok := j.sink.(Reader)
	if !ok {
		return nil, nil
	}
	return reader.Entries(ctx, limit)
}

// Close closes the underlying sink.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	return j.sink.Close()
}
