// Package activity records the office activity trail. Writes are best effort:
// a failing sink never blocks the operation that produced the entry.
package activity

import (
	"context"
	"errors"
	"time"
)

// ErrWriteFailed wraps every sink failure.
var ErrWriteFailed = errors.New("activity: sink write failed")

// TimestampLayout is the layout used when an entry is rendered as text.
const TimestampLayout = "2006/01/02 15:04:05"

// Entry is one line of the activity trail.
type Entry struct {
	Time    time.Time
	Message string
}

// Line renders the entry as "[yyyy/MM/dd HH:mm:ss] message".
func (e Entry) Line() string {
	return "[" + e.Time.Format(TimestampLayout) + "] " + e.Message
}

// Sink persists entries.
type Sink interface {
	Write(ctx context.Context, entry Entry) error
	Close() error
}

// Reader lists persisted entries, oldest first.
type Reader interface {
	Entries(ctx context.Context, limit int) ([]Entry, error)
}

// Discard drops every entry.
type Discard struct{}

func (Discard) Write(context.Context, Entry) error { return nil }
func (Discard) Close() error                       { return nil }
