package attendance

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	dayLayout  = "2006-01-02"
	timeLayout = "15:04:05"
)

// Reporter produces a printable report.
type Reporter interface {
	Report() string
}

// EventLogger accepts a human readable event description.
type EventLogger interface {
	LogEvent(ctx context.Context, event string)
}

// Recorder is the activity sink the ledger forwards its events to.
type Recorder interface {
	Record(ctx context.Context, message string)
}

// Record is one employee's attendance for one calendar day.
type Record struct {
	EmployeeID string
	Day        string
	CheckIn    time.Time
	CheckOut   *time.Time
}

// Open reports whether the employee has checked in but not out.
func (r Record) Open() bool {
	return r.CheckOut == nil
}

// Ledger tracks check-in and check-out times per employee and day. At most
// one record exists per employee per day.
type Ledger struct {
	mu       sync.Mutex
	now      func() time.Time
	recorder Recorder
	records  map[string]map[string]*Record
}

var (
	_ Reporter    = (*Ledger)(nil)
	_ EventLogger = (*Ledger)(nil)
)

// NewLedger constructs an empty ledger. A nil clock falls back to time.Now
// and a nil recorder discards events.
func NewLedger(now func() time.Time, recorder Recorder) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{
		now:      now,
		recorder: recorder,
		records:  make(map[string]map[string]*Record),
	}
}

// LogEvent forwards an attendance event to the activity sink.
func (l *Ledger) LogEvent(ctx context.Context, event string) {
	if l.recorder == nil {
		return
	}
	l.recorder.Record(ctx, "ATTENDANCE: "+event)
}

// CheckIn opens today's record for employeeID. It returns false without
// changing anything when a record for today already exists.
func (l *Ledger) CheckIn(ctx context.Context, employeeID string) (Record, bool) {
	now := l.now()
	day := now.Format(dayLayout)

	l.mu.Lock()
	days := l.records[employeeID]
	if days == nil {
		days = make(map[string]*Record)
		l.records[employeeID] = days
	}
	if existing, ok := days[day]; ok {
		rec := *existing
		l.mu.Unlock()
		if rec.Open() {
			l.LogEvent(ctx, employeeID+" check-in ignored: already checked in")
		} else {
			l.LogEvent(ctx, employeeID+" check-in ignored: already checked out today")
		}
		return rec, false
	}
	rec := &Record{EmployeeID: employeeID, Day: day, CheckIn: now}
	days[day] = rec
	out := *rec
	l.mu.Unlock()

	l.LogEvent(ctx, employeeID+" checked IN")
	return out, true
}

// CheckOut closes today's open record for employeeID. It returns false
// without changing anything when there is no open record for today.
func (l *Ledger) CheckOut(ctx context.Context, employeeID string) (Record, bool) {
	now := l.now()
	day := now.Format(dayLayout)

	l.mu.Lock()
	existing, ok := l.records[employeeID][day]
	if !ok || !existing.Open() {
		var rec Record
		if ok {
			rec = *existing
		}
		l.mu.Unlock()
		l.LogEvent(ctx, employeeID+" check-out ignored: no open check-in today")
		return rec, false
	}
	existing.CheckOut = &now
	out := *existing
	l.mu.Unlock()

	l.LogEvent(ctx, employeeID+" checked OUT")
	return out, true
}

// Records returns a snapshot ordered by employee then day.
func (l *Ledger) Records() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Record, 0)
	for _, days := range l.records {
		for _, rec := range days {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EmployeeID == out[j].EmployeeID {
			return out[i].Day < out[j].Day
		}
		return out[i].EmployeeID < out[j].EmployeeID
	})
	return out
}

// Report lists every employee's attendance.
func (l *Ledger) Report() string {
	records := l.Records()

	var sb strings.Builder
	sb.WriteString("--- Full Attendance Report ---\n")
	if len(records) == 0 {
		sb.WriteString("No attendance records found.\n")
		return sb.String()
	}

	current := ""
	for _, rec := range records {
		if rec.EmployeeID != current {
			current = rec.EmployeeID
			fmt.Fprintf(&sb, "%s:\n", current)
		}
		writeLine(&sb, rec)
	}
	return sb.String()
}

// ReportFor lists a single employee's attendance.
func (l *Ledger) ReportFor(employeeID string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Attendance Report for %s ---\n", employeeID)

	found := false
	for _, rec := range l.Records() {
		if rec.EmployeeID != employeeID {
			continue
		}
		found = true
		writeLine(&sb, rec)
	}
	if !found {
		fmt.Fprintf(&sb, "  No records found for employee %s.\n", employeeID)
	}
	return sb.String()
}

func writeLine(sb *strings.Builder, rec Record) {
	out := "N/A"
	if rec.CheckOut != nil {
		out = rec.CheckOut.Format(timeLayout)
	}
	fmt.Fprintf(sb, "  - %s: in %s, out %s\n", rec.Day, rec.CheckIn.Format(timeLayout), out)
}
