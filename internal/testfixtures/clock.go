package testfixtures

import (
	"sync"
	"time"
)

// Clock is a manual time source for sessions, bookings and attendance days.
type Clock struct {
	mu      sync.Mutex
	current time.Time
}

// NewClock starts at start, or at ReferenceTime when start is zero.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{current: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// NowFunc exposes Now for injection. A nil clock falls back to time.Now.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

func (c *Clock) move(step func(time.Time) time.Time) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = step(c.current)
	return c.current
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) time.Time {
	return c.move(func(t time.Time) time.Time { return t.Add(d) })
}

// At jumps to hour:minute on the current calendar day, for example to the end
// of a shift.
func (c *Clock) At(hour, minute int) time.Time {
	return c.move(func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, t.Location())
	})
}

// NextDay keeps the wall time and moves to the following calendar day.
func (c *Clock) NextDay() time.Time {
	return c.move(func(t time.Time) time.Time { return t.AddDate(0, 0, 1) })
}
