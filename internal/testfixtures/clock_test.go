package testfixtures

import (
	"testing"
	"time"
)

func TestClockDefaultsToReferenceTime(t *testing.T) {
	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("expected ReferenceTime, got %v", clock.Now())
	}
}

func TestClockAdvanceAndAt(t *testing.T) {
	start := time.Date(2024, time.March, 14, 9, 26, 0, 0, time.UTC)
	clock := NewClock(start)

	updated := clock.Advance(90 * time.Minute)
	if !updated.Equal(start.Add(90 * time.Minute)) {
		t.Fatalf("advance returned %v", updated)
	}

	want := time.Date(2024, time.March, 14, 17, 30, 0, 0, time.UTC)
	if got := clock.At(17, 30); !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if got := clock.Now(); !got.Equal(want) {
		t.Fatalf("expected Now to return %v, got %v", want, got)
	}
}

func TestClockNextDay(t *testing.T) {
	clock := NewClock(time.Date(2024, time.February, 28, 23, 30, 0, 0, time.UTC))
	nowFn := clock.NowFunc()

	clock.NextDay()
	if got, want := nowFn(), time.Date(2024, time.February, 29, 23, 30, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("expected %v from NowFunc, got %v", want, got)
	}

	var nilClock *Clock
	if nilClock.NowFunc() == nil {
		t.Fatalf("expected nil clock to fall back to time.Now")
	}
}
