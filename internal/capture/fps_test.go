package capture

import (
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestFPSTracker_FirstSampleIsZero(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	f := NewFPSTracker(10)
	f.SetClock(clock.now)

	if got := f.Sample(); got != 0 {
		t.Errorf("first Sample() = %v, want 0", got)
	}
}

func TestFPSTracker_SteadyRate(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	f := NewFPSTracker(10)
	f.SetClock(clock.now)

	f.Sample()
	var got float64
	for i := 0; i < 5; i++ {
		clock.advance(40 * time.Millisecond)
		got = f.Sample()
	}
	if got != 25 {
		t.Errorf("Sample() = %v, want 25", got)
	}
}

func TestFPSTracker_Window(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	f := NewFPSTracker(2)
	f.SetClock(clock.now)

	f.Sample()
	clock.advance(time.Second)
	f.Sample()
	clock.advance(100 * time.Millisecond)
	f.Sample()
	clock.advance(100 * time.Millisecond)

	// only the two most recent 100ms intervals remain
	if got := f.Sample(); got != 10 {
		t.Errorf("Sample() = %v, want 10", got)
	}
}

func TestFPSTracker_Rounding(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	f := NewFPSTracker(10)
	f.SetClock(clock.now)

	f.Sample()
	clock.advance(30 * time.Millisecond)
	if got := f.Sample(); got != 33.33 {
		t.Errorf("Sample() = %v, want 33.33", got)
	}
}

func TestFPSTracker_Reset(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	f := NewFPSTracker(0)
	f.SetClock(clock.now)

	f.Sample()
	clock.advance(50 * time.Millisecond)
	f.Sample()

	f.Reset()
	if got := f.Sample(); got != 0 {
		t.Errorf("Sample() after Reset = %v, want 0", got)
	}
}
