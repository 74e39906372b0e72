package capture

import (
	"math"
	"sync"
	"time"
)

// DefaultFPSWindow is the number of frame intervals averaged.
const DefaultFPSWindow = 10

// FPSTracker reports a moving-average frame rate.
type FPSTracker struct {
	mu        sync.Mutex
	window    int
	intervals []time.Duration
	last      time.Time
	now       func() time.Time
}

// NewFPSTracker creates a tracker averaging over window intervals.
func NewFPSTracker(window int) *FPSTracker {
	if window <= 0 {
		window = DefaultFPSWindow
	}
	return &FPSTracker{
		window: window,
		now:    time.Now,
	}
}

// SetClock replaces the time source.
func (f *FPSTracker) SetClock(now func() time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = now
}

// Sample records a frame and returns the current rate rounded to two
// decimals. The first call only sets the baseline and returns 0.
func (f *FPSTracker) Sample() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	if f.last.IsZero() {
		f.last = now
		return 0
	}

	f.intervals = append(f.intervals, now.Sub(f.last))
	if len(f.intervals) > f.window {
		f.intervals = f.intervals[1:]
	}
	f.last = now

	var total time.Duration
	for _, d := range f.intervals {
		total += d
	}
	if total <= 0 {
		return 0
	}

	mean := total.Seconds() / float64(len(f.intervals))
	return math.Round(100/mean) / 100
}

// Reset clears the baseline and history.
func (f *FPSTracker) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.intervals = nil
	f.last = time.Time{}
}
