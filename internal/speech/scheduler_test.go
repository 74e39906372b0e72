package speech

import (
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

type manualClock struct {
	mu sync.Mutex
	t  time.Time
}

func newManualClock() *manualClock {
	return &manualClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *manualClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *manualClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestScheduler(backend Backend) (*Scheduler, *manualClock) {
	clock := newManualClock()
	s := NewScheduler(backend, DefaultSchedulerConfig(), nil)
	s.SetClock(clock.now)
	return s, clock
}

func TestScheduler_SpeaksImmediatelyWhenIdle(t *testing.T) {
	backend := NewRecordingBackend()
	backend.Block()
	s, _ := newTestScheduler(backend)
	defer s.Stop()

	s.Speak("Hello")

	if !s.IsSpeaking() {
		t.Error("IsSpeaking() = false right after Speak")
	}
	waitFor(t, "utterance", func() bool { return len(backend.Said()) == 1 })
	if len(s.Pending()) != 0 {
		t.Errorf("Pending() = %v, want empty", s.Pending())
	}

	backend.Unblock()
	waitFor(t, "idle", func() bool { return !s.IsSpeaking() })
}

func TestScheduler_QueueBoundEvictsOldest(t *testing.T) {
	backend := NewRecordingBackend()
	backend.Block()
	s, _ := newTestScheduler(backend)
	defer s.Stop()

	s.Speak("first")
	waitFor(t, "first utterance", func() bool { return len(backend.Said()) == 1 })

	for _, text := range []string{"a", "b", "c", "d", "e", "f"} {
		s.Speak(text)
	}

	want := []string{"b", "c", "d", "e", "f"}
	if got := s.Pending(); !reflect.DeepEqual(got, want) {
		t.Errorf("Pending() = %v, want %v", got, want)
	}
}

func TestScheduler_SkipsDuplicates(t *testing.T) {
	backend := NewRecordingBackend()
	backend.Block()
	s, _ := newTestScheduler(backend)
	defer s.Stop()

	s.Speak("Hello")
	s.Speak("Water")
	s.Speak("Water")

	if got := s.Pending(); !reflect.DeepEqual(got, []string{"Water"}) {
		t.Errorf("Pending() = %v, want [Water]", got)
	}
}

func TestScheduler_ChainBypassesCooldown(t *testing.T) {
	backend := NewRecordingBackend()
	backend.Block()
	s, _ := newTestScheduler(backend)
	defer s.Stop()

	s.Speak("one")
	s.Speak("two")
	s.Speak("three")

	// The clock never advances, so only chaining can drain the queue.
	backend.Unblock()

	waitFor(t, "chain to drain", func() bool { return len(backend.Said()) == 3 && !s.IsSpeaking() })
	if got := backend.Said(); !reflect.DeepEqual(got, []string{"one", "two", "three"}) {
		t.Errorf("Said() = %v", got)
	}
}

func TestScheduler_CooldownQueuesFreshUtterance(t *testing.T) {
	backend := NewRecordingBackend()
	s, clock := newTestScheduler(backend)
	defer s.Stop()

	s.Speak("one")
	waitFor(t, "first utterance", func() bool { return len(backend.Said()) == 1 && !s.IsSpeaking() })

	clock.advance(500 * time.Millisecond)
	s.Speak("two")
	if s.IsSpeaking() {
		t.Fatal("started speaking inside the cooldown")
	}
	if got := s.Pending(); !reflect.DeepEqual(got, []string{"two"}) {
		t.Fatalf("Pending() = %v, want [two]", got)
	}

	clock.advance(time.Second)
	s.Speak("three")
	waitFor(t, "queue to drain", func() bool { return len(backend.Said()) == 3 && !s.IsSpeaking() })
	if got := backend.Said(); !reflect.DeepEqual(got, []string{"one", "three", "two"}) {
		t.Errorf("Said() = %v", got)
	}
}

func TestScheduler_DrainsAfterCooldownWithoutNewSpeech(t *testing.T) {
	backend := NewRecordingBackend()
	s := NewScheduler(backend, SchedulerConfig{Cooldown: 50 * time.Millisecond, QueueSize: 5}, nil)
	defer s.Stop()

	s.Speak("one")
	waitFor(t, "first utterance", func() bool { return len(backend.Said()) == 1 && !s.IsSpeaking() })

	s.Speak("two")
	waitFor(t, "queued utterance", func() bool { return len(backend.Said()) == 2 })
}

func TestScheduler_BackendFailuresAreSwallowed(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*RecordingBackend)
	}{
		{"error", func(b *RecordingBackend) { b.SetError(errors.New("no audio device")) }},
		{"panic", func(b *RecordingBackend) { b.SetPanic("driver crashed") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := NewRecordingBackend()
			tt.setup(backend)
			s, clock := newTestScheduler(backend)
			defer s.Stop()

			s.Speak("one")
			waitFor(t, "reset to idle", func() bool { return len(backend.Said()) == 1 && !s.IsSpeaking() })

			clock.advance(2 * time.Second)
			s.Speak("two")
			waitFor(t, "second attempt", func() bool { return len(backend.Said()) == 2 })
		})
	}
}

func TestScheduler_ChainsQueuedAfterFailure(t *testing.T) {
	backend := NewRecordingBackend()
	backend.Block()
	backend.SetError(errors.New("no audio device"))
	s, _ := newTestScheduler(backend)
	defer s.Stop()

	s.Speak("one")
	s.Speak("two")
	s.Speak("three")
	if got := s.Pending(); !reflect.DeepEqual(got, []string{"two", "three"}) {
		t.Fatalf("Pending() = %v, want [two three]", got)
	}

	backend.Unblock()
	waitFor(t, "queue drained", func() bool { return len(backend.Said()) == 3 && !s.IsSpeaking() })

	if got := backend.Said(); !reflect.DeepEqual(got, []string{"one", "two", "three"}) {
		t.Errorf("Said() = %v, want [one two three]", got)
	}
}

func TestScheduler_Stop(t *testing.T) {
	backend := NewRecordingBackend()
	backend.Block()
	s, clock := newTestScheduler(backend)

	s.Speak("one")
	s.Speak("two")
	s.Speak("three")

	start := time.Now()
	s.Stop()
	if time.Since(start) > 1500*time.Millisecond {
		t.Error("Stop() exceeded the join timeout")
	}

	if len(s.Pending()) != 0 {
		t.Errorf("Pending() after Stop = %v", s.Pending())
	}
	if backend.Stops() != 1 {
		t.Errorf("backend Stop calls = %d, want 1", backend.Stops())
	}
	waitFor(t, "worker exit", func() bool { return !s.IsSpeaking() })

	clock.advance(time.Minute)
	s.Speak("four")
	time.Sleep(20 * time.Millisecond)
	if got := backend.Said(); !reflect.DeepEqual(got, []string{"one"}) {
		t.Errorf("Said() = %v, want only [one]", got)
	}
}

func TestScheduler_EmptyTextIgnored(t *testing.T) {
	backend := NewRecordingBackend()
	s, _ := newTestScheduler(backend)
	defer s.Stop()

	s.Speak("")
	if s.IsSpeaking() || len(s.Pending()) != 0 {
		t.Error("empty text should be ignored")
	}
}
