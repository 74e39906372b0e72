// Package speech schedules spoken feedback on a background worker so that
// text-to-speech never blocks frame processing.
package speech

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/signova/internal/logging"
)

// Backend speaks text. Say blocks until playback finishes or Stop is called.
type Backend interface {
	Say(text string) error
	Stop() error
}

// SchedulerConfig controls queueing and pacing.
type SchedulerConfig struct {
	// Cooldown is the minimum idle time before a fresh utterance starts.
	Cooldown time.Duration
	// QueueSize bounds the pending queue; the oldest entry is evicted.
	QueueSize int
	// JoinTimeout bounds how long Stop waits for the worker.
	JoinTimeout time.Duration
}

// DefaultSchedulerConfig returns a 1.2s cooldown and a queue of 5.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Cooldown:    1200 * time.Millisecond,
		QueueSize:   5,
		JoinTimeout: time.Second,
	}
}

// Scheduler serializes utterances through a single worker goroutine.
type Scheduler struct {
	backend Backend
	config  SchedulerConfig
	log     logrus.FieldLogger

	mu       sync.Mutex
	queue    []string
	speaking bool
	active   bool
	lastDone time.Time
	done     chan struct{}
	wake     *time.Timer
	now      func() time.Time
}

// NewScheduler creates a scheduler. Non-positive config values take defaults.
func NewScheduler(backend Backend, config SchedulerConfig, log logrus.FieldLogger) *Scheduler {
	def := DefaultSchedulerConfig()
	if config.QueueSize <= 0 {
		config.QueueSize = def.QueueSize
	}
	if config.Cooldown < 0 {
		config.Cooldown = def.Cooldown
	}
	if config.JoinTimeout <= 0 {
		config.JoinTimeout = def.JoinTimeout
	}
	return &Scheduler{
		backend: backend,
		config:  config,
		log:     logging.OrDiscard(log).WithField("component", "speech"),
		active:  true,
		now:     time.Now,
	}
}

// SetClock replaces the time source used for the cooldown.
func (s *Scheduler) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Speak starts text immediately when idle and past the cooldown; otherwise
// it queues text unless an identical entry is already waiting. It never
// blocks on playback.
func (s *Scheduler) Speak(text string) {
	if text == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return
	}

	if !s.speaking && s.cooledDown() {
		s.startLocked(text)
		return
	}

	if slices.Contains(s.queue, text) {
		return
	}
	if len(s.queue) >= s.config.QueueSize {
		s.log.WithField("dropped", s.queue[0]).Debug("speech queue full, evicting oldest")
		s.queue = s.queue[1:]
	}
	s.queue = append(s.queue, text)

	if !s.speaking {
		s.scheduleWakeLocked()
	}
}

func (s *Scheduler) cooledDown() bool {
	return s.lastDone.IsZero() || s.now().Sub(s.lastDone) > s.config.Cooldown
}

// scheduleWakeLocked drains the queue once the cooldown expires if nothing
// else starts the worker first.
func (s *Scheduler) scheduleWakeLocked() {
	if s.wake != nil {
		return
	}
	wait := s.config.Cooldown - s.now().Sub(s.lastDone) + time.Millisecond
	s.wake = time.AfterFunc(wait, s.drain)
}

func (s *Scheduler) drain() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.wake = nil
	if !s.active || s.speaking || len(s.queue) == 0 {
		return
	}
	next := s.queue[0]
	s.queue = s.queue[1:]
	s.startLocked(next)
}

func (s *Scheduler) startLocked(text string) {
	s.speaking = true
	done := make(chan struct{})
	s.done = done
	go s.run(text, done)
}

// run speaks text and then keeps draining the queue without the cooldown.
func (s *Scheduler) run(text string, done chan struct{}) {
	defer close(done)

	for {
		if err := s.say(text); err != nil {
			s.log.WithError(err).WithField("text", text).Warn("speech failed")
		}

		s.mu.Lock()
		s.speaking = false
		s.lastDone = s.now()
		if !s.active || len(s.queue) == 0 {
			s.mu.Unlock()
			return
		}
		text = s.queue[0]
		s.queue = s.queue[1:]
		s.speaking = true
		s.mu.Unlock()
	}
}

func (s *Scheduler) say(text string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("speech backend panic: %v", r)
		}
	}()
	return s.backend.Say(text)
}

// IsSpeaking reports whether an utterance is in progress.
func (s *Scheduler) IsSpeaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speaking
}

// Pending returns a copy of the queued texts, oldest first.
func (s *Scheduler) Pending() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queue...)
}

// Stop clears the queue, cancels the current utterance and waits up to
// JoinTimeout for the worker. A stopped scheduler ignores further Speak calls.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.active = false
	s.queue = nil
	if s.wake != nil {
		s.wake.Stop()
		s.wake = nil
	}
	done := s.done
	s.mu.Unlock()

	if err := s.backend.Stop(); err != nil {
		s.log.WithError(err).Debug("backend stop failed")
	}

	if done == nil {
		return
	}
	select {
	case <-done:
	case <-time.After(s.config.JoinTimeout):
		s.log.Warn("speech worker did not stop in time")
	}
}
