package app

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ayusman/signova/internal/capture"
	"github.com/ayusman/signova/internal/classifier"
	"github.com/ayusman/signova/internal/detector"
	"github.com/ayusman/signova/internal/geometry"
	"github.com/ayusman/signova/internal/gesture"
	"github.com/ayusman/signova/internal/logging"
	"github.com/ayusman/signova/internal/sentence"
	"github.com/ayusman/signova/internal/speech"
	"github.com/ayusman/signova/internal/store"
)

// State is the lifecycle stage of a capture session.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

var (
	// ErrAlreadyRunning is returned when starting a session twice.
	ErrAlreadyRunning = errors.New("session already running")
	// ErrNotRunning is returned when an operation needs a running session.
	ErrNotRunning = errors.New("session not running")
)

// SessionConfig holds per-session tuning.
type SessionConfig struct {
	MaxHands         int
	HistoryLength    int
	FPSWindow        int
	RecentWords      int
	PointerThreshold float64
	PointerLabels    []string
	NoGestureLabels  []string
	JoinTimeout      time.Duration
	FrameInterval    time.Duration
	Overlay          bool
	MotionGate       bool
	MotionThresh     float64
	Language         sentence.Language
	Stability        gesture.StabilityConfig
	Speech           speech.SchedulerConfig
}

// DefaultSessionConfig mirrors config.Default.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		MaxHands:         2,
		HistoryLength:    geometry.HistoryLength,
		FPSWindow:        capture.DefaultFPSWindow,
		RecentWords:      10,
		PointerThreshold: 0.7,
		PointerLabels:    []string{"Pointer", "Point"},
		NoGestureLabels:  []string{"None"},
		JoinTimeout:      time.Second,
		FrameInterval:    time.Second / capture.DefaultFPS,
		Overlay:          true,
		MotionThresh:     1.0,
		Language:         sentence.English,
		Stability:        gesture.DefaultStabilityConfig(),
		Speech:           speech.DefaultSchedulerConfig(),
	}
}

// Components are the collaborators a session drives. Camera and Detector
// are owned by the session and released on Stop.
type Components struct {
	Camera     capture.Camera
	Detector   detector.Detector
	Pose       *classifier.PoseClassifier
	Motion     *classifier.MotionClassifier
	Speech     speech.Backend
	Dictionary *sentence.Dictionary
	Store      *store.Store
}

// SampleLogging selects which feature vector is recorded as training data.
type SampleLogging struct {
	Kind    store.Kind `json:"kind"`
	ClassID int        `json:"class_id"`
}

// Session is one run of the camera loop. It is built on start and torn
// down on stop.
type Session struct {
	id        string
	cfg       SessionConfig
	camera    capture.Camera
	detector  detector.Detector
	pose      *classifier.PoseClassifier
	motion    *classifier.MotionClassifier
	gate      *capture.MotionGate
	history   *geometry.PointHistory
	filter    *gesture.StabilityFilter
	assembler *sentence.Assembler
	speech    *speech.Scheduler
	fps       *capture.FPSTracker
	store     *store.Store
	log       logrus.FieldLogger
	now       func() time.Time

	mu          sync.RWMutex
	state       State
	frame       []byte
	recent      []string
	lastFPS     float64
	lastMotion  string
	lastCommit  time.Time
	sampling    *SampleLogging
	onStopped   func(*Session)
	onCommit    func(gesture.Commit)
	stopCh      chan struct{}
	done        chan struct{}
	stopOnce    sync.Once
	startedAt   time.Time
	frameCount  int64
	commitCount int64
}

// NewSession wires a session from its components. Missing classifiers and
// speech fall back to inert defaults.
func NewSession(cfg SessionConfig, c Components, log logrus.FieldLogger) *Session {
	id := uuid.NewString()
	log = logging.OrDiscard(log).WithField("session", id)

	def := DefaultSessionConfig()
	if cfg.MaxHands <= 0 {
		cfg.MaxHands = def.MaxHands
	}
	if cfg.RecentWords <= 0 {
		cfg.RecentWords = def.RecentWords
	}
	if cfg.JoinTimeout <= 0 {
		cfg.JoinTimeout = def.JoinTimeout
	}
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = def.FrameInterval
	}
	if cfg.Language == "" {
		cfg.Language = sentence.English
	}

	if c.Pose == nil {
		c.Pose = classifier.NewPoseClassifier(nil, nil, log)
	}
	if c.Motion == nil {
		c.Motion = classifier.NewMotionClassifier(nil, nil, classifier.DefaultMotionConfig(), log)
	}
	if c.Speech == nil {
		c.Speech = speech.NewLogBackend(log)
	}

	scheduler := speech.NewScheduler(c.Speech, cfg.Speech, log)
	assembler := sentence.NewAssembler(c.Dictionary, scheduler)
	assembler.SetLanguage(cfg.Language)

	s := &Session{
		id:        id,
		cfg:       cfg,
		camera:    c.Camera,
		detector:  c.Detector,
		pose:      c.Pose,
		motion:    c.Motion,
		history:   geometry.NewPointHistory(cfg.HistoryLength),
		filter:    gesture.NewStabilityFilter(cfg.Stability),
		assembler: assembler,
		speech:    scheduler,
		fps:       capture.NewFPSTracker(cfg.FPSWindow),
		store:     c.Store,
		log:       log,
		now:       time.Now,
		state:     StateIdle,
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}
	if cfg.MotionGate {
		s.gate = capture.NewMotionGate(cfg.MotionThresh)
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Start opens the camera and launches the capture loop.
func (s *Session) Start() error {
	s.mu.Lock()
	if s.state != StateIdle || !s.startedAt.IsZero() {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	if s.camera == nil || s.detector == nil {
		s.mu.Unlock()
		return errors.New("session needs a camera and a detector")
	}

	if err := s.camera.Open(); err != nil {
		s.mu.Unlock()
		s.release()
		return fmt.Errorf("open camera: %w", err)
	}
	s.state = StateRunning
	s.startedAt = s.now()
	s.mu.Unlock()

	go s.run()

	s.log.Info("capture session started")
	return nil
}

// Stop ends the loop and releases the camera, detector and speech worker.
// It waits at most JoinTimeout for the loop before tearing down anyway. An
// unfinished sentence is cleared and saved like an explicit clear.
// Calling Stop more than once is safe.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		started := s.state == StateRunning
		s.state = StateStopping
		s.mu.Unlock()

		close(s.stopCh)
		if started {
			select {
			case <-s.done:
			case <-time.After(s.cfg.JoinTimeout):
				s.log.Warn("capture loop did not stop in time")
			}
		}

		s.release()

		if text, ok := s.ClearSentence(); ok {
			s.log.WithField("sentence", text).Debug("saved unfinished sentence")
		}

		s.mu.Lock()
		s.state = StateIdle
		cb := s.onStopped
		s.mu.Unlock()

		s.log.WithFields(logrus.Fields{
			"frames":  s.FrameCount(),
			"commits": s.CommitCount(),
		}).Info("capture session stopped")

		if cb != nil {
			cb(s)
		}
	})
}

// Done is closed when the capture loop exits.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) release() {
	if s.camera != nil {
		if err := s.camera.Close(); err != nil {
			s.log.WithError(err).Warn("error closing camera")
		}
	}
	if s.detector != nil {
		if err := s.detector.Close(); err != nil {
			s.log.WithError(err).Warn("error closing detector")
		}
	}
	if s.gate != nil {
		s.gate.Close()
	}
	s.speech.Stop()
}

// Frame returns the latest diagnostic JPEG, or nil before the first frame.
func (s *Session) Frame() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame
}

func (s *Session) setFrame(jpeg []byte) {
	s.mu.Lock()
	s.frame = jpeg
	s.mu.Unlock()
}

// RecentWords returns the last committed labels, oldest first.
func (s *Session) RecentWords() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.recent...)
}

// FrameCount returns how many frames were processed.
func (s *Session) FrameCount() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frameCount
}

// CommitCount returns how many labels were committed.
func (s *Session) CommitCount() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.commitCount
}

// Assembler returns the sentence assembler.
func (s *Session) Assembler() *sentence.Assembler { return s.assembler }

// Speech returns the speech scheduler.
func (s *Session) Speech() *speech.Scheduler { return s.speech }

// ClearSentence finishes the current sentence and persists it.
func (s *Session) ClearSentence() (string, bool) {
	text, ok := s.assembler.ClearSentence()
	if !ok {
		return "", false
	}
	if s.store != nil {
		if _, err := s.store.Sentences().Create(s.id, text, string(s.assembler.Language())); err != nil {
			s.log.WithError(err).Warn("failed to save sentence")
		}
	}
	return text, true
}

// SetSampleLogging records vectors of the given kind under classID for
// every frame with a hand. A nil value turns logging off.
func (s *Session) SetSampleLogging(l *SampleLogging) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l == nil {
		s.sampling = nil
		return
	}
	cp := *l
	s.sampling = &cp
}

func (s *Session) sampleLogging() *SampleLogging {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sampling
}

func (s *Session) isPointer(label string) bool {
	return slices.Contains(s.cfg.PointerLabels, label)
}

func (s *Session) isSentinel(label string) bool {
	return label == "" || s.isPointer(label) || slices.Contains(s.cfg.NoGestureLabels, label)
}
