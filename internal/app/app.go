// Package app wires the recognition pipeline together and manages capture
// sessions.
package app

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/signova/internal/capture"
	"github.com/ayusman/signova/internal/classifier"
	"github.com/ayusman/signova/internal/config"
	"github.com/ayusman/signova/internal/detector"
	"github.com/ayusman/signova/internal/gesture"
	"github.com/ayusman/signova/internal/logging"
	"github.com/ayusman/signova/internal/sentence"
	"github.com/ayusman/signova/internal/speech"
	"github.com/ayusman/signova/internal/store"
)

// CameraFactory builds a camera for a new session.
type CameraFactory func() capture.Camera

// DetectorFactory builds a hand detector for a new session.
type DetectorFactory func() (detector.Detector, error)

// SpeechFactory builds the text-to-speech backend for a new session.
type SpeechFactory func() speech.Backend

// Option customizes an App.
type Option func(*App)

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(a *App) { a.log = logging.OrDiscard(log) }
}

// WithStore enables sentence and sample persistence.
func WithStore(s *store.Store) Option {
	return func(a *App) { a.store = s }
}

// WithCamera overrides camera construction.
func WithCamera(f CameraFactory) Option {
	return func(a *App) { a.newCamera = f }
}

// WithDetector overrides detector construction.
func WithDetector(f DetectorFactory) Option {
	return func(a *App) { a.newDetector = f }
}

// WithSpeech overrides the speech backend.
func WithSpeech(f SpeechFactory) Option {
	return func(a *App) { a.newSpeech = f }
}

// WithClassifiers supplies ready-made classifiers instead of loading models.
func WithClassifiers(pose *classifier.PoseClassifier, motion *classifier.MotionClassifier) Option {
	return func(a *App) {
		a.pose = pose
		a.motion = motion
	}
}

// WithDictionary supplies the translation dictionary.
func WithDictionary(d *sentence.Dictionary) Option {
	return func(a *App) { a.dict = d }
}

// App is the composition root. It owns the long-lived collaborators and at
// most one running Session.
type App struct {
	cfg   *config.Config
	log   logrus.FieldLogger
	store *store.Store

	pose   *classifier.PoseClassifier
	motion *classifier.MotionClassifier
	dict   *sentence.Dictionary

	newCamera   CameraFactory
	newDetector DetectorFactory
	newSpeech   SpeechFactory

	mu        sync.Mutex
	session   *Session
	language  sentence.Language
	sampling  *SampleLogging
	onCommit  func(gesture.Commit)
	onStopped func()
	started   time.Time
}

// New builds an App from cfg. Label tables that fail to load are fatal
// unless classification is disabled; missing models degrade to a classifier
// that never recognizes anything.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	a := &App{
		cfg:     cfg,
		log:     logging.Discard(),
		started: time.Now(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.dict == nil {
		dict, err := sentence.LoadDictionary(cfg.Sentence.Dictionary)
		if err != nil {
			return nil, err
		}
		a.dict = dict
	}

	if a.pose == nil || a.motion == nil {
		if err := a.loadClassifiers(); err != nil {
			return nil, err
		}
	}

	if a.newCamera == nil {
		a.newCamera = func() capture.Camera {
			return capture.NewCamera(capture.Options{
				DeviceID: cfg.Camera.DeviceID,
				Width:    cfg.Camera.Width,
				Height:   cfg.Camera.Height,
				FPS:      cfg.Camera.FPS,
			})
		}
	}
	if a.newDetector == nil {
		a.newDetector = a.defaultDetector
	}
	if a.newSpeech == nil {
		a.newSpeech = a.defaultSpeech
	}

	a.language = a.initialLanguage()
	return a, nil
}

func (a *App) loadClassifiers() error {
	cc := a.cfg.Classifier

	poseLabels, err := a.loadLabels(cc.PoseLabels)
	if err != nil {
		return err
	}
	motionLabels, err := a.loadLabels(cc.MotionLabels)
	if err != nil {
		return err
	}

	var poseBackend, motionBackend classifier.Backend
	if !cc.Disabled {
		poseBackend = a.loadModel(cc.PoseModel, poseLabels.Len())
		motionBackend = a.loadModel(cc.MotionModel, motionLabels.Len())
	}

	if a.pose == nil {
		a.pose = classifier.NewPoseClassifier(poseBackend, poseLabels, a.log)
	}
	if a.motion == nil {
		a.motion = classifier.NewMotionClassifier(motionBackend, motionLabels, classifier.MotionConfig{
			Threshold:    cc.MotionThreshold,
			InvalidIndex: cc.InvalidIndex,
		}, a.log)
	}
	return nil
}

func (a *App) loadLabels(path string) (*classifier.LabelTable, error) {
	labels, err := classifier.LoadLabelTable(path)
	if err == nil {
		return labels, nil
	}
	if a.cfg.Classifier.Disabled {
		a.log.WithError(err).Warn("label table unavailable, continuing without labels")
		return classifier.NewLabelTable(), nil
	}
	return nil, err
}

// loadModel returns nil when the model cannot be used.
func (a *App) loadModel(path string, classes int) classifier.Backend {
	if classes == 0 {
		a.log.WithField("model", path).Warn("empty label table, model not loaded")
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		a.log.WithField("model", path).Warn("model not found, classification disabled")
		return nil
	}
	backend, err := classifier.NewONNXBackend(classifier.ONNXConfig{
		ModelPath:   path,
		LibraryPath: a.cfg.Classifier.RuntimeLibrary,
		InputName:   a.cfg.Classifier.InputName,
		OutputName:  a.cfg.Classifier.OutputName,
		Classes:     classes,
	})
	if err != nil {
		a.log.WithError(err).WithField("model", path).Warn("failed to load model")
		return nil
	}
	a.log.WithField("model", path).Info("model loaded")
	return backend
}

func (a *App) defaultDetector() (detector.Detector, error) {
	dc := a.cfg.Detector
	d, err := detector.NewMediaPipeDetector(detector.Config{
		MaxHands:         dc.MaxHands,
		StaticImageMode:  dc.StaticImageMode,
		MinDetectionConf: dc.MinDetectionConfidence,
		MinTrackingConf:  dc.MinTrackingConfidence,
		ScriptPath:       dc.ScriptPath,
		PythonPath:       dc.PythonPath,
	}, a.log)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (a *App) defaultSpeech() speech.Backend {
	sc := a.cfg.Speech
	switch sc.Provider {
	case "google":
		return speech.NewGoogleBackend(speech.GoogleConfig{
			Language: sc.Language,
			Speed:    sc.Speed,
			CacheDir: sc.CacheDir,
		}, a.log)
	default:
		return speech.NewLogBackend(a.log)
	}
}

func (a *App) initialLanguage() sentence.Language {
	lang, err := sentence.ParseLanguage(a.cfg.Sentence.DefaultLanguage)
	if err != nil {
		lang = sentence.English
	}
	if a.store == nil {
		return lang
	}
	saved, err := a.store.Settings().Get(store.SettingLanguage)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			a.log.WithError(err).Warn("failed to read language setting")
		}
		return lang
	}
	if l, err := sentence.ParseLanguage(saved); err == nil {
		return l
	}
	return lang
}

func (a *App) sessionConfig() SessionConfig {
	c := a.cfg
	fps := c.Camera.FPS
	if fps <= 0 {
		fps = capture.DefaultFPS
	}
	return SessionConfig{
		MaxHands:         c.Detector.MaxHands,
		HistoryLength:    c.Session.HistoryLength,
		FPSWindow:        c.Session.FPSWindow,
		RecentWords:      c.Session.RecentWords,
		PointerThreshold: c.Session.PointerThreshold,
		PointerLabels:    c.Session.PointerLabels,
		NoGestureLabels:  c.Session.NoGestureLabels,
		JoinTimeout:      c.Session.JoinTimeout,
		FrameInterval:    time.Second / time.Duration(fps),
		Overlay:          c.Session.Overlay,
		MotionGate:       c.Camera.MotionGate,
		MotionThresh:     c.Camera.MotionThresh,
		Language:         a.language,
		Stability: gesture.StabilityConfig{
			ConfidenceThreshold: c.Stability.ConfidenceThreshold,
			HighConfidence:      c.Stability.HighConfidence,
			MinRepeats:          c.Stability.MinRepeats,
			WordDelay:           c.Stability.WordDelay,
			PhraseDelay:         c.Stability.PhraseDelay,
			Separator:           c.Stability.Separator,
		},
		Speech: speech.SchedulerConfig{
			Cooldown:    c.Speech.Cooldown,
			QueueSize:   c.Speech.QueueSize,
			JoinTimeout: c.Session.JoinTimeout,
		},
	}
}

// Start opens a new capture session.
func (a *App) Start() (*Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session != nil && a.session.State() != StateIdle {
		return nil, ErrAlreadyRunning
	}

	det, err := a.newDetector()
	if err != nil {
		return nil, fmt.Errorf("hand detector: %w", err)
	}

	s := NewSession(a.sessionConfig(), Components{
		Camera:     a.newCamera(),
		Detector:   det,
		Pose:       a.pose,
		Motion:     a.motion,
		Speech:     a.newSpeech(),
		Dictionary: a.dict,
		Store:      a.store,
	}, a.log)
	s.SetSampleLogging(a.sampling)
	s.onCommit = a.onCommit
	if cb := a.onStopped; cb != nil {
		s.onStopped = func(*Session) { cb() }
	}

	if err := s.Start(); err != nil {
		return nil, err
	}
	a.session = s
	return s, nil
}

// Stop ends the running session.
func (a *App) Stop() error {
	a.mu.Lock()
	s := a.session
	a.mu.Unlock()

	if s == nil || s.State() != StateRunning {
		return ErrNotRunning
	}
	s.Stop()
	return nil
}

// OnCommit registers fn to run for every committed label of future
// sessions. It runs on the capture goroutine.
func (a *App) OnCommit(fn func(gesture.Commit)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onCommit = fn
}

// OnStopped registers fn to run whenever a session ends, including when the
// camera goes away.
func (a *App) OnStopped(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onStopped = fn
}

// Session returns the current or most recent session, or nil.
func (a *App) Session() *Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

func (a *App) running() (*Session, error) {
	s := a.Session()
	if s == nil || s.State() != StateRunning {
		return nil, ErrNotRunning
	}
	return s, nil
}

// Frame returns the latest diagnostic JPEG of the running session.
func (a *App) Frame() []byte {
	if s := a.Session(); s != nil {
		return s.Frame()
	}
	return nil
}

// ClearSentence finishes the current sentence.
func (a *App) ClearSentence() (string, error) {
	s, err := a.running()
	if err != nil {
		return "", err
	}
	text, _ := s.ClearSentence()
	return text, nil
}

// Backspace removes the last word of the current sentence.
func (a *App) Backspace() error {
	s, err := a.running()
	if err != nil {
		return err
	}
	s.Assembler().Backspace()
	return nil
}

// SpeakSentence speaks the current sentence.
func (a *App) SpeakSentence() error {
	s, err := a.running()
	if err != nil {
		return err
	}
	s.Assembler().SpeakCurrentSentence()
	return nil
}

// SetLanguage selects the translation language and remembers it.
func (a *App) SetLanguage(lang sentence.Language) error {
	if _, err := sentence.ParseLanguage(string(lang)); err != nil {
		return err
	}

	a.mu.Lock()
	a.language = lang
	s := a.session
	a.mu.Unlock()

	if s != nil {
		s.Assembler().SetLanguage(lang)
	}
	if a.store != nil {
		if err := a.store.Settings().Set(store.SettingLanguage, string(lang)); err != nil {
			return fmt.Errorf("save language: %w", err)
		}
	}
	return nil
}

// Language returns the selected translation language.
func (a *App) Language() sentence.Language {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.language
}

// SetSampleLogging turns training-sample capture on, or off when l is nil.
func (a *App) SetSampleLogging(l *SampleLogging) error {
	if l != nil {
		if _, err := store.ParseKind(string(l.Kind)); err != nil {
			return err
		}
		if l.ClassID < 0 {
			return fmt.Errorf("invalid class id %d", l.ClassID)
		}
		if a.store == nil {
			return errors.New("sample logging needs a store")
		}
	}

	a.mu.Lock()
	a.sampling = l
	s := a.session
	a.mu.Unlock()

	if s != nil {
		s.SetSampleLogging(l)
	}
	return nil
}

// Translate converts text into lang using the app dictionary.
func (a *App) Translate(text string, lang sentence.Language) string {
	return sentence.NewAssembler(a.dict, nil).Translate(text, lang)
}

// ToEnglish maps text in lang back to English with the loaded dictionary.
func (a *App) ToEnglish(text string, lang sentence.Language) string {
	return sentence.NewAssembler(a.dict, nil).ToEnglish(text, lang)
}

// PoseLabels returns the pose label table.
func (a *App) PoseLabels() *classifier.LabelTable { return a.pose.Labels() }

// MotionLabels returns the motion label table.
func (a *App) MotionLabels() *classifier.LabelTable { return a.motion.Labels() }

// Store returns the store, which may be nil.
func (a *App) Store() *store.Store { return a.store }

// Uptime returns how long the app has existed.
func (a *App) Uptime() time.Duration { return time.Since(a.started) }

// Close stops any session and releases the classifiers.
func (a *App) Close() error {
	if s := a.Session(); s != nil {
		s.Stop()
	}
	return errors.Join(a.pose.Close(), a.motion.Close())
}
