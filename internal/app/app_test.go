package app

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/signova/internal/capture"
	"github.com/ayusman/signova/internal/classifier"
	"github.com/ayusman/signova/internal/config"
	"github.com/ayusman/signova/internal/detector"
	"github.com/ayusman/signova/internal/sentence"
	"github.com/ayusman/signova/internal/speech"
	"github.com/ayusman/signova/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestApp(t *testing.T, opts ...Option) *App {
	t.Helper()

	cfg := config.Default()
	cfg.Classifier.Disabled = true

	base := []Option{
		WithClassifiers(
			classifier.NewPoseClassifier(nil, classifier.NewLabelTable(testLabels...), nil),
			classifier.NewMotionClassifier(nil, nil, classifier.DefaultMotionConfig(), nil),
		),
		WithDictionary(sentence.DefaultDictionary()),
		WithDetector(func() (detector.Detector, error) { return detector.NewMockDetector(), nil }),
		WithSpeech(func() speech.Backend { return speech.NewRecordingBackend() }),
	}
	a, err := New(cfg, append(base, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestNew_DisabledClassifierWithoutLabels(t *testing.T) {
	cfg := config.Default()
	cfg.Classifier.Disabled = true
	cfg.Classifier.PoseLabels = filepath.Join(t.TempDir(), "missing.csv")
	cfg.Classifier.MotionLabels = filepath.Join(t.TempDir(), "missing.csv")

	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close()

	if a.PoseLabels().Len() != 0 {
		t.Errorf("pose labels = %v, want none", a.PoseLabels().Labels())
	}
}

func TestNew_MissingLabelsFatal(t *testing.T) {
	cfg := config.Default()
	cfg.Classifier.PoseLabels = filepath.Join(t.TempDir(), "missing.csv")

	if _, err := New(cfg); err == nil {
		t.Fatal("New() should fail when the label table is missing")
	}
}

func TestApp_StopWithoutSession(t *testing.T) {
	a := newTestApp(t)

	if err := a.Stop(); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Stop() error = %v, want ErrNotRunning", err)
	}
	if _, err := a.ClearSentence(); !errors.Is(err, ErrNotRunning) {
		t.Errorf("ClearSentence() error = %v, want ErrNotRunning", err)
	}
	if err := a.Backspace(); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Backspace() error = %v, want ErrNotRunning", err)
	}
	if a.Frame() != nil {
		t.Error("Frame() should be nil without a session")
	}
}

func TestApp_IdleStatus(t *testing.T) {
	a := newTestApp(t)

	st := a.Status("")
	if st.State != "idle" {
		t.Errorf("State = %q, want idle", st.State)
	}
	if st.Language != sentence.English {
		t.Errorf("Language = %q, want english", st.Language)
	}
	if st.RecentWords == nil || st.History == nil {
		t.Error("idle status should carry empty lists")
	}
}

func TestApp_SetLanguagePersists(t *testing.T) {
	st := newTestStore(t)
	a := newTestApp(t, WithStore(st))

	if err := a.SetLanguage(sentence.Kinyarwanda); err != nil {
		t.Fatalf("SetLanguage() error = %v", err)
	}
	if a.Language() != sentence.Kinyarwanda {
		t.Errorf("Language() = %q", a.Language())
	}

	saved, err := st.Settings().Get(store.SettingLanguage)
	if err != nil || saved != "kinyarwanda" {
		t.Errorf("saved language = %q, %v", saved, err)
	}

	reopened := newTestApp(t, WithStore(st))
	if reopened.Language() != sentence.Kinyarwanda {
		t.Errorf("reopened Language() = %q, want kinyarwanda", reopened.Language())
	}

	if err := a.SetLanguage("klingon"); err == nil {
		t.Error("SetLanguage() should reject unknown languages")
	}
}

func TestApp_SetSampleLogging(t *testing.T) {
	tests := []struct {
		name    string
		store   bool
		l       *SampleLogging
		wantErr bool
	}{
		{"off without store", false, nil, false},
		{"on without store", false, &SampleLogging{Kind: store.KindPose}, true},
		{"pose", true, &SampleLogging{Kind: store.KindPose, ClassID: 2}, false},
		{"motion", true, &SampleLogging{Kind: store.KindMotion, ClassID: 0}, false},
		{"bad kind", true, &SampleLogging{Kind: "gesture"}, true},
		{"negative class", true, &SampleLogging{Kind: store.KindPose, ClassID: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []Option
			if tt.store {
				opts = append(opts, WithStore(newTestStore(t)))
			}
			a := newTestApp(t, opts...)

			err := a.SetSampleLogging(tt.l)
			if (err != nil) != tt.wantErr {
				t.Errorf("SetSampleLogging() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApp_Translate(t *testing.T) {
	a := newTestApp(t)

	if got := a.Translate("Hello Water", sentence.Kinyarwanda); got != "Muraho Amazi" {
		t.Errorf("Translate() = %q, want %q", got, "Muraho Amazi")
	}
	if got := a.Translate("Hello", sentence.English); got != "Hello" {
		t.Errorf("Translate() = %q, want unchanged", got)
	}
	if got := a.ToEnglish("Muraho Amazi", sentence.Kinyarwanda); got != "Hello Water" {
		t.Errorf("ToEnglish() = %q, want %q", got, "Hello Water")
	}
	if a.Uptime() <= 0 {
		t.Errorf("Uptime() = %v, want positive", a.Uptime())
	}
}

func TestApp_Lifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping camera test in short mode")
	}

	cam := capture.NewBlankMockCamera(320, 240, 3)
	defer cam.CloseFrames()

	st := newTestStore(t)
	a := newTestApp(t,
		WithStore(st),
		WithCamera(func() capture.Camera { return cam }),
	)

	s, err := a.Start()
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if _, err := a.Start(); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Start() error = %v, want ErrAlreadyRunning", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for a.Frame() == nil && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if a.Frame() == nil {
		t.Fatal("no frame published")
	}

	s.Assembler().AppendWord("Muraho")
	text, err := a.ClearSentence()
	if err != nil || text != "Hello" {
		t.Fatalf("ClearSentence() = %q, %v", text, err)
	}
	saved, err := st.Sentences().ListBySession(s.ID())
	if err != nil || len(saved) != 1 {
		t.Errorf("saved sentences = %v, %v", saved, err)
	}

	if err := a.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if s.State() != StateIdle {
		t.Errorf("State() = %v, want idle", s.State())
	}
	if cam.IsOpen() {
		t.Error("camera should be closed after Stop")
	}
	if err := a.Stop(); !errors.Is(err, ErrNotRunning) {
		t.Errorf("second Stop() error = %v, want ErrNotRunning", err)
	}
}
