package speech

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	google_translate_tts "github.com/GrailFinder/google-translate-tts"
	"github.com/GrailFinder/google-translate-tts/handlers"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/sirupsen/logrus"

	"github.com/ayusman/signova/internal/logging"
)

// GoogleConfig configures the Google Translate voice.
type GoogleConfig struct {
	Language string
	Speed    float64
	CacheDir string
}

// GoogleBackend speaks through Google Translate TTS and the system speaker.
type GoogleBackend struct {
	speech   *google_translate_tts.Speech
	generate func(text string) (io.Reader, error)
	halt     func() error
	log      logrus.FieldLogger

	mu      sync.Mutex
	epoch   uint64
	current *beep.Ctrl
	done    chan struct{}
	once    *sync.Once
}

// NewGoogleBackend creates the backend. Audio is not initialized until the
// first utterance.
func NewGoogleBackend(config GoogleConfig, log logrus.FieldLogger) *GoogleBackend {
	if config.Language == "" {
		config.Language = "en"
	}
	if config.CacheDir == "" {
		config.CacheDir = filepath.Join(os.TempDir(), "signova-tts")
	}
	if config.Speed <= 0 {
		config.Speed = 1
	}
	tts := &google_translate_tts.Speech{
		Folder:   config.CacheDir,
		Language: config.Language,
		Proxy:    "",
		Speed:    float32(config.Speed),
		Handler:  &handlers.Beep{},
	}
	return &GoogleBackend{
		speech:   tts,
		generate: func(text string) (io.Reader, error) { return tts.GenerateSpeech(text) },
		halt:     func() error { return tts.Stop() },
		log:      logging.OrDiscard(log).WithField("component", "speech"),
	}
}

// cancelled reports whether Stop ran after the utterance tagged epoch began.
func (b *GoogleBackend) cancelled(epoch uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.epoch != epoch
}

// Say generates and plays text, blocking until playback ends or Stop. A Stop
// that lands while the audio is still being fetched drops the utterance.
func (b *GoogleBackend) Say(text string) error {
	b.mu.Lock()
	epoch := b.epoch
	b.mu.Unlock()

	reader, err := b.generate(text)
	if err != nil {
		return fmt.Errorf("generate speech failed: %w", err)
	}
	if b.cancelled(epoch) {
		return nil
	}

	streamer, format, err := mp3.Decode(io.NopCloser(reader))
	if err != nil {
		return fmt.Errorf("mp3 decode failed: %w", err)
	}
	defer streamer.Close()

	playback := beep.Streamer(streamer)
	if speed := float64(b.speech.Speed); speed != 1.0 {
		playback = beep.ResampleRatio(3, speed, streamer)
	}

	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
		b.log.WithError(err).Debug("failed to init speaker")
	}

	done := make(chan struct{})
	once := &sync.Once{}
	finish := func() { once.Do(func() { close(done) }) }
	ctrl := &beep.Ctrl{Streamer: beep.Seq(playback, beep.Callback(finish))}

	b.mu.Lock()
	if b.epoch != epoch {
		b.mu.Unlock()
		return nil
	}
	b.current, b.done, b.once = ctrl, done, once
	b.mu.Unlock()

	speaker.Play(ctrl)
	<-done

	b.mu.Lock()
	b.current, b.done, b.once = nil, nil, nil
	b.mu.Unlock()
	return nil
}

// Stop silences the current utterance and releases a blocked Say.
func (b *GoogleBackend) Stop() error {
	b.mu.Lock()
	b.epoch++
	ctrl, done, once := b.current, b.done, b.once
	b.mu.Unlock()

	if ctrl != nil {
		speaker.Lock()
		ctrl.Streamer = nil
		speaker.Unlock()
	}
	if once != nil {
		once.Do(func() { close(done) })
	}
	return b.halt()
}
