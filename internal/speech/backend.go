package speech

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/signova/internal/logging"
)

// LogBackend writes utterances to the log instead of an audio device.
type LogBackend struct {
	log logrus.FieldLogger
}

// NewLogBackend returns a backend that only logs.
func NewLogBackend(log logrus.FieldLogger) *LogBackend {
	return &LogBackend{log: logging.OrDiscard(log).WithField("component", "speech")}
}

func (b *LogBackend) Say(text string) error {
	b.log.WithField("text", text).Info("speak")
	return nil
}

func (b *LogBackend) Stop() error { return nil }

// RecordingBackend records utterances. When a gate channel is set, Say
// blocks until a value is received or Stop is called.
type RecordingBackend struct {
	mu     sync.Mutex
	said   []string
	err    error
	gate   chan struct{}
	stop   chan struct{}
	stops  int
	panicV any
}

// NewRecordingBackend returns a non-blocking recording backend.
func NewRecordingBackend() *RecordingBackend {
	return &RecordingBackend{stop: make(chan struct{})}
}

// Block makes subsequent Say calls wait for Release.
func (b *RecordingBackend) Block() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gate = make(chan struct{})
}

// Release lets one blocked Say call finish.
func (b *RecordingBackend) Release() {
	b.mu.Lock()
	gate := b.gate
	b.mu.Unlock()
	if gate != nil {
		gate <- struct{}{}
	}
}

// Unblock makes Say return immediately again.
func (b *RecordingBackend) Unblock() {
	b.mu.Lock()
	gate := b.gate
	b.gate = nil
	b.mu.Unlock()
	if gate != nil {
		close(gate)
	}
}

// SetError makes Say return err after recording.
func (b *RecordingBackend) SetError(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = err
}

// SetPanic makes Say panic with v after recording.
func (b *RecordingBackend) SetPanic(v any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.panicV = v
}

func (b *RecordingBackend) Say(text string) error {
	b.mu.Lock()
	b.said = append(b.said, text)
	gate, stop, err, p := b.gate, b.stop, b.err, b.panicV
	b.mu.Unlock()

	if p != nil {
		panic(p)
	}
	if gate != nil {
		select {
		case <-gate:
		case <-stop:
		}
	}
	return err
}

func (b *RecordingBackend) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stops++
	if b.stop != nil {
		close(b.stop)
		b.stop = nil
	}
	return nil
}

// Said returns every text passed to Say.
func (b *RecordingBackend) Said() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.said...)
}

// Stops returns how many times Stop was called.
func (b *RecordingBackend) Stops() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stops
}
