package classifier

import "sync"

// StaticBackend returns preset scores. It is used in tests and when models
// are disabled but a deterministic classifier is still wanted.
type StaticBackend struct {
	mu     sync.Mutex
	scores []float32
	err    error
	inputs [][]float32
	closed bool
}

// NewStaticBackend returns a backend that always yields scores.
func NewStaticBackend(scores ...float32) *StaticBackend {
	return &StaticBackend{scores: scores}
}

// SetScores replaces the scores returned by Infer.
func (b *StaticBackend) SetScores(scores ...float32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.scores = scores
}

// SetError makes Infer fail with err.
func (b *StaticBackend) SetError(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = err
}

func (b *StaticBackend) Infer(input []float32) ([]float32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.inputs = append(b.inputs, append([]float32(nil), input...))
	if b.err != nil {
		return nil, b.err
	}
	return append([]float32(nil), b.scores...), nil
}

// Inputs returns every vector passed to Infer.
func (b *StaticBackend) Inputs() [][]float32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([][]float32(nil), b.inputs...)
}

func (b *StaticBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// Closed reports whether Close was called.
func (b *StaticBackend) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}
