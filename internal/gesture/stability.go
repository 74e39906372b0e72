// Package gesture turns per-frame classifier output into committed words.
package gesture

import (
	"strings"
	"sync"
	"time"
)

// StabilityConfig controls when a classified label is accepted as a word.
type StabilityConfig struct {
	// ConfidenceThreshold is the minimum confidence considered at all.
	ConfidenceThreshold float64
	// HighConfidence commits on first sight when exceeded.
	HighConfidence float64
	// MinRepeats is the seen-count needed below HighConfidence.
	MinRepeats int
	// WordDelay is the debounce after any commit for single-word labels.
	WordDelay time.Duration
	// PhraseDelay is the debounce for compound labels.
	PhraseDelay time.Duration
	// Separator joins the parts of a compound label.
	Separator string
}

// DefaultStabilityConfig returns the stock thresholds.
func DefaultStabilityConfig() StabilityConfig {
	return StabilityConfig{
		ConfidenceThreshold: 0.7,
		HighConfidence:      0.85,
		MinRepeats:          2,
		WordDelay:           1200 * time.Millisecond,
		PhraseDelay:         600 * time.Millisecond,
		Separator:           "_",
	}
}

// Commit is a label accepted by the filter.
type Commit struct {
	Label      string    `json:"label"`
	Words      []string  `json:"words"`
	Confidence float64   `json:"confidence"`
	At         time.Time `json:"at"`
}

// StabilityFilter debounces classifier output. The debounce window is
// global: a commit of any label holds off every label until the delay
// for the incoming label has elapsed.
type StabilityFilter struct {
	mu         sync.Mutex
	config     StabilityConfig
	counts     map[string]int
	lastCommit time.Time
}

// NewStabilityFilter creates a filter. Zero-valued fields take defaults.
func NewStabilityFilter(config StabilityConfig) *StabilityFilter {
	def := DefaultStabilityConfig()
	if config.MinRepeats <= 0 {
		config.MinRepeats = def.MinRepeats
	}
	if config.Separator == "" {
		config.Separator = def.Separator
	}
	return &StabilityFilter{
		config: config,
		counts: make(map[string]int),
	}
}

// TryCommit offers a classified label observed at now. It reports whether
// the label was committed; compound labels are split into their parts.
func (f *StabilityFilter) TryCommit(label string, confidence float64, now time.Time) (Commit, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if label == "" || confidence < f.config.ConfidenceThreshold {
		return Commit{}, false
	}

	words := []string{label}
	compound := strings.Contains(label, f.config.Separator)
	delay := f.config.WordDelay
	if compound {
		if words = splitCompound(label, f.config.Separator); len(words) == 0 {
			return Commit{}, false
		}
		delay = f.config.PhraseDelay
	}
	if !f.lastCommit.IsZero() && now.Sub(f.lastCommit) <= delay {
		return Commit{}, false
	}

	f.counts[label]++
	if f.counts[label] < f.config.MinRepeats && confidence <= f.config.HighConfidence {
		return Commit{}, false
	}

	f.counts[label] = 0
	f.lastCommit = now

	return Commit{
		Label:      label,
		Words:      words,
		Confidence: confidence,
		At:         now,
	}, true
}

func splitCompound(label, sep string) []string {
	parts := strings.Split(label, sep)
	words := parts[:0]
	for _, p := range parts {
		if p != "" {
			words = append(words, p)
		}
	}
	return words
}

// Count returns the current seen-count for label.
func (f *StabilityFilter) Count(label string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[label]
}

// LastCommit returns the time of the most recent commit.
func (f *StabilityFilter) LastCommit() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastCommit
}

// Reset clears all counters and the debounce timestamp.
func (f *StabilityFilter) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	clear(f.counts)
	f.lastCommit = time.Time{}
}
