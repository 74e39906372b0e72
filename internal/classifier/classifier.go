// Package classifier maps normalized hand vectors to gesture indices using a
// pluggable inference backend.
package classifier

import (
	"errors"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/signova/internal/logging"
)

// ErrBadOutput is returned when a backend produces empty or non-finite scores.
var ErrBadOutput = errors.New("classifier: invalid model output")

// Backend runs a single forward pass of a classification model.
type Backend interface {
	Infer(input []float32) ([]float32, error)
	Close() error
}

// Result is the output of a pose classification.
type Result struct {
	Index      int     `json:"index"`
	Confidence float64 `json:"confidence"`
}

// argmax returns the index and value of the largest score.
func argmax(scores []float32) (int, float64, error) {
	if len(scores) == 0 {
		return 0, 0, ErrBadOutput
	}
	best := 0
	for i, s := range scores {
		v := float64(s)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, 0, ErrBadOutput
		}
		if s > scores[best] {
			best = i
		}
	}
	return best, float64(scores[best]), nil
}

func toFloat32(vector []float64) []float32 {
	out := make([]float32, len(vector))
	for i, v := range vector {
		out[i] = float32(v)
	}
	return out
}

// PoseClassifier predicts a static hand pose from a 42-value pose vector.
type PoseClassifier struct {
	backend Backend
	labels  *LabelTable
	log     logrus.FieldLogger
}

// NewPoseClassifier creates a pose classifier. A nil backend yields a
// classifier that always reports index 0 with zero confidence.
func NewPoseClassifier(backend Backend, labels *LabelTable, log logrus.FieldLogger) *PoseClassifier {
	if labels == nil {
		labels = &LabelTable{}
	}
	return &PoseClassifier{
		backend: backend,
		labels:  labels,
		log:     logging.OrDiscard(log).WithField("component", "pose-classifier"),
	}
}

// Classify returns the most likely pose index and its score. Any backend
// failure degrades to Result{0, 0}.
func (c *PoseClassifier) Classify(vector []float64) Result {
	if c.backend == nil {
		return Result{}
	}

	scores, err := c.backend.Infer(toFloat32(vector))
	if err != nil {
		c.log.WithError(err).Debug("inference failed")
		return Result{}
	}

	index, confidence, err := argmax(scores)
	if err != nil {
		c.log.WithError(err).Debug("discarding output")
		return Result{}
	}
	if index >= c.labels.Len() {
		index = 0
	}
	return Result{Index: index, Confidence: confidence}
}

// Label resolves an index to its label. Unknown indices resolve to "".
func (c *PoseClassifier) Label(index int) string {
	label, _ := c.labels.Lookup(index)
	return label
}

// Labels returns the label table backing this classifier.
func (c *PoseClassifier) Labels() *LabelTable {
	return c.labels
}

// Close releases the backend.
func (c *PoseClassifier) Close() error {
	if c.backend == nil {
		return nil
	}
	return c.backend.Close()
}

// MotionConfig controls the motion classifier's acceptance threshold.
type MotionConfig struct {
	Threshold    float64
	InvalidIndex int
}

// DefaultMotionConfig returns the stock threshold of 0.5 with invalid index 0.
func DefaultMotionConfig() MotionConfig {
	return MotionConfig{Threshold: 0.5, InvalidIndex: 0}
}

// MotionClassifier predicts a dynamic gesture from a 32-value trajectory vector.
type MotionClassifier struct {
	backend Backend
	labels  *LabelTable
	config  MotionConfig
	log     logrus.FieldLogger
}

// NewMotionClassifier creates a motion classifier.
func NewMotionClassifier(backend Backend, labels *LabelTable, config MotionConfig, log logrus.FieldLogger) *MotionClassifier {
	if labels == nil {
		labels = &LabelTable{}
	}
	return &MotionClassifier{
		backend: backend,
		labels:  labels,
		config:  config,
		log:     logging.OrDiscard(log).WithField("component", "motion-classifier"),
	}
}

// Classify returns the predicted motion index, or the invalid index when the
// best score is below threshold or inference fails.
func (c *MotionClassifier) Classify(vector []float64) int {
	if c.backend == nil {
		return c.config.InvalidIndex
	}

	scores, err := c.backend.Infer(toFloat32(vector))
	if err != nil {
		c.log.WithError(err).Debug("inference failed")
		return c.config.InvalidIndex
	}

	index, score, err := argmax(scores)
	if err != nil {
		c.log.WithError(err).Debug("discarding output")
		return c.config.InvalidIndex
	}
	if score < c.config.Threshold {
		return c.config.InvalidIndex
	}
	if index >= c.labels.Len() {
		return c.config.InvalidIndex
	}
	return index
}

// Label resolves an index to its label.
func (c *MotionClassifier) Label(index int) string {
	label, _ := c.labels.Lookup(index)
	return label
}

// Labels returns the label table backing this classifier.
func (c *MotionClassifier) Labels() *LabelTable {
	return c.labels
}

// Close releases the backend.
func (c *MotionClassifier) Close() error {
	if c.backend == nil {
		return nil
	}
	return c.backend.Close()
}
