package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu     sync.Mutex
	hands  []HandLandmarks
	err    error
	calls  int
	closed bool
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Calls returns how many times Detect was invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Close marks the detector closed.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockDetector) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// PointerLandmarks returns a preset hand with the index finger extended and
// the other fingers curled, the pose used to draw motion trajectories.
func PointerLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point{X: 0.50, Y: 0.80}

	// Thumb tucked across the palm
	landmarks.Points[ThumbCMC] = Point{X: 0.55, Y: 0.76}
	landmarks.Points[ThumbMCP] = Point{X: 0.57, Y: 0.71}
	landmarks.Points[ThumbIP] = Point{X: 0.54, Y: 0.68}
	landmarks.Points[ThumbTip] = Point{X: 0.51, Y: 0.67}

	// Index finger extended upward
	landmarks.Points[IndexMCP] = Point{X: 0.55, Y: 0.68}
	landmarks.Points[IndexPIP] = Point{X: 0.56, Y: 0.56}
	landmarks.Points[IndexDIP] = Point{X: 0.56, Y: 0.47}
	landmarks.Points[IndexTip] = Point{X: 0.56, Y: 0.38}

	// Middle, ring and pinky curled
	landmarks.Points[MiddleMCP] = Point{X: 0.50, Y: 0.68}
	landmarks.Points[MiddlePIP] = Point{X: 0.50, Y: 0.64}
	landmarks.Points[MiddleDIP] = Point{X: 0.49, Y: 0.68}
	landmarks.Points[MiddleTip] = Point{X: 0.48, Y: 0.71}

	landmarks.Points[RingMCP] = Point{X: 0.45, Y: 0.70}
	landmarks.Points[RingPIP] = Point{X: 0.45, Y: 0.66}
	landmarks.Points[RingDIP] = Point{X: 0.44, Y: 0.70}
	landmarks.Points[RingTip] = Point{X: 0.43, Y: 0.73}

	landmarks.Points[PinkyMCP] = Point{X: 0.41, Y: 0.72}
	landmarks.Points[PinkyPIP] = Point{X: 0.40, Y: 0.69}
	landmarks.Points[PinkyDIP] = Point{X: 0.40, Y: 0.72}
	landmarks.Points[PinkyTip] = Point{X: 0.39, Y: 0.75}

	return landmarks
}

// OpenPalmLandmarks returns a preset HandLandmarks representing an open palm gesture.
// All fingers are extended outward.
func OpenPalmLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	// Wrist at base
	landmarks.Points[Wrist] = Point{X: 0.5, Y: 0.8}

	// Thumb extended to the side
	landmarks.Points[ThumbCMC] = Point{X: 0.55, Y: 0.75}
	landmarks.Points[ThumbMCP] = Point{X: 0.62, Y: 0.70}
	landmarks.Points[ThumbIP] = Point{X: 0.68, Y: 0.65}
	landmarks.Points[ThumbTip] = Point{X: 0.73, Y: 0.60}

	// Index finger extended upward
	landmarks.Points[IndexMCP] = Point{X: 0.55, Y: 0.68}
	landmarks.Points[IndexPIP] = Point{X: 0.57, Y: 0.55}
	landmarks.Points[IndexDIP] = Point{X: 0.58, Y: 0.45}
	landmarks.Points[IndexTip] = Point{X: 0.58, Y: 0.35}

	// Middle finger extended upward (slightly longer)
	landmarks.Points[MiddleMCP] = Point{X: 0.50, Y: 0.66}
	landmarks.Points[MiddlePIP] = Point{X: 0.50, Y: 0.52}
	landmarks.Points[MiddleDIP] = Point{X: 0.50, Y: 0.40}
	landmarks.Points[MiddleTip] = Point{X: 0.50, Y: 0.28}

	// Ring finger extended upward
	landmarks.Points[RingMCP] = Point{X: 0.45, Y: 0.68}
	landmarks.Points[RingPIP] = Point{X: 0.43, Y: 0.55}
	landmarks.Points[RingDIP] = Point{X: 0.42, Y: 0.45}
	landmarks.Points[RingTip] = Point{X: 0.42, Y: 0.35}

	// Pinky finger extended upward
	landmarks.Points[PinkyMCP] = Point{X: 0.40, Y: 0.70}
	landmarks.Points[PinkyPIP] = Point{X: 0.37, Y: 0.60}
	landmarks.Points[PinkyDIP] = Point{X: 0.35, Y: 0.50}
	landmarks.Points[PinkyTip] = Point{X: 0.34, Y: 0.42}

	return landmarks
}
