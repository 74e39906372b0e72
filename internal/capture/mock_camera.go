package capture

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockCamera plays back in-memory frames. When playback runs out and loop
// is false the device reports ErrDeviceClosed, as an unplugged webcam would.
type MockCamera struct {
	frames  []*gocv.Mat
	index   int
	loop    bool
	mu      sync.Mutex
	running bool
	openErr error
	fails   int
	reads   int
}

func NewMockCamera(frames []*gocv.Mat, loop bool) *MockCamera {
	return &MockCamera{
		frames: frames,
		loop:   loop,
	}
}

// NewBlankMockCamera returns a looping camera producing count black frames
// of the given size. Callers own the frames via CloseFrames.
func NewBlankMockCamera(width, height, count int) *MockCamera {
	frames := make([]*gocv.Mat, count)
	for i := range frames {
		m := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
		frames[i] = &m
	}
	return NewMockCamera(frames, true)
}

func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.openErr != nil {
		return c.openErr
	}
	c.running = true
	c.index = 0
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	return nil
}

func (c *MockCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil, ErrCameraNotOpen
	}
	c.reads++

	if c.fails > 0 {
		c.fails--
		return nil, ErrFrameUnavailable
	}

	if len(c.frames) == 0 {
		return nil, ErrDeviceClosed
	}

	if c.index >= len(c.frames) {
		if !c.loop {
			return nil, ErrDeviceClosed
		}
		c.index = 0
	}

	// Clone the frame so the original isn't modified
	frame := c.frames[c.index].Clone()
	c.index++

	return &frame, nil
}

func (c *MockCamera) SetFPS(fps int) {}
func (c *MockCamera) FPS() int       { return DefaultFPS }
func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// SetFrames replaces the frame sequence
func (c *MockCamera) SetFrames(frames []*gocv.Mat) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = frames
	c.index = 0
}

// SetOpenError makes Open fail with err.
func (c *MockCamera) SetOpenError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.openErr = err
}

// FailNext makes the next n reads return ErrFrameUnavailable.
func (c *MockCamera) FailNext(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fails = n
}

// Reads returns how many reads were attempted while open.
func (c *MockCamera) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

// Reset restarts playback from the beginning
func (c *MockCamera) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = 0
}

// CloseFrames releases the source frames.
func (c *MockCamera) CloseFrames() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, f := range c.frames {
		if f != nil {
			f.Close()
		}
	}
	c.frames = nil
}
