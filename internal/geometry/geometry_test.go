package geometry

import (
	"math"
	"testing"

	"github.com/ayusman/signova/internal/detector"
)

const epsilon = 1e-9

func samplePoints() []Point {
	hand := detector.OpenPalmLandmarks()
	return LandmarkPoints(hand, 640, 480)
}

func TestBoundingRect(t *testing.T) {
	tests := []struct {
		name   string
		points []Point
		want   Rect
	}{
		{
			name:   "single point",
			points: []Point{{X: 5, Y: 7}},
			want:   Rect{MinX: 5, MinY: 7, MaxX: 5, MaxY: 7},
		},
		{
			name:   "spread points",
			points: []Point{{X: 10, Y: 40}, {X: 3, Y: 50}, {X: 25, Y: 12}},
			want:   Rect{MinX: 3, MinY: 12, MaxX: 25, MaxY: 50},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BoundingRect(tt.points); got != tt.want {
				t.Errorf("BoundingRect() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBoundingRect_EmptyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for empty input")
		}
	}()
	BoundingRect(nil)
}

func TestLandmarkPoints_Clamped(t *testing.T) {
	hand := detector.HandLandmarks{}
	hand.Points[0] = detector.Point{X: 1.0, Y: 1.0}
	hand.Points[1] = detector.Point{X: -0.2, Y: 0.5}

	points := LandmarkPoints(hand, 640, 480)

	if len(points) != detector.NumLandmarks {
		t.Fatalf("expected %d points, got %d", detector.NumLandmarks, len(points))
	}
	if points[0] != (Point{X: 639, Y: 479}) {
		t.Errorf("points[0] = %+v, want {639 479}", points[0])
	}
	if points[1] != (Point{X: 0, Y: 240}) {
		t.Errorf("points[1] = %+v, want {0 240}", points[1])
	}
}

func TestNormalizePose(t *testing.T) {
	t.Run("wrist is origin and values bounded", func(t *testing.T) {
		vec := NormalizePose(samplePoints())

		if len(vec) != PoseVectorLen {
			t.Fatalf("len = %d, want %d", len(vec), PoseVectorLen)
		}
		if vec[0] != 0 || vec[1] != 0 {
			t.Errorf("wrist = (%v, %v), want (0, 0)", vec[0], vec[1])
		}

		var maxAbs float64
		for _, v := range vec {
			maxAbs = math.Max(maxAbs, math.Abs(v))
		}
		if math.Abs(maxAbs-1.0) > epsilon {
			t.Errorf("max |component| = %v, want 1", maxAbs)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		points := samplePoints()
		a := NormalizePose(points)
		b := NormalizePose(points)
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("component %d differs: %v vs %v", i, a[i], b[i])
			}
		}
	})

	t.Run("scale invariant", func(t *testing.T) {
		points := samplePoints()
		scaled := make([]Point, len(points))
		for i, p := range points {
			scaled[i] = Point{X: p.X * 3, Y: p.Y * 3}
		}

		a := NormalizePose(points)
		b := NormalizePose(scaled)
		for i := range a {
			if math.Abs(a[i]-b[i]) > epsilon {
				t.Fatalf("component %d: %v vs %v", i, a[i], b[i])
			}
		}
	})

	t.Run("translation invariant", func(t *testing.T) {
		points := samplePoints()
		moved := make([]Point, len(points))
		for i, p := range points {
			moved[i] = Point{X: p.X + 17, Y: p.Y - 9}
		}

		a := NormalizePose(points)
		b := NormalizePose(moved)
		for i := range a {
			if math.Abs(a[i]-b[i]) > epsilon {
				t.Fatalf("component %d: %v vs %v", i, a[i], b[i])
			}
		}
	})

	t.Run("degenerate input stays zero", func(t *testing.T) {
		points := make([]Point, detector.NumLandmarks)
		for i := range points {
			points[i] = Point{X: 42, Y: 42}
		}
		for i, v := range NormalizePose(points) {
			if v != 0 {
				t.Fatalf("component %d = %v, want 0", i, v)
			}
		}
	})
}

func TestNormalizeTrajectory(t *testing.T) {
	t.Run("empty history is zeros", func(t *testing.T) {
		vec := NormalizeTrajectory(640, 480, nil)
		if len(vec) != TrajectoryVectorLen {
			t.Fatalf("len = %d, want %d", len(vec), TrajectoryVectorLen)
		}
		for i, v := range vec {
			if v != 0 {
				t.Fatalf("component %d = %v, want 0", i, v)
			}
		}
	})

	t.Run("all origin is zeros", func(t *testing.T) {
		h := NewPointHistory(HistoryLength)
		for _, v := range NormalizeTrajectory(640, 480, h.Points()) {
			if v != 0 {
				t.Fatalf("expected zeros, got %v", v)
			}
		}
	})

	t.Run("length invariant for any number of tracked points", func(t *testing.T) {
		for tracked := 0; tracked <= HistoryLength; tracked++ {
			h := NewPointHistory(HistoryLength)
			for i := 0; i < tracked; i++ {
				h.Push(Point{X: 100 + i, Y: 200 - i})
			}
			if got := len(NormalizeTrajectory(640, 480, h.Points())); got != TrajectoryVectorLen {
				t.Errorf("tracked=%d: len = %d, want %d", tracked, got, TrajectoryVectorLen)
			}
		}
	})

	t.Run("relative to first tracked point", func(t *testing.T) {
		h := NewPointHistory(HistoryLength)
		h.Push(Point{X: 320, Y: 240})
		h.Push(Point{X: 384, Y: 288})

		vec := NormalizeTrajectory(640, 480, h.Points())

		// last two entries: reference point then the moved point
		n := TrajectoryVectorLen
		if vec[n-4] != 0 || vec[n-3] != 0 {
			t.Errorf("reference point = (%v, %v), want (0, 0)", vec[n-4], vec[n-3])
		}
		if math.Abs(vec[n-2]-0.1) > epsilon || math.Abs(vec[n-1]-0.1) > epsilon {
			t.Errorf("moved point = (%v, %v), want (0.1, 0.1)", vec[n-2], vec[n-1])
		}
		// origin sentinels before the reference are expressed relative to it
		if math.Abs(vec[0]-(-0.5)) > epsilon || math.Abs(vec[1]-(-0.5)) > epsilon {
			t.Errorf("sentinel = (%v, %v), want (-0.5, -0.5)", vec[0], vec[1])
		}
	})

	t.Run("zero dimensions yield zero axis", func(t *testing.T) {
		history := []Point{{X: 10, Y: 10}, {X: 20, Y: 30}}
		vec := NormalizeTrajectory(0, 100, history)
		for i := 0; i < len(vec); i += 2 {
			if vec[i] != 0 {
				t.Fatalf("x component %d = %v, want 0", i, vec[i])
			}
		}
		if math.Abs(vec[len(vec)-1]-0.2) > epsilon {
			t.Errorf("last y = %v, want 0.2", vec[len(vec)-1])
		}
	})

	t.Run("short history padded to full length", func(t *testing.T) {
		vec := NormalizeTrajectory(100, 100, []Point{{X: 50, Y: 50}})
		if len(vec) != TrajectoryVectorLen {
			t.Fatalf("len = %d, want %d", len(vec), TrajectoryVectorLen)
		}
		if vec[len(vec)-2] != 0 || vec[len(vec)-1] != 0 {
			t.Error("reference point should be zero")
		}
	})

	t.Run("long history keeps newest", func(t *testing.T) {
		history := make([]Point, HistoryLength+4)
		for i := range history {
			history[i] = Point{X: 10 * (i + 1), Y: 10}
		}
		vec := NormalizeTrajectory(100, 100, history)
		if len(vec) != TrajectoryVectorLen {
			t.Fatalf("len = %d, want %d", len(vec), TrajectoryVectorLen)
		}
		// first kept point becomes the reference
		if vec[0] != 0 {
			t.Errorf("vec[0] = %v, want 0", vec[0])
		}
	})
}
