// Package geometry turns hand landmarks into the normalized feature vectors
// consumed by the pose and motion classifiers.
package geometry

import (
	"math"

	"github.com/ayusman/signova/internal/detector"
)

// Feature vector sizes.
const (
	PoseVectorLen       = detector.NumLandmarks * 2
	HistoryLength       = 16
	TrajectoryVectorLen = HistoryLength * 2
)

// Origin is the sentinel point meaning "no tracked point this frame".
var Origin = Point{}

// Point is a pixel coordinate in the source image.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// IsOrigin reports whether p is the origin sentinel.
func (p Point) IsOrigin() bool {
	return p == Origin
}

// Rect is an axis-aligned box in pixels.
type Rect struct {
	MinX int `json:"min_x"`
	MinY int `json:"min_y"`
	MaxX int `json:"max_x"`
	MaxY int `json:"max_y"`
}

// Width returns MaxX - MinX.
func (r Rect) Width() int { return r.MaxX - r.MinX }

// Height returns MaxY - MinY.
func (r Rect) Height() int { return r.MaxY - r.MinY }

// BoundingRect returns the smallest rectangle enclosing points.
// It panics on empty input.
func BoundingRect(points []Point) Rect {
	if len(points) == 0 {
		panic("geometry: BoundingRect of empty point set")
	}

	r := Rect{MinX: points[0].X, MinY: points[0].Y, MaxX: points[0].X, MaxY: points[0].Y}
	for _, p := range points[1:] {
		r.MinX = min(r.MinX, p.X)
		r.MinY = min(r.MinY, p.Y)
		r.MaxX = max(r.MaxX, p.X)
		r.MaxY = max(r.MaxY, p.Y)
	}
	return r
}

// LandmarkPoints converts normalized landmarks to pixel coordinates for an
// image of the given size, clamping each axis to [0, size-1].
func LandmarkPoints(hand detector.HandLandmarks, width, height int) []Point {
	points := make([]Point, detector.NumLandmarks)
	for i, lm := range hand.Points {
		points[i] = Point{
			X: toPixel(lm.X, width),
			Y: toPixel(lm.Y, height),
		}
	}
	return points
}

func toPixel(v float64, size int) int {
	if size <= 0 {
		return 0
	}
	px := int(v * float64(size))
	return max(0, min(px, size-1))
}

// NormalizePose translates points so the first one (the wrist) is the origin,
// flattens them to x0,y0,x1,y1,... and divides by the largest absolute
// component. A degenerate set (all points equal) stays unscaled.
func NormalizePose(points []Point) []float64 {
	if len(points) == 0 {
		return nil
	}

	base := points[0]
	vec := make([]float64, 0, len(points)*2)
	for _, p := range points {
		vec = append(vec, float64(p.X-base.X), float64(p.Y-base.Y))
	}

	var maxAbs float64
	for _, v := range vec {
		maxAbs = math.Max(maxAbs, math.Abs(v))
	}
	if maxAbs == 0 {
		return vec
	}

	for i := range vec {
		vec[i] /= maxAbs
	}
	return vec
}

// NormalizeTrajectory expresses the point history relative to its first
// non-origin point, scaled by the image size. The result always holds
// TrajectoryVectorLen values: shorter histories are padded at the front
// with origin points, longer ones keep the newest HistoryLength entries.
func NormalizeTrajectory(width, height int, history []Point) []float64 {
	vec := make([]float64, TrajectoryVectorLen)

	if len(history) > HistoryLength {
		history = history[len(history)-HistoryLength:]
	}

	base, ok := firstTracked(history)
	if !ok {
		return vec
	}

	offset := (HistoryLength - len(history)) * 2
	for i, p := range history {
		vec[offset+i*2] = scaleAxis(p.X-base.X, width)
		vec[offset+i*2+1] = scaleAxis(p.Y-base.Y, height)
	}

	// padding entries are origin points and are normalized like them
	for i := 0; i < offset/2; i++ {
		vec[i*2] = scaleAxis(-base.X, width)
		vec[i*2+1] = scaleAxis(-base.Y, height)
	}
	return vec
}

func firstTracked(history []Point) (Point, bool) {
	for _, p := range history {
		if !p.IsOrigin() {
			return p, true
		}
	}
	return Origin, false
}

func scaleAxis(delta, size int) float64 {
	if size <= 0 {
		return 0
	}
	return float64(delta) / float64(size)
}
