package geometry

// PointHistory is a fixed-capacity FIFO of tracked points. It starts full of
// origin sentinels so it always holds exactly Cap entries.
type PointHistory struct {
	points []Point
	cap    int
}

// NewPointHistory creates a history of the given capacity, pre-filled with
// origin points. Non-positive capacities use HistoryLength.
func NewPointHistory(capacity int) *PointHistory {
	if capacity <= 0 {
		capacity = HistoryLength
	}
	return &PointHistory{
		points: make([]Point, capacity),
		cap:    capacity,
	}
}

// Push appends p, evicting the oldest entry.
func (h *PointHistory) Push(p Point) {
	copy(h.points, h.points[1:])
	h.points[h.cap-1] = p
}

// Points returns a copy of the entries, oldest first.
func (h *PointHistory) Points() []Point {
	out := make([]Point, len(h.points))
	copy(out, h.points)
	return out
}

// Tracked returns how many entries are not the origin sentinel.
func (h *PointHistory) Tracked() int {
	n := 0
	for _, p := range h.points {
		if !p.IsOrigin() {
			n++
		}
	}
	return n
}

// Len returns the capacity, which is also the number of entries.
func (h *PointHistory) Len() int {
	return h.cap
}

// Reset refills the history with origin points.
func (h *PointHistory) Reset() {
	clear(h.points)
}
