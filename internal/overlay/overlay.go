// Package overlay draws recognition diagnostics onto camera frames.
package overlay

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/signova/internal/detector"
	"github.com/ayusman/signova/internal/geometry"
)

var (
	black     = color.RGBA{0, 0, 0, 255}
	white     = color.RGBA{255, 255, 255, 255}
	panel     = color.RGBA{50, 50, 50, 255}
	highlight = color.RGBA{255, 255, 0, 255}
	trail     = color.RGBA{152, 251, 152, 255}
	speaking  = color.RGBA{0, 255, 0, 255}
)

// Hand is one detected hand in pixel coordinates.
type Hand struct {
	Points     []geometry.Point
	Rect       geometry.Rect
	Handedness string
	Label      string
}

// Frame is everything drawn on one image.
type Frame struct {
	Hands       []Hand
	History     []geometry.Point
	FPS         float64
	Motion      string
	Sentence    string
	Translation string
	// Highlight marks a word committed within the last half second.
	Highlight bool
	Speaking  bool
	// Mode is shown when sample logging is active.
	Mode    string
	ClassID int
}

// Draw renders f onto img in place.
func Draw(img *gocv.Mat, f Frame) {
	if img == nil || img.Empty() {
		return
	}

	for _, h := range f.Hands {
		drawRect(img, h.Rect)
		drawLandmarks(img, h.Points)
		drawHandLabel(img, h)
	}
	drawHistory(img, f.History)
	drawInfo(img, f)
	drawSentence(img, f)
}

func pt(p geometry.Point) image.Point {
	return image.Point{X: p.X, Y: p.Y}
}

func drawLandmarks(img *gocv.Mat, points []geometry.Point) {
	if len(points) < detector.NumLandmarks {
		return
	}
	for _, c := range detector.Connections {
		a, b := pt(points[c[0]]), pt(points[c[1]])
		gocv.Line(img, a, b, black, 6)
		gocv.Line(img, a, b, white, 2)
	}
	for i, p := range points {
		radius := 5
		if detector.IsFingertip(i) {
			radius = 8
		}
		gocv.Circle(img, pt(p), radius, white, -1)
		gocv.Circle(img, pt(p), radius, black, 1)
	}
}

func drawRect(img *gocv.Mat, r geometry.Rect) {
	gocv.Rectangle(img, image.Rect(r.MinX, r.MinY, r.MaxX, r.MaxY), black, 1)
}

func drawHandLabel(img *gocv.Mat, h Hand) {
	gocv.Rectangle(img, image.Rect(h.Rect.MinX, h.Rect.MinY-22, h.Rect.MaxX, h.Rect.MinY), black, -1)
	text := h.Handedness
	if h.Label != "" {
		text = h.Handedness + ":" + h.Label
	}
	putText(img, text, image.Point{X: h.Rect.MinX + 5, Y: h.Rect.MinY - 4}, 0.6, white, 1)
}

func drawHistory(img *gocv.Mat, history []geometry.Point) {
	for i, p := range history {
		if p.IsOrigin() {
			continue
		}
		gocv.Circle(img, pt(p), 1+i/2, trail, 2)
	}
}

func drawInfo(img *gocv.Mat, f Frame) {
	outlined(img, fmt.Sprintf("FPS:%.2f", f.FPS), image.Point{X: 10, Y: 30}, 1.0)
	if f.Motion != "" {
		outlined(img, "Finger Gesture:"+f.Motion, image.Point{X: 10, Y: 60}, 1.0)
	}
	if f.Mode != "" {
		putText(img, "MODE:"+f.Mode, image.Point{X: 10, Y: 90}, 0.6, white, 1)
		putText(img, fmt.Sprintf("NUM:%d", f.ClassID), image.Point{X: 10, Y: 110}, 0.6, white, 1)
	}
	if f.Speaking {
		gocv.Circle(img, image.Point{X: 30, Y: 70}, 10, speaking, -1)
	}
}

func drawSentence(img *gocv.Mat, f Frame) {
	rows, cols := img.Rows(), img.Cols()
	top := rows - 150
	if top < 25 {
		top = 25
	}

	shade := img.Clone()
	defer shade.Close()
	gocv.Rectangle(&shade, image.Rect(0, top-25, cols, rows), panel, -1)
	gocv.AddWeighted(shade, 0.7, *img, 0.3, 0, img)

	if f.Sentence == "" {
		return
	}

	line := "Sentence: " + f.Sentence
	if f.Highlight {
		size := gocv.GetTextSize(line, gocv.FontHersheySimplex, 0.7, 2)
		gocv.Rectangle(img, image.Rect(5, top-size.Y-5, 10+size.X, top+5), highlight, 2)
	}
	putText(img, line, image.Point{X: 10, Y: top}, 0.7, white, 2)

	if f.Translation != "" && f.Translation != f.Sentence {
		putText(img, "Translation: "+f.Translation, image.Point{X: 10, Y: top + 25}, 0.6, white, 1)
	}
}

func outlined(img *gocv.Mat, text string, at image.Point, scale float64) {
	putText(img, text, at, scale, black, 4)
	putText(img, text, at, scale, white, 2)
}

func putText(img *gocv.Mat, text string, at image.Point, scale float64, c color.RGBA, thickness int) {
	gocv.PutTextWithParams(img, text, at, gocv.FontHersheySimplex, scale, c, thickness, gocv.LineAA, false)
}
