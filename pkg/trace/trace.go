// Package trace provides a Fyne widget that plots the force trace of the
// current test run, with the commanded throttle position overlaid.
package trace

import (
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/chewxy/math32"
)

// DefaultWindow is how much history the trace keeps when the caller does
// not specify a window.
const DefaultWindow = 60 * time.Second

// Point is one plotted measurement.
type Point struct {
	Timestamp time.Time
	Force     float64
	Pos       int // Commanded throttle position, 0..180
}

// Widget is a custom Fyne widget that displays the force trace.
type Widget struct {
	widget.BaseWidget

	window time.Duration

	// Data (protected by mu)
	mu     sync.RWMutex
	points []Point

	// Display buffer (reused for downsampling)
	display []Point

	// Auto-scaling
	yMin, yMax float32
	xMin, xMax time.Time

	maxForce float64

	maxDisplayPoints int
}

// New creates a trace widget keeping the given history window.
func New(window time.Duration) *Widget {
	if window <= 0 {
		window = DefaultWindow
	}
	w := &Widget{
		window:           window,
		points:           make([]Point, 0, 1024),
		display:          make([]Point, 0, 1000),
		maxDisplayPoints: 1000, // Limit points for efficient rendering
	}
	w.ExtendBaseWidget(w)
	w.Refresh()
	return w
}

// Append adds one measurement and redraws. Call from the UI goroutine
// (via fyne.Do when feeding from the sampling pipeline).
func (w *Widget) Append(p Point) {
	w.mu.Lock()

	w.points = append(w.points, p)
	cutoff := p.Timestamp.Add(-w.window)
	drop := 0
	for drop < len(w.points) && w.points[drop].Timestamp.Before(cutoff) {
		drop++
	}
	if drop > 0 {
		w.points = append(w.points[:0], w.points[drop:]...)
	}

	if p.Force > w.maxForce {
		w.maxForce = p.Force
	}

	w.display = downsample(w.display, w.points, w.maxDisplayPoints)
	w.updateAutoScale()

	w.mu.Unlock()

	// Refresh must run outside the lock.
	w.Refresh()
}

// Reset clears the trace for a new test run.
func (w *Widget) Reset() {
	w.mu.Lock()
	w.points = w.points[:0]
	w.display = w.display[:0]
	w.maxForce = 0
	w.updateAutoScale()
	w.mu.Unlock()
	w.Refresh()
}

// MaxForce returns the largest force seen since the last Reset.
func (w *Widget) MaxForce() float64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.maxForce
}

// updateAutoScale recomputes the Y range from the display buffer.
// Caller holds mu.
func (w *Widget) updateAutoScale() {
	if len(w.display) == 0 {
		w.yMin = 0
		w.yMax = 1
		w.xMin = time.Now()
		w.xMax = w.xMin.Add(w.window)
		return
	}

	w.yMin = float32(w.display[0].Force)
	w.yMax = w.yMin
	for _, p := range w.display {
		w.yMin = math32.Min(w.yMin, float32(p.Force))
		w.yMax = math32.Max(w.yMax, float32(p.Force))
	}

	// 10% margin so the curve never touches the frame.
	span := w.yMax - w.yMin
	if span == 0 {
		span = 1
	}
	w.yMin -= span * 0.1
	w.yMax += span * 0.1

	w.xMin = w.display[0].Timestamp
	w.xMax = w.display[len(w.display)-1].Timestamp
	if w.xMax.Sub(w.xMin) < w.window {
		w.xMax = w.xMin.Add(w.window)
	}
}

// downsample reduces src to at most max points, reusing dst's backing
// array. Every kept point is a real measurement; no averaging.
func downsample(dst, src []Point, max int) []Point {
	dst = dst[:0]
	if len(src) <= max {
		return append(dst, src...)
	}
	stride := float32(len(src)) / float32(max)
	for i := 0; i < max; i++ {
		idx := int(math32.Floor(float32(i) * stride))
		if idx >= len(src) {
			idx = len(src) - 1
		}
		dst = append(dst, src[idx])
	}
	// Always keep the newest point so the trace edge is live.
	dst[len(dst)-1] = src[len(src)-1]
	return dst
}

// CreateRenderer creates the widget renderer.
func (w *Widget) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255})
	return &traceRenderer{
		trace:   w,
		bg:      bg,
		objects: []fyne.CanvasObject{bg},
	}
}
