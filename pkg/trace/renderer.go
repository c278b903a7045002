package trace

import (
	"image/color"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"github.com/chewxy/math32"
)

// traceRenderer renders the trace widget.
type traceRenderer struct {
	trace *Widget

	bg *canvas.Rectangle

	objects []fyne.CanvasObject

	lastSize fyne.Size
}

// MinSize returns the minimum size of the widget.
func (r *traceRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 300)
}

// Layout arranges the widget components.
func (r *traceRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)

	if r.lastSize.Width != size.Width || r.lastSize.Height != size.Height {
		r.lastSize = size
		// Redraw with the new dimensions through Fyne's refresh cycle.
		r.trace.BaseWidget.Refresh()
	}
}

// Refresh redraws the trace from the display buffer.
func (r *traceRenderer) Refresh() {
	r.trace.mu.RLock()
	points := r.trace.display
	yMin := r.trace.yMin
	yMax := r.trace.yMax
	xMin := r.trace.xMin
	xMax := r.trace.xMax
	maxForce := r.trace.maxForce
	r.trace.mu.RUnlock()

	size := r.trace.Size()
	if size.Width == 0 || size.Height == 0 {
		return
	}

	r.objects = []fyne.CanvasObject{r.bg}

	marginLeft := float32(60.0)
	marginRight := float32(40.0)
	marginTop := float32(20.0)
	marginBottom := float32(40.0)

	plotW := size.Width - marginLeft - marginRight
	plotH := size.Height - marginTop - marginBottom
	plotX := marginLeft
	plotY := marginTop

	r.drawGrid(plotX, plotY, plotW, plotH, yMin, yMax, xMin, xMax)

	if len(points) > 1 {
		r.drawForceLine(plotX, plotY, plotW, plotH, points, yMin, yMax, xMin, xMax)
		r.drawThrottleLine(plotX, plotY, plotW, plotH, points, xMin, xMax)
	}

	if maxForce > 0 {
		r.drawMaxLabel(plotX, plotY, maxForce)
	}
}

// drawGrid draws the plot grid with force and time labels.
func (r *traceRenderer) drawGrid(plotX, plotY, plotW, plotH float32, yMin, yMax float32, xMin, xMax time.Time) {
	gridColor := color.RGBA{R: 40, G: 40, B: 40, A: 255}
	labelColor := color.RGBA{R: 150, G: 150, B: 150, A: 255}

	numHLines := 8
	for i := 0; i <= numHLines; i++ {
		y := plotY + float32(i)*plotH/float32(numHLines)
		line := canvas.NewLine(gridColor)
		line.Position1 = fyne.NewPos(plotX, y)
		line.Position2 = fyne.NewPos(plotX+plotW, y)
		line.StrokeWidth = 1
		r.objects = append(r.objects, line)

		value := yMax - float32(i)*(yMax-yMin)/float32(numHLines)
		text := canvas.NewText(formatForceLabel(value), labelColor)
		text.TextSize = 10
		text.Alignment = fyne.TextAlignTrailing
		text.Move(fyne.NewPos(plotX-5, y-6))
		r.objects = append(r.objects, text)
	}

	numVLines := 10
	for i := 0; i <= numVLines; i++ {
		x := plotX + float32(i)*plotW/float32(numVLines)
		line := canvas.NewLine(gridColor)
		line.Position1 = fyne.NewPos(x, plotY)
		line.Position2 = fyne.NewPos(x, plotY+plotH)
		line.StrokeWidth = 1
		r.objects = append(r.objects, line)

		offset := xMax.Sub(xMin) * time.Duration(i) / time.Duration(numVLines)
		text := canvas.NewText(formatTimeLabel(offset), labelColor)
		text.TextSize = 10
		text.Alignment = fyne.TextAlignCenter
		text.Move(fyne.NewPos(x-20, plotY+plotH+5))
		r.objects = append(r.objects, text)
	}
}

// drawForceLine draws the force curve (orange).
func (r *traceRenderer) drawForceLine(plotX, plotY, plotW, plotH float32, points []Point, yMin, yMax float32, xMin, xMax time.Time) {
	span := float32(xMax.Sub(xMin).Seconds())
	if span == 0 || yMax == yMin {
		return
	}

	prev := fyne.Position{}
	for i, p := range points {
		x := plotX + float32(p.Timestamp.Sub(xMin).Seconds())/span*plotW
		y := plotY + plotH - (float32(p.Force)-yMin)/(yMax-yMin)*plotH
		pos := fyne.NewPos(x, y)
		if i > 0 {
			line := canvas.NewLine(color.RGBA{R: 255, G: 165, B: 0, A: 255})
			line.Position1 = prev
			line.Position2 = pos
			line.StrokeWidth = 1.5
			r.objects = append(r.objects, line)
		}
		prev = pos
	}
}

// drawThrottleLine draws the commanded throttle curve (light blue), scaled
// to the 0..180 servo range on its own axis.
func (r *traceRenderer) drawThrottleLine(plotX, plotY, plotW, plotH float32, points []Point, xMin, xMax time.Time) {
	span := float32(xMax.Sub(xMin).Seconds())
	if span == 0 {
		return
	}

	prev := fyne.Position{}
	for i, p := range points {
		x := plotX + float32(p.Timestamp.Sub(xMin).Seconds())/span*plotW
		y := plotY + plotH - float32(p.Pos)/180*plotH
		pos := fyne.NewPos(x, y)
		if i > 0 {
			line := canvas.NewLine(color.RGBA{R: 100, G: 200, B: 255, A: 255})
			line.Position1 = prev
			line.Position2 = pos
			line.StrokeWidth = 2
			r.objects = append(r.objects, line)
		}
		prev = pos
	}
}

// drawMaxLabel shows the running maximum in the top-left plot corner.
func (r *traceRenderer) drawMaxLabel(plotX, plotY float32, maxForce float64) {
	text := canvas.NewText("max "+formatForceLabel(float32(maxForce)), color.RGBA{R: 200, G: 200, B: 200, A: 255})
	text.TextSize = 11
	text.Alignment = fyne.TextAlignLeading
	text.Move(fyne.NewPos(plotX+10, plotY+10))
	r.objects = append(r.objects, text)
}

// Objects returns all canvas objects for rendering.
func (r *traceRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *traceRenderer) Destroy() {
}

func formatForceLabel(v float32) string {
	if math32.Abs(v) < 100 {
		return strconv.FormatFloat(float64(v), 'f', 1, 32)
	}
	return strconv.FormatFloat(float64(v), 'f', 0, 32)
}

func formatTimeLabel(d time.Duration) string {
	if d < time.Second {
		return strconv.FormatFloat(d.Seconds(), 'f', 2, 64) + "s"
	}
	return strconv.FormatFloat(d.Seconds(), 'f', 1, 64) + "s"
}
