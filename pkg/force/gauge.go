package force

import (
	"errors"
	"sync"
)

// ErrNoReading indicates the gauge has not yet received a measurement.
var ErrNoReading = errors.New("no force reading received yet")

// Gauge consumes the calibrated sample stream and exposes the most recent
// value. It gives the sequencer its "read one force measurement" primitive
// without blocking the control loop on the serial stream.
type Gauge struct {
	mu     sync.RWMutex
	last   Sample
	seen   bool
	offset float64
}

// NewGauge creates an empty gauge.
func NewGauge() *Gauge {
	return &Gauge{}
}

// Consume processes samples from the input channel until it closes.
// Run it in its own goroutine.
func (g *Gauge) Consume(in <-chan Sample) {
	for s := range in {
		g.mu.Lock()
		g.last = s
		g.seen = true
		g.mu.Unlock()
	}
}

// Read returns the latest tared force. ErrNoReading until the first sample
// arrives.
func (g *Gauge) Read() (float64, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.seen {
		return 0, ErrNoReading
	}
	return g.last.Force - g.offset, nil
}

// Tare zeroes the gauge at the current reading, so the stand's own weight
// reads as 0 before a test.
func (g *Gauge) Tare() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.seen {
		return ErrNoReading
	}
	g.offset = g.last.Force
	return nil
}

// Latest returns the most recent raw (untared) sample, if any. The trace
// widget uses it for plotting.
func (g *Gauge) Latest() (Sample, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.last, g.seen
}
