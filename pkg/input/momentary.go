package input

import (
	"sync"
	"time"
)

var _ Button = (*Momentary)(nil)

// Momentary adapts a one-shot trigger (GUI tap, keyboard hit) into a
// momentary switch: after Press the button reads pressed for a short hold
// window, then releases itself. The hold window must span at least one
// monitor poll interval or the press is lost.
type Momentary struct {
	mu    sync.Mutex
	until time.Time
	hold  time.Duration
}

// NewMomentary creates a self-releasing button with the given hold window.
func NewMomentary(hold time.Duration) *Momentary {
	if hold <= 0 {
		hold = 2 * DefaultPollInterval
	}
	return &Momentary{hold: hold}
}

// Press marks the button down for the hold window.
func (b *Momentary) Press() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.until = time.Now().Add(b.hold)
}

// Pressed reports whether the button is within a hold window.
func (b *Momentary) Pressed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return time.Now().Before(b.until)
}
