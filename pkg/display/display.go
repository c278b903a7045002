// Package display defines the two-line status display contract and a
// buffered implementation the GUI front panel and tests observe.
package display

import (
	"log"
	"strings"
	"sync"
	"time"

	"github.com/itohio/gostand/pkg/cancel"
)

// Width is the character capacity of one physical display line.
const Width = 16

// ScrollDwell is how long each page of scrolled text stays visible.
const ScrollDwell = 2 * time.Second

// Display is the status panel: writing the top line clears the whole
// display first, writing the bottom line updates it in place.
type Display interface {
	WriteTop(s string)
	WriteBottom(s string)
}

// Waiter performs a cancellable bounded wait; satisfied by input.Monitor.
type Waiter interface {
	Wait(tok *cancel.Token, max time.Duration, requireFull bool) cancel.Result
}

// Fit truncates a line to the display width.
func Fit(s string) string {
	if len(s) > Width {
		return s[:Width]
	}
	return s
}

// Scroll splits text on line breaks and shows it two lines at a time,
// dwelling on each page until the dwell elapses or the operator interrupts.
func Scroll(d Display, w Waiter, tok *cancel.Token, text string, dwell time.Duration) cancel.Result {
	if dwell <= 0 {
		dwell = ScrollDwell
	}
	lines := strings.Split(text, "\n")
	for i := 0; i < len(lines); i += 2 {
		d.WriteTop(lines[i])
		if i+1 < len(lines) {
			d.WriteBottom(lines[i+1])
		}
		if res := w.Wait(tok, dwell, false); res != cancel.Completed {
			return res
		}
	}
	return cancel.Completed
}

var _ Display = (*Buffer)(nil)

// Buffer holds the current display contents and notifies an observer on
// change. The GUI mirrors it; tests read it back.
type Buffer struct {
	mu       sync.Mutex
	top      string
	bottom   string
	onChange func(top, bottom string)
}

// NewBuffer creates an empty display buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// OnChange registers the observer called after every write. The callback
// must not write back into the buffer.
func (b *Buffer) OnChange(fn func(top, bottom string)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onChange = fn
}

// WriteTop clears the display and sets the top line.
func (b *Buffer) WriteTop(s string) {
	b.mu.Lock()
	b.top = Fit(s)
	b.bottom = ""
	fn, top, bottom := b.onChange, b.top, b.bottom
	b.mu.Unlock()
	if fn != nil {
		fn(top, bottom)
	}
}

// WriteBottom updates the bottom line in place.
func (b *Buffer) WriteBottom(s string) {
	b.mu.Lock()
	b.bottom = Fit(s)
	fn, top, bottom := b.onChange, b.top, b.bottom
	b.mu.Unlock()
	if fn != nil {
		fn(top, bottom)
	}
}

// Lines returns the current display contents.
func (b *Buffer) Lines() (top, bottom string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.top, b.bottom
}

var _ Display = (*Logged)(nil)

// Logged mirrors every display write to the process log. Used in verbose
// mode so a headless run still shows operator notices.
type Logged struct {
	next Display
}

// NewLogged wraps a display with log mirroring.
func NewLogged(next Display) *Logged {
	return &Logged{next: next}
}

func (l *Logged) WriteTop(s string) {
	log.Printf("display: %q", s)
	l.next.WriteTop(s)
}

func (l *Logged) WriteBottom(s string) {
	log.Printf("display:   %q", s)
	l.next.WriteBottom(s)
}
