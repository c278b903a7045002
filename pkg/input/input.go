// Package input monitors the momentary stand button. Its bounded wait is
// the only cancellation path in the system: every delay the sequencer takes
// goes through Monitor.Wait so a button press is never missed.
package input

import (
	"time"

	"github.com/itohio/gostand/pkg/cancel"
)

// DefaultPollInterval is the button polling granularity.
const DefaultPollInterval = 50 * time.Millisecond

// Button reports the momentary switch state. Implementations must be safe
// to poll from the control loop while being updated elsewhere (GUI thread,
// GPIO callback).
type Button interface {
	Pressed() bool
}

// Monitor polls a Button at a fixed granularity and converts presses into
// cancellation trips.
type Monitor struct {
	btn  Button
	poll time.Duration
}

// New creates a Monitor with the default 50 ms poll interval.
func New(btn Button) *Monitor {
	return NewWithPoll(btn, DefaultPollInterval)
}

// NewWithPoll creates a Monitor with a custom poll interval (tests use a
// short one).
func NewWithPoll(btn Button, poll time.Duration) *Monitor {
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	return &Monitor{btn: btn, poll: poll}
}

// Wait blocks up to max, polling the button. A press trips the token at
// most once per call. With requireFull false the wait ends as soon as a
// press-and-release has been observed; with requireFull true the full
// duration is always consumed, though a press still trips the token.
// The pending trip, if any, is consumed and reported as the result, so a
// single press cancels exactly this wait and nothing after it.
func (m *Monitor) Wait(tok *cancel.Token, max time.Duration, requireFull bool) cancel.Result {
	deadline := time.Now().Add(max)
	pressSeen := false
	released := false

	for {
		pressed := m.btn.Pressed()
		if pressed && !pressSeen {
			pressSeen = true
			tok.Trip(cancel.CauseInput)
		}
		if pressSeen && !pressed {
			released = true
		}
		if !requireFull && pressSeen && released {
			break
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		if remaining < m.poll {
			time.Sleep(remaining)
		} else {
			time.Sleep(m.poll)
		}
	}

	if pressSeen || tok.Tripped() {
		return tok.Outcome()
	}
	return cancel.Completed
}

// AwaitPress blocks until a press-and-release is observed, consuming the
// resulting trip. Used where the operator must explicitly acknowledge a
// condition before the system proceeds.
func (m *Monitor) AwaitPress(tok *cancel.Token) {
	for m.Wait(tok, time.Hour, false) != cancel.Stopped {
	}
}
