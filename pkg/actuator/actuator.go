// Package actuator owns the commanded throttle position and the
// interruptible ramp that moves it.
package actuator

import (
	"time"

	"github.com/itohio/gostand/pkg/cancel"
)

const (
	// MinPosition is the lowest servo command (idle throttle).
	MinPosition = 0
	// MaxPosition is the highest servo command.
	MaxPosition = 180
)

// Servo is the hardware output: command an angle in [0,180].
type Servo interface {
	Command(pos int) error
}

// Waiter performs a cancellable bounded wait; satisfied by input.Monitor.
type Waiter interface {
	Wait(tok *cancel.Token, max time.Duration, requireFull bool) cancel.Result
}

// Clamp bounds a position to the valid servo range. The tracked position
// may exceed MaxPosition during the full-throttle hold; the wire command
// and the log never do.
func Clamp(pos int) int {
	if pos < MinPosition {
		return MinPosition
	}
	if pos > MaxPosition {
		return MaxPosition
	}
	return pos
}

// Actuator tracks the commanded position. It is owned by the sequencer for
// the duration of a session and rests at 0 between tests.
type Actuator struct {
	out Servo
	pos int
}

// New creates an actuator at position 0. The servo itself is not commanded
// until the first Move.
func New(out Servo) *Actuator {
	return &Actuator{out: out}
}

// Position returns the tracked (unclamped) position.
func (a *Actuator) Position() int {
	return a.pos
}

// Move records pos and commands the servo with its clamped value.
func (a *Actuator) Move(pos int) error {
	a.pos = pos
	return a.out.Command(Clamp(pos))
}

// RampTo moves one degree per stepInterval toward target, checking for
// cancellation after every step. On cancellation the position stays
// wherever the ramp stopped. Completes within |target-start|*stepInterval.
func (a *Actuator) RampTo(tok *cancel.Token, w Waiter, target int, stepInterval time.Duration) cancel.Result {
	for a.pos != target {
		next := a.pos + 1
		if target < a.pos {
			next = a.pos - 1
		}
		if err := a.Move(next); err != nil {
			tok.Trip(cancel.CauseError)
			return tok.Outcome()
		}
		if res := w.Wait(tok, stepInterval, false); res != cancel.Completed {
			return res
		}
	}
	return cancel.Completed
}
