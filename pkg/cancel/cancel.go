// Package cancel provides the stop-request token shared between the input
// monitor and the operations it interrupts. A single token exists per
// control loop; it is tripped by a button press or an unrecoverable I/O
// error and consumed by exactly one pending wait or ramp.
package cancel

// Cause identifies who requested the stop.
type Cause int

const (
	// CauseNone means no stop has been requested.
	CauseNone Cause = iota
	// CauseInput means the operator pressed the button.
	CauseInput
	// CauseError means an unrecoverable I/O error occurred.
	CauseError
)

// Result is the outcome of a bounded wait or ramp.
type Result int

const (
	// Completed means the operation ran to its natural end.
	Completed Result = iota
	// Stopped means the operation was cancelled by operator input.
	Stopped
	// Failed means the operation was cancelled by an error.
	Failed
)

// Token is a single-consumer stop latch. It is not synchronized: the whole
// control loop is cooperatively scheduled on one goroutine, and the token
// must only be touched from it.
type Token struct {
	cause Cause
}

// NewToken returns a token in the "continue normally" state.
func NewToken() *Token {
	return &Token{}
}

// Trip records a stop request. The first cause wins; later trips with a
// different cause are ignored until the token is consumed.
func (t *Token) Trip(c Cause) {
	if t.cause == CauseNone {
		t.cause = c
	}
}

// Tripped reports whether a stop has been requested and not yet consumed.
func (t *Token) Tripped() bool {
	return t.cause != CauseNone
}

// Consume returns the pending cause and clears the token, so one stop
// request cancels exactly one operation and never leaks into the next.
func (t *Token) Consume() Cause {
	c := t.cause
	t.cause = CauseNone
	return c
}

// Outcome maps the pending cause to a Result and clears the token.
// Operations call this once, just before returning.
func (t *Token) Outcome() Result {
	switch t.Consume() {
	case CauseInput:
		return Stopped
	case CauseError:
		return Failed
	default:
		return Completed
	}
}
