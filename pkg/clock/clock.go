// Package clock abstracts time reads so sequencing logic can be tested
// without real delays.
package clock

import "time"

// Clock provides time operations that can be mocked for testing.
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
}

// Real uses the standard time package.
type Real struct{}

func (Real) Now() time.Time                  { return time.Now() }
func (Real) Since(t time.Time) time.Duration { return time.Since(t) }

// Fake is a test clock that is advanced manually.
type Fake struct {
	current time.Time
}

// NewFake creates a fake clock starting at the given instant.
func NewFake(start time.Time) *Fake {
	return &Fake{current: start}
}

func (f *Fake) Now() time.Time                  { return f.current }
func (f *Fake) Since(t time.Time) time.Duration { return f.current.Sub(t) }
func (f *Fake) Advance(d time.Duration)         { f.current = f.current.Add(d) }
