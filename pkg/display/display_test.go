package display

import (
	"testing"
	"time"

	"github.com/itohio/gostand/pkg/cancel"
	"github.com/stretchr/testify/assert"
)

type countWaiter struct {
	waits     int
	stopAfter int
}

func (w *countWaiter) Wait(tok *cancel.Token, max time.Duration, requireFull bool) cancel.Result {
	w.waits++
	if w.stopAfter > 0 && w.waits >= w.stopAfter {
		return cancel.Stopped
	}
	return cancel.Completed
}

func TestFit(t *testing.T) {
	assert.Equal(t, "short", Fit("short"))
	assert.Equal(t, "0123456789abcdef", Fit("0123456789abcdefOVERFLOW"))
}

func TestBuffer_TopClearsBottom(t *testing.T) {
	b := NewBuffer()
	b.WriteTop("Ready")
	b.WriteBottom("Press to start")

	b.WriteTop("Running")
	top, bottom := b.Lines()
	assert.Equal(t, "Running", top)
	assert.Empty(t, bottom, "writing the top line clears the whole display")

	b.WriteBottom("Max 45.3")
	top, bottom = b.Lines()
	assert.Equal(t, "Running", top, "bottom writes update in place")
	assert.Equal(t, "Max 45.3", bottom)
}

func TestBuffer_OnChange(t *testing.T) {
	b := NewBuffer()
	var gotTop, gotBottom string
	b.OnChange(func(top, bottom string) { gotTop, gotBottom = top, bottom })

	b.WriteTop("F 12.0")
	b.WriteBottom("Max 12.0")

	assert.Equal(t, "F 12.0", gotTop)
	assert.Equal(t, "Max 12.0", gotBottom)
}

func TestScroll_PagesTwoLinesAtATime(t *testing.T) {
	b := NewBuffer()
	w := &countWaiter{}

	res := Scroll(b, w, cancel.NewToken(), "one\ntwo\nthree", time.Millisecond)

	assert.Equal(t, cancel.Completed, res)
	assert.Equal(t, 2, w.waits, "one dwell per page")
	top, bottom := b.Lines()
	assert.Equal(t, "three", top)
	assert.Empty(t, bottom)
}

func TestScroll_Interrupted(t *testing.T) {
	b := NewBuffer()
	w := &countWaiter{stopAfter: 1}

	res := Scroll(b, w, cancel.NewToken(), "one\ntwo\nthree\nfour", time.Millisecond)

	assert.Equal(t, cancel.Stopped, res)
	top, _ := b.Lines()
	assert.Equal(t, "one", top, "interrupt stops on the current page")
}
