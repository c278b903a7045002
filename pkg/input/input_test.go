package input

import (
	"sync"
	"testing"
	"time"

	"github.com/itohio/gostand/pkg/cancel"
	"github.com/stretchr/testify/assert"
)

// scriptButton reads pressed for polls in [pressFrom, pressTo).
type scriptButton struct {
	mu        sync.Mutex
	polls     int
	pressFrom int
	pressTo   int
}

func (b *scriptButton) Pressed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.polls++
	return b.polls > b.pressFrom && b.polls <= b.pressTo
}

func TestWait_NoPressConsumesFullDuration(t *testing.T) {
	m := NewWithPoll(&scriptButton{}, time.Millisecond)
	tok := cancel.NewToken()

	start := time.Now()
	res := m.Wait(tok, 30*time.Millisecond, false)

	assert.Equal(t, cancel.Completed, res)
	assert.False(t, tok.Tripped())
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestWait_PressAndReleaseEndsEarly(t *testing.T) {
	btn := &scriptButton{pressFrom: 2, pressTo: 4}
	m := NewWithPoll(btn, time.Millisecond)
	tok := cancel.NewToken()

	start := time.Now()
	res := m.Wait(tok, time.Second, false)

	assert.Equal(t, cancel.Stopped, res)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.False(t, tok.Tripped(), "wait must consume the trip before returning")
}

func TestWait_RequireFullStillReportsPress(t *testing.T) {
	btn := &scriptButton{pressFrom: 1, pressTo: 3}
	m := NewWithPoll(btn, time.Millisecond)
	tok := cancel.NewToken()

	start := time.Now()
	res := m.Wait(tok, 25*time.Millisecond, true)

	assert.Equal(t, cancel.Stopped, res)
	assert.GreaterOrEqual(t, time.Since(start), 25*time.Millisecond,
		"requireFull waits must consume the whole duration")
}

func TestWait_ZeroDurationPollsOnce(t *testing.T) {
	btn := &scriptButton{pressFrom: 0, pressTo: 1}
	m := NewWithPoll(btn, time.Millisecond)
	tok := cancel.NewToken()

	// Even a zero-length wait samples the button once, so a held button is
	// still noticed between ticks.
	res := m.Wait(tok, 0, true)
	assert.Equal(t, cancel.Stopped, res)
}

func TestAwaitPress(t *testing.T) {
	btn := &scriptButton{pressFrom: 3, pressTo: 5}
	m := NewWithPoll(btn, time.Millisecond)
	tok := cancel.NewToken()

	done := make(chan struct{})
	go func() {
		m.AwaitPress(tok)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("AwaitPress did not return after a press")
	}
	assert.False(t, tok.Tripped())
}

func TestMomentary(t *testing.T) {
	btn := NewMomentary(20 * time.Millisecond)
	assert.False(t, btn.Pressed())

	btn.Press()
	assert.True(t, btn.Pressed())

	time.Sleep(30 * time.Millisecond)
	assert.False(t, btn.Pressed(), "momentary button releases itself")
}
