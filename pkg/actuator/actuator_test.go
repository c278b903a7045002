package actuator

import (
	"errors"
	"testing"
	"time"

	"github.com/itohio/gostand/pkg/cancel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordServo records every commanded position.
type recordServo struct {
	commands []int
	err      error
}

func (s *recordServo) Command(pos int) error {
	if s.err != nil {
		return s.err
	}
	s.commands = append(s.commands, pos)
	return nil
}

// instantWaiter completes every wait immediately, optionally reporting a
// stop after a fixed number of waits.
type instantWaiter struct {
	waits     int
	stopAfter int // 0 = never stop
}

func (w *instantWaiter) Wait(tok *cancel.Token, max time.Duration, requireFull bool) cancel.Result {
	w.waits++
	if w.stopAfter > 0 && w.waits >= w.stopAfter {
		return cancel.Stopped
	}
	return cancel.Completed
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name string
		pos  int
		want int
	}{
		{name: "negative", pos: -5, want: 0},
		{name: "zero", pos: 0, want: 0},
		{name: "mid", pos: 90, want: 90},
		{name: "max", pos: 180, want: 180},
		{name: "hold margin", pos: 220, want: 180},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clamp(tt.pos))
		})
	}
}

func TestMove_TracksRawCommandsClamped(t *testing.T) {
	srv := &recordServo{}
	a := New(srv)

	require.NoError(t, a.Move(200))
	assert.Equal(t, 200, a.Position())
	assert.Equal(t, []int{180}, srv.commands)
}

func TestRampTo_ReachesTargetMonotonically(t *testing.T) {
	srv := &recordServo{}
	a := New(srv)
	tok := cancel.NewToken()

	res := a.RampTo(tok, &instantWaiter{}, 10, time.Millisecond)

	assert.Equal(t, cancel.Completed, res)
	assert.Equal(t, 10, a.Position())
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, srv.commands)
}

func TestRampTo_Descending(t *testing.T) {
	srv := &recordServo{}
	a := New(srv)
	require.NoError(t, a.Move(3))
	srv.commands = nil

	res := a.RampTo(cancel.NewToken(), &instantWaiter{}, 0, time.Millisecond)

	assert.Equal(t, cancel.Completed, res)
	assert.Equal(t, 0, a.Position())
	assert.Equal(t, []int{2, 1, 0}, srv.commands)
}

func TestRampTo_AlreadyAtTarget(t *testing.T) {
	srv := &recordServo{}
	a := New(srv)

	res := a.RampTo(cancel.NewToken(), &instantWaiter{}, 0, time.Millisecond)

	assert.Equal(t, cancel.Completed, res)
	assert.Empty(t, srv.commands, "no steps when already at target")
}

func TestRampTo_InterruptStopsWithoutOvershoot(t *testing.T) {
	srv := &recordServo{}
	a := New(srv)

	res := a.RampTo(cancel.NewToken(), &instantWaiter{stopAfter: 4}, 90, time.Millisecond)

	assert.Equal(t, cancel.Stopped, res)
	assert.Equal(t, 4, a.Position(), "ramp stops where the interrupt caught it")
	assert.Equal(t, []int{1, 2, 3, 4}, srv.commands, "no commands after the interrupt")
}

func TestRampTo_ServoErrorFails(t *testing.T) {
	srv := &recordServo{err: errors.New("pwm fault")}
	a := New(srv)
	tok := cancel.NewToken()

	res := a.RampTo(tok, &instantWaiter{}, 5, time.Millisecond)

	assert.Equal(t, cancel.Failed, res)
	assert.False(t, tok.Tripped(), "error trip is consumed by the ramp")
}
