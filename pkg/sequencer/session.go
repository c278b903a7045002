package sequencer

import "time"

// throttleStep is the per-tick throttle change during an auto test.
const throttleStep = 2

// holdMargin is how far above MaxPosition the tracked position climbs
// before the auto profile flips to descending. The servo output clamps at
// MaxPosition, so the overshoot ticks become the full-throttle hold.
func holdMargin(hold, period time.Duration) int {
	if period <= 0 {
		return 0
	}
	return throttleStep * int(hold/period)
}

// session is the state of one test run, from start press to log closure.
type session struct {
	name       string
	log        RowWriter
	start      time.Time
	lastOffset time.Duration // Offset of the most recent sample point
	maxForce   float64
	step       int // +throttleStep ascending, -throttleStep descending, 0 manual or done
	maxPos     int
}
