package sequencer

import (
	"math"
	"strconv"
)

// FormatForce renders a force value for the fixed-width display: one
// decimal place while the magnitude fits, whole units above 100 so the
// field never overflows its 16-character line.
func FormatForce(v float64) string {
	if math.Abs(v) < 100 {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', 0, 64)
}
