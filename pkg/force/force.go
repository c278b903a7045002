// Package force converts raw load cell counts into calibrated force
// samples and holds the latest value for the sequencer's synchronous
// reads.
package force

import (
	"time"

	"github.com/itohio/gostand/pkg/config"
	"github.com/itohio/gostand/pkg/rig"
)

// Sample is a calibrated force measurement.
type Sample struct {
	Timestamp time.Time
	Force     float64 // Calibrated force units
}

// Converter is a function type that converts a RawReading channel to a Sample channel.
type Converter func(in <-chan rig.RawReading) <-chan Sample

// NewConverter creates a converter applying the calibration scale factor.
func NewConverter(cfg *config.Config, bufSize int) Converter {
	if bufSize <= 0 {
		bufSize = 100
	}
	scale := cfg.Calibration.Scale

	return func(in <-chan rig.RawReading) <-chan Sample {
		out := make(chan Sample, bufSize)

		go func() {
			defer close(out)

			for raw := range in {
				out <- Sample{
					Timestamp: raw.Timestamp,
					Force:     float64(raw.Counts) * scale,
				}
			}
		}()

		return out
	}
}

// NewAveragingConverter creates a converter stage that smooths already
// calibrated samples with a moving average over windowSize samples. Load
// cell bridges are noisy; averaging trades a little lag for stable digits.
func NewAveragingConverter(windowSize int, bufSize int) func(in <-chan Sample) <-chan Sample {
	if windowSize <= 0 {
		windowSize = 1
	}
	if bufSize <= 0 {
		bufSize = 100
	}

	return func(in <-chan Sample) <-chan Sample {
		out := make(chan Sample, bufSize)

		go func() {
			defer close(out)

			buffer := make([]Sample, 0, windowSize)
			var sum float64

			for s := range in {
				buffer = append(buffer, s)
				sum += s.Force
				if len(buffer) > windowSize {
					sum -= buffer[0].Force
					buffer = buffer[1:]
				}

				out <- Sample{
					Timestamp: s.Timestamp,
					Force:     sum / float64(len(buffer)),
				}
			}
		}()

		return out
	}
}
