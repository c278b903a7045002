package force

import (
	"testing"
	"time"

	"github.com/itohio/gostand/pkg/config"
	"github.com/itohio/gostand/pkg/rig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConverter_AppliesScale(t *testing.T) {
	cfg := config.Default()
	cfg.Calibration.Scale = 0.01
	converter := NewConverter(cfg, 10)

	in := make(chan rig.RawReading, 3)
	out := converter(in)

	now := time.Now()
	in <- rig.RawReading{Timestamp: now, Counts: 4530}
	in <- rig.RawReading{Timestamp: now.Add(time.Second), Counts: -100}
	close(in)

	var samples []Sample
	for s := range out {
		samples = append(samples, s)
	}

	require.Len(t, samples, 2)
	assert.InDelta(t, 45.3, samples[0].Force, 1e-9)
	assert.Equal(t, now, samples[0].Timestamp)
	assert.InDelta(t, -1.0, samples[1].Force, 1e-9)
}

func TestNewConverter_EmptyChannel(t *testing.T) {
	converter := NewConverter(config.Default(), 10)

	in := make(chan rig.RawReading)
	out := converter(in)
	close(in)

	_, ok := <-out
	assert.False(t, ok, "Output channel should be closed")
}

func TestNewAveragingConverter(t *testing.T) {
	avg := NewAveragingConverter(3, 10)

	in := make(chan Sample, 5)
	out := avg(in)

	now := time.Now()
	for i, f := range []float64{3, 6, 9, 12} {
		in <- Sample{Timestamp: now.Add(time.Duration(i) * time.Second), Force: f}
	}
	close(in)

	var got []float64
	for s := range out {
		got = append(got, s.Force)
	}

	// Window fills progressively, then slides: 3, (3+6)/2, (3+6+9)/3, (6+9+12)/3.
	require.Len(t, got, 4)
	assert.InDelta(t, 3, got[0], 1e-9)
	assert.InDelta(t, 4.5, got[1], 1e-9)
	assert.InDelta(t, 6, got[2], 1e-9)
	assert.InDelta(t, 9, got[3], 1e-9)
}

func TestGauge_ReadAndTare(t *testing.T) {
	g := NewGauge()

	_, err := g.Read()
	assert.ErrorIs(t, err, ErrNoReading)
	assert.ErrorIs(t, g.Tare(), ErrNoReading)

	in := make(chan Sample, 2)
	done := make(chan struct{})
	go func() {
		g.Consume(in)
		close(done)
	}()

	in <- Sample{Timestamp: time.Now(), Force: 120.5}
	close(in)
	<-done

	got, err := g.Read()
	require.NoError(t, err)
	assert.InDelta(t, 120.5, got, 1e-9)

	require.NoError(t, g.Tare())
	got, err = g.Read()
	require.NoError(t, err)
	assert.InDelta(t, 0, got, 1e-9, "tare zeroes the current reading")
}
