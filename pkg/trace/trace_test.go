package trace

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func points(n int, start time.Time, step time.Duration) []Point {
	out := make([]Point, n)
	for i := range out {
		out[i] = Point{Timestamp: start.Add(time.Duration(i) * step), Force: float64(i)}
	}
	return out
}

func TestDownsample(t *testing.T) {
	start := time.Unix(0, 0)

	t.Run("short input passes through", func(t *testing.T) {
		src := points(10, start, time.Second)
		got := downsample(nil, src, 100)
		assert.Equal(t, src, got)
	})

	t.Run("long input is reduced", func(t *testing.T) {
		src := points(5000, start, time.Millisecond)
		got := downsample(nil, src, 1000)
		require.Len(t, got, 1000)
		assert.Equal(t, src[0], got[0], "oldest point kept")
		assert.Equal(t, src[len(src)-1], got[len(got)-1], "newest point kept")
		for i := 1; i < len(got); i++ {
			assert.True(t, got[i].Timestamp.After(got[i-1].Timestamp), "order preserved")
		}
	})
}

func TestAutoScale(t *testing.T) {
	w := &Widget{window: 10 * time.Second}
	start := time.Unix(100, 0)
	w.display = []Point{
		{Timestamp: start, Force: 10},
		{Timestamp: start.Add(time.Second), Force: 30},
	}

	w.updateAutoScale()

	// 10% margin on both sides of the 10..30 span.
	assert.InDelta(t, 8, w.yMin, 1e-3)
	assert.InDelta(t, 32, w.yMax, 1e-3)
	assert.Equal(t, start, w.xMin)
	assert.Equal(t, start.Add(w.window), w.xMax, "time axis never shrinks below the window")
}

func TestWindowTrimAndMax(t *testing.T) {
	w := &Widget{
		window:           5 * time.Second,
		maxDisplayPoints: 1000,
	}
	start := time.Unix(0, 0)
	for i := 0; i < 20; i++ {
		w.Append(Point{Timestamp: start.Add(time.Duration(i) * time.Second), Force: float64(i)})
	}

	assert.InDelta(t, 19, w.MaxForce(), 1e-9)
	w.mu.RLock()
	defer w.mu.RUnlock()
	require.NotEmpty(t, w.points)
	oldest := w.points[0].Timestamp
	assert.False(t, oldest.Before(start.Add(14*time.Second)), "points older than the window are dropped")
}
