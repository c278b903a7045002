package rig

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/itohio/gostand/pkg/config"
)

// Mock simulates a thrust stand for testing and development: commanded
// servo angle produces thrust with a first-order lag, plus a little noise.
type Mock struct {
	cfg   *config.MockConfig
	scale float64 // force units per count, mirrors the calibration constant

	readings  chan RawReading
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool

	// Simulation state
	startTime time.Time
	servoPos  int
	thrust    float64 // Simulated force in force units
}

// NewMock creates a new mocked device instance. scale is the same
// calibration constant the host applies, so simulated counts round-trip to
// the intended force.
func NewMock(cfg *config.MockConfig, scale float64) *Mock {
	if cfg == nil {
		cfg = &config.MockConfig{
			ThrustPerDegree: 4.5,
			NoiseLevel:      0.8,
			ResponseTime:    400 * time.Millisecond,
			SampleRate:      20 * time.Millisecond,
		}
	}
	if scale == 0 {
		scale = 1.0 / 420.0
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Mock{
		cfg:      cfg,
		scale:    scale,
		readings: make(chan RawReading, DefaultBufferSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Connect simulates connecting to the device.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}

	m.connected = true
	m.startTime = time.Now()
	m.servoPos = 0
	m.thrust = 0

	// Start generating readings
	go m.generateReadings()

	return nil
}

// Close stops the mocked device.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil
	}

	m.cancel()
	m.connected = false
	close(m.readings)

	return nil
}

// Readings returns the channel of simulated measurements.
func (m *Mock) Readings() <-chan RawReading {
	return m.readings
}

// SetServo records the commanded throttle angle (simulated).
func (m *Mock) SetServo(pos int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return fmt.Errorf("not connected")
	}
	if pos < 0 || pos > 180 {
		return fmt.Errorf("servo position out of range: %d", pos)
	}

	m.servoPos = pos
	return nil
}

// ServoPosition returns the last commanded angle. Test helper.
func (m *Mock) ServoPosition() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.servoPos
}

// IsConnected returns whether the device is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// generateReadings generates simulated measurements at the sample rate.
func (m *Mock) generateReadings() {
	ticker := time.NewTicker(m.cfg.SampleRate)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			reading := m.generateReading()
			select {
			case m.readings <- reading:
			case <-m.ctx.Done():
				return
			default:
				// Channel full, skip
			}
		}
	}
}

// generateReading produces a single simulated measurement.
func (m *Mock) generateReading() RawReading {
	m.mu.RLock()
	now := time.Now()
	elapsed := now.Sub(m.startTime)
	servoPos := m.servoPos
	m.mu.RUnlock()

	// First-order lag toward the steady-state thrust for the commanded
	// throttle: prop spin-up is not instantaneous.
	target := m.cfg.ThrustPerDegree * float64(servoPos)
	dt := m.cfg.SampleRate.Seconds()
	alpha := dt / m.cfg.ResponseTime.Seconds()
	if alpha > 1 {
		alpha = 1
	}

	m.mu.Lock()
	m.thrust = m.thrust + alpha*(target-m.thrust)
	thrust := m.thrust
	m.mu.Unlock()

	// Deterministic pseudo-noise
	noise := (math.Sin(float64(elapsed.Nanoseconds())*0.001) +
		math.Cos(float64(elapsed.Nanoseconds())*0.0013)) *
		m.cfg.NoiseLevel * 0.5

	counts := (thrust + noise) / m.scale
	if counts < minCounts {
		counts = minCounts
	} else if counts > maxCounts {
		counts = maxCounts
	}

	return RawReading{
		Timestamp: now,
		Counts:    int32(counts),
	}
}
