package rig

import (
	"testing"
	"time"

	"github.com/itohio/gostand/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastMockConfig() *config.MockConfig {
	return &config.MockConfig{
		ThrustPerDegree: 4.5,
		NoiseLevel:      0,
		ResponseTime:    10 * time.Millisecond,
		SampleRate:      time.Millisecond,
	}
}

func TestMock_ConnectClose(t *testing.T) {
	m := NewMock(fastMockConfig(), 1.0/420.0)
	assert.False(t, m.IsConnected())

	require.NoError(t, m.Connect())
	assert.True(t, m.IsConnected())
	assert.Error(t, m.Connect(), "double connect must fail")

	require.NoError(t, m.Close())
	assert.False(t, m.IsConnected())
	assert.NoError(t, m.Close(), "double close is a no-op")
}

func TestMock_ReadingsFlowAndChannelCloses(t *testing.T) {
	m := NewMock(fastMockConfig(), 1.0/420.0)
	require.NoError(t, m.Connect())

	select {
	case <-m.Readings():
	case <-time.After(time.Second):
		t.Fatal("no reading produced")
	}

	require.NoError(t, m.Close())
	for {
		if _, ok := <-m.Readings(); !ok {
			return
		}
	}
}

func TestMock_ThrustFollowsServo(t *testing.T) {
	scale := 1.0 / 420.0
	m := NewMock(fastMockConfig(), scale)
	require.NoError(t, m.Connect())
	defer m.Close()

	require.NoError(t, m.SetServo(90))
	assert.Equal(t, 90, m.ServoPosition())

	// Wait out several response time constants, then check the simulated
	// thrust settled near 90 deg * 4.5 units/deg.
	deadline := time.After(time.Second)
	want := 90 * 4.5
	for {
		select {
		case r, ok := <-m.Readings():
			require.True(t, ok)
			force := float64(r.Counts) * scale
			if force > want*0.9 {
				return
			}
		case <-deadline:
			t.Fatalf("thrust never approached %v", want)
		}
	}
}

func TestMock_SetServoValidation(t *testing.T) {
	m := NewMock(fastMockConfig(), 1.0/420.0)
	assert.Error(t, m.SetServo(90), "not connected")

	require.NoError(t, m.Connect())
	defer m.Close()

	assert.Error(t, m.SetServo(-1))
	assert.Error(t, m.SetServo(181))
	assert.NoError(t, m.SetServo(180))
}
