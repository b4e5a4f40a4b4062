package synth

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVolumeDB(t *testing.T) {
	assert.Equal(t, -20.0, VolumeDB(0))
	assert.Equal(t, 10.0, VolumeDB(1))
	assert.InDelta(t, -5.0, VolumeDB(0.5), 1e-9)
	assert.Equal(t, 10.0, VolumeDB(4))
	assert.Equal(t, -20.0, VolumeDB(math.NaN()))
}

func TestAmplitude(t *testing.T) {
	assert.InDelta(t, 1.0, Amplitude(0), 1e-9)
	assert.InDelta(t, 0.1, Amplitude(-20), 1e-9)
	assert.InDelta(t, 0.001, Amplitude(FloorDB), 1e-12)
}

func TestVelocityCurve(t *testing.T) {
	assert.InDelta(t, 0.75, Velocity(0.5), 1e-9)
	assert.Equal(t, 1.0, Velocity(0.8))
	assert.Equal(t, 0.0, Velocity(-1))

	assert.Equal(t, uint8(127), MIDIVelocity(1))
	assert.Equal(t, uint8(95), MIDIVelocity(0.5))
	assert.Equal(t, uint8(0), MIDIVelocity(0))
	assert.Equal(t, uint8(1), MIDIVelocity(0.001))
}

func TestFrequency(t *testing.T) {
	assert.InDelta(t, 440.0, Frequency(69), 1e-9)
	assert.InDelta(t, 261.6256, Frequency(60), 1e-3)
	assert.InDelta(t, 880.0, Frequency(81), 1e-9)
}
