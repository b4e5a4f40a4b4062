package synth

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func peak(samples [][2]float64) float64 {
	var m float64
	for _, s := range samples {
		m = math.Max(m, math.Abs(s[0]))
	}
	return m
}

func TestOscillatorSilent(t *testing.T) {
	o := NewOscillator(1000)
	buf := make([][2]float64, 64)
	n, ok := o.Stream(buf)

	assert.Equal(t, 64, n)
	assert.True(t, ok)
	assert.Zero(t, peak(buf))
}

func TestOscillatorNoteLifecycle(t *testing.T) {
	o := NewOscillator(1000)
	buf := make([][2]float64, 200)

	o.NoteOn(57, 1)
	o.Stream(buf)
	assert.Greater(t, peak(buf), 0.0)
	assert.Equal(t, 1, o.Voices())

	// retrigger keeps one voice per key
	o.NoteOn(57, 0.5)
	assert.Equal(t, 1, o.Voices())

	o.NoteOff(57)
	long := make([][2]float64, 2000)
	o.Stream(long)
	assert.Equal(t, 0, o.Voices())

	o.Stream(buf)
	assert.Zero(t, peak(buf))
}

func TestOscillatorOrphanNoteOff(t *testing.T) {
	o := NewOscillator(1000)
	o.NoteOff(60)
	assert.Equal(t, 0, o.Voices())
}
