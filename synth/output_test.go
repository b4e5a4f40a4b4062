package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type engineCall struct {
	on       bool
	key      uint8
	velocity float64
}

type fakeEngine struct {
	calls []engineCall
}

func (e *fakeEngine) NoteOn(key uint8, velocity float64) {
	e.calls = append(e.calls, engineCall{on: true, key: key, velocity: velocity})
}

func (e *fakeEngine) NoteOff(key uint8) {
	e.calls = append(e.calls, engineCall{key: key})
}

func (e *fakeEngine) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		samples[i] = [2]float64{1, 1}
	}
	return len(samples), true
}

func (e *fakeEngine) Err() error { return nil }

func TestOutputNotes(t *testing.T) {
	eng := &fakeEngine{}
	o := NewOutput(eng, SampleRate)

	o.NoteOn("A4", 0.5)
	o.NoteOff("A4")
	o.NoteOn("garbage", 0.25)

	assert.Equal(t, []engineCall{
		{on: true, key: 69, velocity: 0.75},
		{key: 69},
		{on: true, key: 60, velocity: 0.375},
	}, eng.calls)
}

func TestOutputSustain(t *testing.T) {
	eng := &fakeEngine{}
	o := NewOutput(eng, SampleRate)

	o.SetSustain(true)
	o.NoteOn("C4", 1)
	o.NoteOff("C4")
	assert.Len(t, eng.calls, 1)

	o.SetSustain(false)
	assert.Equal(t, engineCall{key: 60}, eng.calls[1])
}

func TestOutputVolume(t *testing.T) {
	o := NewOutput(&fakeEngine{}, SampleRate)
	buf := make([][2]float64, 4)

	o.SetVolume(2.0 / 3.0) // 0dB
	o.Stream(buf)
	assert.InDelta(t, 1.0, buf[0][0], 1e-9)

	o.SetVolume(0)
	o.Stream(buf)
	assert.Zero(t, buf[0][0])
}

func TestOutputShapesVelocityOnce(t *testing.T) {
	eng := &fakeEngine{}
	o := NewOutput(eng, SampleRate)

	o.NoteOn("C4", 0.4)
	require.Len(t, eng.calls, 1)
	assert.InDelta(t, 0.6, eng.calls[0].velocity, 1e-9)

	// an engine turning that into MIDI must land where an external port does
	assert.Equal(t, MIDIVelocity(0.4), scale127(eng.calls[0].velocity))
	assert.Equal(t, uint8(76), scale127(eng.calls[0].velocity))
}
