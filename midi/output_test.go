package midi

import (
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecordingOutput(channel int) (*Output, *[]gomidi.Message) {
	var sent []gomidi.Message
	o := NewOutput("test", channel)
	o.send = func(msg gomidi.Message) error {
		sent = append(sent, msg)
		return nil
	}
	return o, &sent
}

func TestOutputMessages(t *testing.T) {
	o, sent := newRecordingOutput(1)

	o.NoteOn("C4", 0.5)
	o.NoteOff("C4")
	o.NoteOn("bogus", 1)
	o.SetVolume(1)
	o.SetSustain(true)
	o.SetSustain(false)

	require.Len(t, *sent, 6)
	assert.Equal(t, gomidi.NoteOn(1, 60, 95), (*sent)[0])
	assert.Equal(t, gomidi.NoteOff(1, 60), (*sent)[1])
	assert.Equal(t, gomidi.NoteOn(1, 60, 127), (*sent)[2])
	assert.Equal(t, gomidi.ControlChange(1, CCVolume, 127), (*sent)[3])
	assert.Equal(t, gomidi.ControlChange(1, CCSustain, 127), (*sent)[4])
	assert.Equal(t, gomidi.ControlChange(1, CCSustain, 0), (*sent)[5])
}

func TestOutputZeroVelocity(t *testing.T) {
	o, sent := newRecordingOutput(0)
	o.NoteOn("C4", 0)
	assert.Empty(t, *sent)
}

func TestOutputNotReady(t *testing.T) {
	o := NewOutput("nothing", 0)
	o.NoteOn("C4", 1)
	o.NoteOff("C4")
	assert.NoError(t, o.Close())
}

func TestOutputClose(t *testing.T) {
	o, sent := newRecordingOutput(3)
	require.NoError(t, o.Close())
	assert.Equal(t, []gomidi.Message{gomidi.ControlChange(3, CCAllNotes, 0)}, *sent)

	o.NoteOn("C4", 1)
	assert.Len(t, *sent, 1)
}
