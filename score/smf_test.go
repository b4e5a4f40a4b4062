package score

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// two quarter notes at 120bpm: C4 at 0s, E4 at 0.5s
func writeTestSMF(t *testing.T, withNotes bool) *bytes.Buffer {
	t.Helper()

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(960)

	var tempo smf.Track
	tempo.Add(0, smf.MetaMeter(4, 4))
	tempo.Add(0, smf.MetaTempo(120))
	tempo.Close(0)
	require.NoError(t, s.Add(tempo))

	var tr smf.Track
	if withNotes {
		tr.Add(0, midi.NoteOn(0, 60, 127))
		tr.Add(960, midi.NoteOff(0, 60))
		tr.Add(0, midi.NoteOn(0, 64, 64))
		tr.Add(960, midi.NoteOff(0, 64))
		tr.Close(0)
	} else {
		tr.Close(1920)
	}
	require.NoError(t, s.Add(tr))

	var buf bytes.Buffer
	_, err := s.WriteTo(&buf)
	require.NoError(t, err)
	return &buf
}

func TestReadSMF(t *testing.T) {
	s, err := ReadSMF("test.mid", writeTestSMF(t, true))
	require.NoError(t, err)

	assert.Equal(t, "test.mid", s.Name)
	assert.Equal(t, 2, s.Tracks)
	assert.Equal(t, time.Second, s.Duration)

	events := s.Sorted()
	require.Len(t, events, 2)

	assert.Equal(t, "C4", events[0].Pitch)
	assert.Equal(t, time.Duration(0), events[0].Start)
	assert.Equal(t, 500*time.Millisecond, events[0].Duration)
	assert.Equal(t, 1.0, events[0].Velocity)

	assert.Equal(t, "E4", events[1].Pitch)
	assert.Equal(t, 500*time.Millisecond, events[1].Start)
	assert.InDelta(t, 64.0/127, events[1].Velocity, 1e-9)
}

func TestReadSMFNoNotes(t *testing.T) {
	_, err := ReadSMF("empty.mid", writeTestSMF(t, false))
	assert.True(t, errors.Is(err, ErrNoNotes))
}

func TestReadSMFGarbage(t *testing.T) {
	_, err := ReadSMF("junk.mid", bytes.NewBufferString("not a midi file"))
	assert.Error(t, err)
}
