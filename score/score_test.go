package score

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFlattensTracks(t *testing.T) {
	s := New("two", [][]RawNote{
		{{Time: 1, Duration: 0.5, Name: "C4", Velocity: 0.5}},
		{{Time: 0, Duration: 1, Name: "Ds4", Velocity: 1}},
	}, 2)

	require.Len(t, s.Events, 2)
	assert.Equal(t, 2, s.Tracks)
	assert.Equal(t, 2*time.Second, s.Duration)
	assert.Equal(t, "D#4", s.Events[1].Pitch)

	sorted := s.Sorted()
	assert.Equal(t, "D#4", sorted[0].Pitch)
	assert.Equal(t, "C4", sorted[1].Pitch)
	assert.Equal(t, "C4", s.Events[0].Pitch, "Sorted must not reorder the score")
}

func TestNewRepairsInvalidInput(t *testing.T) {
	s := New("bad", [][]RawNote{{
		{Time: math.NaN(), Duration: 1, Name: "C4", Velocity: 0.5},
		{Time: -1, Duration: 1, Name: "C4", Velocity: 0.5},
		{Time: 0, Duration: math.Inf(1), Name: "C4", Velocity: 0.5},
		{Time: 0.5, Duration: 1, Name: "??", Velocity: 3},
		{Time: 1, Duration: -2, Name: "E4", Velocity: math.NaN()},
	}}, math.NaN())

	require.Len(t, s.Events, 2)

	assert.Equal(t, "C4", s.Events[0].Pitch)
	assert.Equal(t, 1.0, s.Events[0].Velocity)

	assert.Equal(t, "E4", s.Events[1].Pitch)
	assert.Equal(t, time.Duration(0), s.Events[1].Duration)
	assert.Equal(t, DefaultVelocity, s.Events[1].Velocity)

	assert.Equal(t, 1500*time.Millisecond, s.Duration, "NaN duration falls back to last note end")
}

func TestWindow(t *testing.T) {
	s := New("w", [][]RawNote{{
		{Time: 0, Duration: 1, Name: "C4"},
		{Time: 2, Duration: 1, Name: "D4"},
		{Time: 4, Duration: 1, Name: "E4"},
	}}, 5)

	got := s.Window(500*time.Millisecond, 2500*time.Millisecond)
	require.Len(t, got, 2)
	assert.Equal(t, "C4", got[0].Pitch)
	assert.Equal(t, "D4", got[1].Pitch)
}

func TestNewFoldsOctaves(t *testing.T) {
	s := New("wide", [][]RawNote{{
		{Time: 0, Duration: 1, Name: "C9", Velocity: 0.5},
		{Time: 0, Duration: 1, Name: "G-1", Velocity: 0.5},
		{Time: 0, Duration: 1, Name: "A0", Velocity: 0.5},
	}}, 1)

	require.Len(t, s.Events, 3)
	assert.Equal(t, "C8", s.Events[0].Pitch)
	assert.Equal(t, "G0", s.Events[1].Pitch)
	assert.Equal(t, "A0", s.Events[2].Pitch)
}
