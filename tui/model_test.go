package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-piano/score"
	"go-piano/sequencer"
	"go-piano/theme"
)

type nullSink struct {
	volume  float64
	sustain bool
	ons     []string
	offs    []string
}

func (s *nullSink) NoteOn(pitch string, velocity float64) { s.ons = append(s.ons, pitch) }
func (s *nullSink) NoteOff(pitch string) { s.offs = append(s.offs, pitch) }
func (s *nullSink) SetVolume(v float64) { s.volume = v }
func (s *nullSink) SetSustain(on bool) { s.sustain = on }

func newTestModel(t *testing.T, s *score.Score) (Model, *nullSink, *sequencer.ManualTimers) {
	t.Helper()
	sink := &nullSink{}
	clock := sequencer.NewManualTimers()
	p := sequencer.New(sink, sequencer.WithTimers(clock))
	if s != nil {
		p.Load(s)
	}
	m := NewModel(p, s, theme.New(nil), Settings{Volume: 0.5, BaseOctave: 4})
	return m, sink, clock
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPitchForKey(t *testing.T) {
	cases := map[string]string{
		"a": "C4", "w": "C#4", "j": "B4", "k": "C5", "o": "C#5", ";": "E5",
	}
	for k, want := range cases {
		got, ok := PitchForKey(k, 4)
		require.True(t, ok, k)
		assert.Equal(t, want, got, k)
	}

	got, _ := PitchForKey("a", 2)
	assert.Equal(t, "C2", got)

	_, ok := PitchForKey("z", 4)
	assert.False(t, ok)
}

func TestKeyPressAndHold(t *testing.T) {
	m, sink, _ := newTestModel(t, nil)

	next, cmd := m.Update(runes("a"))
	require.NotNil(t, cmd)
	m = next.(Model)
	assert.Equal(t, []string{"C4"}, m.Player.Snapshot().ActiveNotes)
	first := m.held["C4"]

	// autorepeat extends the hold without a second NoteOn
	next, _ = m.Update(runes("a"))
	m = next.(Model)
	assert.Len(t, sink.ons, 1)

	// the stale release is ignored
	next, _ = m.Update(releaseMsg{pitch: "C4", gen: first})
	m = next.(Model)
	assert.Equal(t, []string{"C4"}, m.Player.Snapshot().ActiveNotes)

	next, _ = m.Update(releaseMsg{pitch: "C4", gen: m.held["C4"]})
	m = next.(Model)
	assert.Empty(t, m.Player.Snapshot().ActiveNotes)
	assert.Equal(t, []string{"C4"}, sink.offs)
}

func TestSettingsKeys(t *testing.T) {
	m, sink, _ := newTestModel(t, nil)
	assert.Equal(t, 0.5, sink.volume)

	next, _ := m.Update(runes("="))
	m = next.(Model)
	assert.InDelta(t, 0.55, m.Settings().Volume, 1e-9)
	assert.InDelta(t, 0.55, sink.volume, 1e-9)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)
	assert.True(t, m.Settings().Sustain)
	assert.True(t, sink.sustain)

	next, _ = m.Update(runes("]"))
	m = next.(Model)
	assert.Equal(t, 5, m.Settings().BaseOctave)

	next, _ = m.Update(runes("a"))
	m = next.(Model)
	assert.Equal(t, []string{"C5"}, sink.ons)
}

func TestPlayPause(t *testing.T) {
	s := &score.Score{
		Name:     "test",
		Duration: 2 * time.Second,
		Events:   []score.NoteEvent{{Start: 0, Duration: time.Second, Pitch: "E4", Velocity: 0.5}},
	}
	m, sink, clock := newTestModel(t, s)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m = next.(Model)
	require.NotNil(t, cmd)

	next, _ = m.Update(cmd())
	m = next.(Model)
	assert.Empty(t, m.status)

	clock.Advance(100 * time.Millisecond)
	assert.Equal(t, []string{"E4"}, sink.ons)
	assert.True(t, m.Player.Snapshot().Playing)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m = next.(Model)
	assert.Equal(t, sequencer.Paused, m.Player.Snapshot().State)

	next, _ = m.Update(runes("x"))
	m = next.(Model)
	assert.Equal(t, sequencer.Stopped, m.Player.Snapshot().State)
}

func TestView(t *testing.T) {
	s := &score.Score{
		Name:     "etude",
		Duration: 90 * time.Second,
		Events:   []score.NoteEvent{{Start: 0, Duration: time.Second, Pitch: "C4", Velocity: 0.5}},
	}
	m, _, _ := newTestModel(t, s)
	out := m.View()
	assert.Contains(t, out, "etude")
	assert.Contains(t, out, "0:00.0 / 1:30.0")
	assert.Contains(t, out, "vol  50%")
}

func TestClock(t *testing.T) {
	assert.Equal(t, "0:00.0", clock(0))
	assert.Equal(t, "1:05.3", clock(65*time.Second+300*time.Millisecond))
}

func TestKeySections(t *testing.T) {
	sections := KeySections(DefaultKeyMap(), 4)
	require.Len(t, sections, 2)

	piano := sections[0].Keys
	require.Len(t, piano, len(pianoKeys))
	assert.Equal(t, "a", piano[0].Key)
	assert.Equal(t, "C4", piano[0].Desc)
	assert.Equal(t, ";", piano[len(piano)-1].Key)
	assert.Equal(t, "E5", piano[len(piano)-1].Desc)

	assert.NotEmpty(t, sections[1].Keys)
	assert.Equal(t, "play/pause", sections[1].Keys[0].Desc)
}
