package midi

import (
	"context"
	"testing"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlayer struct {
	calls   []string
	sustain bool
}

func (p *fakePlayer) PressNote(pitch string, velocity float64) {
	p.calls = append(p.calls, "press "+pitch)
}

func (p *fakePlayer) ReleaseNote(pitch string) {
	p.calls = append(p.calls, "release "+pitch)
}

func (p *fakePlayer) SetSustain(on bool) {
	p.sustain = on
}

func TestDecode(t *testing.T) {
	ev, ok := decode(gomidi.NoteOn(0, 60, 100))
	require.True(t, ok)
	assert.Equal(t, Event{Type: NoteOn, Note: 60, Velocity: 100}, ev)

	ev, ok = decode(gomidi.NoteOn(2, 62, 0))
	require.True(t, ok)
	assert.Equal(t, Event{Type: NoteOff, Channel: 2, Note: 62}, ev)

	ev, ok = decode(gomidi.NoteOff(0, 64))
	require.True(t, ok)
	assert.Equal(t, NoteOff, ev.Type)

	ev, ok = decode(gomidi.ControlChange(0, CCSustain, 127))
	require.True(t, ok)
	assert.Equal(t, Event{Type: CC, Note: CCSustain, Velocity: 127}, ev)

	_, ok = decode(gomidi.ProgramChange(0, 1))
	assert.False(t, ok)
}

func TestEventPitch(t *testing.T) {
	assert.Equal(t, "C4", Event{Note: 60}.Pitch())
	assert.Equal(t, "A#4", Event{Note: 70}.Pitch())
	// below octave 0 folds up
	assert.Equal(t, "C0", Event{Note: 0}.Pitch())
}

func TestEventApply(t *testing.T) {
	p := &fakePlayer{}
	Event{Type: NoteOn, Note: 60, Velocity: 127}.Apply(p)
	Event{Type: NoteOff, Note: 60}.Apply(p)
	Event{Type: CC, Note: CCSustain, Velocity: 100}.Apply(p)
	Event{Type: CC, Note: CCVolume, Velocity: 100}.Apply(p)

	assert.Equal(t, []string{"press C4", "release C4"}, p.calls)
	assert.True(t, p.sustain)
}

type chanController struct {
	events chan Event
}

func (c *chanController) ID() string { return "test" }
func (c *chanController) Type() ControllerType { return ControllerKeyboard }
func (c *chanController) Events() <-chan Event { return c.events }
func (c *chanController) Close() error { close(c.events); return nil }

func TestRoute(t *testing.T) {
	c := &chanController{events: make(chan Event, 4)}
	p := &fakePlayer{}

	c.events <- Event{Type: NoteOn, Note: 69, Velocity: 64}
	c.events <- Event{Type: NoteOff, Note: 69}
	c.Close()

	done := make(chan struct{})
	go func() {
		Route(context.Background(), c, p)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("route did not return")
	}
	assert.Equal(t, []string{"press A4", "release A4"}, p.calls)
}

func TestKeyboardPort(t *testing.T) {
	assert.True(t, KeyboardPort("Digital Piano:Digital Piano MIDI 1 20:0", nil))
	assert.False(t, KeyboardPort("Midi Through:Midi Through Port-0 14:0", nil))
	assert.True(t, KeyboardPort("KeyStep 32", []string{"keystep"}))
	assert.False(t, KeyboardPort("Launchpad X", []string{"keystep"}))
}
