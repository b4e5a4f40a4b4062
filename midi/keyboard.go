package midi

import (
	"context"
	"fmt"

	"go-piano/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// KeyboardController handles a standard MIDI keyboard
type KeyboardController struct {
	id       string
	inPort   drivers.In
	stopFunc func()

	events chan Event
}

// NewKeyboardController creates a keyboard controller (input only)
func NewKeyboardController(id string, inPort drivers.In) (*KeyboardController, error) {
	kb := &KeyboardController{
		id:     id,
		inPort: inPort,
		events: make(chan Event, 64),
	}

	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
			if ev, ok := decode(msg); ok {
				select {
				case kb.events <- ev:
				default:
					debug.Warn("midi", "%s: input buffer full, dropped %v", kb.id, msg)
				}
			}
		})
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		kb.stopFunc = stop
	}

	return kb, nil
}

// decode turns a raw message into an Event. NoteOn with velocity 0 is a
// NoteOff, as most keyboards send it.
func decode(msg gomidi.Message) (Event, bool) {
	var channel, key, velocity, cc, value uint8
	switch {
	case msg.GetNoteOn(&channel, &key, &velocity):
		if velocity == 0 {
			return Event{Type: NoteOff, Channel: channel, Note: key}, true
		}
		return Event{Type: NoteOn, Channel: channel, Note: key, Velocity: velocity}, true
	case msg.GetNoteOff(&channel, &key, &velocity):
		return Event{Type: NoteOff, Channel: channel, Note: key}, true
	case msg.GetControlChange(&channel, &cc, &value):
		return Event{Type: CC, Channel: channel, Note: cc, Velocity: value}, true
	}
	return Event{}, false
}

func (kb *KeyboardController) ID() string {
	return kb.id
}

func (kb *KeyboardController) Type() ControllerType {
	return ControllerKeyboard
}

func (kb *KeyboardController) Events() <-chan Event {
	return kb.events
}

func (kb *KeyboardController) Close() error {
	if kb.stopFunc != nil {
		kb.stopFunc()
	}
	close(kb.events)
	return nil
}

// Route forwards controller input to p until the controller closes or ctx
// is done.
func Route(ctx context.Context, c Controller, p Player) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-c.Events():
			if !ok {
				return
			}
			ev.Apply(p)
		}
	}
}
