package midi

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go-piano/debug"
	"go-piano/note"
	"go-piano/synth"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// Output is a note sink that drives an external instrument over a MIDI
// output port. Velocity goes through the same curve as the built-in synth;
// volume and sustain become CC7 and CC64.
type Output struct {
	portName string
	channel  uint8

	mu   sync.Mutex
	port drivers.Out
	send func(gomidi.Message) error
}

// NewOutput creates an output for the first port whose name contains
// portName. channel is 0-based. The port is opened by Ready.
func NewOutput(portName string, channel int) *Output {
	return &Output{
		portName: portName,
		channel:  uint8(max(0, min(15, channel))),
	}
}

// Ready finds and opens the port.
func (o *Output) Ready(ctx context.Context) error {
	o.mu.Lock()
	opened := o.send != nil
	o.mu.Unlock()
	if opened {
		return nil
	}

	type result struct {
		port drivers.Out
		send func(gomidi.Message) error
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		port, err := o.find()
		if err != nil {
			ch <- result{err: err}
			return
		}
		send, err := gomidi.SendTo(port)
		ch <- result{port: port, send: send, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return fmt.Errorf("open output %q: %w", o.portName, r.err)
		}
		o.mu.Lock()
		o.port, o.send = r.port, r.send
		o.mu.Unlock()
		debug.Log("midi", "output open: %s ch %d", r.port.String(), o.channel+1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *Output) find() (drivers.Out, error) {
	want := strings.ToLower(o.portName)
	for _, p := range gomidi.GetOutPorts() {
		if strings.Contains(strings.ToLower(p.String()), want) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("no output port matching %q", o.portName)
}

func (o *Output) NoteOn(pitch string, velocity float64) {
	vel := synth.MIDIVelocity(velocity)
	if vel == 0 {
		return
	}
	o.write(gomidi.NoteOn(o.channel, key(pitch), vel))
}

func (o *Output) NoteOff(pitch string) {
	o.write(gomidi.NoteOff(o.channel, key(pitch)))
}

func (o *Output) SetVolume(v float64) {
	v = max(0, min(1, v))
	o.write(gomidi.ControlChange(o.channel, CCVolume, uint8(v*127+0.5)))
}

func (o *Output) SetSustain(on bool) {
	var value uint8
	if on {
		value = 127
	}
	o.write(gomidi.ControlChange(o.channel, CCSustain, value))
}

// Close silences the channel and closes the port.
func (o *Output) Close() error {
	o.write(gomidi.ControlChange(o.channel, CCAllNotes, 0))

	o.mu.Lock()
	defer o.mu.Unlock()
	o.send = nil
	if o.port != nil {
		err := o.port.Close()
		o.port = nil
		return err
	}
	return nil
}

func (o *Output) write(msg gomidi.Message) {
	o.mu.Lock()
	send := o.send
	o.mu.Unlock()

	if send == nil {
		return
	}
	if err := send(msg); err != nil {
		debug.LogEvery(100, "midi", "send %v: %v", msg, err)
	}
}

func key(pitch string) uint8 {
	k, err := note.Parse(pitch)
	if err != nil {
		debug.Warn("midi", "unknown pitch %q, using %s", pitch, note.Fallback)
		k, _ = note.Parse(note.Fallback)
	}
	return k
}
