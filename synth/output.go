package synth

import (
	"context"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"

	"go-piano/debug"
	"go-piano/note"
)

// SampleRate is the rate the speaker is opened at
const SampleRate = beep.SampleRate(44100)

// speaker buffer, trades latency for dropouts
const bufferTime = 50 * time.Millisecond

// Engine renders audio for MIDI keys. Velocity arrives already shaped by
// Velocity.
type Engine interface {
	beep.Streamer
	NoteOn(key uint8, velocity float64)
	NoteOff(key uint8)
}

// Output is a note sink that plays through the system speaker. It applies
// the velocity curve, master volume and the sustain pedal, then hands keys
// to an Engine.
type Output struct {
	mu     sync.Mutex
	engine Engine
	sr     beep.SampleRate
	volume *effects.Volume
	pedal  *Pedal

	once    sync.Once
	ready   chan struct{}
	initErr error
}

// NewOutput wraps an engine. The speaker isn't touched until Ready.
func NewOutput(engine Engine, sr beep.SampleRate) *Output {
	o := &Output{
		engine: engine,
		sr:     sr,
		pedal:  NewPedal(),
	}
	o.volume = &effects.Volume{Streamer: engine, Base: 10}
	o.setVolume(1)
	return o
}

// Ready opens the speaker on first use and starts streaming.
func (o *Output) Ready(ctx context.Context) error {
	o.once.Do(func() {
		o.mu.Lock()
		o.ready = make(chan struct{})
		o.mu.Unlock()
		go func() {
			defer close(o.ready)
			if err := speaker.Init(o.sr, o.sr.N(bufferTime)); err != nil {
				o.initErr = err
				return
			}
			speaker.Play(o)
			debug.Log("synth", "speaker open at %dHz", int(o.sr))
		}()
	})

	select {
	case <-o.ready:
		return o.initErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stream implements beep.Streamer
func (o *Output) Stream(samples [][2]float64) (int, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.volume.Stream(samples)
}

func (o *Output) Err() error {
	return nil
}

func (o *Output) NoteOn(pitch string, velocity float64) {
	key := o.key(pitch)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.pedal.Strike(pitch)
	o.engine.NoteOn(key, Velocity(velocity))
}

func (o *Output) NoteOff(pitch string) {
	key := o.key(pitch)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.pedal.Release(pitch) {
		o.engine.NoteOff(key)
	}
}

func (o *Output) SetSustain(on bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, pitch := range o.pedal.Set(on) {
		o.engine.NoteOff(o.key(pitch))
	}
}

func (o *Output) SetVolume(v float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.setVolume(v)
}

func (o *Output) setVolume(v float64) {
	o.volume.Volume = VolumeDB(v) / 20
	o.volume.Silent = v <= 0
}

// Close stops streaming. The speaker stays open for the process lifetime.
func (o *Output) Close() error {
	o.mu.Lock()
	started := o.ready != nil
	o.mu.Unlock()
	if started {
		speaker.Clear()
	}
	return nil
}

func (o *Output) key(pitch string) uint8 {
	k, err := note.Parse(pitch)
	if err != nil {
		debug.Warn("synth", "unknown pitch %q, using %s", pitch, note.Fallback)
		k, _ = note.Parse(note.Fallback)
	}
	return k
}
