package sequencer

import (
	"context"
	"time"

	"go-piano/score"
)

type sinkCall struct {
	Op       string
	Pitch    string
	Velocity float64
}

// recordingSink records every call in order.
type recordingSink struct {
	calls   []sinkCall
	volume  float64
	sustain bool
}

func (s *recordingSink) NoteOn(pitch string, velocity float64) {
	s.calls = append(s.calls, sinkCall{Op: "on", Pitch: pitch, Velocity: velocity})
}

func (s *recordingSink) NoteOff(pitch string) {
	s.calls = append(s.calls, sinkCall{Op: "off", Pitch: pitch})
}

func (s *recordingSink) SetVolume(v float64) { s.volume = v }
func (s *recordingSink) SetSustain(on bool)  { s.sustain = on }

func (s *recordingSink) reset() { s.calls = nil }

func (s *recordingSink) ons() []string {
	var out []string
	for _, c := range s.calls {
		if c.Op == "on" {
			out = append(out, c.Pitch)
		}
	}
	return out
}

func (s *recordingSink) count(op, pitch string) int {
	n := 0
	for _, c := range s.calls {
		if c.Op == op && c.Pitch == pitch {
			n++
		}
	}
	return n
}

// sounding returns pitches whose last call was a NoteOn.
func (s *recordingSink) sounding() []string {
	last := make(map[string]string)
	var order []string
	for _, c := range s.calls {
		if _, ok := last[c.Pitch]; !ok {
			order = append(order, c.Pitch)
		}
		last[c.Pitch] = c.Op
	}
	var out []string
	for _, p := range order {
		if last[p] == "on" {
			out = append(out, p)
		}
	}
	return out
}

// readySink fails or blocks its handshake.
type readySink struct {
	recordingSink
	err        error
	block      bool
	handshakes int
}

func (s *readySink) Ready(ctx context.Context) error {
	s.handshakes++
	if s.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return s.err
}

func ev(pitch string, start, dur time.Duration) score.NoteEvent {
	return score.NoteEvent{Start: start, Duration: dur, Pitch: pitch, Velocity: 0.5}
}

func testScore(name string, duration time.Duration, events ...score.NoteEvent) *score.Score {
	return &score.Score{Name: name, Events: events, Duration: duration, Tracks: 1}
}

const ms = time.Millisecond
