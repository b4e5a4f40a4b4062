// Package score holds a loaded piece as a flat list of timed note events.
package score

import (
	"errors"
	"math"
	"sort"
	"time"

	"go-piano/debug"
	"go-piano/note"
)

// DefaultVelocity is used when a note carries no usable velocity.
const DefaultVelocity = 0.8

// ErrNoNotes is returned when a file holds no playable notes.
var ErrNoNotes = errors.New("no notes")

// NoteEvent is one scheduled occurrence of a pitch.
type NoteEvent struct {
	Start    time.Duration
	Duration time.Duration
	Pitch    string  // canonical, see note.Normalize
	Velocity float64 // 0-1
}

// End returns Start+Duration.
func (e NoteEvent) End() time.Duration {
	return e.Start + e.Duration
}

// Score is an immutable loaded piece.
type Score struct {
	Name     string
	Events   []NoteEvent
	Duration time.Duration
	Tracks   int
}

// RawNote is a note as handed over by a parser, times in seconds.
type RawNote struct {
	Time     float64
	Duration float64
	Name     string
	Velocity float64
}

// New flattens per-track note lists into a Score. Notes with unusable times
// are dropped, bad names fall back to note.Fallback and velocities are
// clamped; every repair is logged. A negative or NaN duration is replaced by
// the end of the last note.
func New(name string, tracks [][]RawNote, duration float64) *Score {
	s := &Score{Name: name, Tracks: len(tracks)}

	var dropped, repaired int
	for ti, track := range tracks {
		for _, n := range track {
			if !finite(n.Time) || n.Time < 0 || !finite(n.Duration) {
				debug.Warn("score", "track %d: dropping %q at t=%v dur=%v", ti, n.Name, n.Time, n.Duration)
				dropped++
				continue
			}

			pitch, ok := note.Sanitize(n.Name)
			if !ok {
				debug.Warn("score", "track %d: invalid pitch %q, using %s", ti, n.Name, pitch)
				repaired++
			}
			if folded := fold(pitch); folded != pitch {
				debug.Warn("score", "track %d: %s out of range, using %s", ti, pitch, folded)
				pitch = folded
				repaired++
			}

			dur := n.Duration
			if dur < 0 {
				dur = 0
			}

			s.Events = append(s.Events, NoteEvent{
				Start:    seconds(n.Time),
				Duration: seconds(dur),
				Pitch:    pitch,
				Velocity: clampVelocity(n.Velocity),
			})
		}
	}

	if finite(duration) && duration >= 0 {
		s.Duration = seconds(duration)
	} else {
		s.Duration = s.LastEnd()
	}

	if dropped > 0 || repaired > 0 {
		debug.Log("score", "%s: %d notes, %d dropped, %d repaired", name, len(s.Events), dropped, repaired)
	}
	return s
}

// LastEnd returns the latest End over all events.
func (s *Score) LastEnd() time.Duration {
	var end time.Duration
	for _, e := range s.Events {
		if e.End() > end {
			end = e.End()
		}
	}
	return end
}

// Sorted returns the events ordered by start time. The score itself is not
// modified.
func (s *Score) Sorted() []NoteEvent {
	out := make([]NoteEvent, len(s.Events))
	copy(out, s.Events)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start < out[j].Start
	})
	return out
}

// Window returns the events sounding at any point in [from, to).
func (s *Score) Window(from, to time.Duration) []NoteEvent {
	var out []NoteEvent
	for _, e := range s.Events {
		if e.Start < to && e.End() > from {
			out = append(out, e)
		}
	}
	return out
}

// fold moves a canonical name into the loadable octave range
func fold(pitch string) string {
	k, err := note.Parse(pitch)
	if err != nil {
		return pitch
	}
	return note.Name(note.Fold(k))
}

func seconds(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func clampVelocity(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return DefaultVelocity
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
