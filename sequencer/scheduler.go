package sequencer

import (
	"sort"
	"time"

	"go-piano/debug"
	"go-piano/score"
)

// DefaultMinNote is the shortest time between a scheduled note's on and off.
const DefaultMinNote = 100 * time.Millisecond

// MinNoteFloor is the lowest accepted minimum note length. A note's off
// timer must never share a deadline with its on timer.
const MinNoteFloor = time.Millisecond

// EventKind tags a scheduled callback
type EventKind uint8

const (
	NoteOn EventKind = iota
	NoteOff
)

func (k EventKind) String() string {
	if k == NoteOn {
		return "on"
	}
	return "off"
}

// ScheduledEvent is one armed timer
type ScheduledEvent struct {
	ID       uint64
	Kind     EventKind
	Pitch    string
	Velocity float64
	At       time.Duration // position in the piece
	timer    Timer
	pair     uint64 // the NoteOn a NoteOff ends
}

// Scheduler converts a score into armed note on/off timers and can cancel
// everything it armed in one call.
//
// Every batch gets a generation number. Cancelling bumps it, so a callback
// that was already running when its timer was stopped sees a stale
// generation and does nothing.
//
// Scheduler is not safe for concurrent use. Timer callbacks go through
// guard, which the owner uses to take its lock.
type Scheduler struct {
	timers  Timers
	sink    Sink
	active  *ActiveNotes
	guard   func(func())
	minNote time.Duration

	gen    uint64
	nextID uint64
	arena  map[uint64]*ScheduledEvent
	held   map[string]int // references this batch holds in active
}

// NewScheduler creates a scheduler. guard may be nil when callbacks don't
// need serializing.
func NewScheduler(timers Timers, sink Sink, active *ActiveNotes, guard func(func())) *Scheduler {
	if timers == nil {
		timers = SystemTimers()
	}
	if guard == nil {
		guard = func(f func()) { f() }
	}
	return &Scheduler{
		timers:  timers,
		sink:    sink,
		active:  active,
		guard:   guard,
		minNote: DefaultMinNote,
		arena:   make(map[uint64]*ScheduledEvent),
		held:    make(map[string]int),
	}
}

// SetMinNote sets the minimum audible note length, at least MinNoteFloor.
func (s *Scheduler) SetMinNote(d time.Duration) {
	s.minNote = max(d, MinNoteFloor)
}

// Schedule cancels the current batch and arms a new one for every event
// starting at or after from. Delays are relative to now, so position from
// plays immediately. It returns the number of notes armed.
func (s *Scheduler) Schedule(events []score.NoteEvent, from time.Duration) int {
	s.CancelAll()

	var batch []score.NoteEvent
	for _, ev := range events {
		if ev.Start >= from {
			batch = append(batch, ev)
		}
	}
	sort.SliceStable(batch, func(i, j int) bool {
		return batch[i].Start < batch[j].Start
	})

	gen := s.gen
	for _, ev := range batch {
		on := ev.Start - from
		off := max(ev.End()-from, on+s.minNote)
		onID := s.arm(gen, NoteOn, ev, on, from, 0)
		s.arm(gen, NoteOff, ev, off, from, onID)
	}

	debug.Log("sched", "armed %d notes from %.3fs (gen %d)", len(batch), from.Seconds(), gen)
	return len(batch)
}

func (s *Scheduler) arm(gen uint64, kind EventKind, ev score.NoteEvent, delay, from time.Duration, pair uint64) uint64 {
	s.nextID++
	id := s.nextID
	rec := &ScheduledEvent{
		ID:       id,
		Kind:     kind,
		Pitch:    ev.Pitch,
		Velocity: ev.Velocity,
		At:       from + delay,
		pair:     pair,
	}
	s.arena[id] = rec
	rec.timer = s.timers.AfterFunc(delay, func() {
		s.guard(func() { s.fire(gen, id) })
	})
	return id
}

func (s *Scheduler) fire(gen, id uint64) {
	if gen != s.gen {
		return
	}
	rec, ok := s.arena[id]
	if !ok {
		return
	}
	delete(s.arena, id)

	switch rec.Kind {
	case NoteOn:
		s.active.Press(rec.Pitch)
		s.held[rec.Pitch]++
		s.sink.NoteOn(rec.Pitch, rec.Velocity)
	case NoteOff:
		if on, ok := s.arena[rec.pair]; ok {
			// the off won the race; the note never starts
			if on.timer != nil {
				on.timer.Stop()
			}
			delete(s.arena, rec.pair)
			return
		}
		if s.held[rec.Pitch] == 0 {
			return
		}
		s.held[rec.Pitch]--
		if s.held[rec.Pitch] == 0 {
			delete(s.held, rec.Pitch)
		}
		if s.active.Release(rec.Pitch) {
			s.sink.NoteOff(rec.Pitch)
		}
	}
}

// CancelAll stops every armed timer, silences every pitch the batch started
// or was about to start, and drops the batch's references from the active
// set. Pitches still held by someone else keep sounding. Safe to call any
// number of times, including from inside a timer callback.
func (s *Scheduler) CancelAll() {
	s.gen++

	silence := make(map[string]bool)
	for id, rec := range s.arena {
		if rec.timer != nil {
			rec.timer.Stop()
		}
		if rec.Kind == NoteOn {
			silence[rec.Pitch] = true
		}
		delete(s.arena, id)
	}
	for pitch, n := range s.held {
		for range n {
			s.active.Release(pitch)
		}
		silence[pitch] = true
	}
	clear(s.held)

	if len(silence) == 0 {
		return
	}
	pitches := make([]string, 0, len(silence))
	for p := range silence {
		pitches = append(pitches, p)
	}
	sort.Strings(pitches)
	for _, p := range pitches {
		if !s.active.Has(p) {
			s.sink.NoteOff(p)
		}
	}
	debug.Log("sched", "cancelled batch, released %d pitches", len(pitches))
}

// Pending returns the number of armed timers
func (s *Scheduler) Pending() int {
	return len(s.arena)
}

// Holding returns the number of notes the current batch has sounding
func (s *Scheduler) Holding() int {
	n := 0
	for _, c := range s.held {
		n += c
	}
	return n
}
