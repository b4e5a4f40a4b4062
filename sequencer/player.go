package sequencer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"go-piano/debug"
	"go-piano/note"
	"go-piano/score"
)

// ErrNotReady is returned when the output doesn't come up in time
var ErrNotReady = errors.New("output not ready")

// Default timing
const (
	DefaultTickInterval = time.Second / 30
	DefaultReadyTimeout = 5 * time.Second
)

// Sink receives note commands. Calls are serialized by the Player.
type Sink interface {
	NoteOn(pitch string, velocity float64)
	NoteOff(pitch string)
	SetVolume(v float64)
	SetSustain(on bool)
}

// Readier is implemented by sinks that need a startup handshake (audio
// device, MIDI port) before they can sound notes.
type Readier interface {
	Ready(ctx context.Context) error
}

// Option configures a Player
type Option func(*Player)

// WithTimers replaces the wall clock
func WithTimers(t Timers) Option {
	return func(p *Player) {
		if t != nil {
			p.timers = t
		}
	}
}

// WithMinNote sets the minimum scheduled note length, at least MinNoteFloor.
func WithMinNote(d time.Duration) Option {
	return func(p *Player) { p.minNote = max(d, MinNoteFloor) }
}

// WithTickInterval sets how often position is published
func WithTickInterval(d time.Duration) Option {
	return func(p *Player) {
		if d > 0 {
			p.tickInterval = d
		}
	}
}

// WithReadyTimeout bounds the output handshake on Play
func WithReadyTimeout(d time.Duration) Option {
	return func(p *Player) {
		if d > 0 {
			p.readyTimeout = d
		}
	}
}

// Player owns the transport, the scheduler and the active note set, and is
// the only thing that talks to the sink. All commands, timer callbacks and
// ticks run under one lock, so they never interleave.
type Player struct {
	mu sync.Mutex

	sink      Sink
	timers    Timers
	active    *ActiveNotes
	sched     *Scheduler
	transport *Transport
	score     *score.Score

	minNote      time.Duration
	tickInterval time.Duration
	readyTimeout time.Duration

	tickTimer Timer
	tickGen   uint64
	atEnd     bool // finished naturally; report the full duration until the next command
	closed    bool

	updates chan struct{}
}

// New creates a stopped player with nothing loaded
func New(sink Sink, opts ...Option) *Player {
	p := &Player{
		sink:         sink,
		timers:       SystemTimers(),
		minNote:      DefaultMinNote,
		tickInterval: DefaultTickInterval,
		readyTimeout: DefaultReadyTimeout,
		updates:      make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.active = NewActiveNotes()
	p.transport = NewTransport(p.timers)
	p.sched = NewScheduler(p.timers, sink, p.active, p.locked)
	p.sched.SetMinNote(p.minNote)
	return p
}

// locked runs f under the player lock and publishes the result.
func (p *Player) locked(f func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	f()
	p.notify()
}

// Updates signals whenever state changes. The channel holds at most one
// pending signal; read Snapshot for the actual state.
func (p *Player) Updates() <-chan struct{} {
	return p.updates
}

// notify signals the UI without blocking
func (p *Player) notify() {
	select {
	case p.updates <- struct{}{}:
	default:
	}
}

// Load replaces the current score. Anything playing is stopped first.
func (p *Player) Load(s *score.Score) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	if s == nil {
		debug.Warn("player", "load: nil score ignored")
		return
	}

	p.stopLocked()
	p.score = s
	p.transport.SetDuration(s.Duration)
	debug.Log("player", "loaded %q: %d notes, %.2fs", s.Name, len(s.Events), s.Duration.Seconds())
	p.notify()
}

// Play starts playback from the top, or resumes from the paused position.
// Events that started before the resume point are not replayed.
func (p *Player) Play() error {
	p.mu.Lock()
	ok := p.canPlayLocked()
	p.mu.Unlock()
	if !ok {
		return nil
	}

	// The handshake can block, so it runs without the lock.
	if err := p.awaitReady(); err != nil {
		debug.Warn("player", "play: %v", err)
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Something may have changed while we waited.
	if !p.canPlayLocked() {
		return nil
	}

	from := p.transport.Position()
	p.atEnd = false
	n := p.sched.Schedule(p.score.Events, from)
	p.transport.Start(from)
	p.startTickLocked()
	debug.Log("player", "play %q from %.3fs, %d notes armed", p.score.Name, from.Seconds(), n)
	p.notify()
	return nil
}

func (p *Player) canPlayLocked() bool {
	if p.closed {
		return false
	}
	if p.score == nil {
		debug.Log("player", "play: nothing loaded")
		return false
	}
	if p.transport.State() == Playing {
		debug.Log("player", "play: already playing")
		return false
	}
	return true
}

func (p *Player) awaitReady() error {
	r, ok := p.sink.(Readier)
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.readyTimeout)
	defer cancel()
	if err := r.Ready(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrNotReady, err)
	}
	return nil
}

// Pause silences everything and keeps the position for a later Play.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.transport.State() != Playing {
		return
	}
	p.sched.CancelAll()
	p.stopTickLocked()
	p.transport.Pause()
	debug.Log("player", "pause at %.3fs", p.transport.Position().Seconds())
	p.notify()
}

// Stop silences everything and rewinds to the top.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	if p.transport.State() == Stopped {
		if p.atEnd {
			p.atEnd = false
			p.notify()
		}
		return
	}
	p.stopLocked()
	debug.Log("player", "stop")
	p.notify()
}

func (p *Player) stopLocked() {
	p.sched.CancelAll()
	p.stopTickLocked()
	p.transport.Stop()
	p.atEnd = false
}

func (p *Player) startTickLocked() {
	p.stopTickLocked()
	p.armTickLocked(p.tickGen)
}

func (p *Player) armTickLocked(gen uint64) {
	p.tickTimer = p.timers.AfterFunc(p.tickInterval, func() { p.onTick(gen) })
}

func (p *Player) stopTickLocked() {
	p.tickGen++
	if p.tickTimer != nil {
		p.tickTimer.Stop()
		p.tickTimer = nil
	}
}

func (p *Player) onTick(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.tickGen || p.transport.State() != Playing {
		return
	}

	pos, ended := p.transport.Tick()
	if ended {
		p.sched.CancelAll()
		p.tickTimer = nil
		p.tickGen++
		p.atEnd = true
		debug.Log("player", "end of %q at %.3fs", p.score.Name, pos.Seconds())
		p.notify()
		return
	}

	debug.LogEvery(30, "tick", "position %.3fs, %d sounding", pos.Seconds(), p.active.Len())
	p.armTickLocked(gen)
	p.notify()
}

// PressNote sounds a pitch from live input. It works in any transport state.
func (p *Player) PressNote(pitch string, velocity float64) {
	pitch = p.livePitch(pitch)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.active.Press(pitch)
	p.sink.NoteOn(pitch, clampUnit(velocity, score.DefaultVelocity))
	p.notify()
}

// ReleaseNote ends a live note. The sink only gets a NoteOff once nothing
// else is holding the pitch.
func (p *Player) ReleaseNote(pitch string) {
	pitch = p.livePitch(pitch)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	if p.active.Release(pitch) {
		p.sink.NoteOff(pitch)
	}
	p.notify()
}

func (p *Player) livePitch(pitch string) string {
	name, ok := note.Sanitize(pitch)
	if !ok {
		debug.Warn("player", "invalid pitch %q, using %s", pitch, name)
	}
	return name
}

// SetVolume sets the master volume in [0, 1].
func (p *Player) SetVolume(v float64) {
	if math.IsNaN(v) {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.sink.SetVolume(clampUnit(v, 0))
}

// SetSustain toggles the sustain pedal
func (p *Player) SetSustain(on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.sink.SetSustain(on)
}

// Snapshot returns the current state
func (p *Player) Snapshot() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	st := State{
		State:       p.transport.State(),
		Duration:    p.transport.Duration(),
		CurrentTime: p.transport.Position(),
		ActiveNotes: p.active.Sorted(),
	}
	st.Playing = st.State == Playing
	if p.atEnd {
		st.CurrentTime = st.Duration
	}
	if p.score != nil {
		st.Loaded = true
		st.Name = p.score.Name
	}
	return st
}

// Close stops playback and releases every sounding note, live input
// included. The sink itself is left open.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.stopLocked()
	for _, pitch := range p.active.Clear() {
		p.sink.NoteOff(pitch)
	}
	p.closed = true
	debug.Log("player", "closed")
}

func clampUnit(v, fallback float64) float64 {
	if math.IsNaN(v) {
		return fallback
	}
	return max(0, min(1, v))
}
