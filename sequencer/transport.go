package sequencer

import "time"

// Transport is the playback clock. Position is derived from the wall clock
// and never accumulated from tick deltas, so it can't drift.
//
// Transport is not safe for concurrent use; Player serializes access.
type Transport struct {
	timers   Timers
	state    TransportState
	offset   time.Duration // position at the start of the current segment
	started  time.Time     // wall time the current segment started
	duration time.Duration
}

// NewTransport creates a stopped transport
func NewTransport(timers Timers) *Transport {
	if timers == nil {
		timers = SystemTimers()
	}
	return &Transport{timers: timers}
}

// State returns the transport state
func (t *Transport) State() TransportState {
	return t.state
}

// Duration returns the length of the loaded piece
func (t *Transport) Duration() time.Duration {
	return t.duration
}

// SetDuration sets the length of the piece
func (t *Transport) SetDuration(d time.Duration) {
	if d < 0 {
		d = 0
	}
	t.duration = d
}

// Start begins a playback segment at from. It returns false if the
// transport is already playing.
func (t *Transport) Start(from time.Duration) bool {
	if t.state == Playing {
		return false
	}
	if from < 0 {
		from = 0
	}
	t.offset = from
	t.started = t.timers.Now()
	t.state = Playing
	return true
}

// Position returns the current playback position. While playing it never
// passes the end of the piece.
func (t *Transport) Position() time.Duration {
	if t.state != Playing {
		return t.offset
	}
	elapsed := t.timers.Now().Sub(t.started)
	if elapsed < 0 {
		elapsed = 0
	}
	return min(t.offset+elapsed, t.duration)
}

// Tick samples the position and reports whether the piece has ended.
// On end the transport resets to Stopped at the top of the piece.
func (t *Transport) Tick() (time.Duration, bool) {
	if t.state != Playing {
		return t.Position(), false
	}
	pos := t.Position()
	if pos >= t.duration {
		t.state = Stopped
		t.offset = 0
		return t.duration, true
	}
	return pos, false
}

// Pause captures the position so Start can resume from it. It returns
// false if the transport wasn't playing.
func (t *Transport) Pause() bool {
	if t.state != Playing {
		return false
	}
	t.offset = min(t.Position(), t.duration)
	t.state = Paused
	return true
}

// Stop resets the position to zero.
func (t *Transport) Stop() {
	t.state = Stopped
	t.offset = 0
}
