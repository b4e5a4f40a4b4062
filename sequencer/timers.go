package sequencer

import (
	"sync"
	"time"
)

// Timer is a handle to a pending callback.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the
	// call stopped the timer; false means it already fired or was stopped.
	Stop() bool
}

// Timers is the wall clock the transport and scheduler run against.
type Timers interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type systemTimers struct{}

// SystemTimers returns Timers backed by the time package.
func SystemTimers() Timers {
	return systemTimers{}
}

func (systemTimers) Now() time.Time {
	return time.Now()
}

func (systemTimers) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// ManualTimers is a clock that only moves when Advance is called. Callbacks
// run synchronously inside Advance, in deadline order (ties in arming
// order), which makes playback deterministic under test.
type ManualTimers struct {
	mu      sync.Mutex
	now     time.Time
	seq     uint64
	pending []*manualTimer
}

type manualTimer struct {
	m    *ManualTimers
	at   time.Time
	seq  uint64
	fn   func()
	done bool
}

// NewManualTimers returns a manual clock starting at the Unix epoch.
func NewManualTimers() *ManualTimers {
	return &ManualTimers{now: time.Unix(0, 0)}
}

func (m *ManualTimers) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *ManualTimers) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()

	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTimer{m: m, at: m.now.Add(d), seq: m.seq, fn: f}
	m.pending = append(m.pending, t)
	return t
}

// Advance moves the clock forward by d, running every callback that comes
// due on the way. Callbacks may arm new timers; those run too if they fall
// inside the window.
func (m *ManualTimers) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		next := m.popDue(target)
		if next == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = next.at
		m.mu.Unlock()

		next.fn()
	}
}

// Pending returns the number of armed callbacks.
func (m *ManualTimers) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

func (m *ManualTimers) popDue(target time.Time) *manualTimer {
	best := -1
	for i, t := range m.pending {
		if t.at.After(target) {
			continue
		}
		if best < 0 || t.at.Before(m.pending[best].at) ||
			(t.at.Equal(m.pending[best].at) && t.seq < m.pending[best].seq) {
			best = i
		}
	}
	if best < 0 {
		return nil
	}
	t := m.pending[best]
	m.pending = append(m.pending[:best], m.pending[best+1:]...)
	t.done = true
	return t
}

func (t *manualTimer) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()

	if t.done {
		return false
	}
	t.done = true
	for i, p := range t.m.pending {
		if p == t {
			t.m.pending = append(t.m.pending[:i], t.m.pending[i+1:]...)
			break
		}
	}
	return true
}
