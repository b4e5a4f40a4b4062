package synth

import "sort"

// Pedal defers note releases while the sustain pedal is down.
type Pedal struct {
	down     bool
	deferred map[string]bool
}

// NewPedal creates a pedal in the up position
func NewPedal() *Pedal {
	return &Pedal{deferred: make(map[string]bool)}
}

// Down reports whether the pedal is held
func (p *Pedal) Down() bool {
	return p.down
}

// Strike records that a pitch sounded again, so an earlier deferred
// release no longer applies.
func (p *Pedal) Strike(pitch string) {
	delete(p.deferred, pitch)
}

// Release reports whether a NoteOff should go out now. With the pedal down
// the release is held back until the pedal lifts.
func (p *Pedal) Release(pitch string) bool {
	if !p.down {
		return true
	}
	p.deferred[pitch] = true
	return false
}

// Set moves the pedal. Lifting it returns every deferred pitch, which the
// caller must release.
func (p *Pedal) Set(down bool) []string {
	p.down = down
	if down || len(p.deferred) == 0 {
		return nil
	}
	out := make([]string, 0, len(p.deferred))
	for pitch := range p.deferred {
		out = append(out, pitch)
	}
	sort.Strings(out)
	clear(p.deferred)
	return out
}
