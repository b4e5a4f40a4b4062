package sequencer

import (
	"sort"

	"go-piano/note"
)

// ActiveNotes tracks which pitches are currently sounding. Each pitch is
// reference counted so playback and live input holding the same key don't
// release each other.
type ActiveNotes struct {
	counts map[string]int
}

// NewActiveNotes creates an empty set
func NewActiveNotes() *ActiveNotes {
	return &ActiveNotes{counts: make(map[string]int)}
}

// Press adds a reference and reports whether the pitch was silent before.
func (a *ActiveNotes) Press(pitch string) bool {
	a.counts[pitch]++
	return a.counts[pitch] == 1
}

// Release drops a reference and reports whether that was the last one.
// Releasing a pitch that isn't held is a no-op.
func (a *ActiveNotes) Release(pitch string) bool {
	n, ok := a.counts[pitch]
	if !ok {
		return false
	}
	if n <= 1 {
		delete(a.counts, pitch)
		return true
	}
	a.counts[pitch] = n - 1
	return false
}

// Has reports whether the pitch is sounding
func (a *ActiveNotes) Has(pitch string) bool {
	return a.counts[pitch] > 0
}

// Count returns the reference count for a pitch
func (a *ActiveNotes) Count(pitch string) int {
	return a.counts[pitch]
}

// Len returns the number of distinct sounding pitches
func (a *ActiveNotes) Len() int {
	return len(a.counts)
}

// Clear forgets every pitch and returns what was held.
func (a *ActiveNotes) Clear() []string {
	held := a.Sorted()
	clear(a.counts)
	return held
}

// Sorted returns the sounding pitches from low to high.
func (a *ActiveNotes) Sorted() []string {
	out := make([]string, 0, len(a.counts))
	for p := range a.counts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		mi, erri := note.Parse(out[i])
		mj, errj := note.Parse(out[j])
		if erri != nil || errj != nil {
			return out[i] < out[j]
		}
		return mi < mj
	})
	return out
}
