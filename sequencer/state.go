package sequencer

import "time"

// TransportState is the playback state of the transport
type TransportState int

const (
	Stopped TransportState = iota
	Playing
	Paused
)

func (s TransportState) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	}
	return "unknown"
}

// State is a point-in-time copy of everything the UI renders.
type State struct {
	Name        string
	Loaded      bool
	State       TransportState
	Playing     bool
	CurrentTime time.Duration
	Duration    time.Duration
	ActiveNotes []string
}

// Progress returns CurrentTime as a fraction of Duration in [0, 1].
func (s State) Progress() float64 {
	if s.Duration <= 0 {
		return 0
	}
	p := float64(s.CurrentTime) / float64(s.Duration)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
