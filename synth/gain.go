// Package synth turns note commands into audio. All loudness shaping
// happens here: the sequencer passes score velocities through untouched.
package synth

import "math"

// Master volume range in dB for a 0-1 volume setting.
const (
	MinDB   = -20.0
	MaxDB   = 10.0
	FloorDB = -60.0
)

// VelocityBoost scales note velocities before they reach an engine.
const VelocityBoost = 1.5

// VolumeDB maps a 0-1 volume to MinDB..MaxDB, never below FloorDB.
func VolumeDB(v float64) float64 {
	v = clamp01(v)
	return math.Max(FloorDB, MinDB+v*(MaxDB-MinDB))
}

// Amplitude converts dB to a linear factor.
func Amplitude(db float64) float64 {
	return math.Pow(10, db/20)
}

// Velocity applies the velocity curve: a flat boost, capped at 1.
func Velocity(v float64) float64 {
	return math.Min(1, clamp01(v)*VelocityBoost)
}

// MIDIVelocity is Velocity scaled to 1-127. Zero stays zero since a MIDI
// NoteOn with velocity 0 is a NoteOff.
func MIDIVelocity(v float64) uint8 {
	return scale127(Velocity(v))
}

// scale127 maps an already shaped velocity onto 0-127 without reshaping it.
func scale127(c float64) uint8 {
	c = clamp01(c)
	if c <= 0 {
		return 0
	}
	return uint8(max(1, math.Round(c*127)))
}

// Frequency returns the equal-tempered frequency of a MIDI key, A4 = 440Hz.
func Frequency(key uint8) float64 {
	return 440 * math.Pow(2, (float64(key)-69)/12)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
