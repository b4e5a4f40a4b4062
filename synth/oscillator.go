package synth

import (
	"math"
	"time"

	"github.com/gopxl/beep"
)

// Envelope and level of the built-in voice.
const (
	attackTime  = 20 * time.Millisecond
	releaseTime = 1200 * time.Millisecond
	voiceGain   = 0.08
)

type voice struct {
	step  float64 // phase increment per sample
	phase float64
	peak  float64
	level float64
	held  bool
}

// Oscillator is a small additive piano voice, used when no SoundFont is
// available. Each key has at most one voice; striking a sounding key
// retriggers it.
//
// Oscillator is not safe for concurrent use.
type Oscillator struct {
	sr      beep.SampleRate
	attack  float64 // level change per sample
	release float64
	voices  map[uint8]*voice
}

// NewOscillator creates a silent oscillator bank
func NewOscillator(sr beep.SampleRate) *Oscillator {
	return &Oscillator{
		sr:      sr,
		attack:  1 / float64(max(1, sr.N(attackTime))),
		release: 1 / float64(max(1, sr.N(releaseTime))),
		voices:  make(map[uint8]*voice),
	}
}

func (o *Oscillator) NoteOn(key uint8, velocity float64) {
	v, ok := o.voices[key]
	if !ok {
		v = &voice{step: 2 * math.Pi * Frequency(key) / float64(o.sr)}
		o.voices[key] = v
	}
	v.peak = velocity
	v.held = true
}

func (o *Oscillator) NoteOff(key uint8) {
	if v, ok := o.voices[key]; ok {
		v.held = false
	}
}

// Voices returns the number of voices still making sound
func (o *Oscillator) Voices() int {
	return len(o.voices)
}

func (o *Oscillator) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		samples[i] = [2]float64{}
	}

	for key, v := range o.voices {
		for i := range samples {
			if v.held {
				v.level = math.Min(v.peak, v.level+o.attack)
			} else {
				v.level -= o.release
				if v.level <= 0 {
					delete(o.voices, key)
					break
				}
			}

			s := v.level * voiceGain * piano(v.phase)
			samples[i][0] += s
			samples[i][1] += s

			v.phase += v.step
			if v.phase > 2*math.Pi {
				v.phase -= 2 * math.Pi
			}
		}
	}
	return len(samples), true
}

func (o *Oscillator) Err() error {
	return nil
}

// piano is a fundamental with two decaying harmonics
func piano(p float64) float64 {
	return math.Sin(p) + 0.5*math.Sin(2*p) + 0.2*math.Sin(3*p)
}
