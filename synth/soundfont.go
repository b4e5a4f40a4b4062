package synth

import (
	"fmt"
	"io"
	"os"

	"github.com/gopxl/beep"
	"github.com/sinshu/go-meltysynth/meltysynth"
)

// SoundFont plays notes through a sampled instrument from an .sf2 file.
//
// SoundFont is not safe for concurrent use.
type SoundFont struct {
	synth   *meltysynth.Synthesizer
	channel int32
	left    []float32
	right   []float32
}

// LoadSoundFont reads an .sf2 file
func LoadSoundFont(path string, sr beep.SampleRate, channel int) (*SoundFont, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open soundfont: %w", err)
	}
	defer f.Close()

	return NewSoundFont(f, sr, channel)
}

// NewSoundFont builds a synthesizer from SoundFont data. channel is the
// 0-based MIDI channel notes are played on.
func NewSoundFont(r io.Reader, sr beep.SampleRate, channel int) (*SoundFont, error) {
	sf, err := meltysynth.NewSoundFont(r)
	if err != nil {
		return nil, fmt.Errorf("parse soundfont: %w", err)
	}

	settings := meltysynth.NewSynthesizerSettings(int32(sr))
	synth, err := meltysynth.NewSynthesizer(sf, settings)
	if err != nil {
		return nil, fmt.Errorf("create synthesizer: %w", err)
	}

	return &SoundFont{
		synth:   synth,
		channel: int32(max(0, min(15, channel))),
	}, nil
}

// NoteOn takes a velocity already shaped by Velocity.
func (s *SoundFont) NoteOn(key uint8, velocity float64) {
	vel := int32(scale127(velocity))
	if vel == 0 {
		return
	}
	s.synth.NoteOn(s.channel, int32(key), vel)
}

func (s *SoundFont) NoteOff(key uint8) {
	s.synth.NoteOff(s.channel, int32(key))
}

// Stream implements beep.Streamer.
func (s *SoundFont) Stream(samples [][2]float64) (int, bool) {
	if cap(s.left) < len(samples) {
		s.left = make([]float32, len(samples))
		s.right = make([]float32, len(samples))
	}
	left := s.left[:len(samples)]
	right := s.right[:len(samples)]

	s.synth.Render(left, right)

	for i := range samples {
		samples[i][0] = float64(left[i])
		samples[i][1] = float64(right[i])
	}
	return len(samples), true
}

func (s *SoundFont) Err() error {
	return nil
}
