// Package note converts between pitch names and MIDI note numbers.
//
// Canonical names use sharps and scientific octave numbers with C4 = 60:
// "C4", "D#4", "A0". Parse accepts the spellings the rest of the world
// produces ("Ds4", "Eb4", "E♭4", "c#4") and Normalize maps them all to the
// canonical form so names can be compared and used as map keys.
package note

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Fallback is substituted for pitch names that cannot be parsed.
const Fallback = "C4"

// Range of an 88-key piano
const (
	Lowest  uint8 = 21  // A0
	Highest uint8 = 108 // C8
)

// Octave bounds a loaded name is folded into
const (
	MinOctave = 0
	MaxOctave = 8
)

// ErrInvalid is returned for names that are not a letter, accidentals and an octave.
var ErrInvalid = errors.New("invalid pitch")

var names = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var letters = map[rune]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

// Name returns the canonical name of a MIDI note number.
func Name(midi uint8) string {
	return fmt.Sprintf("%s%d", names[midi%12], Octave(midi))
}

// Octave returns the scientific octave of a MIDI note number.
func Octave(midi uint8) int {
	return int(midi)/12 - 1
}

// IsBlack reports whether the note is a black key.
func IsBlack(midi uint8) bool {
	return strings.HasSuffix(names[midi%12], "#")
}

// Parse returns the MIDI note number for a pitch name.
func Parse(s string) (uint8, error) {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) < 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalid, s)
	}

	semi, ok := letters[toUpper(runes[0])]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalid, s)
	}

	i := 1
	for ; i < len(runes); i++ {
		switch runes[i] {
		case '#', 's', '♯':
			semi++
			continue
		case 'b', '♭':
			semi--
			continue
		}
		break
	}

	oct, err := strconv.Atoi(string(runes[i:]))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalid, s)
	}

	midi := (oct+1)*12 + semi
	if midi < 0 || midi > 127 {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalid, s)
	}
	return uint8(midi), nil
}

// Normalize returns the canonical spelling of a pitch name.
func Normalize(s string) (string, error) {
	midi, err := Parse(s)
	if err != nil {
		return "", err
	}
	return Name(midi), nil
}

// Sanitize normalizes s, substituting Fallback when it cannot be parsed.
// The bool reports whether s was usable.
func Sanitize(s string) (string, bool) {
	n, err := Normalize(s)
	if err != nil {
		return Fallback, false
	}
	return n, true
}

// Fold shifts a note by whole octaves until it lies within
// MinOctave..MaxOctave, keeping its pitch class.
func Fold(midi uint8) uint8 {
	for Octave(midi) < MinOctave {
		midi += 12
	}
	for Octave(midi) > MaxOctave {
		midi -= 12
	}
	return midi
}

func toUpper(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - 'a' + 'A'
	}
	return r
}
