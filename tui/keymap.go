package tui

import (
	"sort"

	"github.com/charmbracelet/bubbles/key"

	"go-piano/note"
	"go-piano/widgets"
)

// pianoKeys maps the home and top rows to semitones above the base C.
// a s d f g h j k l ; are white keys, w e t y u o p the black keys between.
var pianoKeys = map[string]int{
	"a": 0, "w": 1, "s": 2, "e": 3, "d": 4, "f": 5, "t": 6, "g": 7,
	"y": 8, "h": 9, "u": 10, "j": 11, "k": 12, "o": 13, "l": 14, "p": 15, ";": 16,
}

// PitchForKey returns the pitch a computer key plays at the given base
// octave.
func PitchForKey(k string, octave int) (string, bool) {
	semi, ok := pianoKeys[k]
	if !ok {
		return "", false
	}
	midi := (octave+1)*12 + semi
	if midi < 0 || midi > 127 {
		return "", false
	}
	return note.Name(uint8(midi)), true
}

// Key builds a binding whose help shows the first key
func Key(help string, keyboardKey ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keyboardKey...), key.WithHelp(keyboardKey[0], help))
}

// KeyMap holds the transport and settings bindings. None of them overlap
// the piano keys.
type KeyMap struct {
	PlayPause  key.Binding
	Stop       key.Binding
	Sustain    key.Binding
	VolumeUp   key.Binding
	VolumeDown key.Binding
	OctaveUp   key.Binding
	OctaveDown key.Binding
	Help       key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the standard bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		PlayPause:  Key("play/pause", " ", "enter"),
		Stop:       Key("stop", "x", "backspace"),
		Sustain:    Key("sustain", "tab"),
		VolumeUp:   Key("vol+", "=", "+"),
		VolumeDown: Key("vol-", "-", "_"),
		OctaveUp:   Key("oct+", "]", "right"),
		OctaveDown: Key("oct-", "[", "left"),
		Help:       Key("help", "?"),
		Quit:       Key("quit", "q", "ctrl+c", "esc"),
	}
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PlayPause, k.Stop, k.Sustain, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PlayPause, k.Stop},
		{k.VolumeUp, k.VolumeDown, k.Sustain},
		{k.OctaveUp, k.OctaveDown},
		{k.Help, k.Quit},
	}
}

// KeySections lists every binding for printing outside the TUI, the piano
// keys in order from the lowest note.
func KeySections(k KeyMap, octave int) []widgets.KeySection {
	piano := make([]string, 0, len(pianoKeys))
	for name := range pianoKeys {
		piano = append(piano, name)
	}
	sort.Slice(piano, func(i, j int) bool {
		return pianoKeys[piano[i]] < pianoKeys[piano[j]]
	})

	notes := widgets.KeySection{Title: "Piano"}
	for _, name := range piano {
		if pitch, ok := PitchForKey(name, octave); ok {
			notes.Keys = append(notes.Keys, widgets.KeyBinding{Key: name, Desc: pitch})
		}
	}

	controls := widgets.KeySection{Title: "Controls"}
	for _, group := range k.FullHelp() {
		for _, b := range group {
			h := b.Help()
			controls.Keys = append(controls.Keys, widgets.KeyBinding{Key: h.Key, Desc: h.Desc})
		}
	}
	return []widgets.KeySection{notes, controls}
}
