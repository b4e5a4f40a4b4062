package midi

import "go-piano/note"

// MIDI message types
const (
	NoteOn  uint8 = 0x90
	NoteOff uint8 = 0x80
	CC      uint8 = 0xB0
)

// Controller numbers we care about
const (
	CCVolume   uint8 = 7
	CCSustain  uint8 = 64
	CCAllNotes uint8 = 123
)

// Event is one message from a controller
type Event struct {
	Type     uint8 // NoteOn, NoteOff, CC
	Channel  uint8
	Note     uint8 // controller number for CC
	Velocity uint8 // value for CC
}

// Pitch returns the note name, folded into the piano's octave range.
func (e Event) Pitch() string {
	return note.Name(note.Fold(e.Note))
}

// Apply forwards the event to a player. Unhandled controllers are ignored.
func (e Event) Apply(p Player) {
	switch e.Type {
	case NoteOn:
		p.PressNote(e.Pitch(), float64(e.Velocity)/127)
	case NoteOff:
		p.ReleaseNote(e.Pitch())
	case CC:
		if e.Note == CCSustain {
			p.SetSustain(e.Velocity >= 64)
		}
	}
}
