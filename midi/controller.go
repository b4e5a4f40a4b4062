package midi

// ControllerType identifies the kind of controller
type ControllerType int

const (
	ControllerUnknown ControllerType = iota
	ControllerKeyboard
)

func (t ControllerType) String() string {
	if t == ControllerKeyboard {
		return "keyboard"
	}
	return "unknown"
}

// Controller is the interface for MIDI input devices
type Controller interface {
	ID() string
	Type() ControllerType

	// Events carries note and pedal input. It is closed by Close.
	Events() <-chan Event

	Close() error
}

// Player is what controller input drives
type Player interface {
	PressNote(pitch string, velocity float64)
	ReleaseNote(pitch string)
	SetSustain(on bool)
}
