package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-piano/note"
	"go-piano/theme"
)

// RenderKeyboard draws keys lo..hi as a two-row strip, one column per
// semitone. Pressed keys use the pressed symbol in the active color.
func RenderKeyboard(th *theme.Theme, lo, hi uint8, pressed []string) string {
	down := make(map[uint8]bool, len(pressed))
	for _, p := range pressed {
		if k, err := note.Parse(p); err == nil {
			down[k] = true
		}
	}

	white := lipgloss.NewStyle().Foreground(th.FG())
	black := lipgloss.NewStyle().Foreground(th.Surface())
	active := lipgloss.NewStyle().Foreground(th.Active())
	sym := th.Symbols

	var top, bottom strings.Builder
	for k := int(lo); k <= int(hi); k++ {
		key := uint8(k)
		isDown := down[key]

		switch {
		case note.IsBlack(key) && isDown:
			top.WriteString(active.Render(string(sym.PressedKey)))
			bottom.WriteString(white.Render(string(sym.WhiteKey)))
		case note.IsBlack(key):
			top.WriteString(black.Render(string(sym.BlackKey)))
			bottom.WriteString(white.Render(string(sym.WhiteKey)))
		case isDown:
			top.WriteString(active.Render(string(sym.PressedKey)))
			bottom.WriteString(active.Render(string(sym.PressedKey)))
		default:
			top.WriteString(white.Render(string(sym.WhiteKey)))
			bottom.WriteString(white.Render(string(sym.WhiteKey)))
		}
	}
	return top.String() + "\n" + bottom.String()
}

// KeyboardRange returns the span to draw so that every pitch is visible,
// padded out to whole octaves and at least minKeys wide.
func KeyboardRange(pitches []string, minKeys int) (uint8, uint8) {
	lo, hi := uint8(note.Highest), uint8(note.Lowest)
	for _, p := range pitches {
		k, err := note.Parse(p)
		if err != nil {
			continue
		}
		lo = min(lo, k)
		hi = max(hi, k)
	}
	if lo > hi {
		lo, hi = 60, 60
	}

	lo -= lo % 12
	hi += 11 - hi%12
	for int(hi)-int(lo)+1 < minKeys {
		moved := false
		if lo >= 12 {
			lo -= 12
			moved = true
		}
		if int(hi)-int(lo)+1 < minKeys && hi <= 127-12 {
			hi += 12
			moved = true
		}
		if !moved {
			break
		}
	}
	return lo, hi
}
