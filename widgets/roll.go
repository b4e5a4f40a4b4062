package widgets

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"go-piano/note"
	"go-piano/score"
	"go-piano/theme"
)

// RollView sets the time window a piano roll shows
type RollView struct {
	Width int           // time columns
	Span  time.Duration // time covered by Width columns
	Lead  float64       // fraction of the window left of the playhead
}

// DefaultRollView shows four seconds, a quarter of it already played
var DefaultRollView = RollView{Width: 64, Span: 4 * time.Second, Lead: 0.25}

// PlayheadColumn returns the column the playhead is drawn in
func (v RollView) PlayheadColumn() int {
	return int(v.Lead * float64(v.Width))
}

func (v RollView) start(pos time.Duration) time.Duration {
	return pos - time.Duration(v.Lead*float64(v.Span))
}

func (v RollView) cell() time.Duration {
	return v.Span / time.Duration(max(1, v.Width))
}

// RenderRoll draws events around pos, one row per key from hi down to lo.
func RenderRoll(th *theme.Theme, events []score.NoteEvent, pos time.Duration, lo, hi uint8, v RollView) string {
	if v.Width <= 0 || v.Span <= 0 || hi < lo {
		return ""
	}

	rows := int(hi-lo) + 1
	grid := make([][]rune, rows)
	vel := make([][]float64, rows)
	for r := range grid {
		grid[r] = make([]rune, v.Width)
		vel[r] = make([]float64, v.Width)
	}

	sym := th.Symbols
	start := v.start(pos)
	cell := v.cell()
	end := start + cell*time.Duration(v.Width)

	for _, ev := range events {
		if ev.Start >= end || ev.End() < start {
			continue
		}
		k, err := note.Parse(ev.Pitch)
		if err != nil || k < lo || k > hi {
			continue
		}
		r := int(hi - k)

		for c := 0; c < v.Width; c++ {
			c0 := start + cell*time.Duration(c)
			c1 := c0 + cell
			switch {
			case ev.Start >= c0 && ev.Start < c1:
				grid[r][c] = sym.RollOnset
			case ev.Start < c0 && ev.End() > c0:
				if grid[r][c] != sym.RollOnset {
					grid[r][c] = sym.RollNote
				}
			default:
				continue
			}
			vel[r][c] = max(vel[r][c], ev.Velocity)
		}
	}

	label := lipgloss.NewStyle().Foreground(th.Muted())
	labelBlack := lipgloss.NewStyle().Foreground(th.Surface())
	empty := lipgloss.NewStyle().Foreground(th.Surface())
	head := lipgloss.NewStyle().Foreground(th.Accent())
	playhead := v.PlayheadColumn()

	var lines []string
	for r := 0; r < rows; r++ {
		k := hi - uint8(r)
		var line strings.Builder

		name := fmt.Sprintf("%-4s", note.Name(k))
		if note.IsBlack(k) {
			line.WriteString(labelBlack.Render(name))
		} else {
			line.WriteString(label.Render(name))
		}

		for c := 0; c < v.Width; c++ {
			ch := grid[r][c]
			switch {
			case ch != 0:
				line.WriteString(lipgloss.NewStyle().Foreground(th.Velocity(vel[r][c])).Render(string(ch)))
			case c == playhead:
				line.WriteString(head.Render(string(sym.RollPlayhead)))
			default:
				line.WriteString(empty.Render(string(sym.RollEmpty)))
			}
		}
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

// RollRange picks the rows to show: every pitch in the score if it fits in
// maxRows, otherwise maxRows centred on the median pitch.
func RollRange(events []score.NoteEvent, maxRows int) (uint8, uint8) {
	var keys []int
	for _, ev := range events {
		if k, err := note.Parse(ev.Pitch); err == nil {
			keys = append(keys, int(k))
		}
	}
	if len(keys) == 0 {
		return 60, 71
	}
	sort.Ints(keys)

	lo, hi := keys[0], keys[len(keys)-1]
	if maxRows <= 0 || hi-lo+1 <= maxRows {
		return uint8(lo), uint8(hi)
	}

	mid := keys[len(keys)/2]
	lo = max(0, mid-maxRows/2)
	hi = min(127, lo+maxRows-1)
	return uint8(lo), uint8(hi)
}
