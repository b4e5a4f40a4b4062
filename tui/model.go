package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-piano/debug"
	"go-piano/note"
	"go-piano/score"
	"go-piano/sequencer"
	"go-piano/theme"
	"go-piano/widgets"
)

// Terminals don't report key releases, so a computer-key note is held this
// long after the last press (autorepeat keeps extending it).
const KeyHold = 350 * time.Millisecond

// live input velocity for computer keys
const keyVelocity = 0.8

const (
	volumeStep   = 0.05
	rollRows     = 24
	keyboardKeys = 36
)

// Settings are the user adjustable values worth persisting
type Settings struct {
	Volume     float64
	Sustain    bool
	BaseOctave int
}

type Model struct {
	Player *sequencer.Player
	Theme  *theme.Theme
	Keys   KeyMap

	score    *score.Score
	settings Settings
	held     map[string]uint64 // pitch -> hold generation
	holdSeq  uint64
	status   string
	width    int
	quitting bool

	help     help.Model
	progress progress.Model
}

type UpdateMsg struct{}

type releaseMsg struct {
	pitch string
	gen   uint64
}

type playResultMsg struct {
	err error
}

// NewModel creates the UI. s may be nil when nothing is loaded.
func NewModel(player *sequencer.Player, s *score.Score, th *theme.Theme, settings Settings) Model {
	bar := progress.New(
		progress.WithGradient(string(th.Muted()), string(th.Success())),
		progress.WithoutPercentage(),
	)
	player.SetVolume(settings.Volume)
	player.SetSustain(settings.Sustain)

	return Model{
		Player:   player,
		Theme:    th,
		Keys:     DefaultKeyMap(),
		score:    s,
		settings: settings,
		held:     make(map[string]uint64),
		width:    80,
		help:     help.New(),
		progress: bar,
	}
}

// Settings returns the current settings
func (m Model) Settings() Settings {
	return m.settings
}

func ListenForUpdates(player *sequencer.Player) tea.Cmd {
	return func() tea.Msg {
		<-player.Updates()
		return UpdateMsg{}
	}
}

func play(player *sequencer.Player) tea.Cmd {
	return func() tea.Msg {
		return playResultMsg{err: player.Play()}
	}
}

func release(pitch string, gen uint64) tea.Cmd {
	return tea.Tick(KeyHold, func(time.Time) tea.Msg {
		return releaseMsg{pitch: pitch, gen: gen}
	})
}

func (m Model) Init() tea.Cmd {
	return ListenForUpdates(m.Player)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case UpdateMsg:
		return m, ListenForUpdates(m.Player)

	case playResultMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
		} else {
			m.status = ""
		}

	case releaseMsg:
		if gen, ok := m.held[msg.pitch]; ok && gen == msg.gen {
			delete(m.held, msg.pitch)
			m.Player.ReleaseNote(msg.pitch)
		}
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Quit):
		m.quitting = true
		m.Player.Stop()
		m.releaseAll()
		return m, tea.Quit

	case key.Matches(msg, m.Keys.PlayPause):
		if m.Player.Snapshot().Playing {
			m.Player.Pause()
			return m, nil
		}
		return m, play(m.Player)

	case key.Matches(msg, m.Keys.Stop):
		m.Player.Stop()

	case key.Matches(msg, m.Keys.Sustain):
		m.settings.Sustain = !m.settings.Sustain
		m.Player.SetSustain(m.settings.Sustain)

	case key.Matches(msg, m.Keys.VolumeUp):
		m.setVolume(m.settings.Volume + volumeStep)

	case key.Matches(msg, m.Keys.VolumeDown):
		m.setVolume(m.settings.Volume - volumeStep)

	case key.Matches(msg, m.Keys.OctaveUp):
		if m.settings.BaseOctave < note.MaxOctave-1 {
			m.settings.BaseOctave++
		}

	case key.Matches(msg, m.Keys.OctaveDown):
		if m.settings.BaseOctave > note.MinOctave {
			m.settings.BaseOctave--
		}

	case key.Matches(msg, m.Keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	default:
		pitch, ok := PitchForKey(strings.ToLower(msg.String()), m.settings.BaseOctave)
		if !ok {
			return m, nil
		}
		cmd := m.press(pitch)
		return m, cmd
	}

	return m, nil
}

// press sounds a pitch, or extends the hold if the key is repeating
func (m *Model) press(pitch string) tea.Cmd {
	if _, ok := m.held[pitch]; !ok {
		m.Player.PressNote(pitch, keyVelocity)
	}
	m.holdSeq++
	m.held[pitch] = m.holdSeq
	return release(pitch, m.holdSeq)
}

func (m *Model) releaseAll() {
	for pitch := range m.held {
		m.Player.ReleaseNote(pitch)
	}
	clear(m.held)
}

func (m *Model) setVolume(v float64) {
	// round to the step so repeated presses land on clean values
	v = float64(int(v/volumeStep+0.5)) * volumeStep
	m.settings.Volume = max(0, min(1, v))
	m.Player.SetVolume(m.settings.Volume)
	debug.Log("tui", "volume %.0f%%", m.settings.Volume*100)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	snap := m.Player.Snapshot()
	th := m.Theme

	headerStyle := lipgloss.NewStyle().Foreground(th.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(th.Muted())
	warnStyle := lipgloss.NewStyle().Foreground(th.Warning())

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(headerStyle.Render(m.header(snap)))
	out.WriteString("\n")
	out.WriteString(dimStyle.Render(m.settingsLine()))
	out.WriteString("\n\n")

	if m.score != nil {
		lo, hi := widgets.RollRange(m.score.Events, rollRows)
		view := widgets.DefaultRollView
		view.Width = max(16, m.width-6)
		visible := m.score.Window(snap.CurrentTime-view.Span, snap.CurrentTime+view.Span)
		out.WriteString(widgets.RenderRoll(th, visible, snap.CurrentTime, lo, hi, view))
		out.WriteString("\n\n")

		m.progress.Width = max(16, m.width-6)
		out.WriteString("    ")
		out.WriteString(m.progress.ViewAs(snap.Progress()))
		out.WriteString("\n\n")
	} else {
		out.WriteString(dimStyle.Render("no file loaded, play with the keyboard"))
		out.WriteString("\n\n")
	}

	base, _ := PitchForKey("a", m.settings.BaseOctave)
	top, _ := PitchForKey(";", m.settings.BaseOctave)
	lo, hi := widgets.KeyboardRange(append([]string{base, top}, snap.ActiveNotes...), keyboardKeys)
	out.WriteString(widgets.RenderKeyboard(th, lo, hi, snap.ActiveNotes))
	out.WriteString("\n\n")

	out.WriteString(m.help.View(m.Keys))

	if m.status != "" {
		out.WriteString("\n")
		out.WriteString(warnStyle.Render(m.status))
	}

	return out.String()
}

func (m Model) header(snap sequencer.State) string {
	sym := m.Theme.Symbols
	icon := sym.Stop
	switch snap.State {
	case sequencer.Playing:
		icon = sym.Play
	case sequencer.Paused:
		icon = sym.Pause
	}

	name := "go-piano"
	if snap.Loaded {
		name = snap.Name
	}
	return fmt.Sprintf("%c %s  %s / %s", icon, name, clock(snap.CurrentTime), clock(snap.Duration))
}

func (m Model) settingsLine() string {
	sus := "off"
	if m.settings.Sustain {
		sus = "on"
	}
	return fmt.Sprintf("vol %3.0f%%  sustain %s  octave %d", m.settings.Volume*100, sus, m.settings.BaseOctave)
}

// clock formats a position as m:ss.t
func clock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	tenths := int(d / (100 * time.Millisecond))
	return fmt.Sprintf("%d:%02d.%d", tenths/600, tenths/10%60, tenths%10)
}
