package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"go-piano/config"
	"go-piano/debug"
	"go-piano/midi"
	"go-piano/note"
	"go-piano/score"
	"go-piano/sequencer"
	"go-piano/synth"
	"go-piano/theme"
	"go-piano/tui"
	"go-piano/widgets"
)

var Version = "dev"

// Command-line overrides; zero values leave the config alone
var flags struct {
	output    string
	port      string
	soundFont string
	channel   int
	verbose   bool
}

var rootCmd = &cobra.Command{
	Use:   "go-piano [file.mid]",
	Short: "A terminal piano that plays MIDI files",
	Long: `go-piano plays Standard MIDI Files and turns the computer keyboard
(or any MIDI keyboard) into a piano.

Notes go to a built-in synth, a SoundFont, or an external MIDI port.`,
	Version: Version,
	Args:    cobra.MaximumNArgs(1),
	RunE:    runPiano,
}

var infoCmd = &cobra.Command{
	Use:   "info FILE",
	Short: "Print a summary of a MIDI file",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Show the computer keyboard layout",
	Args:  cobra.NoArgs,
	RunE:  runKeys,
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI input and output ports",
	Args:  cobra.NoArgs,
	RunE:  runPorts,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false,
		"Write debug logs to ~/.config/go-piano/debug.log")

	rootCmd.Flags().StringVarP(&flags.output, "output", "o", "",
		"Note output: synth, soundfont or midi")
	rootCmd.Flags().StringVarP(&flags.port, "port", "p", "",
		"MIDI output port name (substring match)")
	rootCmd.Flags().StringVar(&flags.soundFont, "soundfont", "",
		"Path to an .sf2 file")
	rootCmd.Flags().IntVarP(&flags.channel, "channel", "c", 0,
		"MIDI channel 1-16 for midi and soundfont output")

	rootCmd.AddCommand(infoCmd, keysCmd, portsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runPiano(cmd *cobra.Command, args []string) error {
	if flags.verbose {
		if err := debug.Enable(); err != nil {
			return fmt.Errorf("enable debug log: %w", err)
		}
		defer debug.Disable()
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyFlags(cfg)
	cfg.Validate()

	sink, closer, err := buildSink(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	player := sequencer.New(sink, cfg.Playback.Options()...)
	defer player.Close()

	var s *score.Score
	if len(args) == 1 {
		s, err = score.LoadSMF(args[0])
		if err != nil {
			return err
		}
		player.Load(s)
		cfg.UI.LastFile = args[0]
	}

	palette, err := theme.LoadOrDefault(cfg.UI.Palette)
	if err != nil {
		debug.Warn("main", "palette: %v, using default", err)
	}
	th := theme.New(palette)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go midi.NewDeviceManager(cfg.InputFilters()...).Serve(ctx, player)

	m := tui.NewModel(player, s, th, tui.Settings{
		Volume:     cfg.Volume,
		Sustain:    cfg.Sustain,
		BaseOctave: cfg.BaseOctave,
	})
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}

	if fm, ok := final.(tui.Model); ok {
		st := fm.Settings()
		cfg.Volume, cfg.Sustain, cfg.BaseOctave = st.Volume, st.Sustain, st.BaseOctave
	}
	if err := cfg.Save(); err != nil {
		debug.Warn("main", "save config: %v", err)
	}
	return nil
}

func applyFlags(cfg *config.Config) {
	if flags.output != "" {
		cfg.Output.Kind = config.OutputKind(strings.ToLower(flags.output))
	}
	if flags.port != "" {
		cfg.Output.PortName = flags.port
		if flags.output == "" {
			cfg.Output.Kind = config.OutputMIDI
		}
	}
	if flags.soundFont != "" {
		cfg.Output.SoundFont = flags.soundFont
		if flags.output == "" {
			cfg.Output.Kind = config.OutputSoundFont
		}
	}
	if flags.channel != 0 {
		cfg.Output.Channel = flags.channel
	}
}

// buildSink creates the configured note output. A SoundFont that fails to
// load falls back to the built-in synth.
func buildSink(cfg *config.Config) (sequencer.Sink, io.Closer, error) {
	channel := cfg.Output.Channel - 1

	switch cfg.Output.Kind {
	case config.OutputMIDI:
		if cfg.Output.PortName == "" {
			return nil, nil, errors.New("midi output needs a port name (--port)")
		}
		out := midi.NewOutput(cfg.Output.PortName, channel)
		return out, out, nil

	case config.OutputSoundFont:
		sf, err := synth.LoadSoundFont(cfg.Output.SoundFont, synth.SampleRate, channel)
		if err == nil {
			out := synth.NewOutput(sf, synth.SampleRate)
			return out, out, nil
		}
		fmt.Fprintf(os.Stderr, "soundfont: %v, using built-in synth\n", err)
		debug.Warn("main", "soundfont %s: %v", cfg.Output.SoundFont, err)
	}

	out := synth.NewOutput(synth.NewOscillator(synth.SampleRate), synth.SampleRate)
	return out, out, nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	if flags.verbose {
		debug.EnableTo(os.Stderr)
		defer debug.Disable()
	}

	s, err := score.LoadSMF(args[0])
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s\n", filepath.Base(args[0]))
	fmt.Fprintf(w, "  tracks:   %d\n", s.Tracks)
	fmt.Fprintf(w, "  notes:    %d\n", len(s.Events))
	fmt.Fprintf(w, "  duration: %.2fs\n", s.Duration.Seconds())

	lo, hi, ok := pitchRange(s)
	if ok {
		fmt.Fprintf(w, "  range:    %s - %s\n", note.Name(lo), note.Name(hi))
	}
	return nil
}

func pitchRange(s *score.Score) (uint8, uint8, bool) {
	lo, hi := uint8(127), uint8(0)
	found := false
	for _, ev := range s.Events {
		k, err := note.Parse(ev.Pitch)
		if err != nil {
			continue
		}
		lo, hi = min(lo, k), max(hi, k)
		found = true
	}
	return lo, hi, found
}

func runKeys(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.Validate()

	fmt.Fprintln(cmd.OutOrStdout(), widgets.RenderKeyHelp(tui.KeySections(tui.DefaultKeyMap(), cfg.BaseOctave)))
	return nil
}

func runPorts(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "(waiting up to 3 seconds...)")

	ports, err := midi.ListPorts(midi.PortTimeout)
	if errors.Is(err, midi.ErrTimeout) {
		return fmt.Errorf("%w\nfix: sudo killall coreaudiod midiserver", err)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "=== MIDI Input Ports ===")
	for i, name := range ports.InNames() {
		fmt.Fprintf(w, "  %d: %s\n", i, name)
	}
	fmt.Fprintln(w, "\n=== MIDI Output Ports ===")
	for i, name := range ports.OutNames() {
		fmt.Fprintf(w, "  %d: %s\n", i, name)
	}
	return nil
}
