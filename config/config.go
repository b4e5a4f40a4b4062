package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"go-piano/note"
	"go-piano/sequencer"
)

// OutputKind selects the note sink
type OutputKind string

const (
	OutputSynth     OutputKind = "synth"     // built-in oscillator
	OutputSoundFont OutputKind = "soundfont" // .sf2 through meltysynth
	OutputMIDI      OutputKind = "midi"      // external instrument
)

// OutputConfig defines where notes go
type OutputConfig struct {
	Kind      OutputKind `json:"kind"`
	PortName  string     `json:"portName,omitempty"`  // midi
	SoundFont string     `json:"soundFont,omitempty"` // soundfont
	Channel   int        `json:"channel,omitempty"`   // 1-16
}

// PlaybackConfig tunes the scheduler and transport
type PlaybackConfig struct {
	MinNoteMs      int `json:"minNoteMs"`
	TickFPS        int `json:"tickFps"`
	ReadyTimeoutMs int `json:"readyTimeoutMs"`
}

// InputConfig defines a saved keyboard
type InputConfig struct {
	PortName    string `json:"portName"`
	AutoConnect bool   `json:"autoConnect"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	LastFile string `json:"lastFile,omitempty"`
	Palette  string `json:"palette,omitempty"` // path to a .gpl file
}

// Config is the main configuration structure
type Config struct {
	Volume     float64        `json:"volume"`
	Sustain    bool           `json:"sustain"`
	BaseOctave int            `json:"baseOctave"`
	Output     OutputConfig   `json:"output"`
	Playback   PlaybackConfig `json:"playback"`
	Inputs     []InputConfig  `json:"inputs,omitempty"`
	UI         UIConfig       `json:"ui,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Volume:     0.7,
		BaseOctave: 4,
		Output: OutputConfig{
			Kind:    OutputSynth,
			Channel: 1,
		},
		Playback: PlaybackConfig{
			MinNoteMs:      100,
			TickFPS:        30,
			ReadyTimeoutMs: 5000,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-piano"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// LoadFile reads a config file. Missing fields keep their defaults and
// out-of-range values are clamped.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.Validate()
	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config to path, creating its directory
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate clamps every field into range and fills in what's missing.
func (c *Config) Validate() {
	d := DefaultConfig()

	if math.IsNaN(c.Volume) {
		c.Volume = d.Volume
	}
	c.Volume = max(0, min(1, c.Volume))
	c.BaseOctave = max(note.MinOctave, min(note.MaxOctave-1, c.BaseOctave))

	switch c.Output.Kind {
	case OutputSynth, OutputSoundFont, OutputMIDI:
	default:
		c.Output.Kind = d.Output.Kind
	}
	if c.Output.Channel < 1 || c.Output.Channel > 16 {
		c.Output.Channel = d.Output.Channel
	}

	if c.Playback.MinNoteMs <= 0 {
		c.Playback.MinNoteMs = d.Playback.MinNoteMs
	}
	if c.Playback.TickFPS <= 0 || c.Playback.TickFPS > 240 {
		c.Playback.TickFPS = d.Playback.TickFPS
	}
	if c.Playback.ReadyTimeoutMs <= 0 {
		c.Playback.ReadyTimeoutMs = d.Playback.ReadyTimeoutMs
	}
}

// Options turns playback settings into player options
func (p PlaybackConfig) Options() []sequencer.Option {
	var opts []sequencer.Option
	if p.MinNoteMs > 0 {
		opts = append(opts, sequencer.WithMinNote(time.Duration(p.MinNoteMs)*time.Millisecond))
	}
	if p.TickFPS > 0 {
		opts = append(opts, sequencer.WithTickInterval(time.Second/time.Duration(p.TickFPS)))
	}
	if p.ReadyTimeoutMs > 0 {
		opts = append(opts, sequencer.WithReadyTimeout(time.Duration(p.ReadyTimeoutMs)*time.Millisecond))
	}
	return opts
}

// FindInput finds an input config by port name
func (c *Config) FindInput(portName string) *InputConfig {
	for i := range c.Inputs {
		if c.Inputs[i].PortName == portName {
			return &c.Inputs[i]
		}
	}
	return nil
}

// AddInput adds or updates an input config
func (c *Config) AddInput(in InputConfig) {
	for i := range c.Inputs {
		if c.Inputs[i].PortName == in.PortName {
			c.Inputs[i] = in
			return
		}
	}
	c.Inputs = append(c.Inputs, in)
}

// InputFilters returns the port names to auto-connect. Empty means any
// keyboard.
func (c *Config) InputFilters() []string {
	var result []string
	for _, in := range c.Inputs {
		if in.AutoConnect {
			result = append(result, in.PortName)
		}
	}
	return result
}
