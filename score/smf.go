package score

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gitlab.com/gomidi/midi/v2/smf"

	"go-piano/debug"
	"go-piano/note"
)

type noteKey struct {
	track int
	ch    uint8
	key   uint8
}

type openNote struct {
	start int64 // microseconds
	vel   uint8
}

// LoadSMF reads a standard MIDI file from disk.
func LoadSMF(path string) (*Score, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadSMF(filepath.Base(path), f)
}

// ReadSMF parses a standard MIDI file into a Score. Tempo changes are baked
// into absolute times; a note still held at the end of its track is closed
// at the end of the file.
func ReadSMF(name string, r io.Reader) (*Score, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	file, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}

	open := make(map[noteKey][]openNote)
	tracks := make([][]RawNote, len(file.Tracks))
	var end int64

	smf.ReadTracksFrom(bytes.NewReader(data)).Do(func(ev smf.TrackEvent) {
		if ev.AbsMicroSeconds > end {
			end = ev.AbsMicroSeconds
		}
		if ev.TrackNo < 0 || ev.TrackNo >= len(tracks) {
			return
		}

		var ch, key, vel uint8
		switch {
		case ev.Message.GetNoteStart(&ch, &key, &vel):
			k := noteKey{ev.TrackNo, ch, key}
			open[k] = append(open[k], openNote{start: ev.AbsMicroSeconds, vel: vel})

		case ev.Message.GetNoteEnd(&ch, &key):
			k := noteKey{ev.TrackNo, ch, key}
			pending := open[k]
			if len(pending) == 0 {
				debug.Warn("score", "%s: note off for unpressed %s", name, note.Name(key))
				return
			}
			on := pending[0]
			open[k] = pending[1:]
			tracks[k.track] = append(tracks[k.track], rawNote(key, on, ev.AbsMicroSeconds))
		}
	})

	for k, pending := range open {
		for _, on := range pending {
			debug.Warn("score", "%s: missing note off for %s", name, note.Name(k.key))
			tracks[k.track] = append(tracks[k.track], rawNote(k.key, on, end))
		}
	}

	s := New(name, tracks, float64(end)/1e6)
	if len(s.Events) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrNoNotes)
	}

	debug.Log("score", "loaded %s: %d tracks, %d notes, %.2fs", name, s.Tracks, len(s.Events), s.Duration.Seconds())
	return s, nil
}

func rawNote(key uint8, on openNote, endMicros int64) RawNote {
	return RawNote{
		Time:     float64(on.start) / 1e6,
		Duration: float64(endMicros-on.start) / 1e6,
		Name:     note.Name(note.Fold(key)),
		Velocity: float64(on.vel) / 127,
	}
}
