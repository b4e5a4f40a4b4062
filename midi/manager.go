package midi

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go-piano/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// ErrTimeout is returned when the MIDI system doesn't answer a port query
var ErrTimeout = errors.New("midi port query timed out")

// PortTimeout bounds port queries (CoreMIDI can hang)
const PortTimeout = 3 * time.Second

// DeviceEvent is emitted when controllers connect/disconnect
type DeviceEvent struct {
	Type       DeviceEventType
	Controller Controller
	ID         string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

func (t DeviceEventType) String() string {
	if t == DeviceConnected {
		return "connected"
	}
	return "disconnected"
}

// Ports lists the MIDI ports the driver can see
type Ports struct {
	In  []drivers.In
	Out []drivers.Out
}

// InNames returns input port names
func (p Ports) InNames() []string {
	names := make([]string, len(p.In))
	for i, in := range p.In {
		names[i] = in.String()
	}
	return names
}

// OutNames returns output port names
func (p Ports) OutNames() []string {
	names := make([]string, len(p.Out))
	for i, out := range p.Out {
		names[i] = out.String()
	}
	return names
}

// ListPorts queries the driver with a timeout.
func ListPorts(timeout time.Duration) (Ports, error) {
	ch := make(chan Ports, 1)
	go func() {
		ch <- Ports{In: gomidi.GetInPorts(), Out: gomidi.GetOutPorts()}
	}()

	select {
	case p := <-ch:
		return p, nil
	case <-time.After(timeout):
		return Ports{}, ErrTimeout
	}
}

// DeviceManager handles hot-plug detection of MIDI keyboards
type DeviceManager struct {
	controllers map[string]Controller
	mu          sync.RWMutex
	events      chan DeviceEvent
	pollRate    time.Duration
	filters     []string
}

// NewDeviceManager creates a new device manager. With no filters every
// input port is treated as a keyboard; otherwise a port must contain one
// of the filters in its name.
func NewDeviceManager(filters ...string) *DeviceManager {
	return &DeviceManager{
		controllers: make(map[string]Controller),
		events:      make(chan DeviceEvent, 16),
		pollRate:    time.Second,
		filters:     filters,
	}
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Controllers returns a snapshot of connected controllers
func (dm *DeviceManager) Controllers() map[string]Controller {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	out := make(map[string]Controller, len(dm.controllers))
	for k, v := range dm.controllers {
		out[k] = v
	}
	return out
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	dm.scan()

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan()
		}
	}
}

// Serve runs the manager and routes every keyboard that connects into p.
// It blocks until ctx is done.
func (dm *DeviceManager) Serve(ctx context.Context, p Player) {
	go dm.Run(ctx)

	for ev := range dm.events {
		switch ev.Type {
		case DeviceConnected:
			debug.Log("midi", "keyboard connected: %s", ev.ID)
			go Route(ctx, ev.Controller, p)
		case DeviceDisconnected:
			debug.Log("midi", "keyboard disconnected: %s", ev.ID)
		}
	}
}

func (dm *DeviceManager) scan() {
	ports, err := ListPorts(PortTimeout)
	if err != nil {
		// CoreMIDI is hung - skip this scan
		// User needs to run: sudo killall coreaudiod midiserver
		debug.Warn("midi", "scan: %v", err)
		return
	}

	seen := make(map[string]bool)

	for _, in := range ports.In {
		id := in.String()
		if !dm.isKeyboard(id) {
			continue
		}
		seen[id] = true

		dm.mu.RLock()
		_, exists := dm.controllers[id]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		kb, err := NewKeyboardController(id, in)
		if err != nil {
			debug.Warn("midi", "open %s: %v", id, err)
			continue
		}

		dm.mu.Lock()
		dm.controllers[id] = kb
		dm.mu.Unlock()

		dm.events <- DeviceEvent{Type: DeviceConnected, Controller: kb, ID: id}
	}

	dm.mu.Lock()
	var gone []string
	for id := range dm.controllers {
		if !seen[id] {
			gone = append(gone, id)
		}
	}
	for _, id := range gone {
		dm.controllers[id].Close()
		delete(dm.controllers, id)
		dm.events <- DeviceEvent{Type: DeviceDisconnected, ID: id}
	}
	dm.mu.Unlock()
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, c := range dm.controllers {
		c.Close()
	}
	dm.controllers = make(map[string]Controller)
}

func (dm *DeviceManager) isKeyboard(name string) bool {
	return KeyboardPort(name, dm.filters)
}

// KeyboardPort reports whether an input port should be treated as a
// keyboard: loopback ports are skipped, then the filters apply.
func KeyboardPort(name string, filters []string) bool {
	lower := strings.ToLower(name)
	if strings.Contains(lower, "through") || strings.Contains(lower, "thru") {
		return false
	}
	if len(filters) == 0 {
		return true
	}
	for _, f := range filters {
		if f != "" && strings.Contains(lower, strings.ToLower(f)) {
			return true
		}
	}
	return false
}
