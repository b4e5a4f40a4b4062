package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"go-piano/midi"
	"go-piano/note"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "detect":
		detectKeyboards()
	case "monitor":
		monitor()
	case "scale":
		if len(os.Args) < 3 {
			usage()
			return
		}
		playScale(os.Args[2])
	case "poll":
		pollDevices()
	default:
		usage()
	}
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list        - List all MIDI ports")
	fmt.Println("  detect      - Show which inputs count as keyboards")
	fmt.Println("  monitor     - Print notes and pedal from every keyboard")
	fmt.Println("  scale PORT  - Play a C major scale on an output port")
	fmt.Println("  poll        - Poll for device changes")
}

func ports() (midi.Ports, bool) {
	p, err := midi.ListPorts(midi.PortTimeout)
	if err != nil {
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
		return p, false
	}
	return p, true
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	p, ok := ports()
	if !ok {
		return
	}
	for i, name := range p.InNames() {
		fmt.Printf("  %d: %s\n", i, name)
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, name := range p.OutNames() {
		fmt.Printf("  %d: %s\n", i, name)
	}
}

func detectKeyboards() {
	p, ok := ports()
	if !ok {
		return
	}

	found := 0
	for i, name := range p.InNames() {
		if midi.KeyboardPort(name, nil) {
			fmt.Printf("Keyboard: %d: %s\n", i, name)
			found++
		} else {
			fmt.Printf("Skipped:  %d: %s\n", i, name)
		}
	}
	if found == 0 {
		fmt.Println("\nNo keyboards found")
	}
}

// printer shows what a keyboard would do to the player
type printer struct{}

func (printer) PressNote(pitch string, velocity float64) {
	fmt.Printf("[%s] on  %-4s vel %.2f\n", time.Now().Format("15:04:05.000"), pitch, velocity)
}

func (printer) ReleaseNote(pitch string) {
	fmt.Printf("[%s] off %s\n", time.Now().Format("15:04:05.000"), pitch)
}

func (printer) SetSustain(on bool) {
	fmt.Printf("[%s] sustain %v\n", time.Now().Format("15:04:05.000"), on)
}

func monitor() {
	fmt.Println("Listening to keyboards. Ctrl+C to exit.")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	midi.NewDeviceManager().Serve(ctx, printer{})
}

func playScale(port string) {
	out := midi.NewOutput(port, 0)

	ctx, cancel := context.WithTimeout(context.Background(), midi.PortTimeout)
	defer cancel()
	if err := out.Ready(ctx); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer out.Close()

	for _, semi := range []int{0, 2, 4, 5, 7, 9, 11, 12} {
		pitch := note.Name(uint8(60 + semi))
		fmt.Printf("  %s\n", pitch)
		out.NoteOn(pitch, 0.6)
		time.Sleep(250 * time.Millisecond)
		out.NoteOff(pitch)
	}
	fmt.Println("Done!")
}

func pollDevices() {
	fmt.Println("Polling for device changes every 2 seconds...")
	fmt.Println("Connect/disconnect a keyboard to test. Ctrl+C to exit.")

	lastIn := ""
	lastOut := ""

	for {
		p, ok := ports()
		if !ok {
			time.Sleep(2 * time.Second)
			continue
		}
		inNames, outNames := p.InNames(), p.OutNames()

		currentIn := strings.Join(inNames, ",")
		currentOut := strings.Join(outNames, ",")

		if currentIn != lastIn || currentOut != lastOut {
			fmt.Printf("\n[%s] Device change detected!\n", time.Now().Format("15:04:05"))
			fmt.Printf("  Inputs: %v\n", inNames)
			fmt.Printf("  Outputs: %v\n", outNames)

			for _, name := range inNames {
				if midi.KeyboardPort(name, nil) {
					fmt.Printf("  -> keyboard: %s\n", name)
				}
			}

			lastIn = currentIn
			lastOut = currentOut
		}

		time.Sleep(2 * time.Second)
	}
}
