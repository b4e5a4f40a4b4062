package theme

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

type RGB [3]uint8

type Palette struct {
	Name   string
	Colors []RGB
}

// Plasma is the built-in palette, used when no .gpl file is configured
func Plasma() *Palette {
	return &Palette{
		Name: "Plasma",
		Colors: []RGB{
			{0x0d, 0x08, 0x87},
			{0x46, 0x03, 0x9f},
			{0x72, 0x01, 0xa8},
			{0x9c, 0x17, 0x9e},
			{0xbd, 0x37, 0x86},
			{0xd8, 0x57, 0x6b},
			{0xed, 0x79, 0x53},
			{0xfb, 0x9f, 0x3a},
			{0xfd, 0xca, 0x26},
			{0xf0, 0xf9, 0x21},
		},
	}
}

// LoadGPL reads a GIMP palette file
func LoadGPL(path string) (*Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := ParseGPL(f)
	if err != nil {
		return nil, fmt.Errorf("palette %s: %w", path, err)
	}
	return p, nil
}

// ParseGPL reads GIMP palette data
func ParseGPL(r io.Reader) (*Palette, error) {
	p := &Palette{}
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "Name:") {
			p.Name = strings.TrimSpace(strings.TrimPrefix(line, "Name:"))
			continue
		}

		// Skip headers and comments
		if line == "" || line[0] == '#' || strings.HasPrefix(line, "GIMP") || strings.HasPrefix(line, "Columns") {
			continue
		}

		// first 3 fields are R G B
		fields := strings.Fields(line)
		if len(fields) >= 3 {
			r, err1 := strconv.Atoi(fields[0])
			g, err2 := strconv.Atoi(fields[1])
			b, err3 := strconv.Atoi(fields[2])
			if err1 == nil && err2 == nil && err3 == nil {
				p.Colors = append(p.Colors, RGB{uint8(r), uint8(g), uint8(b)})
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(p.Colors) == 0 {
		return nil, fmt.Errorf("no colors found")
	}

	return p, nil
}

// LoadOrDefault loads path, falling back to Plasma when path is empty or
// unreadable.
func LoadOrDefault(path string) (*Palette, error) {
	if path == "" {
		return Plasma(), nil
	}
	p, err := LoadGPL(path)
	if err != nil {
		return Plasma(), err
	}
	return p, nil
}

// Lookup returns interpolated color for normalized value 0-1
func (p *Palette) Lookup(norm float64) RGB {
	if norm <= 0 || len(p.Colors) == 1 {
		return p.Colors[0]
	}
	if norm >= 1 {
		return p.Colors[len(p.Colors)-1]
	}

	pos := norm * float64(len(p.Colors)-1)
	i := int(pos)
	frac := pos - float64(i)

	c0 := p.Colors[i]
	c1 := p.Colors[i+1]

	return RGB{
		lerp(c0[0], c1[0], frac),
		lerp(c0[1], c1[1], frac),
		lerp(c0[2], c1[2], frac),
	}
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a)*(1-t) + float64(b)*t)
}

// Index returns color at specific index (no interpolation)
func (p *Palette) Index(i int) RGB {
	if i < 0 {
		return p.Colors[0]
	}
	if i >= len(p.Colors) {
		return p.Colors[len(p.Colors)-1]
	}
	return p.Colors[i]
}
