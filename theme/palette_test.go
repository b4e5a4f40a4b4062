package theme

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gpl = `GIMP Palette
Name: Test
Columns: 2
# comment
0 0 0	black
255 255 255	white
`

func TestParseGPL(t *testing.T) {
	p, err := ParseGPL(strings.NewReader(gpl))
	require.NoError(t, err)
	assert.Equal(t, "Test", p.Name)
	assert.Equal(t, []RGB{{0, 0, 0}, {255, 255, 255}}, p.Colors)
}

func TestParseGPLEmpty(t *testing.T) {
	_, err := ParseGPL(strings.NewReader("GIMP Palette\nName: Empty\n"))
	assert.Error(t, err)
}

func TestLookup(t *testing.T) {
	p := &Palette{Colors: []RGB{{0, 0, 0}, {200, 100, 0}}}
	assert.Equal(t, RGB{0, 0, 0}, p.Lookup(-1))
	assert.Equal(t, RGB{100, 50, 0}, p.Lookup(0.5))
	assert.Equal(t, RGB{200, 100, 0}, p.Lookup(2))
	assert.Equal(t, RGB{200, 100, 0}, p.Index(9))
}

func TestLoadOrDefault(t *testing.T) {
	p, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, "Plasma", p.Name)

	p, err = LoadOrDefault("/does/not/exist.gpl")
	assert.Error(t, err)
	assert.Equal(t, "Plasma", p.Name)
}

func TestThemeColors(t *testing.T) {
	th := New(nil)
	assert.Equal(t, lipgloss.Color("#0d0887"), th.BG())
	assert.Equal(t, lipgloss.Color("#f0f921"), th.Success())
}
