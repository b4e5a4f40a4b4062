package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPedalUp(t *testing.T) {
	p := NewPedal()
	assert.True(t, p.Release("C4"))
	assert.Nil(t, p.Set(false))
}

func TestPedalDefersReleases(t *testing.T) {
	p := NewPedal()
	assert.Nil(t, p.Set(true))
	assert.True(t, p.Down())

	assert.False(t, p.Release("E4"))
	assert.False(t, p.Release("C4"))
	assert.False(t, p.Release("C4"))

	assert.Equal(t, []string{"C4", "E4"}, p.Set(false))
	assert.Nil(t, p.Set(false))
	assert.True(t, p.Release("C4"))
}

func TestPedalRestrike(t *testing.T) {
	p := NewPedal()
	p.Set(true)
	p.Release("G4")
	p.Strike("G4")

	assert.Empty(t, p.Set(false))
}
