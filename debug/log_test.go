package debug

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogDisabled(t *testing.T) {
	Disable()
	var buf bytes.Buffer
	EnableTo(&buf)
	Disable()

	Log("player", "should not appear")
	assert.Empty(t, buf.String())
}

func TestLogCategory(t *testing.T) {
	var buf bytes.Buffer
	EnableTo(&buf)
	defer Disable()

	Log("player", "play from %.2fs", 1.5)
	Warn("score", "dropped %d notes", 2)

	out := buf.String()
	assert.Contains(t, out, "player")
	assert.Contains(t, out, "play from 1.50s")
	assert.Contains(t, out, "score")
	assert.Contains(t, out, "dropped 2 notes")
	assert.Contains(t, out, "WARN")
}

func TestLogEvery(t *testing.T) {
	var buf bytes.Buffer
	EnableTo(&buf)
	defer Disable()

	for i := 0; i < 6; i++ {
		LogEvery(3, "tick", "position update")
	}
	assert.Equal(t, 2, strings.Count(buf.String(), "position update"))
}
