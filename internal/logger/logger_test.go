package logger

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestLogger_WritesComponentAndLevel(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	l := NewWithWriter("ticket", &buf)

	l.Infof("kafka", "published pnr=%s", "1a2b3c4d")

	out := buf.String()
	assert.Contains(t, out, "[ticket]")
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "[KAFKA] published pnr=1a2b3c4d")
}

func TestLogger_FiltersBelowMinimum(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	l := NewWithWriter("flight", &buf)

	l.Debug("cache", "miss")
	assert.Empty(t, buf.String())

	l.SetLevel(LevelDebug)
	l.Debug("cache", "miss")
	assert.Contains(t, buf.String(), "DEBUG")
}

func TestLogger_NilIsSafe(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() { l.Error("x", "y") })
}
