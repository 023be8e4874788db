package logger

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelWarn)

	l.Debug("not shown")
	l.Info("not shown")
	l.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "not shown")
	assert.Contains(t, out, "shown")
}

func TestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelDebug)

	l.Info("pages written",
		String("file", "out.pdf"),
		Int("pages", 3),
		Bool("batch", true),
	)

	out := buf.String()
	assert.Contains(t, out, "pages written")
	assert.Contains(t, out, "out.pdf")
	assert.Contains(t, out, "3")
}

func TestLogger_Error(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelDebug)

	l.Error("write failed", errors.New("disk full"))
	assert.Contains(t, buf.String(), "disk full")
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
}
