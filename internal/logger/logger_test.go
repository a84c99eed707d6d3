package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	level, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, LevelDebug, level)

	level, err = ParseLevel("TRACE")
	require.NoError(t, err)
	assert.Equal(t, LevelTrace, level)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}

func TestLoggerLevelGating(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewLogger(LevelInfo, &buf)

	l.Debugf("hidden %d", 1)
	l.Trace("hidden")
	assert.Empty(t, buf.String())

	l.Infof("shown %d", 2)
	l.Error("also shown")
	out := buf.String()
	assert.Contains(t, out, "shown 2")
	assert.Contains(t, out, "also shown")
	assert.Contains(t, out, "INFO :")
	assert.Contains(t, out, "ERROR:")
}
