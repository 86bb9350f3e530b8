package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "warn")
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Warn("shown", "source", "ndarray")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "source=ndarray")
	assert.Contains(t, out, Prefix)
}

func TestNewAcceptsEveryLevel(t *testing.T) {
	for _, level := range Levels {
		_, err := New(&bytes.Buffer{}, level)
		assert.NoError(t, err, level)
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(&bytes.Buffer{}, "loud")
	assert.Error(t, err)
}
