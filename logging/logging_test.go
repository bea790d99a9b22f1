package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "warn", Output: &buf})

	logger.Info().Msg("info message")
	logger.Warn().Msg("warn message")

	output := buf.String()
	assert.NotContains(t, output, "info message")
	assert.Contains(t, output, "warn message")
}

func TestNewWithComponentStampsField(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithComponent(Config{Level: "info", Output: &buf}, "matcher")

	logger.Info().Msg("scored pair")

	output := buf.String()
	assert.Contains(t, output, "matcher")
	assert.Contains(t, output, "scored pair")
}

func TestInvalidLevelDefaultsToInfo(t *testing.T) {
	logger := New(Config{Level: "not-a-level"})
	require.Equal(t, "info", logger.GetLevel().String())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.True(t, cfg.Pretty)
}
