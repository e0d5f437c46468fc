package logx

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel(" error "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("bogus"))
}

func TestLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "debug").With(String("comp", "loader"))

	log.Info("Migrated Schedule", String("schedule", "nightly"), Err(errors.New("x")))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "loader", line["comp"])
	assert.Equal(t, "nightly", line["schedule"])
	assert.Equal(t, "x", line["err"])
	assert.Equal(t, "Migrated Schedule", line["message"])
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn")
	log.Info("hidden")
	assert.Zero(t, buf.Len())
	log.Warn("shown")
	assert.NotZero(t, buf.Len())
}

func TestLogger_ZeroValueIsSafe(t *testing.T) {
	var log Logger
	assert.NotPanics(t, func() { log.With(Int("a", 1)).Error("nothing") })
	assert.NotPanics(t, func() { Nop().Info("nothing") })
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "migrate.log")
	log, closer, err := New(Config{Level: "info", File: path})
	require.NoError(t, err)
	log.Info("hello")
	require.NoError(t, closer.Close())
	assert.FileExists(t, path)
}
