package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogger_InfoWithFields(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log, err := New(Options{Level: "info", Writer: buf})
	require.NoError(t, err)

	log.WithFields(map[string]any{"run_id": "r1", "dir": "tests"}).Info("session started")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "session started", entry["message"])
	require.Equal(t, "r1", entry["run_id"])
	require.Equal(t, "tests", entry["dir"])
	require.Equal(t, "info", entry["level"])
}

func TestLogger_DebugRespectsLevel(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log, err := New(Options{Level: "INFO", Writer: buf})
	require.NoError(t, err)

	log.Debug("hidden")
	zl := log.Zerolog()
	zl.Debug().Msg("also hidden")
	require.Equal(t, "", strings.TrimSpace(buf.String()))
}

func TestLogger_ErrorIncludesCause(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log, err := New(Options{Level: "debug", Writer: buf})
	require.NoError(t, err)

	log.Error(errors.New("manifest broken"), "discovery")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "manifest broken", entry["error"])
	require.Equal(t, "error", entry["level"])
}

func TestLogger_InvalidLevel(t *testing.T) {
	t.Parallel()

	_, err := New(Options{Level: "loud"})
	require.Error(t, err)
}

func TestLogger_NilSafe(t *testing.T) {
	t.Parallel()

	var log *Logger
	log.Info("ignored")
	log.Error(errors.New("x"), "ignored")
	require.Nil(t, log.WithFields(map[string]any{"a": 1}))
	zl := log.Zerolog()
	zl.Info().Msg("ignored")
	Nop().Warn("ignored")
}
