package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bendaklara/restaurantsaround/config"
)

func TestNewJSONDefault(t *testing.T) {
	var buf bytes.Buffer
	log := New(config.LoggerConfig{}, &buf)
	log.Info("hello", "senderID", "42")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "42", line["senderID"])
}

func TestNewTextAndLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(config.LoggerConfig{Format: "text", Level: "warn"}, &buf)
	log.Info("dropped")
	log.Warn("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "msg=kept")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("nonsense"))
}
