package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestNew_Production(t *testing.T) {
	var buf bytes.Buffer
	logger := New("production", &buf)
	logger.WithField("backend", "gemini:gemini-2.5-flash").Info("✅ Model call succeeded")
	logger.Debug("hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "✅ Model call succeeded", entry["message"])
	require.Equal(t, "gemini:gemini-2.5-flash", entry["backend"])
	require.Contains(t, entry, "@timestamp")
	require.NotContains(t, buf.String(), "hidden")
}

func TestNew_Development(t *testing.T) {
	var buf bytes.Buffer
	logger := New("development", &buf)
	require.Equal(t, log.DebugLevel, logger.GetLevel())

	logger.Debug("visible")
	require.Contains(t, buf.String(), "visible")
}
