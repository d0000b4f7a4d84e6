package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyberio/backend/internal/config"
)

func TestNew_JSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log, err := New(config.LoggerConfig{Level: "debug", Encoding: "json", OutputPaths: []string{path}})
	require.NoError(t, err)

	log.Named("tracker").Debugw("scan_started", "scan_id", "abc")
	_ = log.Sync()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(raw))), &entry))
	assert.Equal(t, "scan_started", entry["message"])
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "tracker", entry["logger"])
	assert.Equal(t, "abc", entry["scan_id"])
	assert.Equal(t, serviceName, entry["service"])
}

func TestNew_FallsBackToInfoAndConsole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log, err := New(config.LoggerConfig{Level: "chatty", Encoding: "xml", OutputPaths: []string{path}})
	require.NoError(t, err)

	log.Debugw("hidden")
	log.Infow("shown")
	_ = log.Sync()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hidden")
	assert.Contains(t, string(raw), "shown")
	assert.False(t, json.Valid([]byte(strings.TrimSpace(string(raw)))), "console encoding")
}

func TestNewNop(t *testing.T) {
	log := NewNop()
	log.Named("x").Errorw("discarded")
	assert.NoError(t, log.Sync())
}
