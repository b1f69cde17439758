package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ppiankov/clarifai/internal/model"
)

func TestNewLogger_JSONLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(model.LogConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info("dropped")
	logger.Warn("api unreachable", zap.String("endpoint", "/sources"))
	require.NoError(t, logger.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "clarifai", entry["logger"])
	assert.Equal(t, "/sources", entry["endpoint"])
}

func TestNewLogger_BadLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(model.LogConfig{Level: "loud", Format: "console"}, &buf)

	logger.Debug("hidden")
	logger.Info("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clarifai.log")
	var buf bytes.Buffer
	logger := NewLogger(model.LogConfig{Level: "info", File: path, MaxSizeMB: 1}, &buf)

	logger.Info("briefing submitted", zap.String("topic", "karnataka-crisis"))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"topic":"karnataka-crisis"`)
}

func TestL_NoopBeforeInit(t *testing.T) {
	assert.NotNil(t, L())
}
