package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func decodeEntries(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	dec := json.NewDecoder(buf)
	for dec.More() {
		var entry map[string]interface{}
		require.NoError(t, dec.Decode(&entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WarnLevel, &buf)

	logger.Debug("dropped")
	logger.Info("dropped")
	logger.Warn("kept")
	logger.Error("kept too")

	entries := decodeEntries(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "WARN", entries[0]["level"])
	assert.Equal(t, "kept", entries[0]["message"])
	assert.Equal(t, "ERROR", entries[1]["level"])
}

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(InfoLevel, &buf).WithField("component", "server")

	logger.Info("run accepted", map[string]interface{}{"run_id": "abc"})

	entries := decodeEntries(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "server", entries[0]["component"])
	assert.Equal(t, "abc", entries[0]["run_id"])
	assert.NotEmpty(t, entries[0]["timestamp"])
	assert.NotEmpty(t, entries[0]["caller"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("debug"))
	assert.Equal(t, ErrorLevel, ParseLevel("ERROR"))
	assert.Equal(t, InfoLevel, ParseLevel("bogus"))
}

func TestZapAdapter(t *testing.T) {
	var buf bytes.Buffer
	zl := NewZapLogger(New(InfoLevel, &buf))

	zl.Debug("dropped by the level gate")
	zl.Named("discrete").Info("refit dependency-tree model",
		zap.Int("sample_size", 50),
		zap.String("stage", "elite"))

	entries := decodeEntries(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "refit dependency-tree model", entries[0]["message"])
	assert.Equal(t, "discrete", entries[0]["logger"])
	assert.Equal(t, float64(50), entries[0]["sample_size"])
	assert.Equal(t, "elite", entries[0]["stage"])
}
