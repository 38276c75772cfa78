package logger

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func readEntries(t *testing.T, path string) []map[string]interface{} {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestNew_WritesJSONWithTimestampAndService(t *testing.T) {
	out := filepath.Join(t.TempDir(), "app.log")

	log, err := New(Config{Level: "debug", Encoding: "json", OutputPath: out, Service: "storybook-server"})
	require.NoError(t, err)

	log.Debug("book generated", zap.Int64("book_id", 7))
	require.NoError(t, log.Sync())

	entries := readEntries(t, out)
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "book generated", entry["msg"])
	assert.Equal(t, "storybook-server", entry["service"])
	assert.Contains(t, entry, "timestamp")
	assert.NotContains(t, entry, "caller")
	assert.EqualValues(t, 7, entry["book_id"])
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	out := filepath.Join(t.TempDir(), "app.log")

	log, err := New(Config{Level: "verbose", Encoding: "xml", OutputPath: out})
	require.NoError(t, err)

	assert.False(t, log.Core().Enabled(zap.DebugLevel))
	assert.True(t, log.Core().Enabled(zap.InfoLevel))
}

func TestNewWithLevel_ChangeLevelAtRuntime(t *testing.T) {
	out := filepath.Join(t.TempDir(), "app.log")

	log, level, err := NewWithLevel(Config{Level: "warn", OutputPath: out})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zap.InfoLevel))

	// Уровень меняется через HTTP-обработчик AtomicLevel
	req := httptest.NewRequest(http.MethodPut, "/log-level", strings.NewReader(`{"level":"debug"}`))
	w := httptest.NewRecorder()
	level.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	assert.True(t, log.Core().Enabled(zap.DebugLevel))
	assert.Equal(t, zap.DebugLevel, level.Level())
}

func TestNew_ConsoleEncoding(t *testing.T) {
	out := filepath.Join(t.TempDir(), "app.log")

	log, err := New(Config{Level: "info", Encoding: "CONSOLE", OutputPath: out})
	require.NoError(t, err)
	log.Info("order created")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "order created")
	assert.False(t, json.Valid([]byte(strings.TrimSpace(string(data)))))
}
