package logger

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsolatedLoggerWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "llm.log")
	l := NewIsolatedLogger(path)

	l.Info("TutorService", "turn completed", map[string]interface{}{"steps": 3})
	l.Module("Orchestrator").Warn("directive missing")
	_ = l.Sync()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		lines = append(lines, entry)
	}
	require.Len(t, lines, 2)

	assert.Equal(t, "INFO", lines[0]["level"])
	assert.Equal(t, "turn completed", lines[0]["message"])
	assert.Equal(t, "TutorService", lines[0]["module"])
	assert.Equal(t, float64(3), lines[0]["details"].(map[string]any)["steps"])

	assert.Equal(t, "WARN", lines[1]["level"])
	assert.Equal(t, "Orchestrator", lines[1]["module"])
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	assert.NotPanics(t, func() {
		l.Error("x", "y", nil)
		l.Module("z").Info("w")
	})
}
