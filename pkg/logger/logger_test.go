package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLoggerIsSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		Info("before init")
		Named("triage").Debug("child logger")
	})
}

func TestInitWritesToFile(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	path := filepath.Join(t.TempDir(), "triage.log")
	require.NoError(t, Init("info", "json", path))

	Info("routing complete")
	Debug("suppressed at info level")
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "routing complete")
	assert.NotContains(t, string(data), "suppressed at info level")
}

func TestInitRejectsBadLevel(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	assert.Error(t, Init("loud", "json", "stdout"))
}
