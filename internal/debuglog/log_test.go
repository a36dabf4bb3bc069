package debuglog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "OFF", LevelOff.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"debug", LevelDebug},
		{" INFO ", LevelInfo},
		{"warning", LevelWarn},
		{"ERROR", LevelError},
		{"off", LevelOff},
		{"none", LevelOff},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParseLogLevel(tt.input), "input %q", tt.input)
	}
}

func TestSetupFiltersByLevel(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "sub", "test.log")
	require.NoError(t, Setup(LevelInfo, logPath))
	t.Cleanup(func() { _ = Setup(LevelOff) })

	assert.Equal(t, LevelInfo, GetLevel())

	Debugf("debug message")
	Infof("info message")
	Warnf("warn %d", 2)
	Errorf("error message")
	require.NoError(t, Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	content := string(data)

	assert.NotContains(t, content, "debug message")
	assert.Contains(t, content, "[INFO] info message")
	assert.Contains(t, content, "[WARN] warn 2")
	assert.Contains(t, content, "[ERROR] error message")
	assert.Contains(t, content, "mifind ")
}

func TestSetupOffWritesNothing(t *testing.T) {
	require.NoError(t, Setup(LevelOff))
	Errorf("dropped")
	assert.Equal(t, LevelOff, GetLevel())
	assert.NoError(t, Close())
}

func TestFieldLoggerSortsFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "fields.log")
	require.NoError(t, Setup(LevelDebug, logPath))
	t.Cleanup(func() { _ = Setup(LevelOff) })

	WithFields(map[string]any{"session": 7, "offset": 100}).Debugf("fetch")
	require.NoError(t, Setup(LevelError, logPath))
	WithFields(map[string]any{"x": 1}).Infof("filtered")
	require.NoError(t, Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "fetch [offset=100 session=7]")
	assert.NotContains(t, string(data), "filtered")
}
