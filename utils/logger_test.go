package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetVerbose_And_IsVerbose(t *testing.T) {
	// save original state and restore after test
	original := IsVerbose()
	defer SetVerbose(original)

	SetVerbose(true)
	if !IsVerbose() {
		t.Error("expected IsVerbose() = true after SetVerbose(true)")
	}

	SetVerbose(false)
	if IsVerbose() {
		t.Error("expected IsVerbose() = false after SetVerbose(false)")
	}
}

func TestVerbose_OnlyWritesWhenEnabled(t *testing.T) {
	original := IsVerbose()
	defer SetVerbose(original)

	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	SetVerbose(false)
	Verbose("hidden %d", 1)
	assert.Empty(t, buf.String())

	SetVerbose(true)
	Verbose("shown %d", 2)
	assert.Contains(t, buf.String(), "shown 2")
}

func TestInfo_WritesMessage(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	Info("test info %s", "message")
	Warn("careful")
	Error("broken")

	out := buf.String()
	assert.Contains(t, out, "test info message")
	assert.Contains(t, out, "level=warning")
	assert.Contains(t, out, "level=error")
}

func TestSetLogFile_MirrorsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "playback.log")

	require.NoError(t, SetLogFile(path))
	Info("playback #%d finished", 3)
	require.NoError(t, SetLogFile(""))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "playback #3 finished")
}

func TestSetLogFile_InvalidPath(t *testing.T) {
	err := SetLogFile(filepath.Join(t.TempDir(), "missing", "dir", "x.log"))
	assert.Error(t, err)
}

func TestSetLevel(t *testing.T) {
	original := IsVerbose()
	defer SetVerbose(original)

	tests := []struct {
		name    string
		level   logrus.Level
		verbose bool
	}{
		{"error", logrus.ErrorLevel, false},
		{"warn", logrus.WarnLevel, false},
		{"WARNING", logrus.WarnLevel, false},
		{"info", logrus.InfoLevel, false},
		{"debug", logrus.DebugLevel, true},
		{"trace", logrus.TraceLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, SetLevel(tt.name))
			assert.Equal(t, tt.level, Logger().GetLevel())
			assert.Equal(t, tt.verbose, IsVerbose())
		})
	}
}

func TestSetLevel_FiltersBelowLevel(t *testing.T) {
	original := IsVerbose()
	defer SetVerbose(original)

	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	require.NoError(t, SetLevel("warn"))
	Info("quiet")
	Warn("loud")

	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")
}

func TestSetLevel_Invalid(t *testing.T) {
	original := IsVerbose()
	defer SetVerbose(original)
	SetVerbose(false)

	err := SetLevel("chatty")
	assert.Error(t, err)
	assert.Equal(t, logrus.InfoLevel, Logger().GetLevel())
}
