//go:build unix

package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/touchrec/touchrec/commands"
	"github.com/touchrec/touchrec/playback"
)

func writeScript(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(recordingsDir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0755))
	t.Cleanup(func() { _ = os.Remove(path) })
	return name
}

func TestPlaybackManagerLifecycle(t *testing.T) {
	m := &playbackManager{}
	assert.Equal(t, playback.StateIdle, m.status().State)

	name := writeScript(t, "slow.sh", "sleep 5\n")
	st, err := m.start(commands.PlayRequest{File: name, Loop: "infinite"})
	require.NoError(t, err)
	assert.Equal(t, playback.StateRunning, st.State)
	assert.Equal(t, filepath.Join(recordingsDir, name), st.File)

	_, err = m.start(commands.PlayRequest{File: name})
	assert.ErrorContains(t, err, "already running")

	assert.Equal(t, playback.StateRunning, m.status().State)

	st = m.stop()
	assert.Equal(t, playback.StateStopped, st.State)
	require.NotNil(t, st.Result)
	assert.False(t, m.running())
}

func TestPlaybackManagerCompletes(t *testing.T) {
	m := &playbackManager{}
	name := writeScript(t, "quick.sh", "true\n")

	_, err := m.start(commands.PlayRequest{File: name, Loop: "count", Count: 2})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return m.status().State == playback.StateCompleted
	}, 5*time.Second, 20*time.Millisecond)

	st := m.status()
	require.NotNil(t, st.Result)
	assert.Equal(t, 2, st.Result.Plays)
	assert.Empty(t, st.Error)

	// a finished playback does not block the next one
	_, err = m.start(commands.PlayRequest{File: name})
	require.NoError(t, err)
	m.stop()
}

func TestPlaybackManagerRejectsBadRequest(t *testing.T) {
	m := &playbackManager{}
	_, err := m.start(commands.PlayRequest{File: "does-not-exist.sh"})
	assert.Error(t, err)
	assert.False(t, m.running())
	assert.Equal(t, playback.StateIdle, m.status().State)
}

func TestRequestShutdownIsIdempotent(t *testing.T) {
	_, err := Execute("server.shutdown", nil)
	require.NoError(t, err)
	requestShutdown()

	select {
	case <-shutdownCh:
	default:
		t.Fatal("shutdown channel not closed")
	}
}
