//go:build unix

package commands

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/touchrec/touchrec/playback"
)

func TestResolveScript(t *testing.T) {
	cfg := useTestConfig(t)
	path := writeRecording(t, cfg.Paths.Recordings, "touch_a.sh", sampleBody)

	got, err := ResolveScript("touch_a.sh")
	require.NoError(t, err)
	assert.Equal(t, path, got)

	got, err = ResolveScript(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	_, err = ResolveScript("missing.sh")
	assert.Error(t, err)
	_, err = ResolveScript("")
	assert.Error(t, err)
}

func TestNewPlaybackValidation(t *testing.T) {
	cfg := useTestConfig(t)
	writeRecording(t, cfg.Paths.Recordings, "touch_a.sh", sampleBody)

	tests := []struct {
		name string
		req  PlayRequest
	}{
		{"missing file", PlayRequest{File: "nope.sh"}},
		{"bad loop", PlayRequest{File: "touch_a.sh", Loop: "forever"}},
		{"count without count", PlayRequest{File: "touch_a.sh", Loop: "count"}},
		{"bad speed", PlayRequest{File: "touch_a.sh", Speed: "warp"}},
		{"bad speed mode", PlayRequest{File: "touch_a.sh", SpeedMode: "wobble"}},
		{"inverted range", PlayRequest{File: "touch_a.sh", SpeedMode: "per_loop", MinSpeed: 3, MaxSpeed: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPlayback(context.Background(), tt.req, nil)
			assert.Error(t, err)
		})
	}
}

func TestPlayCommandLoopsScript(t *testing.T) {
	cfg := useTestConfig(t)
	writeRecording(t, cfg.Paths.Recordings, "hello.sh", "echo hello\n")

	var out bytes.Buffer
	resp := PlayCommand(context.Background(), PlayRequest{File: "hello.sh", Loop: "count", Count: 2}, &out)
	require.Equal(t, "ok", resp.Status, resp.Error)

	play := resp.Data.(PlayResponse)
	assert.Equal(t, 2, play.Result.Plays)
	assert.Equal(t, playback.StateCompleted, play.Result.State)
	assert.Equal(t, 2, bytes.Count(out.Bytes(), []byte("hello")))
}

func TestPlayCommandReportsExitCode(t *testing.T) {
	cfg := useTestConfig(t)
	writeRecording(t, cfg.Paths.Recordings, "fail.sh", "exit 3\n")

	resp := PlayCommand(context.Background(), PlayRequest{File: "fail.sh"}, nil)
	assert.Equal(t, "error", resp.Status)
	assert.Contains(t, resp.Error, "code 3")

	data, ok := resp.Data.(PlayResponse)
	require.True(t, ok)
	assert.True(t, strings.HasSuffix(data.File, "fail.sh"))
	assert.Equal(t, playback.StateStopped, data.Result.State)
	assert.NotEmpty(t, data.Result.RunID)
	assert.Contains(t, data.Result.Error, "code 3")
}

func TestErrorResponseWithData(t *testing.T) {
	tests := []struct {
		name string
		data interface{}
	}{
		{"nil", nil},
		{"partial result", PlayResponse{File: "a.sh", Result: playback.Result{Plays: 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := NewErrorResponseWithData(errors.New("boom"), tt.data)
			assert.Equal(t, "error", resp.Status)
			assert.Equal(t, "boom", resp.Error)
			assert.Equal(t, tt.data, resp.Data)
		})
	}
}

func TestPlaybackStopsOnCancel(t *testing.T) {
	cfg := useTestConfig(t)
	writeRecording(t, cfg.Paths.Recordings, "slow.sh", "sleep 5\n")

	p, err := NewPlayback(context.Background(), PlayRequest{File: "slow.sh", Loop: "infinite"}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := p.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, playback.StateStopped, res.State)
	assert.Equal(t, 0, res.Plays)
}
