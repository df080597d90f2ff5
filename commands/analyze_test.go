package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeCommand(t *testing.T) {
	cfg := useTestConfig(t)
	writeRecording(t, cfg.Paths.Recordings, "touch_a.sh", sampleBody)

	resp := AnalyzeCommand(AnalyzeRequest{File: "touch_a.sh"})
	require.Equal(t, "ok", resp.Status, resp.Error)

	out := resp.Data.(AnalyzeResponse)
	assert.Equal(t, 1, out.Summary.Taps)
	assert.Equal(t, 1, out.Summary.TimedDrags)
	assert.Equal(t, 350, out.Summary.EstimatedMs)
	assert.Empty(t, out.PlaybackSpeed)

	require.Len(t, out.Estimates, 6)
	assert.Equal(t, PresetEstimate{Name: "very-slow", Speed: 0.25, Seconds: 1.4}, out.Estimates[0])
	assert.Equal(t, PresetEstimate{Name: "very-fast", Speed: 2, Seconds: 0.175}, out.Estimates[4])
}

func TestAnalyzeCommandMissingFile(t *testing.T) {
	useTestConfig(t)
	assert.Equal(t, "error", AnalyzeCommand(AnalyzeRequest{File: "missing.sh"}).Status)
}
