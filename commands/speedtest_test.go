package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/touchrec/touchrec/playback"
	"github.com/touchrec/touchrec/script"
)

func TestRunSpeedTest(t *testing.T) {
	var played []float64
	runner := playback.RunnerFunc(func(ctx context.Context, speed float64) error {
		played = append(played, speed)
		if speed == 2 {
			return errors.New("exit 1")
		}
		return nil
	})

	results, err := runSpeedTest(context.Background(), runner, script.Summary{EstimatedMs: 3000}, []float64{0.5, 2, 3}, 0)
	require.NoError(t, err)

	assert.Equal(t, []float64{0.5, 2, 3}, played)
	require.Len(t, results, 3)
	assert.Equal(t, 6.0, results[0].ExpectedSeconds)
	assert.Equal(t, "exit 1", results[1].Error)
	assert.Equal(t, 1.0, results[2].ExpectedSeconds)
	assert.Empty(t, results[2].Error)
}

func TestRunSpeedTestCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	runner := playback.RunnerFunc(func(ctx context.Context, speed float64) error {
		cancel()
		return ctx.Err()
	})

	results, err := runSpeedTest(ctx, runner, script.Summary{}, DefaultTestSpeeds, 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}

func TestSpeedTestCommandRejectsBadSpeeds(t *testing.T) {
	cfg := useTestConfig(t)
	writeRecording(t, cfg.Paths.Recordings, "touch_a.sh", sampleBody)

	resp := SpeedTestCommand(context.Background(), SpeedTestRequest{File: "touch_a.sh", Speeds: []float64{1, -1}}, nil)
	assert.Equal(t, "error", resp.Status)
}
