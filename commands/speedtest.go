package commands

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/touchrec/touchrec/playback"
	"github.com/touchrec/touchrec/script"
	"github.com/touchrec/touchrec/utils"
)

var DefaultTestSpeeds = []float64{0.5, 1.0, 1.5, 2.0, 3.0}

const speedTestPause = 2 * time.Second

type SpeedTestRequest struct {
	File   string    `json:"file"`
	Speeds []float64 `json:"speeds,omitempty"`
}

type SpeedTestResult struct {
	Speed           float64 `json:"speed"`
	ElapsedSeconds  float64 `json:"elapsedSeconds"`
	ExpectedSeconds float64 `json:"expectedSeconds"`
	Error           string  `json:"error,omitempty"`
}

type SpeedTestResponse struct {
	File    string            `json:"file"`
	Results []SpeedTestResult `json:"results"`
}

// runSpeedTest plays once per speed and times each run. A failed run is
// recorded and the test moves on.
func runSpeedTest(ctx context.Context, runner playback.Runner, summary script.Summary, speeds []float64, pause time.Duration) ([]SpeedTestResult, error) {
	results := make([]SpeedTestResult, 0, len(speeds))
	for i, speed := range speeds {
		if i > 0 && pause > 0 {
			if err := waitContext(ctx, pause); err != nil {
				return results, err
			}
		}

		utils.Info("speed test %d/%d at %sx", i+1, len(speeds), script.FormatSpeed(speed))
		start := time.Now()
		err := runner.Run(ctx, speed)
		res := SpeedTestResult{
			Speed:           speed,
			ElapsedSeconds:  time.Since(start).Seconds(),
			ExpectedSeconds: float64(summary.EstimateAt(speed)) / 1000,
		}
		if err != nil {
			if ctx.Err() != nil {
				return results, ctx.Err()
			}
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	return results, nil
}

func SpeedTestCommand(ctx context.Context, req SpeedTestRequest, out io.Writer) *CommandResponse {
	file, err := ResolveScript(req.File)
	if err != nil {
		return NewErrorResponse(err)
	}
	s, err := script.ParseFile(file)
	if err != nil {
		return NewErrorResponse(err)
	}

	speeds := req.Speeds
	if len(speeds) == 0 {
		speeds = DefaultTestSpeeds
	}
	for _, speed := range speeds {
		if err := script.ValidateSpeed(speed); err != nil {
			return NewErrorResponse(err)
		}
	}

	cache, err := playback.NewScriptCache(file, len(speeds))
	if err != nil {
		return NewErrorResponse(err)
	}
	defer cache.Close()

	player := playback.NewPlayer(GetConfig().Player.Shell, cache)
	if out != nil {
		player.Stdout = out
		player.Stderr = out
	}

	results, err := runSpeedTest(ctx, player, script.Analyze(s), speeds, speedTestPause)
	if err != nil && !errors.Is(err, context.Canceled) {
		return NewErrorResponse(err)
	}
	return NewSuccessResponse(SpeedTestResponse{File: file, Results: results})
}
