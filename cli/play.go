package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/touchrec/touchrec/commands"
	"github.com/touchrec/touchrec/playback"
	"github.com/touchrec/touchrec/script"
)

const statusInterval = 500 * time.Millisecond

func playRequest(file string) commands.PlayRequest {
	return commands.PlayRequest{
		File:            file,
		Speed:           playSpeed,
		SpeedMode:       playSpeedMode,
		MinSpeed:        playMinSpeed,
		MaxSpeed:        playMaxSpeed,
		Loop:            playLoop,
		Count:           playCount,
		DurationSeconds: playDuration,
		PauseSeconds:    playPause,
		Native:          nativeMode,
		Monitor:         monitorName,
	}
}

var playCmd = &cobra.Command{
	Use:   "play <script>",
	Short: "Replay a recorded script",
	Long: `Replays a recording once or in a loop. The script is looked up as given and
then in the recordings directory. Speed accepts a factor or a preset name
(very-slow, slow, normal, fast, very-fast, turbo).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		p, err := commands.NewPlayback(ctx, playRequest(args[0]), os.Stdout)
		if err != nil {
			return report(commands.NewErrorResponse(err))
		}

		if playStatus {
			statusCtx, stopStatus := context.WithCancel(ctx)
			defer stopStatus()
			go printStatus(statusCtx, p.Controller)
		}

		res, err := p.Run(ctx)
		data := commands.PlayResponse{File: p.File, Result: res}
		if err != nil {
			return report(commands.NewErrorResponseWithData(err, data))
		}
		return report(commands.NewSuccessResponse(data))
	},
}

// printStatus reports loop progress on stderr until ctx is done.
func printStatus(ctx context.Context, c *playback.Controller) {
	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		snap := c.Snapshot()
		if snap.State != playback.StateRunning {
			continue
		}
		progress := fmt.Sprintf("#%d", snap.Iteration)
		if snap.Total > 0 {
			progress = fmt.Sprintf("%d/%d", snap.Iteration, snap.Total)
		}
		line := fmt.Sprintf("\r[%s] %s at %sx, %d done, %.0fs elapsed", snap.State, progress, script.FormatSpeed(snap.Speed), snap.Plays, snap.Elapsed.Seconds())
		if snap.Remaining > 0 {
			line += fmt.Sprintf(", %.0fs left", snap.Remaining.Seconds())
		}
		fmt.Fprint(os.Stderr, line)
	}
}

func addPlaybackFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&playSpeed, "speed", "s", "", "speed factor or preset (default from config)")
	cmd.Flags().StringVar(&playSpeedMode, "speed-mode", "fixed", "fixed, per_loop, gradual or chaos")
	cmd.Flags().Float64Var(&playMinSpeed, "min-speed", 0, "lower bound for random speeds (default from config)")
	cmd.Flags().Float64Var(&playMaxSpeed, "max-speed", 0, "upper bound for random speeds (default from config)")
	cmd.Flags().StringVarP(&playLoop, "loop", "l", "single", "single, count, random_count, infinite or duration")
	cmd.Flags().IntVarP(&playCount, "count", "c", 0, "number of plays for --loop count")
	cmd.Flags().Float64Var(&playDuration, "duration", 0, "seconds to keep looping for --loop duration")
	cmd.Flags().Float64Var(&playPause, "pause", 0, "seconds to pause between plays")
}

func init() {
	rootCmd.AddCommand(playCmd)

	addPlaybackFlags(playCmd)
	playCmd.Flags().BoolVar(&nativeMode, "native", false, "inject events in-process instead of running the script with bash")
	playCmd.Flags().StringVarP(&monitorName, "monitor", "m", "", "monitor for --native (default: the recorded one)")
	playCmd.Flags().BoolVar(&playStatus, "status", false, "print loop progress every 500ms")
}
