package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/touchrec/touchrec/commands"
)

func captureOptions() commands.CaptureOptions {
	return commands.CaptureOptions{Native: nativeMode, NoSudo: noSudo}
}

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record touch gestures into a replay script",
	Long: `Captures touches from the input device and writes them as an executable
bash script in the recordings directory. Recording stops on Ctrl+C; the
script is finalized either way.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := commands.RecordRequest{
			Device:         inputDevice,
			Name:           recordName,
			Monitor:        monitorName,
			OutputDir:      recordOutputDir,
			Debug:          recordDebug,
			CaptureOptions: captureOptions(),
		}
		if recordCountdown >= 0 {
			// zero means the config default, so an explicit 0 becomes 1ns
			req.Countdown = time.Duration(recordCountdown) * time.Second
			if req.Countdown == 0 {
				req.Countdown = time.Nanosecond
			}
		}

		return report(commands.RecordCommand(cmd.Context(), req))
	},
}

func addCaptureFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&inputDevice, "device", "d", "", "input device, e.g. /dev/input/event5 or 5")
	cmd.Flags().StringVarP(&monitorName, "monitor", "m", "", "xrandr output name (default: first connected monitor)")
	cmd.Flags().BoolVar(&noSudo, "no-sudo", false, "run evtest without sudo")
	cmd.Flags().BoolVar(&nativeMode, "native", false, "read the device directly instead of through evtest")
	_ = cmd.MarkFlagRequired("device")
}

func init() {
	rootCmd.AddCommand(recordCmd)

	addCaptureFlags(recordCmd)
	recordCmd.Flags().StringVarP(&recordName, "name", "n", "", "file name prefix (default \"touch\")")
	recordCmd.Flags().StringVarP(&recordOutputDir, "output", "o", "", "directory for the script (default: recordings dir)")
	recordCmd.Flags().BoolVar(&recordDebug, "debug", false, "also write the reconstructed gestures as JSON")
	recordCmd.Flags().IntVar(&recordCountdown, "countdown", -1, "seconds to wait before capturing (default from config)")
}
