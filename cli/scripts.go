package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/touchrec/touchrec/commands"
)

var transformCmd = &cobra.Command{
	Use:   "transform <script> <speed>",
	Short: "Write a speed-adjusted copy of a recording",
	Long: `Rescales every sleep, tap duration and drag timestamp of a recording by
1/speed and writes the result next to it as <name>_<speed>x.sh.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return report(commands.TransformCommand(commands.TransformRequest{
			File:   args[0],
			Speed:  args[1],
			Output: transformOutput,
		}))
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <script>",
	Short: "Count the gestures of a recording and estimate its duration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return report(commands.AnalyzeCommand(commands.AnalyzeRequest{File: args[0]}))
	},
}

var recordingsCmd = &cobra.Command{
	Use:     "recordings",
	Aliases: []string{"ls"},
	Short:   "List recordings, newest first",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return report(commands.RecordingsCommand(commands.RecordingsRequest{Dir: recordingsDir}))
	},
}

var speedTestCmd = &cobra.Command{
	Use:   "speedtest <script>",
	Short: "Play a recording once per speed and compare the timings",
	Long: fmt.Sprintf(`Plays the script at each speed, pausing between runs, and reports the
measured against the expected duration. Default speeds: %v.`, commands.DefaultTestSpeeds),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := commands.SpeedTestRequest{File: args[0], Speeds: speedTestSpeeds}
		return report(commands.SpeedTestCommand(cmd.Context(), req, cmd.OutOrStderr()))
	},
}

func init() {
	rootCmd.AddCommand(transformCmd, analyzeCmd, recordingsCmd, speedTestCmd)

	transformCmd.Flags().StringVarP(&transformOutput, "output", "o", "", "output path (default <name>_<speed>x.sh)")
	recordingsCmd.Flags().StringVar(&recordingsDir, "dir", "", "directory to scan (default: recordings dir)")
	speedTestCmd.Flags().Float64SliceVar(&speedTestSpeeds, "speeds", nil, "comma separated speeds to test")
}
