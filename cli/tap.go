package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/touchrec/touchrec/commands"
)

// parseCoords reads "x,y".
func parseCoords(s string) (int, int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid coordinate format. Expected 'x,y', got '%s'", s)
	}

	x, errX := strconv.Atoi(strings.TrimSpace(parts[0]))
	y, errY := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errX != nil || errY != nil {
		return 0, 0, fmt.Errorf("invalid coordinate values. x and y must be integers. Got x='%s', y='%s'", parts[0], parts[1])
	}
	return x, y, nil
}

var tapCmd = &cobra.Command{
	Use:   "tap [x,y]",
	Short: "Tap once on a monitor through xdotool",
	Long:  `Taps at x,y relative to the monitor's top-left corner. Coordinates should be provided as a single string "x,y".`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		x, y, err := parseCoords(args[0])
		if err != nil {
			return report(commands.NewErrorResponse(err))
		}

		return report(commands.TapCommand(cmd.Context(), commands.TapRequest{
			X:          x,
			Y:          y,
			DurationMs: tapDurationMs,
			Monitor:    monitorName,
		}))
	},
}

func init() {
	rootCmd.AddCommand(tapCmd)

	tapCmd.Flags().StringVarP(&monitorName, "monitor", "m", "", "xrandr output name (default: first connected monitor)")
	tapCmd.Flags().IntVar(&tapDurationMs, "duration", 0, "milliseconds between press and release (default 50)")
}
