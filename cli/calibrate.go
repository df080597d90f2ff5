package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/touchrec/touchrec/commands"
)

var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Determine the raw touch range of the input device",
	Long:  `Stores the touch range and offset used to map raw touch values onto the monitor.`,
}

var calibrateAutoCmd = &cobra.Command{
	Use:   "auto",
	Short: "Read the axis ranges reported by the device",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return report(commands.CalibrateCommand(commands.CalibrateRequest{
			Device: inputDevice,
			Mode:   commands.CalibrateAuto,
			DryRun: calibrateDryRun,
		}))
	},
}

var calibrateManualCmd = &cobra.Command{
	Use:   "manual",
	Short: "Calibrate from touches on the top-left and bottom-right corners",
	Long: `Without --min-x/--min-y/--max-x/--max-y, shows raw positions while you touch
the top-left and bottom-right corners, then asks for the noted values after
Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		corners := &commands.Corners{MinX: cornerMinX, MinY: cornerMinY, MaxX: cornerMaxX, MaxY: cornerMaxY}

		if !cmd.Flags().Changed("max-x") || !cmd.Flags().Changed("max-y") {
			var err error
			corners, err = interactiveCorners(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return report(commands.NewErrorResponse(err))
			}
		}

		return report(commands.CalibrateCommand(commands.CalibrateRequest{
			Device:  inputDevice,
			Mode:    commands.CalibrateManual,
			Corners: corners,
			DryRun:  calibrateDryRun,
		}))
	},
}

// interactiveCorners streams raw positions until the first interrupt, then
// prompts for the corner values on stdin.
func interactiveCorners(ctx context.Context, out io.Writer) (*commands.Corners, error) {
	fmt.Fprintln(out, "Touch the top-left corner, then the bottom-right corner, and note the values.")
	fmt.Fprintln(out, "Press Ctrl+C when done.")
	_, err := commands.StreamRawPositions(ctx, inputDevice, captureOptions(), func(p commands.RawPosition) {
		fmt.Fprintf(out, "\rPosition: X=%5d, Y=%5d", p.X, p.Y)
	})
	fmt.Fprintln(out)
	if err != nil {
		return nil, err
	}

	in := bufio.NewReader(os.Stdin)
	ask := func(prompt string) (int, error) {
		fmt.Fprintf(out, "%s: ", prompt)
		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			return 0, fmt.Errorf("failed to read %s: %w", prompt, err)
		}
		v, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			return 0, fmt.Errorf("invalid %s %q", prompt, strings.TrimSpace(line))
		}
		return v, nil
	}

	var c commands.Corners
	fields := []struct {
		prompt string
		dst    *int
	}{
		{"top-left X", &c.MinX},
		{"top-left Y", &c.MinY},
		{"bottom-right X", &c.MaxX},
		{"bottom-right Y", &c.MaxY},
	}
	for _, f := range fields {
		v, err := ask(f.prompt)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}
	return &c, nil
}

var deviceTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Print touches as they happen to check device and calibration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := commands.DeviceTestRequest{
			Device:         inputDevice,
			Monitor:        monitorName,
			CaptureOptions: captureOptions(),
		}
		return report(commands.DeviceTestCommand(cmd.Context(), req, cmd.ErrOrStderr()))
	},
}

func init() {
	rootCmd.AddCommand(calibrateCmd, deviceTestCmd)
	calibrateCmd.AddCommand(calibrateAutoCmd, calibrateManualCmd)

	for _, c := range []*cobra.Command{calibrateAutoCmd, calibrateManualCmd} {
		c.Flags().StringVarP(&inputDevice, "device", "d", "", "input device, e.g. /dev/input/event5 or 5")
		c.Flags().BoolVar(&calibrateDryRun, "dry-run", false, "print the calibration without saving it")
		_ = c.MarkFlagRequired("device")
	}

	calibrateManualCmd.Flags().BoolVar(&noSudo, "no-sudo", false, "run evtest without sudo")
	calibrateManualCmd.Flags().BoolVar(&nativeMode, "native", false, "read the device directly instead of through evtest")
	calibrateManualCmd.Flags().IntVar(&cornerMinX, "min-x", 0, "raw X at the top-left corner")
	calibrateManualCmd.Flags().IntVar(&cornerMinY, "min-y", 0, "raw Y at the top-left corner")
	calibrateManualCmd.Flags().IntVar(&cornerMaxX, "max-x", 0, "raw X at the bottom-right corner")
	calibrateManualCmd.Flags().IntVar(&cornerMaxY, "max-y", 0, "raw Y at the bottom-right corner")

	addCaptureFlags(deviceTestCmd)
}
