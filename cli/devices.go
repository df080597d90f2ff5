package cli

import (
	"github.com/spf13/cobra"

	"github.com/touchrec/touchrec/commands"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List input devices",
	Long:  `Lists /dev/input/event* devices with their names and whether they report absolute touch axes.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return report(commands.DevicesCommand(commands.DevicesRequest{TouchOnly: touchOnly}))
	},
}

var monitorsCmd = &cobra.Command{
	Use:   "monitors",
	Short: "List connected monitors",
	Long:  `Lists the connected outputs reported by xrandr with their geometry.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return report(commands.MonitorsCommand(cmd.Context()))
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd, monitorsCmd)

	devicesCmd.Flags().BoolVar(&touchOnly, "touch", false, "only list touch capable devices")
}
