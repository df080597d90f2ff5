package cli

import (
	"github.com/spf13/cobra"

	"github.com/touchrec/touchrec/commands"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run system diagnostics",
	Long:  `Checks the display, the external tools touchrec drives, input devices and the recordings directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return report(commands.DoctorCommand(GetVersion()))
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
