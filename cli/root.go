package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/touchrec/touchrec/commands"
	"github.com/touchrec/touchrec/config"
	"github.com/touchrec/touchrec/server"
	"github.com/touchrec/touchrec/utils"
)

// version is set with -ldflags "-X github.com/touchrec/touchrec/cli.version=..."
var version = "dev"

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "touchrec",
	Short: "Record and replay touchscreen gestures on Linux",
	Long: `touchrec captures touchscreen input through evtest, reconstructs taps and
drags, and writes them as executable bash scripts that replay the gestures
through xdotool on the monitor they were recorded on.`,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	Version:           version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initConfig,
}

func GetVersion() string {
	return version
}

func initConfig(cmd *cobra.Command, args []string) error {
	utils.SetVerbose(verbose)

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	commands.SetConfig(cfg)

	if !verbose && cfg.Log.Level != "" {
		if err := utils.SetLevel(cfg.Log.Level); err != nil {
			return err
		}
	}

	file := logFile
	if file == "" {
		file = cfg.Log.File
	}
	if file != "" {
		if err := utils.SetLogFile(utils.ExpandHome(file)); err != nil {
			return err
		}
		commands.GetShutdownHook().Register("log file", func() error {
			return utils.SetLogFile("")
		})
	}

	server.Version = version
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/touchrec/touchrec.ini)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also append log output to this file")
}

// Execute runs the root command. Cancelling ctx interrupts long running
// commands such as record and play.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// printJson is a helper function to print JSON responses
func printJson(data interface{}) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(jsonData))
}

// report prints the response and turns an error status into an error.
func report(response *commands.CommandResponse) error {
	printJson(response)
	if response.Status == "error" {
		return fmt.Errorf("%s", response.Error)
	}
	return nil
}
