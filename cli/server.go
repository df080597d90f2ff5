package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/touchrec/touchrec/commands"
	"github.com/touchrec/touchrec/daemon"
	"github.com/touchrec/touchrec/server"
	"github.com/touchrec/touchrec/utils"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Server management commands",
	Long:  `Commands for managing the touchrec JSON-RPC server.`,
}

// listenAddr falls back to the configured address.
func listenAddr(cmd *cobra.Command) string {
	// GetString cannot fail for defined flags
	addr, _ := cmd.Flags().GetString("listen")
	if addr == "" {
		addr = commands.GetConfig().Server.Listen
	}
	return addr
}

var serverStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the touchrec server",
	Long:  `Serves recordings, analysis, transforms and playback control over JSON-RPC on /rpc and /ws.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := listenAddr(cmd)

		// GetBool cannot fail for defined flags
		enableCORS, _ := cmd.Flags().GetBool("cors")
		isDaemon, _ := cmd.Flags().GetBool("daemon")

		if isDaemon && !daemon.IsChild() {
			_, err := daemon.Daemonize()
			if err != nil {
				return fmt.Errorf("failed to start daemon: %w", err)
			}

			fmt.Printf("Server daemon spawned, attempting to listen on %s\n", addr)
			return nil
		}

		token, err := storedToken()
		if err != nil {
			utils.Warn("%v", err)
		}
		if token == "" {
			utils.Warn("no API token stored, the server accepts unauthenticated requests (see 'touchrec auth token')")
		}

		return server.StartServer(cmd.Context(), addr, server.Options{
			EnableCORS: enableCORS,
			Token:      token,
		})
	},
}

var serverKillCmd = &cobra.Command{
	Use:   "kill",
	Short: "Stop the daemonized touchrec server",
	Long:  `Connects to the server and sends a shutdown command via JSON-RPC.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := storedToken()
		if err != nil {
			return err
		}

		if err := daemon.KillServer(listenAddr(cmd), token); err != nil {
			return err
		}

		fmt.Printf("Server shutdown command sent successfully\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// add server subcommands
	serverCmd.AddCommand(serverStartCmd)
	serverCmd.AddCommand(serverKillCmd)

	// server start flags
	serverStartCmd.Flags().String("listen", "", "Address to listen on, e.g. 'localhost:12100' or '0.0.0.0:13000' (default from config)")
	serverStartCmd.Flags().Bool("cors", false, "Enable CORS support")
	serverStartCmd.Flags().BoolP("daemon", "d", false, "Run server in daemon mode (background)")

	// server kill flags
	serverKillCmd.Flags().String("listen", "", "Address of server to kill (default from config)")
}
