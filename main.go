package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/touchrec/touchrec/cli"
	"github.com/touchrec/touchrec/commands"
	"github.com/touchrec/touchrec/devices"
	"github.com/touchrec/touchrec/utils"
)

func main() {
	// capture processes and temp scripts are released here on exit
	hook := devices.NewShutdownHook()
	commands.SetShutdownHook(hook)

	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- cli.Execute(ctx)
	}()

	var err error
	select {
	case err = <-done:
	case <-sigChan:
		// first signal: let the running command finish its output
		cancel()
		select {
		case err = <-done:
		case <-sigChan:
			_ = hook.Shutdown()
			os.Exit(1)
		}
	}

	if herr := hook.Shutdown(); herr != nil {
		utils.Warn("cleanup: %v", herr)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
