package playback

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/touchrec/touchrec/script"
	"github.com/touchrec/touchrec/utils"
)

// ExitError reports a replay script that exited non-zero.
type ExitError struct {
	Code  int
	Speed float64
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("replay exited with code %d at %sx", e.Code, script.FormatSpeed(e.Speed))
}

// Player runs a replay script as a shell subprocess.
type Player struct {
	Shell  string
	Cache  *ScriptCache
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func NewPlayer(shell string, cache *ScriptCache) *Player {
	if shell == "" {
		shell = "bash"
	}
	return &Player{
		Shell:  shell,
		Cache:  cache,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run plays the script once at speed and waits for it. Cancelling ctx
// terminates the whole process group of the script.
func (p *Player) Run(ctx context.Context, speed float64) error {
	path, err := p.Cache.Path(speed)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, p.Shell, path)
	utils.ConfigureDetachedProcAttr(cmd)
	cmd.Cancel = func() error {
		return utils.TerminateProcessGroup(cmd)
	}
	cmd.WaitDelay = 2 * time.Second
	cmd.Stdin = p.Stdin
	cmd.Stderr = p.Stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	utils.Verbose("running %s %s", p.Shell, path)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", p.Shell, err)
	}

	prefix := ""
	if speed != 1.0 {
		prefix = fmt.Sprintf("[%sx] ", script.FormatSpeed(speed))
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		fmt.Fprintf(p.Stdout, "  %s%s\n", prefix, scanner.Text())
	}

	err = cmd.Wait()
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Code: exitErr.ExitCode(), Speed: speed}
	}
	return fmt.Errorf("replay failed: %w", err)
}
