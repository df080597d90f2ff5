package devices

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/touchrec/touchrec/utils"
)

// EventSource yields evtest-formatted lines. ReadLine returns io.EOF once
// the source is closed or exhausted.
type EventSource interface {
	ReadLine() (string, error)
	Close() error
}

// EvtestSource reads from an evtest subprocess.
type EvtestSource struct {
	cmd     *exec.Cmd
	scanner *bufio.Scanner

	closeOnce sync.Once
}

// EnsureSudo refreshes cached sudo credentials in the foreground so the
// capture process can later run non-interactively in its own process group.
func EnsureSudo(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "sudo", "-v")
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("sudo authentication failed: %w", err)
	}
	return nil
}

// OpenEvtest starts evtest on device. With useSudo, credentials must already
// be cached (see EnsureSudo).
func OpenEvtest(device string, useSudo bool) (*EvtestSource, error) {
	name, args := "evtest", []string{device}
	if useSudo {
		name, args = "sudo", []string{"-n", "evtest", device}
	}

	cmd := exec.Command(name, args...)
	utils.ConfigureDetachedProcAttr(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	utils.Verbose("starting %s %v", name, args)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start evtest: %w", err)
	}

	return newEvtestSource(cmd, stdout), nil
}

func newEvtestSource(cmd *exec.Cmd, r io.Reader) *EvtestSource {
	return &EvtestSource{cmd: cmd, scanner: bufio.NewScanner(r)}
}

func (s *EvtestSource) ReadLine() (string, error) {
	if s.scanner.Scan() {
		return s.scanner.Text(), nil
	}
	if err := s.scanner.Err(); err != nil && !errors.Is(err, os.ErrClosed) {
		return "", err
	}
	return "", io.EOF
}

// Close terminates evtest and its sudo parent.
func (s *EvtestSource) Close() error {
	s.closeOnce.Do(func() {
		if s.cmd == nil || s.cmd.Process == nil {
			return
		}
		if err := utils.TerminateProcessGroup(s.cmd); err != nil {
			utils.Verbose("failed to terminate evtest: %v", err)
		}
		// evtest exits with a signal status; that is the expected outcome
		_ = s.cmd.Wait()
	})
	return nil
}

// CloseOnDone closes src when ctx is cancelled. The returned func stops
// watching.
func CloseOnDone(ctx context.Context, src EventSource) (stop func()) {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = src.Close()
		case <-done:
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

// OpenSource opens the native evdev reader when requested, otherwise evtest.
func OpenSource(device string, native, useSudo bool) (EventSource, error) {
	if native {
		src, err := OpenEvdev(device)
		if err != nil {
			return nil, err
		}
		return src, nil
	}

	src, err := OpenEvtest(device, useSudo)
	if err != nil {
		return nil, err
	}
	return src, nil
}
