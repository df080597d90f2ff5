//go:build unix

package utils

import (
	"os/exec"
	"syscall"
)

// ConfigureDetachedProcAttr configures the command to run in a separate process group
// on Unix systems, allowing for proper cleanup when the parent process is terminated.
func ConfigureDetachedProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
		Pgid:    0,
	}
}

// TerminateProcessGroup sends SIGTERM to the whole process group of cmd, so
// children such as evtest under sudo or xdotool under bash go too. cmd must
// have been started with ConfigureDetachedProcAttr.
func TerminateProcessGroup(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}

	pgid, err := syscall.Getpgid(cmd.Process.Pid)
	if err != nil {
		return cmd.Process.Signal(syscall.SIGTERM)
	}

	return syscall.Kill(-pgid, syscall.SIGTERM)
}
