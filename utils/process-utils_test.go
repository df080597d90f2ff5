//go:build unix

package utils

import (
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminateProcessGroup_NilCommand(t *testing.T) {
	assert.NoError(t, TerminateProcessGroup(nil))
	assert.NoError(t, TerminateProcessGroup(exec.Command("true")))
}

func TestTerminateProcessGroup_StopsChild(t *testing.T) {
	cmd := exec.Command("sleep", "30")
	ConfigureDetachedProcAttr(cmd)
	require.NoError(t, cmd.Start())

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	require.NoError(t, TerminateProcessGroup(cmd))

	select {
	case err := <-done:
		assert.Error(t, err, "sleep should exit with a signal")
	case <-time.After(5 * time.Second):
		_ = cmd.Process.Kill()
		t.Fatal("process group was not terminated")
	}
}
