//go:build !windows

package core

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// configureProcessGroup starts cmd in its own process group and makes
// context cancellation kill the whole group, so programs the command
// started can't hold the output pipe open.
func configureProcessGroup(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true

	cmd.Cancel = func() error {
		err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		if errors.Is(err, syscall.ESRCH) {
			return os.ErrProcessDone
		}
		return err
	}
}
