//go:build !windows

package infra

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// setupProcessGroup puts the CLI in its own group so the JVM it forks dies
// with it.
func setupProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killProcess is installed as cmd.Cancel.
func killProcess(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	if errors.Is(err, syscall.ESRCH) {
		return os.ErrProcessDone
	}
	return err
}
