//go:build unix

package process

import (
	"os/exec"
	"syscall"
)

// detachProcessGroup puts the child in a new process group led by itself.
func detachProcessGroup(cmd *exec.Cmd) error {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
	return nil
}
