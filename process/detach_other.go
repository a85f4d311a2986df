//go:build !unix && !windows

package process

import "os/exec"

func detachProcessGroup(*exec.Cmd) error {
	return ErrDetachUnsupported
}
