//go:build !windows

package shell

import (
	"os"
	"os/exec"
	"syscall"
)

// setProcessGroup places the shell in its own process group so signals can
// reach every descendant, not just the direct child.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// terminateGroup sends SIGTERM to the whole process group.
func terminateGroup(p *os.Process) {
	syscall.Kill(-p.Pid, syscall.SIGTERM)
}

// killGroup sends SIGKILL to the whole process group.
func killGroup(p *os.Process) {
	syscall.Kill(-p.Pid, syscall.SIGKILL)
}
