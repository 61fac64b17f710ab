//go:build windows

package shell

import (
	"os"
	"os/exec"
	"strconv"
)

func setProcessGroup(cmd *exec.Cmd) {
	// Windows has no POSIX process groups; taskkill /T walks the tree instead.
}

func terminateGroup(p *os.Process) {
	p.Kill()
}

func killGroup(p *os.Process) {
	// /T kills the process and its descendants.
	exec.Command("taskkill", "/T", "/F", "/PID", strconv.Itoa(p.Pid)).Run()
}
