package shell

import (
	"os"
	"os/exec"
	"runtime"

	"github.com/irislabs/agentshell/internal/config"
)

// DetectShellType returns the shell flavor available on this host:
// "bash" when bash is on the search path, "cmd" on Windows without bash,
// "sh" as the Unix fallback.
func DetectShellType() string {
	if _, err := exec.LookPath("bash"); err == nil {
		return "bash"
	}
	if runtime.GOOS == "windows" {
		return "cmd"
	}
	if _, err := exec.LookPath("sh"); err == nil {
		return "sh"
	}
	return "bash"
}

// Resolve picks the shell executable and its invocation arguments.
//
// It never fails: when nothing can be resolved it still returns a bash
// invocation, and the spawn surfaces the real platform error.
func Resolve(cfg config.ShellConfig) (string, []string) {
	shellType := cfg.Type
	if shellType == "" || shellType == "auto" {
		shellType = DetectShellType()
	}

	switch shellType {
	case "cmd":
		// /Q disables command echo
		return "cmd.exe", []string{"/Q"}
	case "sh":
		if path, err := exec.LookPath("sh"); err == nil {
			return path, nil
		}
		return "sh", nil
	default:
		return resolveBash(cfg.BashPath), []string{"--norc", "--noprofile"}
	}
}

func resolveBash(configured string) string {
	if configured != "bash" {
		if _, err := os.Stat(configured); err == nil {
			return configured
		}
	}
	if path, err := exec.LookPath("bash"); err == nil {
		return path
	}
	return configured
}
