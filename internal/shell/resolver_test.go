package shell

import (
	"os/exec"
	"testing"

	"github.com/irislabs/agentshell/internal/config"
)

func TestDetectShellType(t *testing.T) {
	shellType := DetectShellType()
	switch shellType {
	case "bash", "cmd", "sh":
	default:
		t.Errorf("unexpected shell type %q", shellType)
	}
}

func TestResolveAuto(t *testing.T) {
	exe, args := Resolve(config.Default().Shell)
	if exe == "" {
		t.Fatal("resolve returned empty executable")
	}
	// bash and sh sessions must not load startup files
	if DetectShellType() == "bash" {
		if len(args) != 2 || args[0] != "--norc" || args[1] != "--noprofile" {
			t.Errorf("bash args = %v", args)
		}
	}
}

func TestResolveExplicitSh(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	cfg := config.Default().Shell
	cfg.Type = "sh"
	exe, _ := Resolve(cfg)
	if exe == "sh" {
		t.Log("sh not resolved to absolute path; spawn will search PATH")
	}
	if exe == "" {
		t.Fatal("resolve returned empty executable")
	}
}

func TestResolveNeverFails(t *testing.T) {
	cfg := config.Default().Shell
	cfg.Type = "bash"
	cfg.BashPath = "/nonexistent/bash/binary"

	exe, _ := Resolve(cfg)
	if exe == "" {
		t.Fatal("resolve must always return some executable")
	}
}
