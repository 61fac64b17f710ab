package shell

import (
	"context"
	"fmt"
	"time"

	"github.com/irislabs/agentshell/internal/config"
	"github.com/irislabs/agentshell/internal/logging"
	shellcore "github.com/irislabs/agentshell/internal/shell"
	"github.com/irislabs/agentshell/internal/shared/types"
	"github.com/irislabs/agentshell/internal/shared/validate"
)

// DefaultSessionID is used when the caller omits a session identifier.
const DefaultSessionID = "default"

// Provider exposes persistent shell sessions as agent tools.
type Provider struct {
	manager *shellcore.Manager
	cfg     config.ShellConfig
}

// NewProvider creates a shell provider with its own session manager.
func NewProvider(cfg config.ShellConfig, log *logging.Logger) *Provider {
	return &Provider{
		manager: shellcore.NewManager(cfg, log),
		cfg:     cfg,
	}
}

// Manager returns the underlying session manager, used by the server's
// shutdown hook.
func (p *Provider) Manager() *shellcore.Manager {
	return p.manager
}

// Definition returns service metadata
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:          "shell",
		Name:        "Shell Service",
		Description: "Persistent interactive shell sessions (bash or cmd depending on system availability)",
		Category:    types.CategoryShell,
		Capabilities: []string{
			"sessions",
			"background",
			"interactive",
		},
		Tools: p.getTools(),
	}
}

// Execute routes to the appropriate operation
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	switch toolID {
	case "shell_start":
		return p.start(params)
	case "shell_run":
		return p.run(params)
	case "shell_write":
		return p.write(params)
	case "shell_read":
		return p.read(params)
	case "shell_stop":
		return p.stop(params)
	default:
		return nil, fmt.Errorf("unknown tool: %s", toolID)
	}
}

func (p *Provider) getTools() []types.Tool {
	sessionParam := types.Parameter{
		Name:        "session_id",
		Type:        "string",
		Description: "Session identifier for the persistent shell. Defaults to \"default\"",
		Required:    false,
	}
	workingDirParam := types.Parameter{
		Name:        "working_dir",
		Type:        "string",
		Description: "Working directory, used only when the session is created",
		Required:    false,
	}
	maxCharsParam := types.Parameter{
		Name:        "max_chars",
		Type:        "number",
		Description: "Max characters to return from buffered output",
		Required:    false,
	}

	return []types.Tool{
		{
			ID:          "shell_start",
			Name:        "Start Shell Session",
			Description: "Start a persistent shell session. On Windows, uses cmd.exe if bash is unavailable; on Unix-like systems, uses bash or sh.",
			Parameters:  []types.Parameter{sessionParam, workingDirParam},
			Returns:     "object",
		},
		{
			ID:          "shell_run",
			Name:        "Run Shell Command",
			Description: "Run a command in a persistent shell session and wait for completion. If 'background' is true, returns after a short wait even if the command is still running; the session stays busy until it completes.",
			Parameters: []types.Parameter{
				sessionParam,
				{Name: "command", Type: "string", Description: "Command to run", Required: true},
				{Name: "wait_ms", Type: "number", Description: "Max wait time in milliseconds for command completion", Required: true},
				maxCharsParam,
				{Name: "background", Type: "boolean", Description: "Run in background and return after a short wait; the session stays occupied until the command finishes", Required: false},
				workingDirParam,
			},
			Returns: "object",
		},
		{
			ID:          "shell_write",
			Name:        "Write Shell Input",
			Description: "Write input to stdin of a persistent shell session.",
			Parameters: []types.Parameter{
				sessionParam,
				{Name: "input", Type: "string", Description: "Input to write to stdin", Required: true},
				workingDirParam,
			},
			Returns: "object",
		},
		{
			ID:          "shell_read",
			Name:        "Read Shell Output",
			Description: "Read buffered output from a persistent shell session.",
			Parameters: []types.Parameter{
				sessionParam,
				{Name: "wait_ms", Type: "number", Description: "Wait time in milliseconds for new output before reading", Required: false},
				maxCharsParam,
				workingDirParam,
			},
			Returns: "object",
		},
		{
			ID:          "shell_stop",
			Name:        "Stop Shell Session",
			Description: "Stop a persistent shell session and its descendant processes.",
			Parameters:  []types.Parameter{sessionParam},
			Returns:     "object",
		},
	}
}

func (p *Provider) start(params map[string]interface{}) (*types.Result, error) {
	sessionID, err := sessionParam(params)
	if err != nil {
		return types.Failure(err.Error()), nil
	}
	workingDir := stringParam(params, "working_dir", "")

	if _, err := p.manager.Ensure(sessionID, workingDir); err != nil {
		return types.Failure(fmt.Sprintf("failed to start session %q: %v", sessionID, err)), nil
	}

	return types.Ok(map[string]interface{}{
		"session_id": sessionID,
		"status":     "started",
	}), nil
}

func (p *Provider) run(params map[string]interface{}) (*types.Result, error) {
	sessionID, err := sessionParam(params)
	if err != nil {
		return types.Failure(err.Error()), nil
	}
	workingDir := stringParam(params, "working_dir", "")

	command, ok := params["command"].(string)
	if !ok || command == "" {
		return types.Failure("command is required"), nil
	}
	waitMs, ok := intParam(params, "wait_ms")
	if !ok {
		return types.Failure("wait_ms is required"), nil
	}
	background, _ := params["background"].(bool)
	maxChars := p.maxChars(params)

	session, err := p.manager.Ensure(sessionID, workingDir)
	if err != nil {
		return types.Failure(fmt.Sprintf("failed to start session %q: %v", sessionID, err)), nil
	}

	wait := time.Duration(waitMs) * time.Millisecond
	if wait <= 0 {
		wait = p.cfg.DefaultWait
		if background {
			wait = p.cfg.BackgroundWait
		}
	}

	result, err := p.manager.Runner().Run(session, command, wait, maxChars, background)
	if err == shellcore.ErrBusy {
		return types.Failure(fmt.Sprintf(
			"Session %q is already running a command. Wait for it to complete, use shell_read to check status, or start a new session.",
			sessionID)), nil
	}
	if err != nil {
		return types.Failure(err.Error()), nil
	}

	data := map[string]interface{}{
		"session_id": sessionID,
		"stdout":     result.Stdout,
		"stderr":     result.Stderr,
		"end_reason": string(result.Reason),
	}

	// A foreground run that never saw its completion sentinel is a failure;
	// a background run still executing is a normal outcome.
	if result.Reason == shellcore.EndTimeout && !background {
		msg := fmt.Sprintf("command timed out after %d ms", waitMs)
		return &types.Result{Success: false, Data: data, Error: &msg}, nil
	}

	return types.Ok(data), nil
}

func (p *Provider) write(params map[string]interface{}) (*types.Result, error) {
	sessionID, err := sessionParam(params)
	if err != nil {
		return types.Failure(err.Error()), nil
	}
	workingDir := stringParam(params, "working_dir", "")

	input, ok := params["input"].(string)
	if !ok {
		return types.Failure("input is required"), nil
	}

	session, err := p.manager.Ensure(sessionID, workingDir)
	if err != nil {
		return types.Failure(fmt.Sprintf("failed to start session %q: %v", sessionID, err)), nil
	}
	if err := session.Write(input); err != nil {
		return types.Failure(err.Error()), nil
	}

	return types.Ok(map[string]interface{}{
		"session_id": sessionID,
	}), nil
}

func (p *Provider) read(params map[string]interface{}) (*types.Result, error) {
	sessionID, err := sessionParam(params)
	if err != nil {
		return types.Failure(err.Error()), nil
	}
	workingDir := stringParam(params, "working_dir", "")

	session, err := p.manager.Ensure(sessionID, workingDir)
	if err != nil {
		return types.Failure(fmt.Sprintf("failed to start session %q: %v", sessionID, err)), nil
	}

	waitMs, ok := intParam(params, "wait_ms")
	if !ok || waitMs < 0 {
		waitMs = 1000
	}
	stdout, stderr := session.Read(time.Duration(waitMs)*time.Millisecond, p.maxChars(params))

	return types.Ok(map[string]interface{}{
		"session_id": sessionID,
		"stdout":     stdout,
		"stderr":     stderr,
	}), nil
}

func (p *Provider) stop(params map[string]interface{}) (*types.Result, error) {
	sessionID, err := sessionParam(params)
	if err != nil {
		return types.Failure(err.Error()), nil
	}

	// Idempotent: stopping an absent or dead session succeeds
	p.manager.Stop(sessionID)

	return types.Ok(map[string]interface{}{
		"session_id": sessionID,
		"status":     "stopped",
	}), nil
}

// Status reports the shell executable and every session's state, including
// the full transcript, for the dashboard surface.
func (p *Provider) Status() map[string]interface{} {
	exe, _ := shellcore.Resolve(p.cfg)
	return map[string]interface{}{
		"name":             "shell",
		"status":           "ok",
		"shell_executable": exe,
		"sessions":         p.manager.Status(),
	}
}

func (p *Provider) maxChars(params map[string]interface{}) int {
	if n, ok := intParam(params, "max_chars"); ok && n > 0 {
		return n
	}
	return p.cfg.MaxChars
}

// sessionParam reads and validates the session identifier.
func sessionParam(params map[string]interface{}) (string, error) {
	id := stringParam(params, "session_id", DefaultSessionID)
	if err := validate.SessionID(id); err != nil {
		return "", err
	}
	return id, nil
}

// stringParam reads an optional string parameter with a fallback.
func stringParam(params map[string]interface{}, key, fallback string) string {
	if v, ok := params[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// intParam reads a numeric parameter; JSON decoding yields float64.
func intParam(params map[string]interface{}, key string) (int, bool) {
	switch v := params[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}
