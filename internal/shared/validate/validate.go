// Package validate holds input validation shared by the HTTP surface and
// the tool providers.
package validate

import (
	"fmt"
	"regexp"
)

const (
	MaxIDLength = 128
)

var (
	// ToolIDPattern matches flat tool ids such as shell_run or fs_read
	ToolIDPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
	// SessionIDPattern allows alphanumeric, hyphens, underscores
	SessionIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// ToolID checks that a tool id is well formed.
func ToolID(id string) error {
	if id == "" {
		return fmt.Errorf("tool_id cannot be empty")
	}
	if len(id) > MaxIDLength {
		return fmt.Errorf("tool_id exceeds %d characters", MaxIDLength)
	}
	if !ToolIDPattern.MatchString(id) {
		return fmt.Errorf("tool_id contains invalid characters: %s", id)
	}
	return nil
}

// SessionID checks that a session id is safe to use as a registry key.
func SessionID(id string) error {
	if id == "" {
		return fmt.Errorf("session_id cannot be empty")
	}
	if len(id) > MaxIDLength {
		return fmt.Errorf("session_id exceeds %d characters", MaxIDLength)
	}
	if !SessionIDPattern.MatchString(id) {
		return fmt.Errorf("session_id contains invalid characters: %s", id)
	}
	return nil
}
