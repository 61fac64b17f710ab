package shell

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// EndReason describes how a run finished.
type EndReason string

const (
	// EndCompleted means the completion sentinel was observed.
	EndCompleted EndReason = "completed"
	// EndTimeout means the wait budget elapsed without the sentinel.
	EndTimeout EndReason = "timeout"
	// EndRunning means a background run returned while the command is
	// still executing.
	EndRunning EndReason = "running"
)

// RunResult carries the output collected during one run.
type RunResult struct {
	Stdout string
	Stderr string
	Reason EndReason
}

// Runner executes commands over a session using the marker protocol.
//
// Shells expose no portable "command finished" event through pipes, so the
// runner appends a second command echoing a freshly generated sentinel token
// and watches buffered stdout for it. Polling happens in bounded slices; no
// iteration blocks longer than PollSlice, no run longer than its budget.
type Runner struct {
	// PollSlice is the read timeout of a single poll iteration.
	PollSlice time.Duration
	// IdleSleep bounds the busy-wait when a slice yields no bytes.
	IdleSleep time.Duration
}

// NewRunner creates a runner with the given poll slice.
func NewRunner(pollSlice time.Duration) *Runner {
	if pollSlice <= 0 {
		pollSlice = 100 * time.Millisecond
	}
	return &Runner{
		PollSlice: pollSlice,
		IdleSleep: 10 * time.Millisecond,
	}
}

// newMarker generates a statistically unique completion sentinel. Collision
// with command output is made negligible, not impossible.
func newMarker() string {
	return "__CMD_DONE_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8] + "__"
}

// Run issues a command on the session and collects output until the
// completion sentinel appears or the wait budget elapses.
//
// Exactly one command may be in flight per session: a busy session yields
// ErrBusy without touching the process. On timeout the marker stays set so a
// later Busy check or run can resolve the command retroactively once its
// output arrives; buffered output is never discarded by a timeout.
//
// In background mode a still-running outcome is not a failure: the caller
// gets whatever output accumulated plus EndRunning.
func (r *Runner) Run(s *Session, command string, wait time.Duration, maxChars int, background bool) (*RunResult, error) {
	token := newMarker()
	if !s.TrySetMarker(token) {
		return nil, ErrBusy
	}

	if err := s.Write(command); err != nil {
		s.ClearMarker()
		return nil, err
	}
	if err := s.Write("echo " + token); err != nil {
		s.ClearMarker()
		return nil, err
	}

	stdout, stderr, found := r.collect(s, token, wait, maxChars)

	reason := EndCompleted
	if !found {
		reason = EndTimeout
		if background {
			reason = EndRunning
		}
	}
	return &RunResult{Stdout: stdout, Stderr: stderr, Reason: reason}, nil
}

// collect polls the session until the token shows up in accumulated stdout
// or the deadline passes. It returns the output with the token (and the
// echo's trailing newline) stripped when found.
func (r *Runner) collect(s *Session, token string, wait time.Duration, maxChars int) (string, string, bool) {
	deadline := time.Now().Add(wait)
	var stdoutAcc string
	var stderrAcc strings.Builder

	for time.Now().Before(deadline) {
		out, errOut := s.Read(r.PollSlice, maxChars)
		stdoutAcc += out
		stderrAcc.WriteString(errOut)

		if idx := strings.Index(stdoutAcc, token); idx >= 0 {
			s.ClearMarker()
			return stdoutAcc[:idx], stderrAcc.String(), true
		}

		if out == "" && errOut == "" {
			time.Sleep(r.IdleSleep)
		}
	}

	return stdoutAcc, stderrAcc.String(), false
}
