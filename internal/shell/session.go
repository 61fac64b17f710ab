package shell

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/irislabs/agentshell/internal/config"
)

// maxChunkBytes caps how many bytes a reader accumulates before flushing a
// chunk even without a newline; long lines stay visible while they stream.
const maxChunkBytes = 1024

// Session is one persistent shell process with buffered output capture.
type Session struct {
	ID         string
	WorkingDir string
	StartedAt  time.Time

	cmd   *exec.Cmd
	stdin io.WriteCloser
	buf   *Buffer

	// done closes when the process has exited and been reaped.
	done chan struct{}
}

// NewSession spawns a shell process and starts its stream readers.
//
// The process joins a fresh process group so Stop can terminate the whole
// tree, descendants included.
func NewSession(sessionID, workingDir string, cfg config.ShellConfig) (*Session, error) {
	exe, args := Resolve(cfg)

	cmd := exec.Command(exe, args...)
	if workingDir != "" {
		cmd.Dir = workingDir
	}

	// A dumb terminal keeps tools from emitting ANSI sequences the agent
	// would have to strip.
	cmd.Env = append(os.Environ(),
		"TERM=dumb",
		"PS1=$ ",
		"NO_COLOR=1",
		"PYTHONUNBUFFERED=1",
	)
	setProcessGroup(cmd)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start shell %q: %w", exe, err)
	}

	s := &Session{
		ID:         sessionID,
		WorkingDir: workingDir,
		StartedAt:  time.Now(),
		cmd:        cmd,
		stdin:      stdin,
		buf:        NewBuffer(),
		done:       make(chan struct{}),
	}

	go s.readStream(StreamStdout, stdout)
	go s.readStream(StreamStderr, stderr)
	go func() {
		cmd.Wait()
		close(s.done)
	}()

	return s, nil
}

// readStream captures one output stream byte by byte. Bytes accumulate in a
// private buffer and flush into the shared Buffer on newline, on reaching
// maxChunkBytes, and when the stream closes. Invalid UTF-8 is replaced, not
// rejected: commands may emit partial lines or binary-ish text.
func (s *Session) readStream(stream Stream, r io.Reader) {
	br := bufio.NewReader(r)
	acc := make([]byte, 0, maxChunkBytes)

	flush := func() {
		if len(acc) == 0 {
			return
		}
		s.buf.Append(stream, strings.ToValidUTF8(string(acc), "�"))
		acc = acc[:0]
	}

	for {
		c, err := br.ReadByte()
		if err != nil {
			flush()
			return
		}
		acc = append(acc, c)
		if c == '\n' || len(acc) >= maxChunkBytes {
			flush()
		}
	}
}

// IsAlive reports whether the shell process is still running.
func (s *Session) IsAlive() bool {
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

// PID returns the shell process id.
func (s *Session) PID() int {
	return s.cmd.Process.Pid
}

// Write sends data to the process's stdin, appending a newline when absent,
// and records the input in the transcript.
func (s *Session) Write(data string) error {
	if !s.IsAlive() {
		return ErrNotRunning
	}
	if !strings.HasSuffix(data, "\n") {
		data += "\n"
	}
	s.buf.LogInput(data)
	if _, err := s.stdin.Write([]byte(data)); err != nil {
		return fmt.Errorf("write to shell failed: %w", err)
	}
	return nil
}

// Read blocks up to wait for new output, then drains up to maxChars from the
// buffer. A non-positive wait is a non-blocking drain.
func (s *Session) Read(wait time.Duration, maxChars int) (stdout, stderr string) {
	s.buf.Await(wait)
	return s.buf.Drain(maxChars)
}

// Busy reports whether a command is in flight on this session.
func (s *Session) Busy() bool {
	return s.buf.Busy()
}

// TrySetMarker atomically claims the session for a command, failing when one
// is already in flight.
func (s *Session) TrySetMarker(token string) bool {
	return s.buf.TrySetMarker(token)
}

// ClearMarker marks the session idle.
func (s *Session) ClearMarker() {
	s.buf.ClearMarker()
}

// Log returns the session's full transcript.
func (s *Session) Log() []LogEntry {
	return s.buf.Log()
}

// Terminate asks the process group to exit. It does not wait for the exit;
// use KillTree for forced cleanup of lingering descendants.
func (s *Session) Terminate() {
	if s.IsAlive() {
		terminateGroup(s.cmd.Process)
	}
}

// KillTree forcibly kills the process group.
func (s *Session) KillTree() {
	killGroup(s.cmd.Process)
}

// WaitExit blocks until the process exits or the timeout elapses, reporting
// whether it exited.
func (s *Session) WaitExit(timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-s.done:
		return true
	case <-timer.C:
		return false
	}
}
