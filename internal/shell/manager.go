package shell

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/irislabs/agentshell/internal/config"
	"github.com/irislabs/agentshell/internal/logging"
)

// stopGrace bounds how long Stop waits between the polite SIGTERM and the
// forced kill of the process group.
const stopGrace = 2 * time.Second

// SessionStatus is the public snapshot of one session for status surfaces.
type SessionStatus struct {
	SessionID  string     `json:"session_id"`
	WorkingDir string     `json:"working_dir"`
	Alive      bool       `json:"alive"`
	Busy       bool       `json:"busy"`
	PID        int        `json:"pid"`
	Log        []LogEntry `json:"log"`
}

// Manager owns all live shell sessions, keyed by caller-supplied identifier.
//
// The map is mutated only on create/stop, under the manager's own lock; the
// per-session buffers have their own locks, so a stuck session never blocks
// operations on another.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	cfg    config.ShellConfig
	runner *Runner
	log    *logging.Logger
}

// NewManager creates an empty session manager.
func NewManager(cfg config.ShellConfig, log *logging.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		runner:   NewRunner(cfg.PollSlice),
		log:      log,
	}
}

// Runner returns the manager's command runner.
func (m *Manager) Runner() *Runner {
	return m.runner
}

// Ensure returns the live session for the id, creating one when none exists
// or the existing one's process has exited. Two live processes never share
// an id. The working directory applies only at creation time.
func (m *Manager) Ensure(sessionID, workingDir string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[sessionID]; ok && s.IsAlive() {
		return s, nil
	}

	s, err := NewSession(sessionID, workingDir, m.cfg)
	if err != nil {
		return nil, err
	}
	if workingDir != "" {
		if werr := s.Write(fmt.Sprintf("cd %q", workingDir)); werr != nil {
			m.log.Warn("failed to enter working directory",
				zap.String("session_id", sessionID),
				zap.String("working_dir", workingDir),
				zap.Error(werr))
		}
	}

	m.sessions[sessionID] = s
	m.log.Info("shell session started",
		zap.String("session_id", sessionID),
		zap.Int("pid", s.PID()),
		zap.String("working_dir", workingDir))
	return s, nil
}

// Get returns the session for the id, if any.
func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	return s, ok
}

// Stop terminates the session's whole process tree. Stopping an absent or
// already-dead session is not an error.
func (m *Manager) Stop(sessionID string) {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	m.mu.Unlock()

	if !ok || !s.IsAlive() {
		return
	}

	s.Terminate()
	if !s.WaitExit(stopGrace) {
		s.KillTree()
	}
	// Descendants may outlive the shell's own exit; sweep the group.
	s.KillTree()

	m.log.Info("shell session stopped", zap.String("session_id", sessionID))
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, s := range m.sessions {
		if s.IsAlive() {
			n++
		}
	}
	return n
}

// Status snapshots every known session, including its full transcript.
func (m *Manager) Status() []SessionStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	statuses := make([]SessionStatus, 0, len(m.sessions))
	for id, s := range m.sessions {
		statuses = append(statuses, SessionStatus{
			SessionID:  id,
			WorkingDir: s.WorkingDir,
			Alive:      s.IsAlive(),
			Busy:       s.Busy(),
			PID:        s.PID(),
			Log:        s.Log(),
		})
	}
	return statuses
}

// Shutdown stops every session. Used by the server's shutdown hook so no
// shell process or descendant outlives the backend.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		m.Stop(id)
	}
}
