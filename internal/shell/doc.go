// Package shell implements persistent interactive shell sessions for the
// agent tool layer.
//
// Each session owns one long-lived shell process driven over plain pipes
// (no PTY). Two reader goroutines capture stdout and stderr into a shared
// Buffer; commands are issued through the stdin pipe. Command completion is
// detected with a sentinel marker: the runner writes the caller's command
// followed by an `echo <token>` line and polls the buffered stdout until the
// token appears or the wait budget elapses.
//
// Architecture:
//   - Resolver: picks the shell executable for the host (bash, cmd, sh)
//   - Buffer: mutex-guarded chunk queue plus append-only audit log
//   - Session: process handle, reader goroutines, busy marker
//   - Runner: the marker protocol with bounded polling
//   - Manager: session registry with lazy creation and group termination
//
// Sessions are fully independent: a stuck command in one session never
// blocks another. Every blocking call takes an explicit upper bound.
package shell
