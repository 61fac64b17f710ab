// Package shell exposes persistent interactive shell sessions as agent
// tools.
//
// Tools:
//   - shell_start: Create (or reuse) a named shell session
//   - shell_run: Run a command and wait for its completion sentinel
//   - shell_write: Write raw input to the session's stdin
//   - shell_read: Drain buffered output
//   - shell_stop: Terminate the session and its process tree
//
// One command may be in flight per session at a time; shell_run against a
// busy session fails with a busy-conflict error rather than queueing. A
// foreground run that exceeds its wait budget reports end_reason "timeout"
// and keeps the session busy until the completion sentinel shows up in
// later output. Background runs return after a short wait with end_reason
// "running" and resolve the same way.
//
// The session transcript (every byte written and read) is exposed through
// the provider's Status block.
package shell
