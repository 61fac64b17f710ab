package shell

import "errors"

// ErrNotRunning is returned when writing to or running against a session
// whose process has exited.
var ErrNotRunning = errors.New("shell session is not running")

// ErrBusy is returned when a run is requested while a previous command on
// the same session has not completed.
var ErrBusy = errors.New("session is already running a command")
