package shell

import (
	"strings"
	"sync"
	"time"
)

// Stream tags a chunk of captured session I/O.
type Stream string

const (
	StreamStdin  Stream = "stdin"
	StreamStdout Stream = "stdout"
	StreamStderr Stream = "stderr"
)

// Chunk is one flushed run of bytes from a single stream.
type Chunk struct {
	Stream Stream
	Text   string
}

// LogEntry is one record of the session's append-only transcript.
type LogEntry struct {
	Stream Stream `json:"stream"`
	Data   string `json:"data"`
}

// Buffer holds a session's undelivered output chunks, its full transcript,
// and the busy marker of the in-flight command. One mutex guards all three:
// marker checks race against the reader goroutines otherwise.
//
// Chunks are consumed by Drain in arrival order; the transcript only grows.
type Buffer struct {
	mu     sync.Mutex
	chunks []Chunk
	log    []LogEntry
	marker string

	// notify carries an edge signal to a blocked reader when output arrives.
	notify chan struct{}
}

// NewBuffer creates an empty output buffer.
func NewBuffer() *Buffer {
	return &Buffer{
		notify: make(chan struct{}, 1),
	}
}

// Append records a chunk produced by a reader goroutine and wakes any
// blocked Await caller.
func (b *Buffer) Append(stream Stream, text string) {
	b.mu.Lock()
	b.chunks = append(b.chunks, Chunk{Stream: stream, Text: text})
	b.log = append(b.log, LogEntry{Stream: stream, Data: text})
	b.mu.Unlock()

	select {
	case b.notify <- struct{}{}:
	default:
	}
}

// LogInput records data written to the process's stdin in the transcript.
func (b *Buffer) LogInput(text string) {
	b.mu.Lock()
	b.log = append(b.log, LogEntry{Stream: StreamStdin, Data: text})
	b.mu.Unlock()
}

// Await blocks until new output arrives or the duration elapses. It returns
// immediately when chunks are already pending or wait is non-positive.
func (b *Buffer) Await(wait time.Duration) {
	if wait <= 0 {
		return
	}

	b.mu.Lock()
	pending := len(b.chunks) > 0
	b.mu.Unlock()
	if pending {
		return
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-b.notify:
	case <-timer.C:
	}
}

// Drain pops buffered chunks in arrival order, splitting them by stream,
// until the character budget is spent. Chunks are never split: the chunk
// that crosses the budget is still consumed whole.
func (b *Buffer) Drain(maxChars int) (stdout, stderr string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Consume a stale wakeup so the next Await reflects only new output.
	select {
	case <-b.notify:
	default:
	}

	var out, errOut strings.Builder
	count := 0
	for len(b.chunks) > 0 && count <= maxChars {
		c := b.chunks[0]
		b.chunks = b.chunks[1:]
		count += len(c.Text)
		if c.Stream == StreamStdout {
			out.WriteString(c.Text)
		} else {
			errOut.WriteString(c.Text)
		}
	}
	return out.String(), errOut.String()
}

// Log returns a copy of the full transcript.
func (b *Buffer) Log() []LogEntry {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries := make([]LogEntry, len(b.log))
	copy(entries, b.log)
	return entries
}

// ClearMarker marks the session idle.
func (b *Buffer) ClearMarker() {
	b.mu.Lock()
	b.marker = ""
	b.mu.Unlock()
}

// Busy reports whether a command is still in flight. Before answering it
// re-scans the buffered stdout for the marker: the command may have finished
// after the runner gave up waiting. When the marker is found, the marker and
// everything buffered before it on stdout are excised (stream attribution
// and ordering of the rest is preserved) and the session becomes idle.
func (b *Buffer) Busy() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.busyLocked()
}

// TrySetMarker atomically claims the session for a new command: it performs
// the same retroactive marker resolution as Busy and installs the token only
// when the session is idle. The check and the set happen under one lock
// acquisition, so concurrent callers get exactly one true.
func (b *Buffer) TrySetMarker(token string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.busyLocked() {
		return false
	}
	b.marker = token
	return true
}

// busyLocked resolves a finished marker against buffered stdout and reports
// whether a command is still in flight. Caller holds b.mu.
func (b *Buffer) busyLocked() bool {
	if b.marker == "" {
		return false
	}

	var stdoutText strings.Builder
	for _, c := range b.chunks {
		if c.Stream == StreamStdout {
			stdoutText.WriteString(c.Text)
		}
	}

	idx := strings.Index(stdoutText.String(), b.marker)
	if idx < 0 {
		return true
	}

	b.removeStreamPrefix(StreamStdout, idx+len(b.marker))
	b.marker = ""
	return false
}

// removeStreamPrefix drops the first n characters of the given stream from
// the chunk queue. Chunks of other streams keep their position and order.
// Caller holds b.mu.
func (b *Buffer) removeStreamPrefix(stream Stream, n int) {
	remaining := b.chunks[:0:0]
	for _, c := range b.chunks {
		if c.Stream != stream {
			remaining = append(remaining, c)
			continue
		}
		if n >= len(c.Text) {
			n -= len(c.Text)
			continue
		}
		if n > 0 {
			c.Text = c.Text[n:]
			n = 0
		}
		remaining = append(remaining, c)
	}
	b.chunks = remaining
}
