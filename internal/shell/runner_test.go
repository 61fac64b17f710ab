package shell

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunnerCompleted(t *testing.T) {
	s := newTestSession(t)
	r := NewRunner(100 * time.Millisecond)

	result, err := r.Run(s, "echo run_output", 5*time.Second, 20000, false)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.Reason != EndCompleted {
		t.Fatalf("reason = %s", result.Reason)
	}
	if !strings.Contains(result.Stdout, "run_output") {
		t.Errorf("stdout = %q", result.Stdout)
	}
	if strings.Contains(result.Stdout, "__CMD_DONE_") {
		t.Errorf("sentinel leaked into stdout: %q", result.Stdout)
	}
	if s.Busy() {
		t.Error("session should be idle after completion")
	}
}

func TestRunnerCapturesStderr(t *testing.T) {
	s := newTestSession(t)
	r := NewRunner(100 * time.Millisecond)

	result, err := r.Run(s, "echo to_err >&2", 5*time.Second, 20000, false)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(result.Stderr, "to_err") {
		t.Errorf("stderr = %q", result.Stderr)
	}
}

func TestRunnerTimeout(t *testing.T) {
	s := newTestSession(t)
	r := NewRunner(100 * time.Millisecond)

	result, err := r.Run(s, "sleep 2", time.Second, 20000, false)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.Reason != EndTimeout {
		t.Fatalf("reason = %s", result.Reason)
	}
	// Marker stays set: the command is still in flight
	if !s.Busy() {
		t.Error("session should still be busy after timeout")
	}
}

func TestRunnerCompletesWithinBudget(t *testing.T) {
	s := newTestSession(t)
	r := NewRunner(100 * time.Millisecond)

	result, err := r.Run(s, "sleep 2 && echo done_sleeping", 6*time.Second, 20000, false)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.Reason != EndCompleted {
		t.Fatalf("reason = %s", result.Reason)
	}
	if !strings.Contains(result.Stdout, "done_sleeping") {
		t.Errorf("stdout = %q", result.Stdout)
	}
}

func TestRunnerBusyConflict(t *testing.T) {
	s := newTestSession(t)
	r := NewRunner(100 * time.Millisecond)

	// Background run with a short budget leaves the command in flight
	result, err := r.Run(s, "sleep 3", 300*time.Millisecond, 20000, true)
	if err != nil {
		t.Fatalf("background run failed: %v", err)
	}
	if result.Reason != EndRunning {
		t.Fatalf("reason = %s", result.Reason)
	}

	_, err = r.Run(s, "echo conflict", time.Second, 20000, false)
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
}

func TestRunnerSerializesConcurrentRuns(t *testing.T) {
	s := newTestSession(t)
	r := NewRunner(50 * time.Millisecond)

	// All goroutines release on the barrier at once; marker acquisition
	// must admit exactly one of them while the command is in flight.
	const workers = 64
	barrier := make(chan struct{})
	var wg sync.WaitGroup
	var accepted, busy int64

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-barrier
			_, err := r.Run(s, "sleep 0.3", 50*time.Millisecond, 20000, true)
			switch {
			case err == nil:
				atomic.AddInt64(&accepted, 1)
			case errors.Is(err, ErrBusy):
				atomic.AddInt64(&busy, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(barrier)
	wg.Wait()

	if accepted != 1 {
		t.Fatalf("accepted = %d, want exactly 1 (busy = %d)", accepted, busy)
	}
	if busy != workers-1 {
		t.Errorf("busy = %d, want %d", busy, workers-1)
	}
}

func TestBufferTrySetMarker(t *testing.T) {
	b := NewBuffer()

	if !b.TrySetMarker("__CMD_DONE_aaaa__") {
		t.Fatal("idle buffer must accept a marker")
	}
	if b.TrySetMarker("__CMD_DONE_bbbb__") {
		t.Fatal("busy buffer must reject a second marker")
	}

	// The buffered sentinel resolves the busy state, after which a new
	// marker is accepted again
	b.Append(StreamStdout, "output\n__CMD_DONE_aaaa__\n")
	if !b.TrySetMarker("__CMD_DONE_cccc__") {
		t.Fatal("resolved buffer must accept a new marker")
	}
}

func TestRunnerRetroactiveCompletion(t *testing.T) {
	s := newTestSession(t)
	r := NewRunner(100 * time.Millisecond)

	result, err := r.Run(s, "sleep 1 && echo late", 200*time.Millisecond, 20000, true)
	if err != nil {
		t.Fatalf("background run failed: %v", err)
	}
	if result.Reason != EndRunning {
		t.Fatalf("reason = %s", result.Reason)
	}

	// Once the command finishes, the buffered sentinel resolves the busy
	// state on the next check without any runner involvement.
	deadline := time.Now().Add(5 * time.Second)
	for s.Busy() && time.Now().Before(deadline) {
		time.Sleep(100 * time.Millisecond)
	}
	if s.Busy() {
		t.Fatal("busy state never resolved after command finished")
	}

	// The session accepts new commands again
	next, err := r.Run(s, "echo recovered", 5*time.Second, 20000, false)
	if err != nil {
		t.Fatalf("follow-up run failed: %v", err)
	}
	if !strings.Contains(next.Stdout, "recovered") {
		t.Errorf("stdout = %q", next.Stdout)
	}
}

func TestRunnerOutputOrdering(t *testing.T) {
	s := newTestSession(t)
	r := NewRunner(100 * time.Millisecond)

	result, err := r.Run(s, "echo A; echo B; echo C", 5*time.Second, 20000, false)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(result.Stdout, "A\nB\nC\n") {
		t.Errorf("stdout order broken: %q", result.Stdout)
	}
}

func TestNewMarkerUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		m := newMarker()
		if seen[m] {
			t.Fatalf("duplicate marker %s", m)
		}
		seen[m] = true
		if !strings.HasPrefix(m, "__CMD_DONE_") || !strings.HasSuffix(m, "__") {
			t.Errorf("malformed marker %s", m)
		}
	}
}
