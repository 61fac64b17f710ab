package shell

import (
	"testing"
	"time"
)

func TestBufferDrainSplitsStreams(t *testing.T) {
	b := NewBuffer()
	b.Append(StreamStdout, "out1\n")
	b.Append(StreamStderr, "err1\n")
	b.Append(StreamStdout, "out2\n")

	stdout, stderr := b.Drain(20000)
	if stdout != "out1\nout2\n" {
		t.Errorf("stdout = %q", stdout)
	}
	if stderr != "err1\n" {
		t.Errorf("stderr = %q", stderr)
	}

	// Consumed: a second drain is empty
	stdout, stderr = b.Drain(20000)
	if stdout != "" || stderr != "" {
		t.Errorf("drain after drain = %q, %q", stdout, stderr)
	}
}

func TestBufferDrainBudget(t *testing.T) {
	b := NewBuffer()
	b.Append(StreamStdout, "aaaa")
	b.Append(StreamStdout, "bbbb")
	b.Append(StreamStdout, "cccc")

	// Budget 5 is crossed by the second chunk, which is still consumed
	// whole; the third stays buffered.
	stdout, _ := b.Drain(5)
	if stdout != "aaaabbbb" {
		t.Errorf("stdout = %q", stdout)
	}

	stdout, _ = b.Drain(20000)
	if stdout != "cccc" {
		t.Errorf("remaining stdout = %q", stdout)
	}
}

func TestBufferLogNeverConsumed(t *testing.T) {
	b := NewBuffer()
	b.LogInput("echo hi\n")
	b.Append(StreamStdout, "hi\n")
	b.Drain(20000)

	log := b.Log()
	if len(log) != 2 {
		t.Fatalf("log length = %d", len(log))
	}
	if log[0].Stream != StreamStdin || log[0].Data != "echo hi\n" {
		t.Errorf("log[0] = %+v", log[0])
	}
	if log[1].Stream != StreamStdout || log[1].Data != "hi\n" {
		t.Errorf("log[1] = %+v", log[1])
	}
}

func TestBufferBusyMarkerLifecycle(t *testing.T) {
	b := NewBuffer()
	if b.Busy() {
		t.Fatal("new buffer should be idle")
	}

	if !b.TrySetMarker("__CMD_DONE_deadbeef__") {
		t.Fatal("idle buffer must accept a marker")
	}
	if !b.Busy() {
		t.Fatal("marker set, no output: should be busy")
	}

	// The marker arriving in buffered stdout resolves the busy state even
	// though no runner observed it.
	b.Append(StreamStdout, "late output\n")
	b.Append(StreamStdout, "__CMD_DONE_deadbeef__\n")
	if b.Busy() {
		t.Fatal("marker present in stdout: should be idle")
	}
	if b.Busy() {
		t.Fatal("busy check must be idempotent once resolved")
	}
}

func TestBufferMarkerExcision(t *testing.T) {
	b := NewBuffer()
	b.TrySetMarker("TOKEN")
	b.Append(StreamStdout, "before ")
	b.Append(StreamStderr, "kept stderr\n")
	b.Append(StreamStdout, "TOKEN")
	b.Append(StreamStdout, "\nafter\n")

	if b.Busy() {
		t.Fatal("should resolve")
	}

	// Everything up to and including the marker is excised from stdout;
	// stderr and post-marker stdout keep their order and attribution.
	stdout, stderr := b.Drain(20000)
	if stdout != "\nafter\n" {
		t.Errorf("stdout = %q", stdout)
	}
	if stderr != "kept stderr\n" {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestBufferMarkerSplitAcrossChunks(t *testing.T) {
	b := NewBuffer()
	b.TrySetMarker("TOKEN")
	b.Append(StreamStdout, "TO")
	b.Append(StreamStdout, "KEN\n")

	if b.Busy() {
		t.Fatal("marker split across chunks must still resolve")
	}

	stdout, _ := b.Drain(20000)
	if stdout != "\n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestBufferAwaitWakesOnAppend(t *testing.T) {
	b := NewBuffer()

	start := time.Now()
	go func() {
		time.Sleep(50 * time.Millisecond)
		b.Append(StreamStdout, "x")
	}()
	b.Await(2 * time.Second)

	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("await did not wake on append, took %v", elapsed)
	}
}

func TestBufferAwaitTimeout(t *testing.T) {
	b := NewBuffer()

	start := time.Now()
	b.Await(50 * time.Millisecond)
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("await returned too early: %v", elapsed)
	}
}

func TestBufferAwaitReturnsWhenPending(t *testing.T) {
	b := NewBuffer()
	b.Append(StreamStdout, "already here")
	b.Drain(20000)
	b.Append(StreamStdout, "pending")

	start := time.Now()
	b.Await(2 * time.Second)
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("await blocked despite pending output: %v", elapsed)
	}
}
