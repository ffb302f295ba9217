package host

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestRun_CleanShutdown(t *testing.T) {
	t.Parallel()

	stdin := strings.NewReader("abc\ncd\n")
	var stdout, stderr bytes.Buffer

	got := Run(context.Background(), []string{"4", "uppercaser"}, stdin, &stdout, &stderr, nil)
	if got != ExitOK {
		t.Fatalf("Run exit = %d, want %d (stderr: %s)", got, ExitOK, stderr.String())
	}

	want := "ABC\nCD\n<END>\n"
	if stdout.String() != want {
		t.Fatalf("stdout = %q, want %q", stdout.String(), want)
	}
}

func TestRun_RejectsMissingStage(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	got := Run(context.Background(), []string{"4"}, strings.NewReader(""), &stdout, &stderr, nil)
	if got != ExitArgError {
		t.Fatalf("Run exit = %d, want %d", got, ExitArgError)
	}
	if stderr.Len() == 0 {
		t.Fatal("expected a usage message on stderr")
	}
}

func TestRun_RejectsNonPositiveQueueSize(t *testing.T) {
	t.Parallel()

	for _, size := range []string{"0", "-1", "notanumber"} {
		var stdout, stderr bytes.Buffer
		got := Run(context.Background(), []string{size, "uppercaser"}, strings.NewReader(""), &stdout, &stderr, nil)
		if got != ExitArgError {
			t.Fatalf("queue_size=%q: exit = %d, want %d", size, got, ExitArgError)
		}
	}
}

func TestRun_RejectsUnknownStage(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	got := Run(context.Background(), []string{"4", "not-a-real-stage"}, strings.NewReader(""), &stdout, &stderr, nil)
	if got != ExitArgError {
		t.Fatalf("Run exit = %d, want %d", got, ExitArgError)
	}
}

func TestRun_EmptyStdinStillSendsSentinel(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	got := Run(context.Background(), []string{"4", "uppercaser"}, strings.NewReader(""), &stdout, &stderr, nil)
	if got != ExitOK {
		t.Fatalf("Run exit = %d, want %d (stderr: %s)", got, ExitOK, stderr.String())
	}
	if stdout.String() != "<END>\n" {
		t.Fatalf("stdout = %q, want just the sentinel line", stdout.String())
	}
}

func TestRun_TruncatesOverlongLine(t *testing.T) {
	t.Parallel()

	overlong := strings.Repeat("a", maxLineLength+500)
	stdin := strings.NewReader(overlong + "\ncd\n")
	var stdout, stderr bytes.Buffer

	got := Run(context.Background(), []string{"4", "uppercaser"}, stdin, &stdout, &stderr, nil)
	if got != ExitOK {
		t.Fatalf("Run exit = %d, want %d (stderr: %s)", got, ExitOK, stderr.String())
	}

	want := strings.ToUpper(overlong[:maxLineLength]) + "\nCD\n<END>\n"
	if stdout.String() != want {
		t.Fatalf("stdout length = %d, want %d (overlong line was not truncated to maxLineLength)",
			len(stdout.String()), len(want))
	}
}

func TestRun_ContextCancellationTerminates(t *testing.T) {
	t.Parallel()

	// A queue of size 1 feeding into "typewriter" (which sleeps between
	// characters) guarantees feedStdin's PlaceWork is blocked waiting for
	// queue space, not merely between reads, by the time ctx cancels —
	// reproducing the exact spot a Ctrl-C used to deadlock: PlaceWork
	// returning ctx.Err() with no sentinel ever placed.
	lines := strings.Repeat("x\n", 50)
	stdin := strings.NewReader(lines)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	var stdout, stderr bytes.Buffer
	done := make(chan int, 1)
	go func() {
		done <- Run(ctx, []string{"1", "typewriter"}, stdin, &stdout, &stderr, nil)
	}()

	select {
	case <-done:
		// Canceling ctx while PlaceWork is blocked must still drive the
		// pipeline to completion instead of leaving WaitFinished blocked
		// on a sentinel nobody sent.
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not terminate after context cancellation while PlaceWork was blocked on a full queue")
	}
}
