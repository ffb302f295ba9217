package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

// attachTailSink wires a collector onto the pipeline's tail stage, which
// normally has no successor. Only valid for test use, before any record is
// placed.
func attachTailSink(t *testing.T, p *Pipeline) *[]string {
	t.Helper()
	var records []string
	var mu sync.Mutex
	sink := func(_ context.Context, record string) error {
		mu.Lock()
		records = append(records, record)
		mu.Unlock()
		return nil
	}
	if err := p.AttachSink(sink); err != nil {
		t.Fatalf("attach tail sink: %v", err)
	}
	return &records
}

func runToCompletion(t *testing.T, p *Pipeline, lines []string) []string {
	t.Helper()
	got := attachTailSink(t, p)

	ctx := context.Background()
	for _, line := range lines {
		if err := p.PlaceWork(ctx, line); err != nil {
			t.Fatalf("PlaceWork(%q): %v", line, err)
		}
	}
	if err := p.PlaceWork(ctx, Sentinel); err != nil {
		t.Fatalf("PlaceWork(sentinel): %v", err)
	}
	if err := p.WaitFinished(ctx); err != nil {
		t.Fatalf("WaitFinished: %v", err)
	}
	if err := p.Fini(); err != nil {
		t.Fatalf("Fini: %v", err)
	}
	return *got
}

func TestUppercaseSingleStage(t *testing.T) {
	t.Parallel()

	p, err := New([]string{"uppercaser"}, WithQueueSize(4))
	if err != nil {
		t.Fatal(err)
	}
	got := runToCompletion(t, p, []string{"abc"})

	want := []string{"ABC", Sentinel}
	if !equalStrings(got, want) {
		t.Fatalf("tail output = %v, want %v", got, want)
	}
}

func TestUppercaseThenReverse(t *testing.T) {
	t.Parallel()

	p, err := New([]string{"uppercaser", "flipper"}, WithQueueSize(4))
	if err != nil {
		t.Fatal(err)
	}
	got := runToCompletion(t, p, []string{"ab", "cd"})

	want := []string{"BA", "DC", Sentinel}
	if !equalStrings(got, want) {
		t.Fatalf("tail output = %v, want %v", got, want)
	}
}

func TestRotateSingleStage(t *testing.T) {
	t.Parallel()

	p, err := New([]string{"rotator"}, WithQueueSize(4))
	if err != nil {
		t.Fatal(err)
	}
	got := runToCompletion(t, p, []string{"abcd"})

	want := []string{"dabc", Sentinel}
	if !equalStrings(got, want) {
		t.Fatalf("tail output = %v, want %v", got, want)
	}
}

func TestExpandSingleStage(t *testing.T) {
	t.Parallel()

	p, err := New([]string{"expander"}, WithQueueSize(4))
	if err != nil {
		t.Fatal(err)
	}
	got := runToCompletion(t, p, []string{"abc"})

	want := []string{"a b c", Sentinel}
	if !equalStrings(got, want) {
		t.Fatalf("tail output = %v, want %v", got, want)
	}
}

func TestCapacityOneWithManyLines(t *testing.T) {
	t.Parallel()

	p, err := New([]string{"uppercaser", "flipper"}, WithQueueSize(1))
	if err != nil {
		t.Fatal(err)
	}

	const n = 1000
	lines := make([]string, n)
	want := make([]string, n+1)
	for i := 0; i < n; i++ {
		lines[i] = fmt.Sprintf("line%d", i)
		want[i] = reverseASCII(fmt.Sprintf("LINE%d", i))
	}
	want[n] = Sentinel

	got := runToCompletion(t, p, lines)
	if !equalStrings(got, want) {
		t.Fatalf("got %d records, want %d (first mismatch order check failed)", len(got), len(want))
	}
}

func TestImmediateSentinel(t *testing.T) {
	t.Parallel()

	p, err := New([]string{"uppercaser"}, WithQueueSize(4))
	if err != nil {
		t.Fatal(err)
	}
	got := attachTailSink(t, p)

	ctx := context.Background()
	if err := p.PlaceWork(ctx, Sentinel); err != nil {
		t.Fatal(err)
	}
	if err := p.WaitFinished(ctx); err != nil {
		t.Fatal(err)
	}
	if err := p.Fini(); err != nil {
		t.Fatal(err)
	}

	if len(*got) != 1 || (*got)[0] != Sentinel {
		t.Fatalf("tail output = %v, want just the sentinel", *got)
	}
}

func TestNew_RejectsEmptyStageList(t *testing.T) {
	t.Parallel()

	if _, err := New(nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("New(nil): err = %v, want ErrInvalidArgument", err)
	}
}

func TestNew_RejectsUnknownStageName(t *testing.T) {
	t.Parallel()

	if _, err := New([]string{"not-a-real-stage"}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("New(unknown): err = %v, want ErrInvalidArgument", err)
	}
}

func TestFini_Idempotent(t *testing.T) {
	t.Parallel()

	p, err := New([]string{"uppercaser"}, WithQueueSize(1))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	_ = p.PlaceWork(ctx, Sentinel)
	_ = p.WaitFinished(ctx)

	if err := p.Fini(); err != nil {
		t.Fatal(err)
	}
	if err := p.Fini(); err != nil {
		t.Fatalf("second Fini: %v", err)
	}
}

func TestStageNames(t *testing.T) {
	t.Parallel()

	p, err := New([]string{"uppercaser", "rotator"}, WithQueueSize(1))
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		ctx := context.Background()
		_ = p.PlaceWork(ctx, Sentinel)
		_ = p.WaitFinished(ctx)
		_ = p.Fini()
	}()

	want := []string{"uppercaser", "rotator"}
	got := p.StageNames()
	if !equalStrings(got, want) {
		t.Fatalf("StageNames() = %v, want %v", got, want)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func reverseASCII(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}
