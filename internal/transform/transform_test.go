package transform

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestUppercase(t *testing.T) {
	t.Parallel()

	got, ok := Uppercase("abc")
	if !ok || got != "ABC" {
		t.Fatalf("Uppercase(abc) = (%q, %v), want (ABC, true)", got, ok)
	}
}

func TestReverse(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"ab":    "ba",
		"cd":    "dc",
		"":      "",
		"a":     "a",
		"héllo": "olléh",
	}
	for in, want := range tests {
		got, ok := Reverse(in)
		if !ok || got != want {
			t.Errorf("Reverse(%q) = (%q, %v), want (%q, true)", in, got, ok, want)
		}
	}
}

func TestRotate(t *testing.T) {
	t.Parallel()

	got, ok := Rotate("abcd")
	if !ok || got != "dabc" {
		t.Fatalf("Rotate(abcd) = (%q, %v), want (dabc, true)", got, ok)
	}

	if got, ok := Rotate(""); !ok || got != "" {
		t.Fatalf("Rotate(\"\") = (%q, %v), want (\"\", true)", got, ok)
	}
}

func TestExpand(t *testing.T) {
	t.Parallel()

	got, ok := Expand("abc")
	if !ok || got != "a b c" {
		t.Fatalf("Expand(abc) = (%q, %v), want (a b c, true)", got, ok)
	}

	if got, ok := Expand(""); !ok || got != "" {
		t.Fatalf("Expand(\"\") = (%q, %v), want (\"\", true)", got, ok)
	}
}

func TestPipelineScenarios(t *testing.T) {
	t.Parallel()

	// uppercase then reverse over "ab", "cd" -> "BA", "DC".
	for _, tc := range []struct{ in, want string }{
		{"ab", "BA"},
		{"cd", "DC"},
	} {
		up, _ := Uppercase(tc.in)
		rev, _ := Reverse(up)
		if rev != tc.want {
			t.Errorf("uppercase|reverse(%q) = %q, want %q", tc.in, rev, tc.want)
		}
	}
}

func TestLogger_PassesThroughAndLogs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	fn := Logger(&buf)

	got, ok := fn("hello")
	if !ok || got != "hello" {
		t.Fatalf("Logger passthrough = (%q, %v), want (hello, true)", got, ok)
	}
	if !strings.Contains(buf.String(), "[logger] hello") {
		t.Fatalf("log output %q missing expected line", buf.String())
	}
}

func TestTypewriter_WritesEveryCharacterWithDelay(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	var slept []time.Duration
	fn := Typewriter(&buf, 5*time.Millisecond, func(d time.Duration) { slept = append(slept, d) })

	got, ok := fn("hi")
	if !ok || got != "hi" {
		t.Fatalf("Typewriter passthrough = (%q, %v), want (hi, true)", got, ok)
	}
	if buf.String() != "hi\n" {
		t.Fatalf("typewriter output = %q, want %q", buf.String(), "hi\n")
	}
	if len(slept) != 2 {
		t.Fatalf("expected one delay per character (2), got %d", len(slept))
	}
}

func TestNew_Builtins(t *testing.T) {
	t.Parallel()

	for _, name := range Names {
		p, ok := New(name)
		if !ok {
			t.Errorf("New(%q) not found among built-ins", name)
			continue
		}
		if p.Name() != name {
			t.Errorf("New(%q).Name() = %q", name, p.Name())
		}
		if p.Transform() == nil {
			t.Errorf("New(%q).Transform() is nil", name)
		}
	}

	if _, ok := New("does-not-exist"); ok {
		t.Error("New(does-not-exist) unexpectedly found")
	}
}
