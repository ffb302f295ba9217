// Package transform implements the built-in string transformation
// functions: uppercase, reverse, rotate, expand, log, and typewriter.
package transform

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Rotemduvd/OS-ModularPipeline/internal/stageabi"
)

// Uppercase converts every character to its upper-case form.
func Uppercase(record string) (string, bool) {
	return strings.ToUpper(record), true
}

// Reverse reverses the record character by character, operating on runes
// rather than bytes so multi-byte UTF-8 sequences are not corrupted.
func Reverse(record string) (string, bool) {
	runes := []rune(record)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes), true
}

// Rotate moves the last character to the front of the string ("abcd" ->
// "dabc"). The empty string is returned unchanged.
func Rotate(record string) (string, bool) {
	runes := []rune(record)
	if len(runes) == 0 {
		return record, true
	}
	last := runes[len(runes)-1]
	out := make([]rune, len(runes))
	out[0] = last
	copy(out[1:], runes[:len(runes)-1])
	return string(out), true
}

// Expand inserts a single space between every pair of adjacent
// characters ("abc" -> "a b c").
func Expand(record string) (string, bool) {
	runes := []rune(record)
	if len(runes) == 0 {
		return record, true
	}

	var b strings.Builder
	b.Grow(len(record)*2 - 1)
	for i, r := range runes {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String(), true
}

// Logger returns a transform that writes "[logger] <record>" to w and
// passes the record through unchanged.
//
// The pass-through returns a value the worker can treat as a distinct
// ownership token: strings.Clone forces a fresh backing allocation so the
// returned value never aliases the caller's string header, keeping
// identity transforms observably distinct from their input.
func Logger(w io.Writer) func(string) (string, bool) {
	return func(record string) (string, bool) {
		fmt.Fprintf(w, "[logger] %s\n", record)
		return strings.Clone(record), true
	}
}

// DefaultLogger is Logger(os.Stdout).
func DefaultLogger(record string) (string, bool) {
	return Logger(os.Stdout)(record)
}

// typewriterDelay is the fixed 100ms inter-character delay.
const typewriterDelay = 100 * time.Millisecond

// Typewriter returns a transform that writes record to w one character at
// a time with a fixed delay between characters, then passes the record
// through unchanged (clone, for the reason given on Logger).
func Typewriter(w io.Writer, delay time.Duration, sleep func(time.Duration)) func(string) (string, bool) {
	if sleep == nil {
		sleep = time.Sleep
	}
	return func(record string) (string, bool) {
		for _, r := range record {
			fmt.Fprintf(w, "%c", r)
			sleep(delay)
		}
		fmt.Fprintln(w)
		return strings.Clone(record), true
	}
}

// DefaultTypewriter is Typewriter(os.Stdout, typewriterDelay, time.Sleep).
func DefaultTypewriter(record string) (string, bool) {
	return Typewriter(os.Stdout, typewriterDelay, nil)(record)
}

// plugin adapts a bare (string) (string, bool) function into a
// stageabi.Plugin so the registry in internal/loader can resolve built-ins
// by name alongside external descriptors.
type plugin struct {
	name string
	fn   stageabi.Transform
}

// Name implements stageabi.Plugin.
func (p plugin) Name() string { return p.name }

// Transform implements stageabi.Plugin.
func (p plugin) Transform() stageabi.Transform { return p.fn }

// Names lists the built-in stage names.
var Names = []string{"uppercaser", "flipper", "rotator", "expander", "logger", "typewriter"}

// New constructs the named built-in plugin, or reports ok=false if name is
// not a built-in.
func New(name string) (stageabi.Plugin, bool) {
	switch name {
	case "uppercaser":
		return plugin{name: name, fn: Uppercase}, true
	case "flipper":
		return plugin{name: name, fn: Reverse}, true
	case "rotator":
		return plugin{name: name, fn: Rotate}, true
	case "expander":
		return plugin{name: name, fn: Expand}, true
	case "logger":
		return plugin{name: name, fn: DefaultLogger}, true
	case "typewriter":
		return plugin{name: name, fn: DefaultTypewriter}, true
	default:
		return nil, false
	}
}
