package pipeline

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Rotemduvd/OS-ModularPipeline/internal/loader"
)

// requirePositive panics if v <= 0. Option values are typically
// compile-time constants, so an invalid value indicates a programmer
// error rather than a runtime condition worth a returned error.
func requirePositive[T int | time.Duration](name string, v T) {
	if v <= 0 {
		panic(fmt.Sprintf("pipeline: %s must be greater than 0, got %v", name, v))
	}
}

// Option configures a Pipeline during construction via New. Each With*
// function returns an Option that sets a specific field.
type Option func(*config)

// WithQueueSize sets the bounded capacity of every stage's queue.
//
// Default: DefaultQueueSize.
//
// Panics if size <= 0.
func WithQueueSize(size int) Option {
	requirePositive("queue size", size)
	return func(c *config) {
		c.QueueSize = size
	}
}

// WithLogger sets the *slog.Logger used by the pipeline and its stages. A
// nil logger (the default) falls back to the logger set by SetLogger, or
// to slog.Default() if none is set.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.Logger = l
	}
}

// WithStageTimeout bounds how long Fini waits for each stage to drain
// during teardown. It never affects PlaceWork.
//
// Default: DefaultStageTimeout.
//
// Panics if d <= 0.
func WithStageTimeout(d time.Duration) Option {
	requirePositive("stage timeout", d)
	return func(c *config) {
		c.StageTimeout = d
	}
}

// WithLoader swaps the stage-name-resolution strategy. Useful to register
// external-process plugin descriptors (see internal/loader.NewExternalFactory)
// alongside, or instead of, the built-in transforms.
//
// Panics if l is nil.
func WithLoader(l *loader.Loader) Option {
	if l == nil {
		panic("pipeline: loader must not be nil")
	}
	return func(c *config) {
		c.Loader = l
	}
}
