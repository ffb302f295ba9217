package pipeline

import "time"

// Default configuration values for New.
const (
	// DefaultQueueSize is the capacity of each stage's bounded queue when
	// WithQueueSize is not supplied.
	DefaultQueueSize = 10

	// DefaultStageTimeout bounds how long Fini waits for each stage's
	// worker goroutine to drain during teardown. It is ambient only: it
	// never applies to PlaceWork on the hot path, only to teardown.
	DefaultStageTimeout = 30 * time.Second
)
