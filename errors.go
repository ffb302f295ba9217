package pipeline

import "github.com/Rotemduvd/OS-ModularPipeline/internal/errkind"

// Sentinel errors for error inspection with errors.Is.
//
// These re-export internal/errkind's const-string errors instead of
// wrapping them in errors.New vars, so callers can compare with == or
// errors.Is without reaching into an internal package.
const (
	// ErrInvalidArgument is returned for malformed construction arguments:
	// an empty stage name, a nil transform, a non-positive queue size.
	ErrInvalidArgument = errkind.InvalidArgument

	// ErrAllocationFailure is returned when a queue or stage cannot be
	// constructed.
	ErrAllocationFailure = errkind.AllocationFailure

	// ErrQueueFinished is returned by PlaceWork once a stage's queue has
	// already observed the sentinel.
	ErrQueueFinished = errkind.QueueFinished

	// ErrThreadSpawnFailure is returned if a stage's worker goroutine
	// cannot be started.
	ErrThreadSpawnFailure = errkind.ThreadSpawnFailure

	// ErrNotInitialized is returned by operations attempted before New has
	// completed successfully.
	ErrNotInitialized = errkind.NotInitialized
)
