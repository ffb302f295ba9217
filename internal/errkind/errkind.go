// Package errkind declares the sentinel error taxonomy shared by the
// signal, queue, stage, and loader packages.
//
// Error is a string-backed type implementing error. Unlike errors.New,
// which returns a pointer stored in a var, Error values are declared as
// const, preventing accidental reassignment while remaining compatible
// with errors.Is through Go's == comparison on comparable types.
package errkind

// Error is an immutable, comparable error value.
type Error string

// Error implements the error interface.
func (e Error) Error() string {
	return string(e)
}

// Compile-time check that Error implements error.
var _ error = Error("")

const (
	// InvalidArgument is returned for nil records, non-positive capacity,
	// or an attach called after ingestion has started.
	InvalidArgument = Error("invalid argument")

	// AllocationFailure is returned when a record copy or buffer
	// allocation fails.
	AllocationFailure = Error("allocation failure")

	// QueueFinished is returned by Put once the queue has been marked
	// finished, including after the sentinel has propagated.
	QueueFinished = Error("queue finished")

	// ThreadSpawnFailure is returned when a stage's worker goroutine
	// could not be started.
	ThreadSpawnFailure = Error("thread spawn failure")

	// NotInitialized is returned when an operation is invoked on a
	// stage or queue that has not been initialized, or has already been
	// torn down.
	NotInitialized = Error("not initialized")
)
