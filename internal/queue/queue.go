// Package queue implements BoundedQueue: a fixed-capacity FIFO of strings
// with blocking Put/Get and a terminal "finished" state, built on top of
// internal/signal.
package queue

import (
	"context"
	"sync"

	"github.com/Rotemduvd/OS-ModularPipeline/internal/errkind"
	"github.com/Rotemduvd/OS-ModularPipeline/internal/signal"
)

// BoundedQueue is a fixed-capacity ring buffer of strings with blocking
// Put/Get and a monotonic "finished" terminal state.
//
// All fields are mutated only while mu is held; notFull, notEmpty, and
// finishedSig share mu (see internal/signal.New), so raising or lowering
// one of them from inside a method that already holds the lock uses
// RaiseLocked or ResetLocked.
type BoundedQueue struct {
	mu sync.Mutex

	capacity int
	buffer   []string
	head     int
	tail     int
	count    int
	finished bool

	notFull     *signal.Signal
	notEmpty    *signal.Signal
	finishedSig *signal.Signal
}

// New creates a BoundedQueue of the given capacity. Returns
// errkind.InvalidArgument if capacity is not positive.
func New(capacity int) (*BoundedQueue, error) {
	if capacity <= 0 {
		return nil, errkind.InvalidArgument
	}

	q := &BoundedQueue{
		capacity: capacity,
		buffer:   make([]string, capacity),
	}
	q.notFull = signal.New(&q.mu)
	q.notEmpty = signal.New(&q.mu)
	q.finishedSig = signal.New(&q.mu)

	// All slots are empty at construction, so notFull starts raised;
	// notEmpty and finishedSig start lowered. Raised while already
	// holding no lock is safe here since q is not yet published.
	q.notFull.Raise()

	return q, nil
}

// Put blocks until there is room in the queue or the queue is finished.
// It stores a copy of record (Go string headers are immutable, so the
// "copy" is the string value itself — no caller-owned buffer is retained
// across the call). Returns errkind.QueueFinished if the queue has been
// marked finished; the caller keeps logical ownership of record in that
// case.
func (q *BoundedQueue) Put(ctx context.Context, record string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.count == q.capacity && !q.finished {
		if err := q.waitLocked(ctx, q.notFull); err != nil {
			return err
		}
	}

	if q.finished {
		return errkind.QueueFinished
	}

	q.buffer[q.tail] = record
	q.tail = (q.tail + 1) % q.capacity
	q.count++

	q.notEmpty.RaiseLocked()
	if q.count == q.capacity {
		// Leaving notFull raised or lowered here is a don't-care (spurious
		// raises are harmless); lowering keeps IsSet()-based diagnostics
		// honest about actual slot availability.
		q.notFull.ResetLocked()
	}
	return nil
}

// Get blocks until a record is available or the queue is finished and
// drained. Returns ("", false) for end-of-stream: count == 0 and
// finished == true.
func (q *BoundedQueue) Get(ctx context.Context) (string, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.count == 0 && !q.finished {
		if err := q.waitLocked(ctx, q.notEmpty); err != nil {
			return "", false, err
		}
	}

	if q.count == 0 && q.finished {
		return "", false, nil
	}

	record := q.buffer[q.head]
	q.buffer[q.head] = "" // drop the reference so a drained queue frees prior records
	q.head = (q.head + 1) % q.capacity
	q.count--

	q.notFull.RaiseLocked()
	return record, true, nil
}

// SignalFinished marks the queue finished: subsequent Puts fail with
// errkind.QueueFinished, and Gets drain remaining records before
// returning end-of-stream. Idempotent. Raises notEmpty, notFull, and
// finishedSig.
func (q *BoundedQueue) SignalFinished() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.finished = true
	q.notEmpty.RaiseLocked()
	q.notFull.RaiseLocked()
	q.finishedSig.RaiseLocked()
}

// WaitFinished blocks until SignalFinished has been observed. It does not
// imply the queue has been drained — only that no further records will be
// accepted.
func (q *BoundedQueue) WaitFinished(ctx context.Context) error {
	return q.finishedSig.WaitContext(ctx)
}

// Close releases any records still resident in the ring. Callers must
// guarantee no concurrent Put/Get is in flight.
func (q *BoundedQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := 0; i < q.count; i++ {
		q.buffer[(q.head+i)%q.capacity] = ""
	}
	q.buffer = nil
	q.count = 0
}

// Len reports the current number of queued records. Intended for tests and
// diagnostics, not control flow (the count can change the instant the lock
// is released).
func (q *BoundedQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Cap returns the queue's fixed capacity.
func (q *BoundedQueue) Cap() int {
	return q.capacity
}

// waitLocked waits on sig with q.mu already held, releasing and
// re-acquiring it around the wait (Signal.WaitContext manages its own
// locking against the same shared mutex). Returns ctx.Err() if ctx is
// canceled before sig is raised; a context.Background() caller never
// observes an error here, matching an uncancellable core wait exactly.
func (q *BoundedQueue) waitLocked(ctx context.Context, sig *signal.Signal) error {
	q.mu.Unlock()
	err := sig.WaitContext(ctx)
	q.mu.Lock()
	return err
}
