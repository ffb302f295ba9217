// Package stage implements the per-stage worker: one background goroutine
// bound to one BoundedQueue and one transformation function.
package stage

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/Rotemduvd/OS-ModularPipeline/internal/errkind"
	"github.com/Rotemduvd/OS-ModularPipeline/internal/queue"
	"github.com/Rotemduvd/OS-ModularPipeline/internal/stageabi"
)

// Sentinel is the distinguished end-of-stream record. Every stage forwards
// it, in order, before marking itself finished.
const Sentinel = "<END>"

// state is the stage's lifecycle state machine: Uninit -> Running ->
// Draining -> Terminated.
type state int32

const (
	stateUninit state = iota
	stateRunning
	stateDraining
	stateTerminated
)

// Stage is a worker bound to one queue and one transform, with an
// optional forward link to the next stage's PlaceWork.
type Stage struct {
	name      string
	transform stageabi.Transform
	queue     *queue.BoundedQueue
	log       *slog.Logger

	attachMu sync.Mutex
	next     stageabi.NextPlaceWork
	attached bool
	ingested atomic.Bool // true after the first PlaceWork call; gates Attach

	state atomic.Int32

	workerDone chan struct{}
	finiOnce   sync.Once
	finiErr    error
}

// Init constructs a Stage: validates arguments, builds its queue, and
// spawns its worker goroutine. Returns errkind.InvalidArgument for a nil
// transform or empty name, errkind.AllocationFailure if the queue cannot
// be constructed, or errkind.ThreadSpawnFailure if the worker cannot be
// started (in Go, goroutine creation essentially never fails; this error
// kind is preserved for ABI symmetry and surfaced if an implementation
// ever bounds concurrent stage counts with a worker pool).
func Init(name string, transform stageabi.Transform, queueSize int, log *slog.Logger) (*Stage, error) {
	if name == "" || transform == nil {
		return nil, errkind.InvalidArgument
	}
	if log == nil {
		log = slog.Default()
	}

	q, err := queue.New(queueSize)
	if err != nil {
		if err == errkind.InvalidArgument {
			return nil, err
		}
		return nil, errkind.AllocationFailure
	}

	s := &Stage{
		name:       name,
		transform:  transform,
		queue:      q,
		log:        log.With("stage", name),
		workerDone: make(chan struct{}),
	}
	s.state.Store(int32(stateRunning))

	go s.run()

	return s, nil
}

// Attach installs the forward link to the next stage's PlaceWork. Must be
// called only before any record has been placed; calling it afterward
// returns errkind.InvalidArgument — attaching after ingestion has begun is
// a checked error rather than undefined behavior.
func (s *Stage) Attach(next stageabi.NextPlaceWork) error {
	s.attachMu.Lock()
	defer s.attachMu.Unlock()

	if s.ingested.Load() {
		return errkind.InvalidArgument
	}
	s.next = next
	s.attached = true
	return nil
}

// PlaceWork enqueues a copy of record. Delegates to the queue's Put and
// returns its error verbatim.
func (s *Stage) PlaceWork(ctx context.Context, record string) error {
	s.ingested.Store(true)
	return s.queue.Put(ctx, record)
}

// WaitFinished blocks until this stage has seen and forwarded the
// sentinel (its queue has been marked finished).
func (s *Stage) WaitFinished(ctx context.Context) error {
	return s.queue.WaitFinished(ctx)
}

// Fini joins the worker and releases the queue. Idempotent after the
// first call; subsequent calls return the first call's result.
func (s *Stage) Fini() error {
	s.finiOnce.Do(func() {
		<-s.workerDone
		s.queue.Close()
		s.state.Store(int32(stateTerminated))
	})
	return s.finiErr
}

// Name returns the stage's immutable display name.
func (s *Stage) Name() string {
	return s.name
}

// run is the worker goroutine: get -> [sentinel check] -> transform ->
// forward.
func (s *Stage) run() {
	defer close(s.workerDone)

	ctx := context.Background()
	for {
		record, ok, err := s.queue.Get(ctx)
		if err != nil {
			// context.Background() never cancels; this path exists only
			// for defense in depth and to keep Get's signature uniform
			// with the context-aware host-facing calls.
			s.log.Error("stage worker: unexpected queue error", "error", err)
			return
		}
		if !ok {
			return // drained and finished
		}

		if record == Sentinel {
			s.state.Store(int32(stateDraining))
			s.forwardSentinel(ctx)
			s.queue.SignalFinished()
			return
		}

		out, keep := s.transform(record)
		if !keep {
			continue // drop: not an error
		}

		s.forward(ctx, out)
	}
}

// forwardSentinel forwards "<END>" to the next stage, if any, before this
// stage marks its own queue finished. Forwarding before marking finished
// is what makes shutdown a wave rather than a race.
func (s *Stage) forwardSentinel(ctx context.Context) {
	next := s.currentNext()
	if next == nil {
		return
	}
	if err := next(ctx, Sentinel); err != nil {
		s.log.Warn("stage worker: failed to forward sentinel", "error", err)
	}
}

// forward hands out to the next stage's PlaceWork, if attached. A
// errkind.QueueFinished error from a downstream stage that is itself
// shutting down is expected during the sentinel wave and is dropped
// silently; any other error is logged out-of-band.
func (s *Stage) forward(ctx context.Context, out string) {
	next := s.currentNext()
	if next == nil {
		return
	}
	if err := next(ctx, out); err != nil {
		if err == errkind.QueueFinished {
			return
		}
		s.log.Warn("stage worker: failed to forward record", "error", err)
	}
}

// currentNext reads the forward link. Attach is only valid before
// ingestion starts, so by the time the worker goroutine runs, next is
// effectively immutable; the lock here guards the rare construction-time
// race between Attach and an extremely fast first PlaceWork/run.
func (s *Stage) currentNext() stageabi.NextPlaceWork {
	s.attachMu.Lock()
	defer s.attachMu.Unlock()
	return s.next
}
