// Package signal implements a level-triggered, broadcast one-shot event
// with explicit reset.
//
// A Signal is sticky: a Raise() call that precedes a Wait() still
// satisfies that Wait — there is no lost-wakeup window between the two
// calls, unlike a bare sync.Cond used without a guarded predicate. Reset
// lowers the flag again; Raise and Reset are both idempotent. Wait may be
// called from any number of goroutines; all are released by one Raise
// call (Broadcast).
package signal

import (
	"context"
	"sync"
)

// Signal is a mutex-guarded boolean flag with a condition variable,
// exactly the tuple (flag, mutex, condition) described by the pipeline's
// concurrency substrate.
//
// The zero value is not usable; construct with New.
type Signal struct {
	mu   *sync.Mutex
	cond *sync.Cond
	flag bool
}

// New returns an unsignaled Signal. If mu is nil, the Signal allocates its
// own private mutex. Passing a shared mu lets several Signals (e.g. a
// queue's notFull/notEmpty/finished triple) share one lock, matching the
// "Signal ... mutex" field description when several signals are owned by
// the same object.
func New(mu *sync.Mutex) *Signal {
	if mu == nil {
		mu = &sync.Mutex{}
	}
	return &Signal{
		mu:   mu,
		cond: sync.NewCond(mu),
	}
}

// signalLocked raises the flag and wakes every waiter. Idempotent: signaling an
// already-signaled Signal is a no-op beyond the redundant broadcast.
//
// The caller must already hold the Signal's mutex (mu passed to New, or
// the Signal's own private mutex if mu was nil — see Lock/Unlock). Most
// callers instead use the convenience Raise, which takes the lock itself.
func (s *Signal) signalLocked() {
	s.flag = true
	s.cond.Broadcast()
}

// Raise acquires the lock, sets the flag, and broadcasts to all waiters.
func (s *Signal) Raise() {
	s.mu.Lock()
	s.signalLocked()
	s.mu.Unlock()
}

// Reset acquires the lock and lowers the flag. Idempotent.
func (s *Signal) Reset() {
	s.mu.Lock()
	s.flag = false
	s.mu.Unlock()
}

// Wait blocks until the flag is true, handling spurious wakeups by
// re-checking the predicate under the lock on every wake.
func (s *Signal) Wait() {
	s.mu.Lock()
	for !s.flag {
		s.cond.Wait()
	}
	s.mu.Unlock()
}

// WaitContext blocks until the flag is true or ctx is done, whichever
// comes first. BoundedQueue uses it for every blocking wait; the
// pipeline's own workers pass context.Background(), under which it
// behaves exactly like Wait, and rely on the sentinel record for shutdown.
//
// Because sync.Cond has no native cancellation, a detached goroutine
// watches ctx and broadcasts on cancellation so the waiter re-evaluates
// its exit condition; this mirrors the cancellable-wait idiom used by the
// pack's generic condvar-based queue.
func (s *Signal) WaitContext(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			s.cond.Broadcast()
			s.mu.Unlock()
		case <-done:
		}
	}()
	defer close(done)

	s.mu.Lock()
	defer s.mu.Unlock()
	for !s.flag {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.cond.Wait()
	}
	return nil
}

// IsSet reports whether the flag is currently raised. Primarily useful for
// tests and diagnostics; ordinary control flow should prefer Wait, which
// does not race against a concurrent Raise the way a bare IsSet check
// followed by separate logic would.
func (s *Signal) IsSet() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flag
}

// Lock and Unlock expose the Signal's underlying mutex so that owners
// composing several Signals over one shared lock (see BoundedQueue) can
// group a signal raise with other protected state mutations atomically.
func (s *Signal) Lock()   { s.mu.Lock() }
func (s *Signal) Unlock() { s.mu.Unlock() }

// RaiseLocked is Raise without acquiring the lock — the caller must
// already hold it (e.g. via Lock, or because the caller owns the shared
// mutex passed to New).
func (s *Signal) RaiseLocked() {
	s.signalLocked()
}

// ResetLocked is Reset without acquiring the lock — the caller must
// already hold it, as for RaiseLocked.
func (s *Signal) ResetLocked() {
	s.flag = false
}
