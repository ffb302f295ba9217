package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/Rotemduvd/OS-ModularPipeline/internal/errkind"
	"github.com/Rotemduvd/OS-ModularPipeline/internal/stage"
	"github.com/Rotemduvd/OS-ModularPipeline/internal/stageabi"
)

// Sentinel is the distinguished end-of-stream record. Feeding it to
// PlaceWork begins the pipeline's shutdown wave.
const Sentinel = stage.Sentinel

// Pipeline wires a sequence of stages head-to-tail: each stage is attached
// to the next stage's PlaceWork, so a record placed into the head flows
// through every stage's transform in order. Construction and teardown are
// thin: Pipeline itself holds no transformation logic, only the ordered
// slice of stages.
type Pipeline struct {
	stages []*stage.Stage
	cfg    config
}

// New builds a Pipeline from an ordered list of stage names, each resolved
// through the configured Loader (built-in transforms by default — see
// internal/loader). Stages are constructed and attached in order: stage i
// is attached to stage i+1's PlaceWork, and the tail stage is left
// unattached — it has no successor.
//
// Returns errkind.InvalidArgument if names is empty or any name cannot be
// resolved, or errkind.AllocationFailure if a stage cannot be constructed.
// On any failure, stages already constructed are torn down before
// returning.
func New(names []string, opts ...Option) (*Pipeline, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("pipeline: at least one stage name is required: %w", errkind.InvalidArgument)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	log := effectiveLogger(cfg.Logger)

	stages := make([]*stage.Stage, 0, len(names))
	p := &Pipeline{cfg: cfg}

	ctx := context.Background()
	for _, name := range names {
		plugin, err := cfg.Loader.Resolve(ctx, name)
		if err != nil {
			p.stages = stages
			p.teardown()
			return nil, fmt.Errorf("pipeline: resolve stage %q: %w", name, err)
		}

		s, err := stage.Init(name, plugin.Transform(), cfg.QueueSize, log)
		if err != nil {
			p.stages = stages
			p.teardown()
			return nil, fmt.Errorf("pipeline: init stage %q: %w", name, err)
		}
		stages = append(stages, s)
	}

	for i := 0; i < len(stages)-1; i++ {
		next := stages[i+1]
		if err := stages[i].Attach(next.PlaceWork); err != nil {
			p.stages = stages
			p.teardown()
			return nil, fmt.Errorf("pipeline: attach stage %q to %q: %w", stages[i].Name(), next.Name(), err)
		}
	}

	p.stages = stages
	return p, nil
}

// teardown runs Fini on every constructed stage, used both by New's
// failure paths and by Fini itself.
func (p *Pipeline) teardown() {
	for _, s := range p.stages {
		_ = s.Fini()
	}
}

// PlaceWork enqueues record into the head stage. Feeding Sentinel begins
// the shutdown wave: each stage forwards it to the next in turn before
// marking itself finished.
func (p *Pipeline) PlaceWork(ctx context.Context, record string) error {
	return p.stages[0].PlaceWork(ctx, record)
}

// WaitFinished blocks until every stage, in head-first order, has observed
// the sentinel. Head-first order matches the direction records flow, so by
// the time an earlier stage reports finished, every later stage has
// already seen (or is about to see) the same sentinel forwarded to it.
//
// Each stage's wait is additionally bounded by the pipeline's
// WithStageTimeout, layered on top of ctx via context.WithTimeout; this
// bound is ambient only and never applies to PlaceWork.
func (p *Pipeline) WaitFinished(ctx context.Context) error {
	for _, s := range p.stages {
		stageCtx, cancel := context.WithTimeout(ctx, p.cfg.StageTimeout)
		err := s.WaitFinished(stageCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("pipeline: wait for stage %q: %w", s.Name(), err)
		}
	}
	return nil
}

// Fini tears down every stage in head-first order: join its worker, then
// release its queue. Head-first order is deliberate and NOT parallelized:
// tearing down a stage only after its upstream neighbor has fully stopped
// sending to it avoids a stage's Fini racing a send from a still-running
// predecessor.
//
// Each stage's teardown is bounded by WithStageTimeout: if a worker has
// not joined within that window, Fini gives up waiting on it and moves to
// the next stage, and returns errkind.ThreadSpawnFailure (wrapped with the
// first offending stage's name) once every stage has been visited. This is an ambient safety valve so a single wedged goroutine
// cannot hang process shutdown forever.
//
// Idempotent: safe to call more than once, and safe to call after a failed
// New (internally, via teardown).
func (p *Pipeline) Fini() error {
	var firstErr error
	for _, s := range p.stages {
		if err := finiWithTimeout(s, p.cfg.StageTimeout); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("pipeline: fini stage %q: %w", s.Name(), err)
		}
	}
	return firstErr
}

// finiWithTimeout runs s.Fini() on its own goroutine and bounds how long
// the caller waits for it, since stage.Stage.Fini takes no context.
func finiWithTimeout(s *stage.Stage, timeout time.Duration) error {
	done := make(chan error, 1)
	go func() {
		done <- s.Fini()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		return errkind.ThreadSpawnFailure
	}
}

// AttachSink installs a forward link on the tail stage, which otherwise
// has no successor. This is the one ambient hook the core contract
// doesn't need but a host driver does: something has to observe the
// pipeline's output. Must be called before the first PlaceWork, same as
// Stage.Attach.
func (p *Pipeline) AttachSink(next stageabi.NextPlaceWork) error {
	tail := p.stages[len(p.stages)-1]
	return tail.Attach(next)
}

// StageNames returns the pipeline's stage names in head-to-tail order.
func (p *Pipeline) StageNames() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}
