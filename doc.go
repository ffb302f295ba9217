// Package pipeline provides a bounded, streaming string-transformation
// pipeline: a sequence of stages, each running on its own goroutine, wired
// head-to-tail through fixed-capacity queues.
//
// A stage reads a string, applies a transformation that may alter the
// record or drop it, and forwards the result to the next stage. The
// distinguished sentinel "<END>" propagates through every stage in order,
// and draining that propagation deterministically ends the stream.
//
// # Basic Usage
//
//	import "github.com/Rotemduvd/OS-ModularPipeline"
//
//	p, err := pipeline.New(
//	    []string{"uppercaser", "flipper"},
//	    pipeline.WithQueueSize(10),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Fini()
//
//	if err := p.PlaceWork(ctx, "hello"); err != nil {
//	    log.Fatal(err)
//	}
//	if err := p.PlaceWork(ctx, pipeline.Sentinel); err != nil {
//	    log.Fatal(err)
//	}
//	if err := p.WaitFinished(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Stage Names
//
// Built-in stage names are uppercaser, flipper, rotator, expander, logger,
// and typewriter. Additional stages can be resolved from an external
// plugin directory via WithLoader and a custom internal/loader.Loader.
package pipeline
