// Package loader maps a stage name to runnable code. Rather than
// cgo/dlopen or the platform- and toolchain-version-sensitive stdlib
// plugin package, it implements an in-process registry of factories,
// seeded with the built-in transforms, extensible with external
// process-backed descriptors discovered on disk.
package loader

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/Rotemduvd/OS-ModularPipeline/internal/errkind"
	"github.com/Rotemduvd/OS-ModularPipeline/internal/stageabi"
	"github.com/Rotemduvd/OS-ModularPipeline/internal/transform"
)

// Loader resolves a stage name to a stageabi.Plugin. It is safe for
// concurrent use.
type Loader struct {
	mu        sync.RWMutex
	factories map[string]stageabi.Factory

	// group deduplicates concurrent first-time Resolve calls for the same
	// stage name, so an expensive factory (e.g. one that stats an
	// external-plugin descriptor directory) runs once per name rather
	// than once per caller racing to build the same stage.
	group singleflight.Group
}

// New returns a Loader pre-seeded with the six built-in transforms
// (uppercaser, flipper, rotator, expander, logger, typewriter).
func New() *Loader {
	l := &Loader{factories: make(map[string]stageabi.Factory)}
	builtin := func(n string) (stageabi.Plugin, error) {
		p, ok := transform.New(n)
		if !ok {
			return nil, fmt.Errorf("loader: built-in %q vanished: %w", n, errkind.NotInitialized)
		}
		return p, nil
	}
	for _, name := range transform.Names {
		l.factories[name] = builtin
	}
	return l
}

// Register adds or replaces the factory for a stage name. Used both for
// test doubles and for wiring the external-descriptor factory produced by
// NewExternalFactory (external.go).
func (l *Loader) Register(name string, factory stageabi.Factory) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.factories[name] = factory
}

// Resolve returns the named stage's Plugin, building it via the
// registered factory. Returns errkind.InvalidArgument if no factory is
// registered for name.
func (l *Loader) Resolve(ctx context.Context, name string) (stageabi.Plugin, error) {
	v, err, _ := l.group.Do(name, func() (any, error) {
		l.mu.RLock()
		factory, ok := l.factories[name]
		l.mu.RUnlock()
		if !ok {
			return nil, fmt.Errorf("loader: unknown stage %q: %w", name, errkind.InvalidArgument)
		}
		return factory(name)
	})
	if err != nil {
		return nil, err
	}
	_ = ctx // reserved for a future descriptor-fetch timeout; factories today are synchronous and local
	return v.(stageabi.Plugin), nil
}

// Names returns the currently registered stage names.
func (l *Loader) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.factories))
	for name := range l.factories {
		names = append(names, name)
	}
	return names
}
