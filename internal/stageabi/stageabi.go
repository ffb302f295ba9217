// Package stageabi declares the Stage ABI contract that every loadable
// transformation module — built-in or external — must satisfy.
package stageabi

import "context"

// Transform converts one record into zero or one output records. The
// second return value is an Option<Record>: false means "drop this
// record, produce nothing downstream" and is not an error. Transform must
// never be invoked with the end-of-stream sentinel.
type Transform func(record string) (string, bool)

// NextPlaceWork is the forwarding callback a Stage invokes to hand a
// record to the next stage in the pipeline. It mirrors plugin_place_work
// in the ABI table.
type NextPlaceWork func(ctx context.Context, record string) error

// Plugin is the Go expression of the Stage ABI table: the symbols every
// loadable transformation module exposes. The built-in registry
// (internal/transform) and the external-descriptor loader
// (internal/loader) both produce values satisfying this interface.
type Plugin interface {
	// Name returns the stage's stable display name (plugin_get_name).
	Name() string

	// Transform returns this plugin's transformation function
	// (the payload wrapped by plugin_init).
	Transform() Transform
}

// Factory constructs a new Plugin instance for a stage name. Factories are
// registered with a Loader (internal/loader) and are the Go analog of
// resolving a dynamically loaded module by name.
type Factory func(name string) (Plugin, error)
