package pipeline

import (
	"log/slog"
	"sync/atomic"
)

// logger is the package-level fallback logger used when a Pipeline is
// constructed without WithLogger. Stored as an atomic pointer for safe
// concurrent access.
var logger atomic.Pointer[slog.Logger]

// SetLogger replaces the package-level logger used by pipelines built
// without an explicit WithLogger option. If l is nil, the logger resets to
// slog.Default().
//
// SetLogger is safe to call concurrently with pipeline construction.
func SetLogger(l *slog.Logger) {
	logger.Store(l)
}

// effectiveLogger returns l if non-nil, otherwise the package-level
// logger, otherwise slog.Default().
func effectiveLogger(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	if l := logger.Load(); l != nil {
		return l
	}
	return slog.Default()
}
