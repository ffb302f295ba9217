package pipeline

import (
	"log/slog"
	"time"

	"github.com/Rotemduvd/OS-ModularPipeline/internal/loader"
)

// config holds the resolved construction parameters for a Pipeline. It is
// unexported; callers configure it only through Option values passed to
// New.
type config struct {
	QueueSize    int
	Logger       *slog.Logger
	StageTimeout time.Duration
	Loader       *loader.Loader
}

// defaultConfig returns a config populated with all default values.
func defaultConfig() config {
	return config{
		QueueSize:    DefaultQueueSize,
		Logger:       nil,
		StageTimeout: DefaultStageTimeout,
		Loader:       loader.New(),
	}
}
