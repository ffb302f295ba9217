package loader

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/Rotemduvd/OS-ModularPipeline/internal/errkind"
	"github.com/Rotemduvd/OS-ModularPipeline/internal/stageabi"
)

// fileLockRetryInterval balances responsiveness against busy-poll
// overhead while multiple host processes contend for the same plugin
// directory.
const fileLockRetryInterval = 50 * time.Millisecond

// descriptorSuffix names the tiny line-oriented file format a stage
// plugin directory entry uses: a single line naming the external filter
// command (and arguments) to exec for each record.
const descriptorSuffix = ".transform"

// externalPlugin execs an external filter command once per record,
// feeding it the record on stdin and reading one line of output from
// stdout. A non-zero exit status or a missing output line means "drop"
// (stageabi.Transform's false return), treating external failures as a
// dropped record rather than fatal to the pipeline.
type externalPlugin struct {
	name string
	cmd  string
	args []string
}

// Name implements stageabi.Plugin.
func (p *externalPlugin) Name() string { return p.name }

// Transform implements stageabi.Plugin.
func (p *externalPlugin) Transform() stageabi.Transform {
	return func(record string) (string, bool) {
		cmd := exec.Command(p.cmd, p.args...)
		cmd.Stdin = strings.NewReader(record + "\n")
		out, err := cmd.Output()
		if err != nil || len(out) == 0 {
			return "", false
		}
		line, _, _ := strings.Cut(string(out), "\n")
		return line, true
	}
}

// NewExternalFactory returns a stageabi.Factory that resolves a stage name
// to an external-process plugin by reading "<dir>/<name>.transform", a
// file whose first line is the command (and arguments, split on
// whitespace; quotes are not interpreted) to exec for each record.
//
// A flock-guarded ".lock" file in dir is held for the duration of the
// directory read, so concurrent host processes sharing a plugin directory
// (e.g. a CI machine fanning out several pipeline invocations against a
// shared plugin directory) never observe a descriptor mid-write.
func NewExternalFactory(dir string, log *slog.Logger) stageabi.Factory {
	if log == nil {
		log = slog.Default()
	}

	return func(name string) (stageabi.Plugin, error) {
		lockPath := filepath.Join(dir, ".lock")
		fl := flock.New(lockPath)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		locked, err := fl.TryLockContext(ctx, fileLockRetryInterval)
		if err != nil || !locked {
			return nil, fmt.Errorf("loader: acquire plugin directory lock %s: %w", lockPath, errkind.AllocationFailure)
		}
		defer func() {
			if closeErr := fl.Close(); closeErr != nil {
				log.Debug("failed to release plugin directory lock", "path", lockPath, "error", closeErr)
			}
		}()

		descriptorPath := filepath.Join(dir, name+descriptorSuffix)
		f, err := os.Open(descriptorPath)
		if err != nil {
			return nil, fmt.Errorf("loader: no descriptor for stage %q: %w", name, errkind.InvalidArgument)
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		if !scanner.Scan() {
			return nil, fmt.Errorf("loader: empty descriptor for stage %q: %w", name, errkind.InvalidArgument)
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			return nil, fmt.Errorf("loader: empty command in descriptor for stage %q: %w", name, errkind.InvalidArgument)
		}

		return &externalPlugin{name: name, cmd: fields[0], args: fields[1:]}, nil
	}
}
