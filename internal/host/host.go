// Package host implements the pipeline CLI driver: argument parsing, the
// stdin-reading loop, and the process exit-code contract.
package host

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"golang.org/x/sync/errgroup"

	pipeline "github.com/Rotemduvd/OS-ModularPipeline"
	"github.com/Rotemduvd/OS-ModularPipeline/internal/loader"
)

// Exit codes for the host process.
const (
	ExitOK          = 0
	ExitArgError    = 1
	ExitStageError  = 2
	usageStageCount = 1 // at least one stage name required
)

// Run parses args (excluding argv[0]), wires a Pipeline from stdin to
// stdout, and returns the process exit code: 0 on clean shutdown, 1 on an
// argument or load error, 2 on a stage init error.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, log *slog.Logger) int {
	if log == nil {
		log = slog.Default()
	}

	queueSize, stageNames, err := parseArgs(args)
	if err != nil {
		fmt.Fprintln(stderr, err)
		fmt.Fprintln(stderr, usage())
		return ExitArgError
	}

	ld := loader.New()
	for _, name := range stageNames {
		if _, err := ld.Resolve(ctx, name); err != nil {
			fmt.Fprintf(stderr, "pipeline: load stage: %v\n", err)
			return ExitArgError
		}
	}

	p, err := pipeline.New(stageNames, pipeline.WithQueueSize(queueSize), pipeline.WithLogger(log), pipeline.WithLoader(ld))
	if err != nil {
		fmt.Fprintf(stderr, "pipeline: stage init failed: %v\n", err)
		return ExitStageError
	}
	defer p.Fini()

	if err := p.AttachSink(stdoutSink(stdout)); err != nil {
		fmt.Fprintf(stderr, "pipeline: attach output: %v\n", err)
		return ExitStageError
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(runCtx)
	feedDone := make(chan struct{})
	g.Go(func() error {
		defer close(feedDone)
		return feedStdin(gCtx, stdin, p, log)
	})
	g.Go(func() error {
		select {
		case <-gCtx.Done():
			// Ctrl-C or SIGTERM: feedStdin may itself be blocked placing a
			// record into a full queue, so drive the shutdown wave here
			// too rather than waiting for it to notice the cancellation.
			placeSentinelOnce(p, log)
			return gCtx.Err()
		case <-feedDone:
			return nil
		}
	})

	if err := g.Wait(); err != nil {
		log.Debug("stdin feed stopped early", "error", err)
	}

	if err := p.WaitFinished(context.Background()); err != nil {
		fmt.Fprintf(stderr, "pipeline: wait finished: %v\n", err)
		return ExitStageError
	}

	return ExitOK
}

// parseArgs validates "<queue_size> <stage_name>...": queue_size must be
// a positive integer, and at least one stage name is required.
func parseArgs(args []string) (int, []string, error) {
	if len(args) < 1+usageStageCount {
		return 0, nil, fmt.Errorf("expected at least %d arguments, got %d", 1+usageStageCount, len(args))
	}

	queueSize, err := strconv.Atoi(args[0])
	if err != nil || queueSize <= 0 {
		return 0, nil, fmt.Errorf("queue_size must be a positive integer, got %q", args[0])
	}

	return queueSize, args[1:], nil
}

// maxLineLength bounds how much of one stdin line the host keeps. A line
// longer than this is truncated rather than rejected, matching the host's
// fixed-size read buffer.
const maxLineLength = 64 * 1024

// feedStdin reads stdin line by line, placing each line (trailing newline
// stripped, truncated to maxLineLength) into the pipeline's head stage.
// Lines containing a NUL byte are dropped rather than placed.
//
// Regardless of how the loop exits — clean EOF, a read error, a canceled
// ctx, or PlaceWork itself failing — the deferred call always injects
// pipeline.Sentinel before returning, so the pipeline is guaranteed to
// begin its shutdown wave and WaitFinished can never block forever
// waiting on a sentinel nobody sent.
func feedStdin(ctx context.Context, stdin io.Reader, p *pipeline.Pipeline, log *slog.Logger) error {
	defer placeSentinelOnce(p, log)

	r := bufio.NewReaderSize(stdin, 4096)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := readTruncatedLine(r)
		if err != nil && err != io.EOF {
			return fmt.Errorf("read stdin: %w", err)
		}
		if err == io.EOF && line == "" {
			// Nothing left to read and nothing trailing without a
			// newline: do not place a spurious empty record for EOF
			// itself.
			return nil
		}

		if strings.ContainsRune(line, 0) {
			log.Warn("dropping line containing NUL byte")
		} else if placeErr := p.PlaceWork(ctx, line); placeErr != nil {
			return fmt.Errorf("place work: %w", placeErr)
		}

		if err == io.EOF {
			return nil
		}
	}
}

// readTruncatedLine reads through the next '\n' (or EOF) from r and
// returns at most maxLineLength bytes of the line with any trailing
// newline stripped. Unlike bufio.Scanner, which fails the whole read with
// ErrTooLong on an overlong line, this keeps reading past the internal
// buffer (ReadSlice's ErrBufferFull) and discards anything beyond
// maxLineLength, so the reader's position always lands cleanly on the
// next line's first byte. Returns io.EOF once r is exhausted; a non-empty
// final line without a trailing newline is still returned alongside
// io.EOF.
func readTruncatedLine(r *bufio.Reader) (string, error) {
	var line []byte
	for {
		chunk, err := r.ReadSlice('\n')
		if len(chunk) > 0 && len(line) < maxLineLength {
			n := maxLineLength - len(line)
			if n > len(chunk) {
				n = len(chunk)
			}
			line = append(line, chunk[:n]...)
		}
		switch err {
		case nil:
			return strings.TrimSuffix(string(line), "\n"), nil
		case bufio.ErrBufferFull:
			continue // the line continues past the reader's internal buffer
		default:
			return string(line), err // io.EOF or a genuine read error
		}
	}
}

// placeSentinelOnce places pipeline.Sentinel, tolerating
// pipeline.ErrQueueFinished: it may be called once by feedStdin's own
// shutdown path and once more by Run's signal-watcher goroutine racing
// the same cancellation, and only the first of the two should count.
// Uses context.Background() deliberately — by the time this runs, the
// caller's ctx may already be canceled, but placing the sentinel must
// still succeed so the pipeline can drain.
func placeSentinelOnce(p *pipeline.Pipeline, log *slog.Logger) {
	if err := p.PlaceWork(context.Background(), pipeline.Sentinel); err != nil && !errors.Is(err, pipeline.ErrQueueFinished) {
		log.Warn("failed to place sentinel", "error", err)
	}
}

// usage returns the usage message printed to stderr on an argument error.
func usage() string {
	return "usage: pipeline <queue_size> <stage_name>..."
}

// stdoutSink returns a stageabi.NextPlaceWork-compatible function that
// writes each record (including the sentinel) as its own line to w. The
// sentinel line lets a caller piping the host's output detect clean
// termination without inspecting the exit code.
//
// Calls to the returned function are serialized with a mutex. The mutex
// is local to the returned function, so writes to w made elsewhere are
// not serialized with these.
func stdoutSink(w io.Writer) func(context.Context, string) error {
	var mu sync.Mutex
	return func(_ context.Context, record string) error {
		mu.Lock()
		defer mu.Unlock()
		_, err := fmt.Fprintln(w, record)
		return err
	}
}
