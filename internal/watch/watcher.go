package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
)

// RunFunc performs one pass.
type RunFunc func(ctx context.Context) (*RunResult, error)

// RunResult summarises one pass for the status line.
type RunResult struct {
	Rendered int
	Skipped  int
	Failed   int
}

// Options configures the watch behaviour.
type Options struct {
	// Dir is the directory to watch (non-recursively).
	Dir string

	// Debounce is the quiet period before a batch triggers a pass.
	Debounce time.Duration

	// Source overrides the fsnotify source on Dir. Used by tests.
	Source EventSource

	// Fatal reports whether a pass error must stop the loop. Other errors
	// are printed and the loop keeps waiting for changes.
	Fatal func(error) bool

	// Logger is used for structured logging.
	Logger *slog.Logger

	// Out is the writer for user-facing status messages.
	Out io.Writer
}

// DefaultOptions returns sensible default watch options.
func DefaultOptions() Options {
	return Options{
		Debounce: 1500 * time.Millisecond,
		Logger:   slog.Default(),
		Out:      os.Stderr,
	}
}

// Run runs an initial pass and then one pass per debounced change batch. It
// blocks until ctx is cancelled or SIGINT/SIGTERM is received, in which case
// it returns nil, or until a pass fails fatally.
func Run(ctx context.Context, opts Options, runFn RunFunc) error {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Out == nil {
		opts.Out = io.Discard
	}

	if opts.Fatal == nil {
		opts.Fatal = func(error) bool { return false }
	}

	// Trap SIGINT / SIGTERM for graceful shutdown.
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src := opts.Source
	if src == nil {
		fsSrc, err := NewSource(opts.Dir, opts.Debounce, opts.Logger)
		if err != nil {
			return fmt.Errorf("watching code directory: %w", err)
		}
		defer fsSrc.Close()

		src = fsSrc
	}

	if err := doRun(sigCtx, opts, runFn, "(initial)"); err != nil {
		return err
	}

	if sigCtx.Err() == nil {
		fmt.Fprintf(opts.Out, "\nWatching for changes in '%s' (debounce=%s)\n\n", opts.Dir, opts.Debounce)
	}

	for {
		batch, err := src.Next(sigCtx)
		if err != nil {
			if sigCtx.Err() != nil {
				fmt.Fprintln(opts.Out, "\nStopped.")
				return nil
			}

			return fmt.Errorf("waiting for changes: %w", err)
		}

		fmt.Fprintf(opts.Out, "\nchanges: %s\n", strings.Join(batch.Paths, ", "))

		if err := doRun(sigCtx, opts, runFn, describe(batch)); err != nil {
			return err
		}

		if sigCtx.Err() == nil {
			fmt.Fprintln(opts.Out, "\nPress Ctrl-C to stop.")
		}
	}
}

// doRun executes a single pass and prints the status line. Only fatal errors
// are returned.
func doRun(ctx context.Context, opts Options, runFn RunFunc, trigger string) error {
	now := time.Now().Format("15:04:05")

	result, err := runFn(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return nil
		}

		if opts.Fatal(err) {
			return err
		}

		fmt.Fprintf(opts.Out, "[%s] %s → ERROR: %v\n", now, trigger, err)
		opts.Logger.Error("pass failed", slog.String("trigger", trigger), slog.String("error", err.Error()))

		return nil
	}

	fmt.Fprintf(opts.Out, "[%s] %s → OK (%d rendered, %d skipped, %d failed)\n",
		now, trigger, result.Rendered, result.Skipped, result.Failed)

	return nil
}

func describe(b Batch) string {
	switch len(b.Paths) {
	case 0:
		return "(change)"
	case 1:
		return b.Paths[0]
	default:
		return fmt.Sprintf("%s (+%d more)", b.Paths[0], len(b.Paths)-1)
	}
}
