package pass

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/carbonwatch/internal/config"
	"github.com/hupe1980/carbonwatch/internal/options"
	"github.com/hupe1980/carbonwatch/internal/preset"
	"github.com/hupe1980/carbonwatch/internal/renderer"
	"github.com/hupe1980/carbonwatch/internal/resize"
	"github.com/hupe1980/carbonwatch/internal/stale"
)

// LookupFunc resolves the renderer for a pass.
type LookupFunc func(name string) (renderer.Renderer, error)

// LookupCarbon resolves the carbon-now executable on PATH.
func LookupCarbon(name string) (renderer.Renderer, error) {
	c, err := renderer.Lookup(name)
	if err != nil {
		return nil, err
	}

	return c, nil
}

// Summary counts what a pass did.
type Summary struct {
	// ID correlates the log records of one pass.
	ID string

	Sources  int
	Rendered int
	Skipped  int
	Failed   int
	Resized  int
	Duration time.Duration
}

// Runner executes passes. The zero value is not usable; set Layout, Theme and
// Renderer at least.
type Runner struct {
	Layout config.Layout
	Theme  string

	// Renderer is the executable name handed to Lookup.
	Renderer string
	Lookup   LookupFunc

	Stager *preset.Stager
	Pacer  Pacer

	Logger *slog.Logger

	// Out receives operator-facing progress and captured renderer output.
	Out io.Writer
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}

	return r.Logger
}

func (r *Runner) out() io.Writer {
	if r.Out == nil {
		return io.Discard
	}

	return r.Out
}

// preflight checks the fatal preconditions. Nothing on disk is touched.
func (r *Runner) preflight() (string, renderer.Renderer, error) {
	presetPath, err := preset.Select(r.Layout, r.Theme)
	if err != nil {
		return "", nil, &FatalError{Err: err}
	}

	lookup := r.Lookup
	if lookup == nil {
		lookup = LookupCarbon
	}

	rnd, err := lookup(r.Renderer)
	if err != nil {
		return "", nil, &FatalError{Err: err}
	}

	return presetPath, rnd, nil
}

// Run performs one full pass. A *FatalError is returned before any file work
// when the preset or the renderer cannot be resolved. Per-file failures are
// logged and counted, never returned. If ctx is cancelled the pass stops
// between files and returns ctx.Err().
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	id := uuid.NewString()
	logger := r.logger().With(slog.String("pass", id))
	out := r.out()
	start := time.Now()

	presetPath, rnd, err := r.preflight()
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(out, "Using configuration '%s'\n", presetPath)

	if c, ok := rnd.(*renderer.Carbon); ok {
		fmt.Fprintf(out, "Using renderer '%s'\n", c.Path)
	}

	opts, err := options.Load(r.Layout.ConfigDir)
	if err != nil {
		logger.Warn("ignoring unreadable options file", slog.String("error", err.Error()))

		opts = options.Set{}
	}

	fmt.Fprintf(out, "Options: %s\n", opts)

	stager := r.Stager
	if stager == nil {
		stager = &preset.Stager{Logger: logger}
	}

	if err := stager.Stage(presetPath, r.Layout.ActiveConfig); err != nil {
		return nil, fmt.Errorf("staging preset: %w", err)
	}

	if err := os.MkdirAll(r.Layout.ImagesDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	sources, err := stale.ListSources(r.Layout.CodeDir)
	if err != nil {
		return nil, err
	}

	maxWidth, resizeOn := opts.MaxWidth(logger)
	sum := &Summary{ID: id, Sources: len(sources)}

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			sum.Duration = time.Since(start)
			return sum, err
		}

		fmt.Fprintf(out, "\nSOURCE '%s'\n", src.Path)

		d, err := stale.Decide(src, r.Layout.ImagesDir)
		if err != nil {
			logger.Error("checking render target", slog.String("source", src.Path), slog.String("error", err.Error()))

			sum.Failed++

			continue
		}

		if !d.Render {
			fmt.Fprintf(out, "SKIP existing '%s'\n", filepath.Base(d.Target))

			sum.Skipped++

			continue
		}

		if r.renderOne(ctx, logger, rnd, d, sum, maxWidth, resizeOn) {
			sum.Rendered++
		} else {
			sum.Failed++
		}

		fmt.Fprintln(out, "(pause)")

		if err := r.pause(ctx, logger); err != nil {
			sum.Duration = time.Since(start)
			return sum, err
		}
	}

	sum.Duration = time.Since(start)

	fmt.Fprintln(out, "\nRun finished.")

	logger.Info("pass complete",
		slog.Int("sources", sum.Sources),
		slog.Int("rendered", sum.Rendered),
		slog.Int("skipped", sum.Skipped),
		slog.Int("failed", sum.Failed),
		slog.Int("resized", sum.Resized),
		slog.Duration("duration", sum.Duration),
	)

	return sum, nil
}

// renderOne invokes the renderer for d and downsamples the result. It reports
// whether the renderer succeeded. A target written by an invocation that
// exits non-zero is still downsampled.
func (r *Runner) renderOne(ctx context.Context, logger *slog.Logger, rnd renderer.Renderer, d stale.Decision, sum *Summary, maxWidth int, resizeOn bool) bool {
	logger = logger.With(slog.String("source", d.Source.Path))
	out := r.out()
	basename := stale.TargetName(d.Source.Path)

	if c, ok := rnd.(renderer.Commander); ok {
		fmt.Fprintf(out, "RUN '%s'\n", strings.Join(c.Args(d.Source.Path, r.Layout.ImagesDir, basename), " "))
	} else {
		fmt.Fprintf(out, "RUN '%s' -> '%s'\n", d.Source.Path, d.Target)
	}

	before := modTime(d.Target)

	res, err := rnd.Render(ctx, d.Source.Path, r.Layout.ImagesDir, basename)
	if len(res.Args) > 0 {
		logger.Debug("renderer invoked", slog.String("command", res.CommandLine()), slog.Duration("duration", res.Duration))
	}

	if text := strings.TrimSpace(res.Output); text != "" {
		fmt.Fprintf(out, "\nOUTPUT:\n%s\n\n", text)
	}

	if err != nil {
		logger.Error("renderer failed to run", slog.String("error", err.Error()))
		return false
	}

	ok := res.OK()
	if !ok {
		logger.Warn("renderer exited with non-zero status", slog.Int("exitCode", res.ExitCode))
	}

	if resizeOn && (ok || targetWritten(d.Target, before)) {
		r.resize(logger, d.Target, sum, maxWidth)
	}

	return ok
}

func (r *Runner) resize(logger *slog.Logger, target string, sum *Summary, maxWidth int) {
	rs, err := resize.ToMaxWidth(target, maxWidth)

	switch {
	case err != nil:
		logger.Warn("resize failed", slog.String("target", target), slog.String("error", err.Error()))
	case rs.Resized:
		sum.Resized++

		fmt.Fprintf(r.out(), "Resized image '%s' (%dx%d -> %dx%d)\n", target, rs.Width, rs.Height, rs.NewWidth, rs.NewHeight)
	}
}

// modTime returns the modification time of path, or the zero time when it
// cannot be stat'ed.
func modTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}

	return info.ModTime()
}

// targetWritten reports whether path exists and its mtime moved since before.
func targetWritten(path string, before time.Time) bool {
	after := modTime(path)
	return !after.IsZero() && !after.Equal(before)
}

func (r *Runner) pause(ctx context.Context, logger *slog.Logger) error {
	if r.Pacer == nil {
		return ctx.Err()
	}

	d, err := r.Pacer.Pause(ctx)
	logger.Debug("paused between renders", slog.Duration("duration", d))

	return err
}
