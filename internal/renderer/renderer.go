// Package renderer invokes the external carbon-now CLI that turns a source
// file into a syntax-highlighted PNG.
//
// The rest of carbonwatch only sees the [Renderer] interface so tests can
// substitute a recording double.
package renderer

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ErrNotFound reports that the renderer executable is not on PATH.
var ErrNotFound = errors.New("renderer executable not found")

// Renderer renders one source file into outDir as <basename>.<ext>; the
// implementation chooses the extension.
type Renderer interface {
	Render(ctx context.Context, source, outDir, basename string) (Result, error)
}

// Commander is implemented by renderers that can report the command line of
// an invocation before running it.
type Commander interface {
	Args(source, outDir, basename string) []string
}

// Result is the captured outcome of one invocation. A non-zero ExitCode is a
// per-file failure, not an error.
type Result struct {
	Args     []string
	Output   string
	ExitCode int
	Duration time.Duration
}

// OK reports whether the invocation exited with status zero.
func (r Result) OK() bool {
	return r.ExitCode == 0
}

// CommandLine returns the invocation joined with spaces, for log output.
func (r Result) CommandLine() string {
	return strings.Join(r.Args, " ")
}

// Carbon shells out to carbon-now.
type Carbon struct {
	// Path is the resolved executable.
	Path string
}

// Lookup resolves name on PATH.
func Lookup(name string) (*Carbon, error) {
	p, err := exec.LookPath(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	return &Carbon{Path: p}, nil
}

// Args builds the invocation: <exe> <source> --save-to <outDir> --save-as <basename>.
func (c *Carbon) Args(source, outDir, basename string) []string {
	return []string{c.Path, source, "--save-to", outDir, "--save-as", basename}
}

// Render runs carbon-now synchronously with stderr merged into stdout. No
// timeout is applied; ctx only cancels on shutdown.
func (c *Carbon) Render(ctx context.Context, source, outDir, basename string) (Result, error) {
	args := c.Args(source, outDir, basename)
	res := Result{Args: args}

	start := time.Now()

	cmd := exec.CommandContext(ctx, args[0], args[1:]...) //nolint:gosec // arguments are file paths, no shell involved
	out, err := cmd.CombinedOutput()

	res.Duration = time.Since(start)
	res.Output = string(out)

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}

		if ctx.Err() != nil {
			return res, fmt.Errorf("rendering %s: %w", source, ctx.Err())
		}

		return res, fmt.Errorf("running %s: %w", c.Path, err)
	}

	return res, nil
}
