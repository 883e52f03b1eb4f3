package cli

import (
	"context"
	"io"

	"github.com/hupe1980/carbonwatch/internal/config"
	"github.com/hupe1980/carbonwatch/internal/logging"
	"github.com/hupe1980/carbonwatch/internal/pass"
	"github.com/hupe1980/carbonwatch/internal/preset"
)

// lookupRenderer is swapped out by tests.
var lookupRenderer pass.LookupFunc = pass.LookupCarbon

// newRunner builds a pass.Runner from the configuration in ctx.
func newRunner(ctx context.Context, out io.Writer) (*pass.Runner, error) {
	cfg := config.FromContext(ctx)
	logger := logging.FromContext(ctx)

	layout, err := cfg.Layout()
	if err != nil {
		return nil, &ExitError{Code: 2, Err: err}
	}

	return &pass.Runner{
		Layout:   layout,
		Theme:    cfg.Theme,
		Renderer: cfg.Renderer,
		Lookup:   lookupRenderer,
		Stager:   &preset.Stager{Backup: cfg.BackupActiveConfig, Logger: logging.Component(logger, "preset")},
		Pacer:    pass.RandomPause{Min: cfg.PauseMin, Max: cfg.PauseMax},
		Logger:   logging.Component(logger, "pass"),
		Out:      out,
	}, nil
}

// exitFor maps a pass error to the process exit code. Fatal preconditions
// exit with status 1.
func exitFor(err error) error {
	if err == nil {
		return nil
	}

	if pass.IsFatal(err) {
		return &ExitError{Code: 1, Err: err}
	}

	return err
}
