package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hupe1980/carbonwatch/internal/config"
	"github.com/hupe1980/carbonwatch/internal/logging"
	"github.com/hupe1980/carbonwatch/internal/pass"
	"github.com/hupe1980/carbonwatch/internal/watch"
)

func newWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Render all stale files, then re-render on every change",
		Long: `Watch runs one pass over the code directory, then waits for
file-system changes and runs another pass for each debounced batch of
changes. Only files whose image is missing or not newer than the source are
rendered.

Press Ctrl-C to stop.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd.Context(), cmd)
		},
	}

	registerPassFlags(cmd)
	cmd.Flags().Duration("debounce", config.DefaultDebounce, "quiet period before a batch of changes triggers a pass")

	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command) error {
	cfg := config.FromContext(ctx)

	runner, err := newRunner(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	runFn := func(fnCtx context.Context) (*watch.RunResult, error) {
		sum, runErr := runner.Run(fnCtx)
		if runErr != nil {
			return nil, runErr
		}

		return &watch.RunResult{
			Rendered: sum.Rendered,
			Skipped:  sum.Skipped,
			Failed:   sum.Failed,
		}, nil
	}

	opts := watch.DefaultOptions()
	opts.Dir = runner.Layout.CodeDir
	opts.Debounce = cfg.Debounce
	opts.Fatal = pass.IsFatal
	opts.Logger = logging.Component(logging.FromContext(ctx), "watch")
	opts.Out = cmd.ErrOrStderr()

	return exitFor(watch.Run(ctx, opts, runFn))
}
