package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a single pass and exit",
		Long: `Run renders every stale file in the code directory once and exits.

Exit status is 1 when no preset can be found or the renderer is not on
PATH. Files whose render fails are reported but do not change the exit
status.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			runner, err := newRunner(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			_, err = runner.Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}

			return exitFor(err)
		},
	}

	registerPassFlags(cmd)

	return cmd
}
