package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/carbonwatch/internal/renderer"
	"github.com/hupe1980/carbonwatch/internal/version"
)

func newVersionCommand() *cobra.Command {
	var (
		jsonOutput   bool
		withRenderer bool
	)

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Display the version, git commit, build date, Go version, and platform.

With --with-renderer, the version reported by the renderer executable
(--renderer) is included as well.`,
		Args: cobra.NoArgs,
		// Override parent PersistentPreRunE: version needs no config.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.GetInfo()

			if withRenderer {
				name, err := cmd.Flags().GetString("renderer")
				if err != nil {
					return err
				}

				info.Renderer = rendererVersion(cmd.Context(), name)
			}

			if jsonOutput {
				j, err := info.JSON()
				if err != nil {
					return err
				}

				_, err = fmt.Fprintln(cmd.OutOrStdout(), j)

				return err
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), info.String())

			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output version info as JSON")
	cmd.Flags().BoolVar(&withRenderer, "with-renderer", false, "also report the installed renderer version")

	return cmd
}

// rendererVersion probes the renderer and reports what it finds instead of
// failing the command.
func rendererVersion(ctx context.Context, name string) string {
	c, err := renderer.Lookup(name)
	if err != nil {
		return "not found"
	}

	info, err := renderer.CheckVersion(ctx, c.Path, ">= 0.0.0")
	if err != nil {
		return "unknown"
	}

	return info.Version
}
