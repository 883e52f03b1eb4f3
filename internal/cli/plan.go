package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/carbonwatch/internal/pass"
)

// Plan output formats.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func newPlanCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show which files the next pass would render",
		Long: `Plan evaluates the staleness check for every file in the code
directory and prints whether it would be rendered or skipped. Nothing is
rendered, no preset is staged and no directory is created.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch format {
			case formatText, formatJSON, formatYAML:
			default:
				return &ExitError{Code: 2, Err: fmt.Errorf("invalid output format %q: must be one of text, json, yaml", format)}
			}

			runner, err := newRunner(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			entries, err := runner.Plan()
			if err != nil {
				return err
			}

			return writePlan(cmd.OutOrStdout(), format, entries)
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", formatText, "output format: text, json, yaml")
	_ = cmd.RegisterFlagCompletionFunc("output",
		cobra.FixedCompletions([]string{formatText, formatJSON, formatYAML}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func writePlan(w io.Writer, format string, entries []pass.PlanEntry) error {
	switch format {
	case formatJSON:
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling plan: %w", err)
		}

		_, err = fmt.Fprintln(w, string(data))

		return err

	case formatYAML:
		data, err := yaml.Marshal(entries)
		if err != nil {
			return fmt.Errorf("marshaling plan: %w", err)
		}

		_, err = w.Write(data)

		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ACTION\tREASON\tSOURCE\tTARGET")

	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Action, e.Reason, e.Source, e.Target)
	}

	return tw.Flush()
}
