package cli

import (
	"github.com/spf13/cobra"

	"github.com/hupe1980/carbonwatch/internal/config"
)

func newCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion <shell>",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for carbonwatch. Flag values such
as --theme and --log-format complete as well.

Bash:
  $ source <(carbonwatch completion bash)

Zsh:
  $ carbonwatch completion zsh > "${fpath[1]}/_carbonwatch"

Fish:
  $ carbonwatch completion fish > ~/.config/fish/completions/carbonwatch.fish

PowerShell:
  PS> carbonwatch completion powershell | Out-String | Invoke-Expression
`,
		// Override parent PersistentPreRunE: completion needs no config.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Args:              cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs:         []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()

			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(w, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(w)
			case "fish":
				return cmd.Root().GenFishCompletion(w, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(w)
			}

			return nil
		},
	}

	return cmd
}

// registerValueCompletions attaches static value completions to the
// enumerated persistent flags of root.
func registerValueCompletions(root *cobra.Command) {
	fixed := map[string][]string{
		"theme":      config.Themes(),
		"log-level":  {config.LogLevelDebug, config.LogLevelInfo, config.LogLevelWarn, config.LogLevelError},
		"log-format": {config.LogFormatText, config.LogFormatJSON, config.LogFormatPretty},
	}

	for name, values := range fixed {
		_ = root.RegisterFlagCompletionFunc(name, cobra.FixedCompletions(values, cobra.ShellCompDirectiveNoFileComp))
	}

	for _, name := range []string{"workdir", "code-dir", "images-dir", "config-dir"} {
		_ = root.MarkPersistentFlagDirname(name)
	}
}
