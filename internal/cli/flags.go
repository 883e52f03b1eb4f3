package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hupe1980/carbonwatch/internal/config"
)

// registerLayoutFlags adds the directory layout and renderer flags shared by
// every command.
func registerLayoutFlags(f *pflag.FlagSet) {
	f.String("workdir", "", "base directory for relative paths (default: current directory)")
	f.String("code-dir", config.DefaultCodeDir, "directory with the source files to render")
	f.String("images-dir", config.DefaultImagesDir, "directory for rendered images")
	f.String("config-dir", config.DefaultConfigDir, "directory with the user preset and options file")
	f.String("active-config", "", "carbon-now configuration file overwritten on every pass (default: ~/.carbon-now.json)")
	f.String("theme", config.ThemeOneLight, "bundled fallback preset: onelight-hack, nightowl-hack, oceanicnext-hack")
	f.String("renderer", config.DefaultRenderer, "renderer executable looked up on PATH")
}

// registerPassFlags adds the flags that tune rendering passes.
func registerPassFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Duration("pause-min", config.DefaultPauseMin, "minimum pause after each render")
	f.Duration("pause-max", config.DefaultPauseMax, "maximum pause after each render")
	f.Bool("backup-active-config", false, "back up the active carbon-now configuration before the first overwrite")
}
