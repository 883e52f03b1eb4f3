package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/hupe1980/carbonwatch/internal/config"
	"github.com/hupe1980/carbonwatch/internal/options"
	"github.com/hupe1980/carbonwatch/internal/preset"
	"github.com/hupe1980/carbonwatch/internal/renderer"
)

func newDoctorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that a pass can run",
		Long: `Doctor resolves the preset and the renderer the way a pass does,
probes the renderer version against --min-renderer-version, and reports the
directory layout. It exits with status 1 when a pass would fail fatally.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd)
		},
	}

	cmd.Flags().String("min-renderer-version", config.DefaultMinRendererVersion, "semver constraint for the renderer version")

	return cmd
}

func runDoctor(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	w := cmd.OutOrStdout()

	layout, err := cfg.Layout()
	if err != nil {
		return &ExitError{Code: 2, Err: err}
	}

	var problems []error

	st := newDoctorStyles(w, cfg.NoColor)

	fmt.Fprintf(w, "workdir:        %s\n", layout.WorkDir)
	st.reportDir(w, "code dir:", layout.CodeDir)
	st.reportDir(w, "images dir:", layout.ImagesDir)
	st.reportDir(w, "config dir:", layout.ConfigDir)
	fmt.Fprintf(w, "active config:  %s (overwritten on every pass)\n", layout.ActiveConfig)

	if p, selErr := preset.Select(layout, cfg.Theme); selErr != nil {
		fmt.Fprintf(w, "preset:         %s (%v)\n", st.bad.Render("MISSING"), selErr)
		problems = append(problems, selErr)
	} else {
		fmt.Fprintf(w, "preset:         %s\n", p)
	}

	if opts, optErr := options.Load(layout.ConfigDir); optErr != nil {
		fmt.Fprintf(w, "options:        unreadable (%v)\n", optErr)
	} else {
		fmt.Fprintf(w, "options:        %s\n", opts)
	}

	carbon, lookErr := renderer.Lookup(cfg.Renderer)
	if lookErr != nil {
		fmt.Fprintf(w, "renderer:       %s (%s not on PATH)\n", st.bad.Render("MISSING"), cfg.Renderer)
		problems = append(problems, lookErr)
	} else {
		fmt.Fprintf(w, "renderer:       %s\n", carbon.Path)

		info, verErr := renderer.CheckVersion(ctx, carbon.Path, cfg.MinRendererVersion)

		switch {
		case verErr != nil:
			fmt.Fprintf(w, "version:        unknown (%v)\n", verErr)
		case info.Satisfied:
			fmt.Fprintf(w, "version:        %s (satisfies %s)\n", st.ok.Render(info.Version), info.Constraint)
		default:
			fmt.Fprintf(w, "version:        %s (does NOT satisfy %s)\n", st.warn.Render(info.Version), info.Constraint)
		}
	}

	if len(problems) > 0 {
		return &ExitError{Code: 1, Err: errors.Join(problems...)}
	}

	return nil
}

// doctorStyles colours status words. Output that is not a terminal, or
// --no-color, gets plain text.
type doctorStyles struct {
	ok, warn, bad lipgloss.Style
}

func newDoctorStyles(w io.Writer, noColor bool) doctorStyles {
	r := lipgloss.NewRenderer(w)
	if noColor {
		r.SetColorProfile(termenv.Ascii)
	}

	return doctorStyles{
		ok:   r.NewStyle().Foreground(lipgloss.Color("2")),
		warn: r.NewStyle().Foreground(lipgloss.Color("3")),
		bad:  r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
}

func (st doctorStyles) reportDir(w io.Writer, label, path string) {
	state := st.ok.Render("ok")

	info, err := os.Stat(path)

	switch {
	case err != nil:
		state = st.warn.Render("missing")
	case !info.IsDir():
		state = st.bad.Render("not a directory")
	}

	fmt.Fprintf(w, "%-15s %s (%s)\n", label, path, state)
}
