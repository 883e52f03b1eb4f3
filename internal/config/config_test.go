package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// newTestRootCmd creates a cobra.Command with the same persistent flags as the
// real root command so that Load can bind them during tests.
func newTestRootCmd() *cobra.Command {
	cmd := &cobra.Command{}
	pf := cmd.PersistentFlags()
	pf.String("config", "", "")
	pf.String("log-level", "info", "")
	pf.String("log-format", "text", "")
	pf.Bool("no-color", false, "")
	pf.BoolP("quiet", "q", false, "")
	pf.String("workdir", "", "")
	pf.String("theme", ThemeOneLight, "")

	return cmd
}

// writeTempConfig writes a YAML string to a temporary file and returns the path.
func writeTempConfig(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	p := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))

	return p
}

// ---------------------------------------------------------------------------
// Default / Validate
// ---------------------------------------------------------------------------

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, LogLevelInfo, cfg.LogLevel)
	assert.Equal(t, LogFormatText, cfg.LogFormat)
	assert.Equal(t, "code_files", cfg.CodeDir)
	assert.Equal(t, "images", cfg.ImagesDir)
	assert.Equal(t, "config_files", cfg.ConfigDir)
	assert.Equal(t, ThemeOneLight, cfg.Theme)
	assert.Equal(t, "carbon-now", cfg.Renderer)
	assert.Equal(t, 4*time.Second, cfg.PauseMin)
	assert.Equal(t, 9*time.Second, cfg.PauseMax)
	assert.Equal(t, 1500*time.Millisecond, cfg.Debounce)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"pretty format", func(c *Config) { c.LogFormat = LogFormatPretty }, ""},
		{"nightowl theme", func(c *Config) { c.Theme = ThemeNightOwl }, ""},
		{"zero pause", func(c *Config) { c.PauseMin, c.PauseMax = 0, 0 }, ""},
		{"bad level", func(c *Config) { c.LogLevel = "verbose" }, "invalid log level"},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }, "invalid log format"},
		{"bad theme", func(c *Config) { c.Theme = "solarized" }, "invalid theme"},
		{"empty renderer", func(c *Config) { c.Renderer = "" }, "renderer must not be empty"},
		{"inverted pause", func(c *Config) { c.PauseMin, c.PauseMax = 5*time.Second, time.Second }, "invalid pause range"},
		{"negative pause", func(c *Config) { c.PauseMin = -time.Second }, "invalid pause range"},
		{"negative debounce", func(c *Config) { c.Debounce = -time.Second }, "invalid debounce"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}

			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestEffectiveLogLevel(t *testing.T) {
	assert.Equal(t, "debug", (&Config{LogLevel: "debug"}).EffectiveLogLevel())
	assert.Equal(t, "error", (&Config{LogLevel: "debug", Quiet: true}).EffectiveLogLevel())
}

// ---------------------------------------------------------------------------
// Layout
// ---------------------------------------------------------------------------

func TestLayout_RelativeToWorkDir(t *testing.T) {
	work := t.TempDir()
	cfg := Default()
	cfg.WorkDir = work
	cfg.ActiveConfig = filepath.Join(work, "active.json")

	layout, err := cfg.Layout()
	require.NoError(t, err)

	assert.Equal(t, work, layout.WorkDir)
	assert.Equal(t, filepath.Join(work, "code_files"), layout.CodeDir)
	assert.Equal(t, filepath.Join(work, "images"), layout.ImagesDir)
	assert.Equal(t, filepath.Join(work, "config_files"), layout.ConfigDir)
	assert.Equal(t, filepath.Join(work, "active.json"), layout.ActiveConfig)
}

func TestLayout_AbsoluteDirsKept(t *testing.T) {
	work := t.TempDir()
	out := t.TempDir()

	cfg := Default()
	cfg.WorkDir = work
	cfg.ImagesDir = out

	layout, err := cfg.Layout()
	require.NoError(t, err)
	assert.Equal(t, out, layout.ImagesDir)
}

func TestLayout_DefaultActiveConfigInHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := Default()
	cfg.WorkDir = t.TempDir()

	layout, err := cfg.Layout()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".carbon-now.json"), layout.ActiveConfig)
}

// ---------------------------------------------------------------------------
// Load
// ---------------------------------------------------------------------------

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := Load(nil, "")
	require.NoError(t, err)
	assert.Equal(t, LogLevelInfo, cfg.LogLevel)
	assert.Equal(t, ThemeOneLight, cfg.Theme)
	assert.Equal(t, 1500*time.Millisecond, cfg.Debounce)
}

func TestLoad_EnvOverridesDefault(t *testing.T) {
	t.Setenv("CARBONWATCH_LOG_LEVEL", "debug")
	t.Setenv("CARBONWATCH_PAUSE_MAX", "2s")
	t.Setenv("CARBONWATCH_PAUSE_MIN", "1s")

	cfg, err := Load(nil, "")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, time.Second, cfg.PauseMin)
	assert.Equal(t, 2*time.Second, cfg.PauseMax)
}

func TestLoad_ConfigFile(t *testing.T) {
	p := writeTempConfig(t, "log-level: warn\nlog-format: json\ntheme: oceanicnext-hack\ndebounce: 250ms\n")

	cfg, err := Load(nil, p)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, ThemeOceanicNext, cfg.Theme)
	assert.Equal(t, 250*time.Millisecond, cfg.Debounce)
	assert.Equal(t, p, cfg.ConfigFile)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(nil, "/tmp/nonexistent-carbonwatch-cfg-12345.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestLoad_MalformedFile(t *testing.T) {
	p := writeTempConfig(t, ": invalid yaml :")

	_, err := Load(nil, p)
	require.Error(t, err)
}

func TestLoad_FlagOverridesAll(t *testing.T) {
	t.Setenv("CARBONWATCH_LOG_LEVEL", "debug")
	p := writeTempConfig(t, "log-level: warn\ntheme: nightowl-hack\n")

	cmd := newTestRootCmd()
	require.NoError(t, cmd.PersistentFlags().Set("log-level", "error"))
	require.NoError(t, cmd.PersistentFlags().Set("theme", ThemeOceanicNext))

	cfg, err := Load(cmd, p)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, ThemeOceanicNext, cfg.Theme)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("CARBONWATCH_THEME", "nightowl-hack")
	p := writeTempConfig(t, "theme: oceanicnext-hack\n")

	cfg, err := Load(nil, p)
	require.NoError(t, err)
	assert.Equal(t, ThemeNightOwl, cfg.Theme)
}

func TestLoad_InvalidThemeFromFile(t *testing.T) {
	p := writeTempConfig(t, "theme: solarized\n")

	_, err := Load(nil, p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid theme")
}

// ---------------------------------------------------------------------------
// Context helpers
// ---------------------------------------------------------------------------

func TestContext_RoundTrip(t *testing.T) {
	cfg := &Config{LogLevel: "debug", LogFormat: "json"}
	ctx := NewContext(context.Background(), cfg)
	assert.Equal(t, cfg, FromContext(ctx))
}

func TestFromContext_FallbackToDefault(t *testing.T) {
	assert.Equal(t, Default(), FromContext(context.Background()))
}
