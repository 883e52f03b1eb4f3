// Package config provides configuration management for carbonwatch.
//
// Configuration is loaded from four sources with the following precedence
// (highest to lowest):
//  1. CLI flags
//  2. Environment variables (CARBONWATCH_ prefix)
//  3. Config file (.carbonwatch.yaml)
//  4. Built-in defaults
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Supported log levels.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// Supported log formats.
const (
	LogFormatText   = "text"
	LogFormatJSON   = "json"
	LogFormatPretty = "pretty"
)

// Bundled preset themes. The theme selects the fallback renderer
// configuration file config-<theme>-png.json in the working directory.
const (
	ThemeOneLight    = "onelight-hack"
	ThemeNightOwl    = "nightowl-hack"
	ThemeOceanicNext = "oceanicnext-hack"
)

// Defaults for the directory layout and the renderer.
const (
	DefaultCodeDir            = "code_files"
	DefaultImagesDir          = "images"
	DefaultConfigDir          = "config_files"
	DefaultRenderer           = "carbon-now"
	DefaultActiveConfigName   = ".carbon-now.json"
	DefaultMinRendererVersion = ">= 1.0.0"
	DefaultPauseMin           = 4 * time.Second
	DefaultPauseMax           = 9 * time.Second
	DefaultDebounce           = 1500 * time.Millisecond
)

// Config represents the global configuration for carbonwatch.
type Config struct {
	// LogLevel controls the verbosity of log output.
	// Valid values: debug, info, warn, error.
	LogLevel string `mapstructure:"log-level" json:"logLevel"`

	// LogFormat controls the format of log output.
	// Valid values: text, json, pretty.
	LogFormat string `mapstructure:"log-format" json:"logFormat"`

	// NoColor disables colored output.
	NoColor bool `mapstructure:"no-color" json:"noColor"`

	// Quiet suppresses all log output below error level.
	Quiet bool `mapstructure:"quiet" json:"quiet"`

	// WorkDir is the base for all relative directories. Empty means the
	// process working directory at load time.
	WorkDir string `mapstructure:"workdir" json:"workdir"`

	CodeDir   string `mapstructure:"code-dir" json:"codeDir"`
	ImagesDir string `mapstructure:"images-dir" json:"imagesDir"`
	ConfigDir string `mapstructure:"config-dir" json:"configDir"`

	// ActiveConfig is the renderer's own configuration file that every pass
	// overwrites. Empty means ~/.carbon-now.json.
	ActiveConfig string `mapstructure:"active-config" json:"activeConfig"`

	// BackupActiveConfig copies the active configuration to <path>.bak
	// before the first overwrite of the process.
	BackupActiveConfig bool `mapstructure:"backup-active-config" json:"backupActiveConfig"`

	// Theme selects the bundled fallback preset.
	Theme string `mapstructure:"theme" json:"theme"`

	// Renderer is the executable name resolved on PATH.
	Renderer string `mapstructure:"renderer" json:"renderer"`

	// MinRendererVersion is a semver constraint checked by the doctor command.
	MinRendererVersion string `mapstructure:"min-renderer-version" json:"minRendererVersion"`

	// PauseMin and PauseMax bound the randomized pause after each render.
	PauseMin time.Duration `mapstructure:"pause-min" json:"pauseMin"`
	PauseMax time.Duration `mapstructure:"pause-max" json:"pauseMax"`

	// Debounce is the quiet period before a batch of changes triggers a pass.
	Debounce time.Duration `mapstructure:"debounce" json:"debounce"`

	// ConfigFile is the resolved path to the config file used.
	// Set after Load(), not read from config itself.
	ConfigFile string `mapstructure:"-" json:"-"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		LogLevel:           LogLevelInfo,
		LogFormat:          LogFormatText,
		CodeDir:            DefaultCodeDir,
		ImagesDir:          DefaultImagesDir,
		ConfigDir:          DefaultConfigDir,
		Theme:              ThemeOneLight,
		Renderer:           DefaultRenderer,
		MinRendererVersion: DefaultMinRendererVersion,
		PauseMin:           DefaultPauseMin,
		PauseMax:           DefaultPauseMax,
		Debounce:           DefaultDebounce,
	}
}

// Themes lists the bundled preset themes.
func Themes() []string {
	return []string{ThemeOneLight, ThemeNightOwl, ThemeOceanicNext}
}

// Validate checks that all config values are valid.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		// valid
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", c.LogLevel)
	}

	switch c.LogFormat {
	case LogFormatText, LogFormatJSON, LogFormatPretty:
		// valid
	default:
		return fmt.Errorf("invalid log format %q: must be one of text, json, pretty", c.LogFormat)
	}

	switch c.Theme {
	case ThemeOneLight, ThemeNightOwl, ThemeOceanicNext:
		// valid
	default:
		return fmt.Errorf("invalid theme %q: must be one of %s", c.Theme, strings.Join(Themes(), ", "))
	}

	if c.Renderer == "" {
		return fmt.Errorf("renderer must not be empty")
	}

	if c.PauseMin < 0 || c.PauseMax < c.PauseMin {
		return fmt.Errorf("invalid pause range %s..%s: need 0 <= pause-min <= pause-max", c.PauseMin, c.PauseMax)
	}

	if c.Debounce < 0 {
		return fmt.Errorf("invalid debounce %s: must not be negative", c.Debounce)
	}

	return nil
}

// EffectiveLogLevel returns the log level to use. When Quiet is true the log
// level is overridden to "error" regardless of the configured LogLevel.
func (c *Config) EffectiveLogLevel() string {
	if c.Quiet {
		return LogLevelError
	}

	return c.LogLevel
}

// Layout holds the absolute paths every component works on. It replaces
// any reliance on the process working directory.
type Layout struct {
	WorkDir      string `json:"workdir" yaml:"workdir"`
	CodeDir      string `json:"codeDir" yaml:"codeDir"`
	ImagesDir    string `json:"imagesDir" yaml:"imagesDir"`
	ConfigDir    string `json:"configDir" yaml:"configDir"`
	ActiveConfig string `json:"activeConfig" yaml:"activeConfig"`
}

// Layout resolves the configured directories against WorkDir.
func (c *Config) Layout() (Layout, error) {
	work := c.WorkDir
	if work == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Layout{}, fmt.Errorf("resolving working directory: %w", err)
		}

		work = wd
	}

	work, err := filepath.Abs(work)
	if err != nil {
		return Layout{}, fmt.Errorf("resolving working directory %q: %w", c.WorkDir, err)
	}

	active := c.ActiveConfig
	if active == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return Layout{}, fmt.Errorf("resolving home directory: %w", homeErr)
		}

		active = filepath.Join(home, DefaultActiveConfigName)
	}

	return Layout{
		WorkDir:      work,
		CodeDir:      resolve(work, c.CodeDir),
		ImagesDir:    resolve(work, c.ImagesDir),
		ConfigDir:    resolve(work, c.ConfigDir),
		ActiveConfig: active,
	}, nil
}

func resolve(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}

	return filepath.Join(base, p)
}

// Load initialises configuration from flags, environment variables, and an
// optional config file. A fresh viper instance is used on every call so that
// Load is safe for concurrent tests.
func Load(cmd *cobra.Command, configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)
	configureEnv(v)

	if err := configureFile(v, configFile); err != nil {
		return nil, err
	}

	if err := bindFlags(v, cmd); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.ConfigFile = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults registers default values in viper.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("log-level", d.LogLevel)
	v.SetDefault("log-format", d.LogFormat)
	v.SetDefault("no-color", false)
	v.SetDefault("quiet", false)
	v.SetDefault("workdir", "")
	v.SetDefault("code-dir", d.CodeDir)
	v.SetDefault("images-dir", d.ImagesDir)
	v.SetDefault("config-dir", d.ConfigDir)
	v.SetDefault("active-config", "")
	v.SetDefault("backup-active-config", false)
	v.SetDefault("theme", d.Theme)
	v.SetDefault("renderer", d.Renderer)
	v.SetDefault("min-renderer-version", d.MinRendererVersion)
	v.SetDefault("pause-min", d.PauseMin)
	v.SetDefault("pause-max", d.PauseMax)
	v.SetDefault("debounce", d.Debounce)
}

// configureEnv sets up environment variable support.
func configureEnv(v *viper.Viper) {
	v.SetEnvPrefix("CARBONWATCH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
}

// configureFile sets up the config file source.
func configureFile(v *viper.Viper, configFile string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)

		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %q: %w", configFile, err)
		}

		return nil
	}

	// Auto-discovery mode.
	v.SetConfigName(".carbonwatch")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "carbonwatch"))
	}

	if err := v.ReadInConfig(); err != nil {
		// No config file found → perfectly fine in auto-discovery.
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}

		// Found a file but it was malformed.
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// bindFlags walks from cmd up to the root and binds all PersistentFlags.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	if cmd == nil {
		return nil
	}

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}

	for c := cmd; c != nil; c = c.Parent() {
		if err := v.BindPFlags(c.PersistentFlags()); err != nil {
			return fmt.Errorf("binding persistent flags: %w", err)
		}
	}

	return nil
}

// ---------------------------------------------------------------------------
// Context helpers
// ---------------------------------------------------------------------------

type ctxKey struct{}

// NewContext returns a child context carrying cfg.
func NewContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ctxKey{}, cfg)
}

// FromContext extracts a Config from ctx, falling back to Default().
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(ctxKey{}).(*Config); ok {
		return cfg
	}

	return Default()
}
