// Package preset selects the renderer configuration ("preset") for a pass
// and stages it onto the renderer's active configuration file.
//
// A user preset in the config directory wins over the bundled theme preset
// in the working directory. Staging overwrites the active file, discarding
// anything the renderer's interactive flows saved there; the overwrite is
// logged with a diff and can optionally be backed up once per process.
package preset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pmezard/go-difflib/difflib"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/hupe1980/carbonwatch/internal/config"
)

// User preset file names inside the config directory, in lookup order.
const (
	UserPresetJSON = "carbon-now.json"
	UserPresetYAML = "carbon-now.yaml"
	UserPresetTOML = "carbon-now.toml"
)

// ErrNotFound reports that no preset file resolved to an existing file.
var ErrNotFound = errors.New("preset not found")

// ThemeFile returns the bundled preset file name for theme.
func ThemeFile(theme string) string {
	return fmt.Sprintf("config-%s-png.json", theme)
}

// Select returns the preset to stage for this pass. The returned error wraps
// ErrNotFound and names the fallback path that was expected.
func Select(layout config.Layout, theme string) (string, error) {
	for _, name := range []string{UserPresetJSON, UserPresetYAML, UserPresetTOML} {
		p := filepath.Join(layout.ConfigDir, name)
		if isFile(p) {
			return p, nil
		}
	}

	fallback := filepath.Join(layout.WorkDir, ThemeFile(theme))
	if isFile(fallback) {
		return fallback, nil
	}

	return "", fmt.Errorf("config file %q: %w", fallback, ErrNotFound)
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

// Stager copies presets onto the active configuration file.
type Stager struct {
	// Backup keeps a copy of the active file at <active>.bak before the first
	// overwrite that changes it.
	Backup bool

	Logger *slog.Logger

	backedUp bool
}

// Stage writes the preset at src to dst. YAML and TOML presets are converted
// to JSON.
func (s *Stager) Stage(src, dst string) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	data, err := Read(src)
	if err != nil {
		return err
	}

	prev, err := os.ReadFile(dst) //nolint:gosec // dst is the configured active preset
	switch {
	case errors.Is(err, fs.ErrNotExist):
		prev = nil
	case err != nil:
		return fmt.Errorf("reading active config %s: %w", dst, err)
	}

	if prev != nil && !bytes.Equal(prev, data) {
		s.warnOverwrite(logger, dst, prev, data)

		if s.Backup && !s.backedUp {
			bak := dst + ".bak"
			if err := os.WriteFile(bak, prev, 0o600); err != nil {
				return fmt.Errorf("backing up active config to %s: %w", bak, err)
			}

			s.backedUp = true

			logger.Info("backed up active renderer configuration", slog.String("path", bak))
		}
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return fmt.Errorf("creating directory for %s: %w", dst, err)
	}

	if err := os.WriteFile(dst, data, 0o600); err != nil {
		return fmt.Errorf("writing active config %s: %w", dst, err)
	}

	return nil
}

func (s *Stager) warnOverwrite(logger *slog.Logger, dst string, prev, next []byte) {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(prev)),
		B:        difflib.SplitLines(string(next)),
		FromFile: dst,
		ToFile:   "preset",
		Context:  2,
	})
	if err != nil {
		diff = ""
	}

	added, removed := countChanges(diff)

	logger.Warn("overwriting active renderer configuration; presets saved by the renderer are discarded",
		slog.String("path", dst),
		slog.Int("linesAdded", added),
		slog.Int("linesRemoved", removed),
	)

	if diff != "" {
		logger.Debug("active renderer configuration diff", slog.String("diff", diff))
	}
}

func countChanges(unified string) (added, removed int) {
	for _, line := range strings.Split(unified, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			added++
		case strings.HasPrefix(line, "-"):
			removed++
		}
	}

	return added, removed
}

// Read returns the preset at path as JSON bytes.
func Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from Select
	if err != nil {
		return nil, fmt.Errorf("reading preset %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		j, convErr := sigsyaml.YAMLToJSON(data)
		if convErr != nil {
			return nil, fmt.Errorf("converting preset %s to JSON: %w", path, convErr)
		}

		return j, nil
	case ".toml":
		var m map[string]any
		if _, convErr := toml.Decode(string(data), &m); convErr != nil {
			return nil, fmt.Errorf("decoding preset %s: %w", path, convErr)
		}

		j, convErr := json.MarshalIndent(m, "", "  ")
		if convErr != nil {
			return nil, fmt.Errorf("converting preset %s to JSON: %w", path, convErr)
		}

		return j, nil
	default:
		return data, nil
	}
}
