// Package options reads the flat key=value options file that tunes a pass.
//
// The file is optional. Lines whose trimmed content starts with '#' are
// comments, lines without '=' are ignored, and every other line is split on
// its first '=' into a trimmed key and value. Later keys overwrite earlier
// ones. Values stay strings; consumers coerce them.
package options

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// FileName is the options file looked up inside the config directory.
const FileName = "run_carbon_cli-options.txt"

// KeyImageMaxWidth caps the width of rendered images in pixels.
const KeyImageMaxWidth = "image_max_width"

// Set maps option names to raw string values.
type Set map[string]string

// Load reads FileName from dir. A missing file yields an empty Set.
func Load(dir string) (Set, error) {
	path := filepath.Join(dir, FileName)

	f, err := os.Open(path) //nolint:gosec // path is built from the configured directory
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Set{}, nil
		}

		return nil, fmt.Errorf("opening options file %s: %w", path, err)
	}
	defer f.Close()

	opts, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("reading options file %s: %w", path, err)
	}

	return opts, nil
}

// Parse reads key=value lines from r.
func Parse(r io.Reader) (Set, error) {
	opts := Set{}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		opts[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	if err := sc.Err(); err != nil {
		return nil, err
	}

	return opts, nil
}

// MaxWidth returns the image_max_width option as an integer. It reports false
// when the option is absent or empty, and logs a warning and reports false
// when the value is not a positive integer.
func (s Set) MaxWidth(logger *slog.Logger) (int, bool) {
	raw := s[KeyImageMaxWidth]
	if raw == "" {
		return 0, false
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		if logger == nil {
			logger = slog.Default()
		}

		logger.Warn("invalid option value, resizing disabled",
			slog.String("option", KeyImageMaxWidth),
			slog.String("value", raw),
		)

		return 0, false
	}

	return n, true
}

// String renders the set with sorted keys for log output.
func (s Set) String() string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+s[k])
	}

	return "{" + strings.Join(parts, ", ") + "}"
}
