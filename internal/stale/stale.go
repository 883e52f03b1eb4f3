// Package stale decides which source files need a fresh render.
//
// Rendered images double as the staleness cache: a target is regenerated
// when it is missing, or when its modification time is not strictly newer
// than the source's. Equal timestamps therefore render. There is no content
// hashing, so a source whose timestamp moves backwards is not re-rendered.
package stale

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// TargetPrefix and TargetExt frame the stem of every render target.
const (
	TargetPrefix = "codeimg_"
	TargetExt    = ".png"
)

// Source is a candidate file in the code directory.
type Source struct {
	Path    string
	ModTime time.Time
}

// Stem returns the base name of path without its final extension. A leading
// dot does not start an extension, so ".bashrc" is its own stem.
func Stem(path string) string {
	base := filepath.Base(path)

	ext := filepath.Ext(base)
	if ext == base {
		return base
	}

	return strings.TrimSuffix(base, ext)
}

// TargetName returns the basename (without extension) handed to the renderer.
func TargetName(source string) string {
	return TargetPrefix + Stem(source)
}

// TargetPath returns outDir/codeimg_<stem>.png.
func TargetPath(outDir, source string) string {
	return filepath.Join(outDir, TargetName(source)+TargetExt)
}

// NeedsRender is the staleness gate. It skips only when the target exists and
// is strictly newer than the source.
func NeedsRender(sourceMod time.Time, targetExists bool, targetMod time.Time) bool {
	return !(targetExists && targetMod.After(sourceMod))
}

// Reason explains a gate decision.
type Reason string

// Gate decision reasons.
const (
	ReasonMissing  Reason = "missing"
	ReasonOutdated Reason = "outdated"
	ReasonFresh    Reason = "fresh"
)

// Decision is the gate result for one source.
type Decision struct {
	Source Source
	Target string
	Render bool
	Reason Reason
}

// Decide stats the target of src inside outDir and applies NeedsRender.
func Decide(src Source, outDir string) (Decision, error) {
	target := TargetPath(outDir, src.Path)
	d := Decision{Source: src, Target: target}

	info, err := os.Stat(target)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		d.Render, d.Reason = true, ReasonMissing
		return d, nil
	case err != nil:
		return d, fmt.Errorf("stat %s: %w", target, err)
	}

	d.Render = NeedsRender(src.ModTime, true, info.ModTime())
	if d.Render {
		d.Reason = ReasonOutdated
	} else {
		d.Reason = ReasonFresh
	}

	return d, nil
}

// ListSources returns the regular files directly inside dir, sorted by path.
// Subdirectories are not descended into.
func ListSources(dir string) ([]Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	sources := make([]Source, 0, len(entries))

	for _, e := range entries {
		p := filepath.Join(dir, e.Name())

		// Stat follows symlinks, like a regular-file check on the path would.
		info, statErr := os.Stat(p)
		if statErr != nil || !info.Mode().IsRegular() {
			continue
		}

		sources = append(sources, Source{Path: p, ModTime: info.ModTime()})
	}

	sort.Slice(sources, func(i, j int) bool { return sources[i].Path < sources[j].Path })

	return sources, nil
}
