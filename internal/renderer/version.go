package renderer

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"time"

	"github.com/Masterminds/semver/v3"
)

var versionPattern = regexp.MustCompile(`v?\d+\.\d+\.\d+(?:-[0-9A-Za-z.-]+)?`)

// VersionInfo describes the installed renderer version.
type VersionInfo struct {
	Raw        string `json:"raw" yaml:"raw"`
	Version    string `json:"version" yaml:"version"`
	Constraint string `json:"constraint" yaml:"constraint"`
	Satisfied  bool   `json:"satisfied" yaml:"satisfied"`
}

// CheckVersion runs `<exe> --version` and checks the reported version against
// the semver constraint.
func CheckVersion(ctx context.Context, exe, constraint string) (*VersionInfo, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return nil, fmt.Errorf("parsing version constraint %q: %w", constraint, err)
	}

	probeCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	out, err := exec.CommandContext(probeCtx, exe, "--version").CombinedOutput() //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("probing %s --version: %w", exe, err)
	}

	info, err := ParseVersion(string(out), c)
	if err != nil {
		return nil, err
	}

	info.Constraint = constraint

	return info, nil
}

// ParseVersion extracts the first semantic version from output.
func ParseVersion(output string, c *semver.Constraints) (*VersionInfo, error) {
	raw := versionPattern.FindString(output)
	if raw == "" {
		return nil, fmt.Errorf("no version found in %q", output)
	}

	v, err := semver.NewVersion(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing version %q: %w", raw, err)
	}

	return &VersionInfo{
		Raw:       raw,
		Version:   v.String(),
		Satisfied: c == nil || c.Check(v),
	}, nil
}
