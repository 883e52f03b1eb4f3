package pass

import (
	"github.com/hupe1980/carbonwatch/internal/stale"
)

// Plan actions.
const (
	ActionRender = "render"
	ActionSkip   = "skip"
)

// PlanEntry is the gate decision for one source, without side effects.
type PlanEntry struct {
	Source string       `json:"source" yaml:"source"`
	Target string       `json:"target" yaml:"target"`
	Action string       `json:"action" yaml:"action"`
	Reason stale.Reason `json:"reason" yaml:"reason"`
}

// Plan evaluates the staleness gate for every source without staging the
// preset, rendering, or creating directories.
func (r *Runner) Plan() ([]PlanEntry, error) {
	sources, err := stale.ListSources(r.Layout.CodeDir)
	if err != nil {
		return nil, err
	}

	entries := make([]PlanEntry, 0, len(sources))

	for _, src := range sources {
		d, err := stale.Decide(src, r.Layout.ImagesDir)
		if err != nil {
			return nil, err
		}

		action := ActionSkip
		if d.Render {
			action = ActionRender
		}

		entries = append(entries, PlanEntry{
			Source: src.Path,
			Target: d.Target,
			Action: action,
			Reason: d.Reason,
		})
	}

	return entries, nil
}
