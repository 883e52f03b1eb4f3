// Package pass runs one pass over the code directory: select and stage the
// renderer preset, then for every source in sorted order apply the staleness
// gate, render, downsample, and pause before the next render.
//
// Files are processed strictly one at a time. The renderer reads the single
// shared active configuration and talks to a rate-limited remote service, so
// a pass never renders concurrently.
//
// Missing presets and a missing renderer executable are fatal and reported
// as [*FatalError] before any file work. Everything that goes wrong for an
// individual file is logged and counted in the [Summary] instead.
package pass
