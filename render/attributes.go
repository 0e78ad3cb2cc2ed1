// Copyright 2026 The deck.gl-go Authors
// SPDX-License-Identifier: MIT

package render

import "sync"

// AttributeManager tracks which vertex attributes of a layer became
// stale and need regeneration. The reconciler drives invalidation from
// update-trigger diffs; the rendering backend consumes the stale set
// when it rebuilds buffers.
type AttributeManager interface {
	// Invalidate marks the attribute fed by the named accessor as stale.
	Invalidate(name string)

	// InvalidateAll marks every attribute as stale. Used when the
	// layer's data itself changed.
	InvalidateAll()

	// NeedsUpdate reports whether any attribute is stale.
	NeedsUpdate() bool
}

// Attributes is a small thread-safe AttributeManager that records stale
// accessor names. Backends with real buffer management implement
// AttributeManager themselves; Attributes serves tests and staging.
type Attributes struct {
	mu    sync.Mutex
	stale map[string]bool
	all   bool
}

// NewAttributes creates an empty attribute manager.
func NewAttributes() *Attributes {
	return &Attributes{stale: make(map[string]bool)}
}

// Invalidate marks one accessor stale.
func (a *Attributes) Invalidate(name string) {
	a.mu.Lock()
	a.stale[name] = true
	a.mu.Unlock()
}

// InvalidateAll marks everything stale.
func (a *Attributes) InvalidateAll() {
	a.mu.Lock()
	a.all = true
	a.mu.Unlock()
}

// NeedsUpdate reports whether anything is stale.
func (a *Attributes) NeedsUpdate() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.all || len(a.stale) > 0
}

// Stale returns the stale accessor names and whether a full rebuild was
// requested, then resets the record.
func (a *Attributes) Stale() (names []string, all bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for name := range a.stale {
		names = append(names, name)
	}
	all = a.all
	a.stale = make(map[string]bool)
	a.all = false
	return names, all
}

// Ensure Attributes implements AttributeManager.
var _ AttributeManager = (*Attributes)(nil)
