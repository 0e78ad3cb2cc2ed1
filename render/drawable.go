// Copyright 2026 The deck.gl-go Authors
// SPDX-License-Identifier: MIT

package render

import (
	"sync"
	"sync/atomic"
)

// Drawable is an opaque handle to a backend resource that can be drawn.
//
// The reconciler never inspects a drawable's contents. It only:
//   - polls NeedsRedraw when aggregating the frame's redraw flag
//   - writes an ownership tag into the user-data slot when state is
//     transferred between matched layer generations
type Drawable interface {
	// NeedsRedraw reports whether the drawable's contents changed since
	// the last poll. When clear is true the flag is reset atomically
	// with the read.
	NeedsRedraw(clear bool) bool

	// SetUserData stores opaque metadata on the drawable. The rendering
	// backend round-trips it without interpretation.
	SetUserData(v any)

	// UserData returns the value stored by SetUserData, or nil.
	UserData() any
}

// Model is a minimal Drawable implementation backed by atomics.
// Rendering backends typically wrap their own program/buffer bundles
// instead; Model exists for tests and CPU-only front ends.
type Model struct {
	needsRedraw atomic.Bool

	mu       sync.Mutex
	userData any
}

// NewModel creates a Model with the redraw flag raised, since a freshly
// created drawable has never been presented.
func NewModel() *Model {
	m := &Model{}
	m.needsRedraw.Store(true)
	return m
}

// Invalidate raises the redraw flag.
func (m *Model) Invalidate() {
	m.needsRedraw.Store(true)
}

// NeedsRedraw reports and optionally clears the redraw flag.
func (m *Model) NeedsRedraw(clear bool) bool {
	if clear {
		return m.needsRedraw.Swap(false)
	}
	return m.needsRedraw.Load()
}

// SetUserData stores opaque metadata on the model.
func (m *Model) SetUserData(v any) {
	m.mu.Lock()
	m.userData = v
	m.mu.Unlock()
}

// UserData returns the stored metadata.
func (m *Model) UserData() any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.userData
}

// Ensure Model implements Drawable.
var _ Drawable = (*Model)(nil)
