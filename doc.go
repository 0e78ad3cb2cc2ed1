// Package deck provides a declarative layer reconciler for GPU-rendered
// visualizations.
//
// # Overview
//
// Applications describe what should be on screen by submitting a list of
// layers every frame. The reconciler matches each submitted layer against
// the previous frame's live layers by id, transfers GPU-backed state from
// old to new, runs lifecycle callbacks, and finalizes layers that no longer
// appear. Composite layers expand into sub-layers that participate in the
// same matching pass, so generated sub-layers keep stable identity across
// frames.
//
// # Quick Start
//
//	import (
//	    deck "github.com/ballon3/deck.gl"
//	    "github.com/ballon3/deck.gl/layer"
//	    "github.com/ballon3/deck.gl/layers"
//	)
//
//	m := layer.NewManager()
//	m.ActivateViewport(&deck.Viewport{ID: "main", Width: 800, Height: 600})
//
//	// Every frame: build fresh layer descriptors and reconcile.
//	err := m.SetLayers([]*layer.Layer{
//	    layers.Scatterplot(layer.Props{"id": "points", "data": pts}),
//	})
//
//	if reason, redraw := m.NeedsRedraw(true); redraw {
//	    // re-render, using m.Layers() as the draw list
//	    _ = reason
//	}
//
// # Architecture
//
// The module is organized into:
//   - deck (this package): shared per-pass context, viewport, error types,
//     logging, and the narrow collaborator contracts (Fetcher, Inspector)
//   - layer: the lifecycle core and the reconciling Manager
//   - layers: concrete layer variants (scatterplot, bitmap, grid)
//   - fetch: HTTP fetch/transform collaborator with response caching
//   - render: rendering-side contracts (drawables, attribute managers,
//     staging targets, device handles)
//
// # Concurrency
//
// Reconciliation is synchronous and single-threaded; callers serialize
// SetLayers invocations (typically one per animation frame). The only
// background activity is asynchronous property loading, which resolves
// string-valued data props into loaded data and installs results under
// last-request-wins semantics.
package deck

// Version information
const (
	// Version is the current version of the library
	Version = "0.4.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 4

	// VersionPatch is the patch version
	VersionPatch = 0
)
