package layer

import (
	stdctx "context"
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"

	deck "github.com/ballon3/deck.gl"
	"github.com/ballon3/deck.gl/render"
)

// InternalState is the GPU-adjacent state a layer owns across frames.
//
// Exactly one InternalState is reachable per live layer id: when an old
// layer is matched to its successor, the pointer is moved (not copied)
// from old to new and the old layer becomes a stale shell.
//
// Change flags and the redraw reason are mutated both synchronously by
// the reconciliation pass and asynchronously by load completions, so
// they are guarded by a mutex. Mutations are monotonic (sticky OR)
// until the pass clears them.
type InternalState struct {
	mu          sync.Mutex
	flags       ChangeFlags
	needsRedraw string

	// asyncProps is keyed by prop name. Load completions touch it from
	// background goroutines.
	asyncProps *xsync.MapOf[string, *AsyncState]

	// owner is the layer currently holding this state; re-pointed on
	// every transfer. Async completions read it to reach callbacks.
	owner atomic.Pointer[Layer]

	// vars is free-form variant state (Layer.SetStateValue). Accessed
	// only from the reconciliation thread.
	vars map[string]any

	drawables  []render.Drawable
	attributes render.AttributeManager

	fetcher deck.Fetcher
	loadCtx stdctx.Context
	stats   *Stats
}

// newInternalState allocates state for a fresh layer.
func newInternalState(owner *Layer, stats *Stats, loadCtx stdctx.Context) *InternalState {
	if loadCtx == nil {
		loadCtx = stdctx.Background()
	}
	s := &InternalState{
		asyncProps: xsync.NewMapOf[string, *AsyncState](),
		vars:       make(map[string]any),
		loadCtx:    loadCtx,
		stats:      stats,
	}
	s.retarget(owner)
	return s
}

// retarget points the state at its (new) owning layer: refreshes the
// fetcher from the owner's context and stamps the ownership tag into
// every drawable's user-data slot.
func (s *InternalState) retarget(owner *Layer) {
	s.owner.Store(owner)
	if owner.context != nil {
		s.fetcher = owner.context.Fetcher
	}
	for _, d := range s.drawables {
		d.SetUserData(owner.id)
	}
}

// Owner returns the layer currently holding this state.
func (s *InternalState) Owner() *Layer {
	return s.owner.Load()
}

// mergeFlags folds delta into the sticky flag record.
func (s *InternalState) mergeFlags(delta ChangeFlags) {
	s.mu.Lock()
	s.flags.Merge(delta)
	s.mu.Unlock()
}

// Flags returns a copy of the current flag record.
func (s *InternalState) Flags() ChangeFlags {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flags.clone()
}

// clearFlags resets the flag record. Called once per cycle, after the
// update pass.
func (s *InternalState) clearFlags() {
	s.mu.Lock()
	s.flags.Clear()
	s.mu.Unlock()
}

// SetNeedsRedraw raises the sticky redraw reason. The first reason per
// cycle wins.
func (s *InternalState) SetNeedsRedraw(reason string) {
	s.mu.Lock()
	if s.needsRedraw == "" {
		s.needsRedraw = reason
	}
	s.mu.Unlock()
}

// needsRedrawReason returns the state-level redraw reason, optionally
// clearing it atomically with the read. Drawable flags are aggregated
// by Layer.NeedsRedraw.
func (s *InternalState) needsRedrawReason(clear bool) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	reason := s.needsRedraw
	if clear {
		s.needsRedraw = ""
	}
	return reason
}

// AddDrawable registers an opaque drawable handle with this state. The
// current owner's id is stamped into its user-data slot.
func (s *InternalState) AddDrawable(d render.Drawable) {
	if d == nil {
		return
	}
	if owner := s.owner.Load(); owner != nil {
		d.SetUserData(owner.id)
	}
	s.drawables = append(s.drawables, d)
}

// Drawables returns the registered drawable handles.
func (s *InternalState) Drawables() []render.Drawable {
	return s.drawables
}

// SetAttributes installs the layer's attribute manager.
func (s *InternalState) SetAttributes(a render.AttributeManager) {
	s.attributes = a
}

// Attributes returns the layer's attribute manager, or nil.
func (s *InternalState) Attributes() render.AttributeManager {
	return s.attributes
}
