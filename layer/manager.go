package layer

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"strings"

	deck "github.com/ballon3/deck.gl"
	"github.com/ballon3/deck.gl/render"
)

// ManagerOption configures a Manager during creation.
type ManagerOption func(*Manager)

// WithFetcher installs the fetch/transform collaborator used to
// resolve string-valued data props. Without one, string data values
// pass through unchanged and no async loading happens.
func WithFetcher(f deck.Fetcher) ManagerOption {
	return func(m *Manager) { m.fetcher = f }
}

// WithInspector installs an introspection collaborator receiving
// layer-created/updated/removed notifications.
func WithInspector(i deck.Inspector) ManagerOption {
	return func(m *Manager) { m.inspector = i }
}

// WithDevice installs the host's GPU device handle, passed through to
// layer state untouched.
func WithDevice(d render.DeviceHandle) ManagerOption {
	return func(m *Manager) { m.device = d }
}

// WithUniforms sets the process-wide uniforms forwarded in the shared
// context.
func WithUniforms(u map[string]any) ManagerOption {
	return func(m *Manager) { m.uniforms = u }
}

// WithLoadContext sets the context.Context async loads run under.
// Cancelling it aborts in-flight fetches on shutdown.
func WithLoadContext(ctx stdctx.Context) ManagerOption {
	return func(m *Manager) {
		if ctx != nil {
			m.loadCtx = ctx
		}
	}
}

// Manager owns the full layer list across frames and reconciles each
// newly submitted list against it.
//
// Manager methods are not safe for concurrent use; the caller
// serializes reconciliation, typically one SetLayers per animation
// frame. Stats may be read concurrently (they are atomic).
type Manager struct {
	viewport *deck.Viewport
	context  *deck.Context

	// layers is the authoritative flat list after the last pass,
	// including expanded sub-layers.
	layers []*Layer

	// last is the flattened input of the preceding SetLayers call,
	// kept for the reference-identity no-op check.
	last []*Layer

	needsRedraw string
	needsUpdate string

	fetcher   deck.Fetcher
	inspector deck.Inspector
	device    render.DeviceHandle
	uniforms  map[string]any
	loadCtx   stdctx.Context

	stats *Stats
}

// NewManager creates an empty layer manager.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		loadCtx: stdctx.Background(),
		stats:   &Stats{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Stats returns the manager's counters. Safe to read from any
// goroutine; see StatsCollector for prometheus integration.
func (m *Manager) Stats() *Stats { return m.stats }

// ActivateViewport installs the viewport layers reconcile against.
// Activating a viewport that differs from the current one raises the
// viewportChanged flag on every live layer and requests a redraw.
// A viewport must be activated before the first SetLayers call.
func (m *Manager) ActivateViewport(v *deck.Viewport) {
	if v == nil {
		return
	}
	changed := !v.Equal(m.viewport)
	m.viewport = v
	if !changed {
		return
	}
	deck.Logger().Info("viewport activated", slog.String("viewport", v.ID))
	for _, l := range m.layers {
		l.SetChangeFlags(ChangeFlags{Viewport: "viewport changed: " + v.ID})
	}
	m.SetNeedsRedraw("viewport changed")
}

// Flatten normalizes a submitted layer list: nil entries are dropped
// and nested slices ([]*Layer, []any) are expanded depth-first.
// Entries of any other type are ignored with a warning.
func Flatten(items ...any) []*Layer {
	out := []*Layer{}
	flattenInto(&out, items)
	return out
}

func flattenInto(out *[]*Layer, items []any) {
	for _, item := range items {
		switch v := item.(type) {
		case nil:
		case *Layer:
			if v != nil {
				*out = append(*out, v)
			}
		case []*Layer:
			for _, l := range v {
				if l != nil {
					*out = append(*out, l)
				}
			}
		case []any:
			flattenInto(out, v)
		default:
			deck.Logger().Warn("ignoring non-layer entry in layer list",
				slog.String("type", fmt.Sprintf("%T", item)))
		}
	}
}

// SetLayers reconciles a newly submitted layer list against the
// previous frame's live layers.
//
// Submitting a list whose flattened entries are pointer-identical to
// the preceding call's is a no-op, so a rendering front end may
// re-invoke with an unchanged list each frame for free.
//
// All layers are given a chance to match and update even when one of
// them fails; the first error encountered anywhere in the pass is
// returned after the pass completes. A returned error therefore means
// "at least one layer misbehaved", not "nothing happened".
func (m *Manager) SetLayers(layers ...any) error {
	if m.viewport == nil {
		return &deck.PreconditionError{Op: "SetLayers", Missing: "an activated viewport"}
	}

	flat := Flatten(layers...)
	if m.last != nil && sameLayerList(flat, m.last) {
		return nil
	}
	m.last = flat
	m.setNeedsUpdate("layers changed")

	// Fresh context snapshot for this pass, stamped on every
	// top-level layer; sub-layers inherit it during expansion.
	m.context = m.newContext()
	for _, l := range flat {
		l.context = m.context
	}

	m.stats.Reconciles.Add(1)
	err := m.updateLayers(flat)
	m.stats.LiveLayers.Store(int64(len(m.layers)))
	return err
}

// updateLayers matches the new list against the previous one, expands
// composites, and finalizes unmatched survivors.
func (m *Manager) updateLayers(newLayers []*Layer) error {
	oldMap := make(map[string]*Layer, len(m.layers))
	for _, old := range m.layers {
		if _, dup := oldMap[old.id]; dup {
			deck.Logger().Warn("multiple old layers with same id",
				slog.String("id", old.id))
			continue
		}
		oldMap[old.id] = old
	}

	out := make([]*Layer, 0, len(newLayers))
	var firstErr error
	m.matchSublayers(newLayers, oldMap, &out, &firstErr)
	finalizeErr := m.finalizeOldLayers(oldMap)

	m.layers = out

	// An initialize/update error takes priority over a finalize error.
	if firstErr != nil {
		return firstErr
	}
	return finalizeErr
}

// matchSublayers walks one (sub-)list depth-first. Matched and fresh
// layers alike are appended to out so a failing layer keeps its
// position for a later retry; composite layers recurse into the same
// candidate map, which is what gives generated sub-layers stable
// cross-frame identity.
func (m *Manager) matchSublayers(newLayers []*Layer, oldMap map[string]*Layer, out *[]*Layer, firstErr *error) {
	for _, l := range newLayers {
		old, seen := oldMap[l.id]
		if seen && old == nil {
			deck.Logger().Warn("duplicate layer id in new layer list; treating as a fresh layer",
				slog.String("id", l.id))
		}
		// Mark the id consumed: a later descriptor reusing it cannot
		// match the same predecessor.
		oldMap[l.id] = nil

		var err error
		var phase deck.Phase
		if old == nil {
			phase = deck.PhaseInitialize
			err = l.initialize(m.context, m.stats, m.loadCtx)
			m.stats.Initialized.Add(1)
		} else {
			phase = deck.PhaseUpdate
			l.transferState(old)
			err = l.update()
			m.stats.Matched.Add(1)
		}
		if err != nil {
			m.stats.LayerErrors.Add(1)
			deck.Logger().Warn("layer error during reconciliation",
				slog.String("layer", l.id),
				slog.String("phase", phase.String()),
				slog.Any("error", err))
			if *firstErr == nil {
				*firstErr = &deck.LayerError{LayerID: l.id, Phase: phase, Err: err}
			}
		}

		*out = append(*out, l)

		if l.IsComposite() {
			subs, subErr := l.subLayers()
			if subErr != nil {
				m.stats.LayerErrors.Add(1)
				deck.Logger().Warn("composite layer failed to generate sub-layers",
					slog.String("layer", l.id),
					slog.Any("error", subErr))
				if *firstErr == nil {
					*firstErr = &deck.LayerError{LayerID: l.id, Phase: deck.PhaseUpdate, Err: subErr}
				}
				continue
			}
			m.matchSublayers(subs, oldMap, out, firstErr)
		}
	}
}

// finalizeOldLayers retires every predecessor that found no successor.
// A finalize failure is recorded but does not stop finalizing the rest.
func (m *Manager) finalizeOldLayers(oldMap map[string]*Layer) error {
	var firstErr error
	for id, old := range oldMap {
		if old == nil {
			continue // matched
		}
		err := old.finalize()
		m.stats.Finalized.Add(1)
		if err != nil {
			m.stats.LayerErrors.Add(1)
			deck.Logger().Warn("layer error during finalization",
				slog.String("layer", id),
				slog.Any("error", err))
			if firstErr == nil {
				firstErr = &deck.LayerError{LayerID: id, Phase: deck.PhaseFinalize, Err: err}
			}
		}
	}
	return firstErr
}

// Layers returns the current live post-reconciliation flat list.
// With ids given, the result is filtered to layers whose id equals a
// filter or begins with it followed by the sub-layer separator, which
// retrieves a composite layer's expanded sub-layers by prefix.
func (m *Manager) Layers(ids ...string) []*Layer {
	if len(ids) == 0 {
		return append([]*Layer(nil), m.layers...)
	}
	var out []*Layer
	for _, l := range m.layers {
		for _, id := range ids {
			if l.id == id || strings.HasPrefix(l.id, id+"#") {
				out = append(out, l)
				break
			}
		}
	}
	return out
}

// SetNeedsRedraw raises the manager-level sticky redraw reason. The
// first reason per cycle wins.
func (m *Manager) SetNeedsRedraw(reason string) {
	if m.needsRedraw == "" {
		m.needsRedraw = reason
	}
}

// NeedsRedraw reports whether anything (the manager or any live layer
// or drawable) wants a redraw, with a human-readable reason. When
// clear is true every flag is reset atomically with the read.
func (m *Manager) NeedsRedraw(clear bool) (string, bool) {
	reason := m.needsRedraw
	if clear {
		m.needsRedraw = ""
	}
	for _, l := range m.layers {
		// Poll every layer so a clearing read clears them all.
		if r, ok := l.NeedsRedraw(clear); ok && reason == "" {
			reason = r
		}
	}
	return reason, reason != ""
}

// setNeedsUpdate raises the sticky "layer list needs reconciling"
// reason.
func (m *Manager) setNeedsUpdate(reason string) {
	if m.needsUpdate == "" {
		m.needsUpdate = reason
	}
}

// NeedsUpdate reports whether the layer list changed since the last
// clearing read.
func (m *Manager) NeedsUpdate(clear bool) (string, bool) {
	reason := m.needsUpdate
	if clear {
		m.needsUpdate = ""
	}
	return reason, reason != ""
}

// OverrideProp clones the last submitted descriptor list, replaces one
// prop on the top-level layer with the given id, and re-runs
// reconciliation. This is the entry point debugging front ends use to
// poke at a running visualization without owning the descriptor list.
func (m *Manager) OverrideProp(id, key string, value any) error {
	if m.last == nil {
		return &deck.PreconditionError{Op: "OverrideProp", Missing: "a previous SetLayers call"}
	}
	found := false
	clones := make([]any, 0, len(m.last))
	for _, l := range m.last {
		props := l.props.Clone()
		if l.id == id {
			props[key] = value
			found = true
		}
		clones = append(clones, New(l.behavior, props))
	}
	if !found {
		return fmt.Errorf("layer: no top-level layer with id %q", id)
	}
	return m.SetLayers(clones...)
}

// Finalize retires every live layer. Call once when tearing down the
// manager; afterwards the manager is empty but reusable.
func (m *Manager) Finalize() error {
	var firstErr error
	for _, l := range m.layers {
		if l.lifecycle == LifecycleFinalized || l.lifecycle == LifecycleAwaitingFinalization {
			continue
		}
		err := l.finalize()
		m.stats.Finalized.Add(1)
		if err != nil && firstErr == nil {
			firstErr = &deck.LayerError{LayerID: l.id, Phase: deck.PhaseFinalize, Err: err}
		}
	}
	m.layers = nil
	m.last = nil
	m.stats.LiveLayers.Store(0)
	return firstErr
}

// newContext builds the shared context snapshot for one pass.
func (m *Manager) newContext() *deck.Context {
	return &deck.Context{
		Viewport:  m.viewport,
		Uniforms:  m.uniforms,
		Fetcher:   m.fetcher,
		Inspector: m.inspector,
		Device:    m.device,
	}
}

// sameLayerList reports element-wise pointer identity, the Go analog
// of reference-identical descriptor lists.
func sameLayerList(a, b []*Layer) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
