package layer

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"strings"

	deck "github.com/ballon3/deck.gl"
)

// Behavior is the capability contract a layer variant supplies. The
// lifecycle core calls these hooks; it never subclasses.
type Behavior interface {
	// InitializeState allocates variant state. Called once, right
	// after InternalState is allocated for a fresh layer.
	InitializeState(l *Layer) error

	// ShouldUpdateState decides whether UpdateState runs this cycle.
	ShouldUpdateState(u UpdateParams) bool

	// UpdateState reacts to the changes described by u.
	UpdateState(u UpdateParams) error

	// FinalizeState releases variant state. Called once, when the
	// layer retires.
	FinalizeState(l *Layer) error
}

// SubLayerer marks a composite variant: instead of drawing, it yields
// further layers that participate in matching like any other layer.
type SubLayerer interface {
	SubLayers(l *Layer) []*Layer
}

// UpdateParams carries everything an update hook may consult.
type UpdateParams struct {
	// Layer is the instance being updated.
	Layer *Layer

	// Props and OldProps are the current and previous resolved bags.
	// OldProps is empty on the first update.
	Props    Props
	OldProps Props

	// Changes is a snapshot of the change flags driving this update.
	Changes ChangeFlags

	// Context is the shared per-pass context.
	Context *deck.Context
}

// DefaultShouldUpdate is the stock ShouldUpdateState policy: update
// when props, data or an update trigger changed. Variants that want
// viewport-driven updates add u.Changes.ViewportChanged themselves.
func DefaultShouldUpdate(u UpdateParams) bool {
	return u.Changes.PropsOrDataChanged()
}

// SubLayerID builds the id of a generated sub-layer. The "#" separator
// is what prefix queries on the manager key off.
func SubLayerID(parentID, childID string) string {
	return parentID + "#" + childID
}

// Layer is a single layer descriptor and, once reconciled, the live
// instance representing it across frames.
//
// The application constructs fresh layers every frame; the Manager
// decides which become live instances and which inherit state from a
// predecessor. After a pass, layers returned by Manager.Layers are the
// authoritative instances.
type Layer struct {
	id        string
	props     Props
	oldProps  Props
	lifecycle Lifecycle
	context   *deck.Context
	internal  *InternalState
	behavior  Behavior
	parent    *Layer
}

// New constructs a layer descriptor from a behavior and a raw prop bag.
// The prop-schema step (defaults, id generation) runs here, once.
func New(behavior Behavior, props Props) *Layer {
	resolved := resolveProps(behavior, props)
	return &Layer{
		id:       resolved.ID(),
		props:    resolved,
		behavior: behavior,
	}
}

// ID returns the layer's identity.
func (l *Layer) ID() string { return l.id }

// Props returns the resolved property bag. Treat as read-only.
func (l *Layer) Props() Props { return l.props }

// OldProps returns the previous generation's bag, or nil for a fresh
// layer.
func (l *Layer) OldProps() Props { return l.oldProps }

// Lifecycle returns the current lifecycle state.
func (l *Layer) Lifecycle() Lifecycle { return l.lifecycle }

// Context returns the shared per-pass context stamped by the manager.
func (l *Layer) Context() *deck.Context { return l.context }

// Behavior returns the variant capability implementation.
func (l *Layer) Behavior() Behavior { return l.behavior }

// Parent returns the composite layer that generated this one, or nil
// for a top-level layer.
func (l *Layer) Parent() *Layer { return l.parent }

// Root returns the top-level ancestor (self for top-level layers).
func (l *Layer) Root() *Layer {
	root := l
	for root.parent != nil {
		root = root.parent
	}
	return root
}

// State returns the layer's internal state, or nil before
// initialization and after a transfer away.
func (l *Layer) State() *InternalState { return l.internal }

// IsComposite reports whether the layer yields sub-layers.
func (l *Layer) IsComposite() bool {
	_, ok := l.behavior.(SubLayerer)
	return ok
}

// Data returns the layer's data: the async-resolved value when the
// data prop is under async management, the raw prop otherwise. Before
// the first load resolves this is EmptyData.
func (l *Layer) Data() any {
	if l.internal != nil {
		if v, ok := l.internal.asyncValue(PropData); ok {
			return v
		}
	}
	return l.props.Data()
}

// SetStateValue stores free-form variant state under a key. Only valid
// after initialization; reconciliation-thread use only.
func (l *Layer) SetStateValue(key string, v any) {
	if l.internal != nil {
		l.internal.vars[key] = v
	}
}

// StateValue returns free-form variant state stored by SetStateValue.
func (l *Layer) StateValue(key string) any {
	if l.internal == nil {
		return nil
	}
	return l.internal.vars[key]
}

// SetChangeFlags folds delta into the layer's sticky flag record.
func (l *Layer) SetChangeFlags(delta ChangeFlags) {
	if l.internal == nil {
		return
	}
	l.internal.mergeFlags(delta)
	if delta.SomethingChanged() {
		deck.Logger().Debug("change flags set",
			slog.String("layer", l.id),
			slog.String("flags", delta.String()))
	}
}

// ChangeFlags returns a copy of the current flag record.
func (l *Layer) ChangeFlags() ChangeFlags {
	if l.internal == nil {
		return ChangeFlags{}
	}
	return l.internal.Flags()
}

// SetNeedsRedraw raises the layer's sticky redraw reason.
func (l *Layer) SetNeedsRedraw(reason string) {
	if l.internal != nil {
		l.internal.SetNeedsRedraw(reason)
	}
}

// NeedsRedraw reports whether the layer (or any drawable it owns)
// needs a redraw, with a human-readable reason. When clear is true all
// flags are reset atomically with the read.
func (l *Layer) NeedsRedraw(clear bool) (string, bool) {
	if l.internal == nil {
		return "", false
	}
	reason := l.internal.needsRedrawReason(clear)
	for _, d := range l.internal.Drawables() {
		// Poll every drawable so a clearing read clears them all.
		if d.NeedsRedraw(clear) && reason == "" {
			reason = "drawable of " + l.id + " changed"
		}
	}
	return reason, reason != ""
}

// initialize allocates state for a fresh layer and runs its first
// update pass. A hook failure is caught and returned, not thrown: the
// lifecycle still advances to Initialized so the layer remains
// enumerable, just potentially incomplete.
func (l *Layer) initialize(ctx *deck.Context, stats *Stats, loadCtx stdctx.Context) error {
	l.context = ctx
	l.internal = newInternalState(l, stats, loadCtx)

	initErr := capture(func() error { return l.behavior.InitializeState(l) })

	// Nothing to compare against: every category counts as changed.
	l.internal.mergeFlags(ChangeFlags{
		Data:     "initial",
		Props:    "initial",
		Viewport: "initial",
	})
	l.internal.setAsyncProp(PropData, l.props.Data())

	updateErr := l.update()
	l.lifecycle = LifecycleInitialized

	if ctx != nil && ctx.Inspector != nil {
		ctx.Inspector.LayerInitialized(l.id, l.props.Snapshot())
	}
	if initErr != nil {
		return initErr
	}
	return updateErr
}

// transferState moves the predecessor's InternalState into this layer
// and diffs the two prop generations. The predecessor becomes a stale
// shell awaiting GC.
func (l *Layer) transferState(old *Layer) {
	l.internal = old.internal
	old.internal = nil
	l.oldProps = old.props

	l.internal.retarget(l)
	l.lifecycle = LifecycleMatched
	old.lifecycle = LifecycleAwaitingGC

	l.diffProps()
}

// diffProps diffs the current props against oldProps and records the
// resulting flags. When the data prop changed to a loadable reference,
// the data flag is deferred: it is raised by the load completion, so
// consumers never see "changed" before new data actually exists.
func (l *Layer) diffProps() {
	flags := diffProps(l.props, l.oldProps)
	if flags.DataChanged() {
		if url, ok := l.props.Data().(string); ok && l.internal.fetcher != nil {
			flags.Data = ""
			l.internal.setAsyncProp(PropData, url)
		} else {
			l.internal.setAsyncProp(PropData, l.props.Data())
		}
	}
	l.SetChangeFlags(flags)
}

// update runs one update pass: consult ShouldUpdateState, run
// UpdateState, then the framework-side bookkeeping. Flags are cleared
// unconditionally at the end, even when the hook fails; the error is
// returned, never thrown.
func (l *Layer) update() error {
	flags := l.internal.Flags()
	params := UpdateParams{
		Layer:    l,
		Props:    l.props,
		OldProps: l.oldProps,
		Changes:  flags,
		Context:  l.context,
	}

	var err error
	if l.behavior.ShouldUpdateState(params) {
		err = capture(func() error { return l.behavior.UpdateState(params) })
		l.postUpdate(flags)
	}

	l.internal.clearFlags()

	if l.context != nil && l.context.Inspector != nil {
		l.context.Inspector.LayerUpdated(l.id, l.props.Snapshot())
	}
	return err
}

// postUpdate is the framework-side bookkeeping after a state update:
// attribute invalidation from data/trigger changes, and raising the
// redraw flag.
func (l *Layer) postUpdate(flags ChangeFlags) {
	if attrs := l.internal.Attributes(); attrs != nil {
		if flags.DataChanged() {
			attrs.InvalidateAll()
		} else {
			for name := range flags.UpdateTriggers {
				if name == TriggerAll {
					attrs.InvalidateAll()
				} else {
					attrs.Invalidate(name)
				}
			}
		}
	}
	if flags.SomethingChanged() {
		l.internal.SetNeedsRedraw("layer " + l.id + " updated (" + flags.String() + ")")
	}
}

// finalize retires the layer. Calling it twice on the same instance is
// a programming error and panics; hook failures are caught and
// returned.
func (l *Layer) finalize() error {
	if l.lifecycle == LifecycleAwaitingFinalization || l.lifecycle == LifecycleFinalized {
		panic("layer: finalize called twice on layer " + l.id)
	}
	l.lifecycle = LifecycleAwaitingFinalization
	err := capture(func() error { return l.behavior.FinalizeState(l) })
	l.lifecycle = LifecycleFinalized

	if l.context != nil && l.context.Inspector != nil {
		l.context.Inspector.LayerFinalized(l.id)
	}
	return err
}

// subLayers asks a composite variant for its generated layers, stamps
// parentage and context on each, and namespaces their ids under the
// parent id.
func (l *Layer) subLayers() ([]*Layer, error) {
	sl, ok := l.behavior.(SubLayerer)
	if !ok {
		return nil, nil
	}
	var subs []*Layer
	err := capture(func() error {
		subs = sl.SubLayers(l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := subs[:0]
	for _, sub := range subs {
		if sub == nil {
			continue
		}
		sub.parent = l
		sub.context = l.context
		if !strings.HasPrefix(sub.id, l.id+"#") {
			sub.id = SubLayerID(l.id, sub.id)
			sub.props[PropID] = sub.id
		}
		out = append(out, sub)
	}
	return out, nil
}

// capture invokes fn, converting a panic into an error so one bad
// layer cannot unwind the surrounding reconciliation walk.
func capture(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
