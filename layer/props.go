package layer

import (
	"log/slog"

	"github.com/google/uuid"

	deck "github.com/ballon3/deck.gl"
)

// Well-known property keys.
const (
	// PropID is the layer's identity within its sibling list.
	PropID = "id"

	// PropData is the layer's data. A string value is treated as a
	// loadable reference (URL) and resolved asynchronously.
	PropData = "data"

	// PropDataComparator optionally overrides equality for the data
	// prop. Value type: Comparator.
	PropDataComparator = "dataComparator"

	// PropUpdateTriggers maps trigger names (usually accessor names)
	// to values; a trigger whose value changes invalidates the
	// corresponding attribute. Value type: map[string]any.
	PropUpdateTriggers = "updateTriggers"

	// PropOnDataLoad is an optional callback invoked after an async
	// data load installs its result. Value type: func(any).
	PropOnDataLoad = "onDataLoad"

	// PropVisible toggles rendering without removing the layer.
	PropVisible = "visible"
)

// TriggerAll is the update-trigger name that invalidates every
// attribute when it changes.
const TriggerAll = "all"

// Comparator overrides default equality for the data prop.
type Comparator func(newData, oldData any) bool

// Props is a layer's property bag. It is resolved (defaulted) once at
// construction and treated as immutable afterwards: reconciliation
// reads it, never writes it.
type Props map[string]any

// ID returns the layer id, or "" if unset.
func (p Props) ID() string {
	id, _ := p[PropID].(string)
	return id
}

// Data returns the raw data prop. Use Layer.Data for the async-resolved
// value.
func (p Props) Data() any {
	return p[PropData]
}

// DataComparator returns the data comparator, or nil.
func (p Props) DataComparator() Comparator {
	switch c := p[PropDataComparator].(type) {
	case Comparator:
		return c
	case func(any, any) bool:
		return c
	default:
		return nil
	}
}

// UpdateTriggers returns the update-trigger map, or nil.
func (p Props) UpdateTriggers() map[string]any {
	t, _ := p[PropUpdateTriggers].(map[string]any)
	return t
}

// OnDataLoad returns the data-load callback, or nil.
func (p Props) OnDataLoad() func(any) {
	cb, _ := p[PropOnDataLoad].(func(any))
	return cb
}

// Visible reports the visible prop; layers default to visible.
func (p Props) Visible() bool {
	if v, ok := p[PropVisible].(bool); ok {
		return v
	}
	return true
}

// Clone returns a shallow copy of the bag.
func (p Props) Clone() Props {
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Snapshot returns the bag as a plain map for inspector notifications.
func (p Props) Snapshot() map[string]any {
	return map[string]any(p.Clone())
}

// Schema validates and defaults a raw property bag. It must be a pure
// function of its input. Behaviors may implement Schema to take full
// control of prop resolution; most implement only DefaultPropser.
type Schema interface {
	Apply(raw Props) Props
}

// DefaultPropser supplies default values merged under the submitted
// props at construction.
type DefaultPropser interface {
	DefaultProps() Props
}

// resolveProps runs the prop-schema step for a new layer: clone the raw
// bag, fill defaults, and guarantee an id. Called exactly once per
// layer construction.
func resolveProps(b Behavior, raw Props) Props {
	var props Props
	if schema, ok := b.(Schema); ok {
		props = schema.Apply(raw)
	} else {
		props = raw.Clone()
		if dp, ok := b.(DefaultPropser); ok {
			for k, v := range dp.DefaultProps() {
				if _, present := props[k]; !present {
					props[k] = v
				}
			}
		}
	}
	if props == nil {
		props = make(Props)
	}
	if props.ID() == "" {
		id := "layer-" + uuid.NewString()
		props[PropID] = id
		deck.Logger().Warn("layer submitted without id; generated one",
			slog.String("id", id))
	}
	return props
}
