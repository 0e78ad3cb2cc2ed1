package layers

import (
	"github.com/ballon3/deck.gl/layer"
	"github.com/ballon3/deck.gl/render"
)

// Point is one scatterplot datum.
type Point struct {
	X, Y   float64
	Radius float64
}

// State keys used by the variants in this package.
const (
	stateModel        = "model"
	stateAttributes   = "attributes"
	stateNumInstances = "numInstances"
	stateStaging      = "staging"
	stateCells        = "cells"
)

// ScatterplotBehavior renders point data. Update triggers named after
// the accessors ("getPosition", "getRadius", "getColor") invalidate
// the corresponding attributes.
type ScatterplotBehavior struct{}

// Scatterplot constructs a scatterplot layer.
func Scatterplot(props layer.Props) *layer.Layer {
	return layer.New(&ScatterplotBehavior{}, props)
}

// DefaultProps supplies the variant's defaults.
func (*ScatterplotBehavior) DefaultProps() layer.Props {
	return layer.Props{
		"radiusScale": 1.0,
		"visible":     true,
	}
}

// InitializeState allocates the drawable handle and attribute manager.
func (*ScatterplotBehavior) InitializeState(l *layer.Layer) error {
	model := render.NewModel()
	attrs := render.NewAttributes()
	l.State().AddDrawable(model)
	l.State().SetAttributes(attrs)
	l.SetStateValue(stateModel, model)
	l.SetStateValue(stateAttributes, attrs)
	return nil
}

// ShouldUpdateState uses the stock policy.
func (*ScatterplotBehavior) ShouldUpdateState(u layer.UpdateParams) bool {
	return layer.DefaultShouldUpdate(u)
}

// UpdateState recounts instances and invalidates the drawable when the
// data changed.
func (*ScatterplotBehavior) UpdateState(u layer.UpdateParams) error {
	l := u.Layer
	points := PointsFrom(l.Data())
	l.SetStateValue(stateNumInstances, len(points))

	if u.Changes.DataChanged() {
		if m, ok := l.StateValue(stateModel).(*render.Model); ok {
			m.Invalidate()
		}
	}
	return nil
}

// FinalizeState releases variant state. The CPU-backed model has
// nothing to free; GPU-backed variants release buffers here.
func (*ScatterplotBehavior) FinalizeState(l *layer.Layer) error {
	return nil
}

// PointsFrom coerces layer data into a point slice. Supported shapes:
// []Point, []any of map[string]any with "x"/"y" (the shape JSON data
// decodes into), or nothing.
func PointsFrom(data any) []Point {
	switch v := data.(type) {
	case []Point:
		return v
	case []any:
		out := make([]Point, 0, len(v))
		for _, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			p := Point{}
			if x, ok := m["x"].(float64); ok {
				p.X = x
			}
			if y, ok := m["y"].(float64); ok {
				p.Y = y
			}
			if r, ok := m["radius"].(float64); ok {
				p.Radius = r
			}
			out = append(out, p)
		}
		return out
	default:
		return nil
	}
}

// Ensure the behavior satisfies the capability contracts.
var (
	_ layer.Behavior       = (*ScatterplotBehavior)(nil)
	_ layer.DefaultPropser = (*ScatterplotBehavior)(nil)
)
