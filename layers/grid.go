package layers

import (
	"fmt"
	"math"
	"sort"

	"github.com/ballon3/deck.gl/layer"
)

// DefaultCellSize is the grid cell edge length in data units.
const DefaultCellSize = 100.0

// GridBehavior is a composite variant: it buckets point data into
// square cells and yields one scatterplot sub-layer per occupied cell.
// Sub-layer ids are derived from cell coordinates, so a cell that
// stays occupied across frames keeps its instance (and its GPU state)
// through reconciliation.
type GridBehavior struct{}

// Grid constructs a grid layer.
func Grid(props layer.Props) *layer.Layer {
	return layer.New(&GridBehavior{}, props)
}

// DefaultProps supplies the variant's defaults.
func (*GridBehavior) DefaultProps() layer.Props {
	return layer.Props{
		"cellSize": DefaultCellSize,
		"visible":  true,
	}
}

// InitializeState has nothing to allocate; the sub-layers own all
// drawable state.
func (*GridBehavior) InitializeState(l *layer.Layer) error {
	return nil
}

// ShouldUpdateState uses the stock policy.
func (*GridBehavior) ShouldUpdateState(u layer.UpdateParams) bool {
	return layer.DefaultShouldUpdate(u)
}

// gridCell is one occupied cell with a stable id and its bucketed
// points.
type gridCell struct {
	id     string
	points []Point
}

// UpdateState rebuilds the cell partition when the data changed. The
// partition is cached in layer state so SubLayers hands out the same
// point slices every frame, keeping sub-layer data identity stable
// until the data actually changes.
func (*GridBehavior) UpdateState(u layer.UpdateParams) error {
	if !u.Changes.DataChanged() && u.Layer.StateValue(stateCells) != nil {
		return nil
	}

	cellSize := floatProp(u.Props, "cellSize", DefaultCellSize)
	if cellSize <= 0 {
		return fmt.Errorf("grid layer %s: cellSize must be positive, got %v", u.Layer.ID(), cellSize)
	}

	buckets := make(map[string][]Point)
	for _, p := range PointsFrom(u.Layer.Data()) {
		i := int(math.Floor(p.X / cellSize))
		j := int(math.Floor(p.Y / cellSize))
		key := fmt.Sprintf("cell-%d-%d", i, j)
		buckets[key] = append(buckets[key], p)
	}

	cells := make([]gridCell, 0, len(buckets))
	for id, points := range buckets {
		cells = append(cells, gridCell{id: id, points: points})
	}
	sort.Slice(cells, func(a, b int) bool { return cells[a].id < cells[b].id })

	u.Layer.SetStateValue(stateCells, cells)
	return nil
}

// FinalizeState drops the cached partition.
func (*GridBehavior) FinalizeState(l *layer.Layer) error {
	l.SetStateValue(stateCells, nil)
	return nil
}

// SubLayers yields one scatterplot per occupied cell, in stable cell
// order.
func (*GridBehavior) SubLayers(l *layer.Layer) []*layer.Layer {
	cells, _ := l.StateValue(stateCells).([]gridCell)
	subs := make([]*layer.Layer, 0, len(cells))
	for _, cell := range cells {
		subs = append(subs, Scatterplot(layer.Props{
			"id":   cell.id,
			"data": cell.points,
		}))
	}
	return subs
}

// floatProp reads a numeric prop that may arrive as float64 or int.
func floatProp(p layer.Props, key string, fallback float64) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return fallback
	}
}

// Ensure the behavior satisfies the capability contracts.
var (
	_ layer.Behavior       = (*GridBehavior)(nil)
	_ layer.SubLayerer     = (*GridBehavior)(nil)
	_ layer.DefaultPropser = (*GridBehavior)(nil)
)
