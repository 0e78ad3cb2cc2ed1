package layers

import (
	"testing"

	deck "github.com/ballon3/deck.gl"
	"github.com/ballon3/deck.gl/layer"
	"github.com/ballon3/deck.gl/render"
)

func newTestManager(opts ...layer.ManagerOption) *layer.Manager {
	m := layer.NewManager(opts...)
	m.ActivateViewport(&deck.Viewport{ID: "test", Width: 640, Height: 480})
	return m
}

func TestScatterplotLifecycle(t *testing.T) {
	m := newTestManager()
	points := []Point{{X: 1, Y: 2, Radius: 3}, {X: 4, Y: 5}}

	if err := m.SetLayers(Scatterplot(layer.Props{"id": "pts", "data": points})); err != nil {
		t.Fatalf("SetLayers: %v", err)
	}

	l := m.Layers("pts")[0]
	if got := l.StateValue(stateNumInstances); got != 2 {
		t.Errorf("numInstances = %v, want 2", got)
	}
	if got := l.Props()["radiusScale"]; got != 1.0 {
		t.Errorf("radiusScale default = %v, want 1.0", got)
	}
	if len(l.State().Drawables()) != 1 {
		t.Fatalf("got %d drawables, want 1", len(l.State().Drawables()))
	}
	if l.State().Attributes() == nil {
		t.Fatal("attribute manager not installed")
	}

	// Fresh data counts as changed, so everything starts stale.
	attrs := l.State().Attributes().(*render.Attributes)
	if _, all := attrs.Stale(); !all {
		t.Error("initial data should invalidate all attributes")
	}
}

func TestScatterplotDataSwap(t *testing.T) {
	m := newTestManager()
	first := []Point{{X: 1, Y: 1}}
	if err := m.SetLayers(Scatterplot(layer.Props{"id": "pts", "data": first})); err != nil {
		t.Fatal(err)
	}
	model := m.Layers("pts")[0].StateValue(stateModel).(*render.Model)
	model.NeedsRedraw(true)

	second := []Point{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}}
	if err := m.SetLayers(Scatterplot(layer.Props{"id": "pts", "data": second})); err != nil {
		t.Fatal(err)
	}

	l := m.Layers("pts")[0]
	if got := l.StateValue(stateNumInstances); got != 3 {
		t.Errorf("numInstances = %v, want 3", got)
	}
	if got := l.StateValue(stateModel); got != model {
		t.Error("model handle recreated instead of inherited")
	}
	if !model.NeedsRedraw(false) {
		t.Error("data swap should invalidate the model")
	}
}

func TestPointsFrom(t *testing.T) {
	t.Run("typed slice passes through", func(t *testing.T) {
		points := []Point{{X: 1}}
		got := PointsFrom(points)
		if len(got) != 1 || got[0].X != 1 {
			t.Errorf("PointsFrom = %v", got)
		}
	})

	t.Run("decoded JSON rows are coerced", func(t *testing.T) {
		rows := []any{
			map[string]any{"x": 1.0, "y": 2.0, "radius": 3.0},
			"not a row",
			map[string]any{"x": 4.0},
		}
		got := PointsFrom(rows)
		if len(got) != 2 {
			t.Fatalf("got %d points, want 2", len(got))
		}
		if got[0] != (Point{X: 1, Y: 2, Radius: 3}) {
			t.Errorf("row 0 = %+v", got[0])
		}
		if got[1] != (Point{X: 4}) {
			t.Errorf("row 1 = %+v", got[1])
		}
	})

	t.Run("unsupported shapes yield nothing", func(t *testing.T) {
		if got := PointsFrom("nope"); got != nil {
			t.Errorf("PointsFrom = %v, want nil", got)
		}
		if got := PointsFrom(nil); got != nil {
			t.Errorf("PointsFrom(nil) = %v, want nil", got)
		}
	})
}
