package deck

// Viewport describes the visible region a frame is rendered into.
//
// The reconciler never interprets the projection itself; it only needs
// viewport identity to decide when to raise the viewportChanged flag on
// live layers. Coordinate-projection math belongs to the rendering
// front end.
type Viewport struct {
	// ID distinguishes viewports in multi-view setups.
	ID string

	// X, Y are the viewport origin in device-independent pixels.
	X, Y float64

	// Width, Height are the viewport extent in device-independent pixels.
	Width, Height float64

	// Zoom is the front end's zoom level. Stored for identity
	// comparison only.
	Zoom float64
}

// Equal reports whether two viewports describe the same visible region.
// A nil viewport is only equal to another nil viewport.
func (v *Viewport) Equal(other *Viewport) bool {
	if v == nil || other == nil {
		return v == other
	}
	return v.ID == other.ID &&
		v.X == other.X && v.Y == other.Y &&
		v.Width == other.Width && v.Height == other.Height &&
		v.Zoom == other.Zoom
}
