package layers

import (
	"bytes"
	"fmt"
	"image"

	// Register decoders for the formats bitmap data commonly arrives in.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"

	"github.com/ballon3/deck.gl/layer"
	"github.com/ballon3/deck.gl/render"
)

// Default staging dimensions for decoded bitmaps. Backends upload the
// staging pixmap to a texture of the same size.
const (
	DefaultStagingWidth  = 256
	DefaultStagingHeight = 256
)

// BitmapBehavior displays a single image. The data prop is typically a
// URL; the async loader delivers raw bytes which UpdateState decodes
// and scales into a staging pixmap for texture upload.
type BitmapBehavior struct{}

// Bitmap constructs a bitmap layer.
func Bitmap(props layer.Props) *layer.Layer {
	return layer.New(&BitmapBehavior{}, props)
}

// DefaultProps supplies the variant's defaults.
func (*BitmapBehavior) DefaultProps() layer.Props {
	return layer.Props{
		"stagingWidth":  DefaultStagingWidth,
		"stagingHeight": DefaultStagingHeight,
		"visible":       true,
	}
}

// InitializeState allocates the drawable handle.
func (*BitmapBehavior) InitializeState(l *layer.Layer) error {
	model := render.NewModel()
	l.State().AddDrawable(model)
	l.SetStateValue(stateModel, model)
	return nil
}

// ShouldUpdateState reacts to data changes only; bitmap placement is
// uniform-driven and needs no state rebuild on other prop changes.
func (*BitmapBehavior) ShouldUpdateState(u layer.UpdateParams) bool {
	return u.Changes.DataChanged()
}

// UpdateState decodes the loaded image bytes and scales them into the
// staging pixmap.
func (*BitmapBehavior) UpdateState(u layer.UpdateParams) error {
	l := u.Layer
	raw, ok := l.Data().([]byte)
	if !ok {
		// Nothing decodable yet (load still in flight, or inline
		// non-image data). Keep the previous staging contents.
		return nil
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("bitmap layer %s: decoding image: %w", l.ID(), err)
	}

	w := intProp(u.Props, "stagingWidth", DefaultStagingWidth)
	h := intProp(u.Props, "stagingHeight", DefaultStagingHeight)
	staging := render.NewPixmap(w, h)
	xdraw.ApproxBiLinear.Scale(staging.Image(), staging.Image().Bounds(), src, src.Bounds(), xdraw.Src, nil)

	l.SetStateValue(stateStaging, staging)
	if m, ok := l.StateValue(stateModel).(*render.Model); ok {
		m.Invalidate()
	}
	return nil
}

// FinalizeState drops the staging pixmap.
func (*BitmapBehavior) FinalizeState(l *layer.Layer) error {
	l.SetStateValue(stateStaging, nil)
	return nil
}

// Staging returns a bitmap layer's staging pixmap, or nil before the
// first decode.
func Staging(l *layer.Layer) *render.Pixmap {
	p, _ := l.StateValue(stateStaging).(*render.Pixmap)
	return p
}

// intProp reads an integer prop that may arrive as int or float64
// (JSON numbers decode as float64).
func intProp(p layer.Props, key string, fallback int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return fallback
	}
}

// Ensure the behavior satisfies the capability contracts.
var (
	_ layer.Behavior       = (*BitmapBehavior)(nil)
	_ layer.DefaultPropser = (*BitmapBehavior)(nil)
)
