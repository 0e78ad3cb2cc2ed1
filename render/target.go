// Copyright 2026 The deck.gl-go Authors
// SPDX-License-Identifier: MIT

package render

import (
	"image"

	"github.com/gogpu/gputypes"
)

// Target is a destination layers can stage pixel data into before the
// rendering backend uploads it to the GPU.
//
// Targets may be CPU-backed (Pixmap) or wrap backend textures; the
// reconciler only ever sees the interface.
type Target interface {
	// Width returns the target width in pixels.
	Width() int

	// Height returns the target height in pixels.
	Height() int

	// Format returns the pixel format of the target.
	Format() gputypes.TextureFormat

	// Pixels returns direct access to pixel data.
	// Returns nil for GPU-only targets.
	// For RGBA format, each pixel is 4 bytes: R, G, B, A.
	Pixels() []byte

	// Stride returns the number of bytes per row.
	Stride() int
}

// Pixmap is a CPU-backed staging target using *image.RGBA.
//
// Bitmap-style layers decode remote images into a Pixmap; the rendering
// backend uploads the pixels to a texture when it processes the layer.
type Pixmap struct {
	img *image.RGBA
}

// NewPixmap creates a CPU-backed staging target.
func NewPixmap(width, height int) *Pixmap {
	return &Pixmap{
		img: image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// NewPixmapFromImage wraps an existing *image.RGBA without copying.
func NewPixmapFromImage(img *image.RGBA) *Pixmap {
	return &Pixmap{img: img}
}

// Width returns the target width in pixels.
func (p *Pixmap) Width() int {
	return p.img.Bounds().Dx()
}

// Height returns the target height in pixels.
func (p *Pixmap) Height() int {
	return p.img.Bounds().Dy()
}

// Format returns the pixel format (RGBA8).
func (p *Pixmap) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

// Pixels returns direct access to the pixel data.
func (p *Pixmap) Pixels() []byte {
	return p.img.Pix
}

// Stride returns the number of bytes per row.
func (p *Pixmap) Stride() int {
	return p.img.Stride
}

// Image returns the underlying *image.RGBA.
// The returned image shares memory with the target.
func (p *Pixmap) Image() *image.RGBA {
	return p.img
}

// Ensure Pixmap implements Target.
var _ Target = (*Pixmap)(nil)
