// Package layers provides concrete layer variants built on the
// lifecycle core: a scatterplot layer for point data, a bitmap layer
// that stages remote images for texture upload, and a composite grid
// layer that expands into per-cell scatterplot sub-layers.
//
// The variants double as reference implementations of the
// layer.Behavior contract; rendering front ends typically add their
// own.
package layers
