// Copyright 2026 The deck.gl-go Authors
// SPDX-License-Identifier: MIT

// Package render defines the narrow contracts through which the layer
// reconciler talks to a rendering backend.
//
// The reconciler never draws. It owns opaque drawable handles, asks them
// whether they need a redraw, stamps ownership metadata into their
// user-data slot, and tells attribute managers which accessors became
// stale. Everything else (programs, buffers, draw calls, uniform binding)
// belongs to the rendering backend behind these interfaces.
//
// The package also provides small CPU-backed implementations (Model,
// Attributes, Pixmap) sufficient for tests and for front ends that stage
// data before uploading to a GPU device obtained through DeviceHandle.
package render
