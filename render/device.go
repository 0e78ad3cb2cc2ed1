// Copyright 2026 The deck.gl-go Authors
// SPDX-License-Identifier: MIT

package render

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// DeviceHandle provides GPU device access from the host application.
//
// The host (a windowing front end, an offscreen harness) owns the GPU
// device and passes a handle down through the reconciler's per-pass
// context. Layer variants that allocate GPU resources read the device
// from their state; the reconciler itself never touches it.
//
// Key principle: the reconciler RECEIVES the device from the host, it
// does NOT create one. This keeps resource ownership in one place and
// lets layer state survive reconciliation without re-allocating.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider, providing a
// deck-specific name for the interface while maintaining full
// compatibility with the gpucontext ecosystem.
type DeviceHandle = gpucontext.DeviceProvider

// NullDeviceHandle is a DeviceHandle with no device attached.
// Useful for tests and CPU-only reconciliation where layer variants
// skip GPU resource allocation.
type NullDeviceHandle struct{}

// Device returns nil: no device is attached.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil: no queue is attached.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil: no adapter is attached.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns the undefined format: no surface is attached.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// AdapterInfo returns empty adapter details.
func (NullDeviceHandle) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{}
}

// Ensure NullDeviceHandle implements DeviceHandle.
var _ DeviceHandle = NullDeviceHandle{}
