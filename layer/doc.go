// Package layer implements the lifecycle core and the reconciling
// Manager of the deck layer system.
//
// A Layer is both the per-frame descriptor the application submits and,
// after reconciliation, the live instance that owns GPU-adjacent state.
// The Manager matches each submitted layer against the previous frame's
// live layers by id, moves InternalState from old to new on a match,
// initializes fresh layers, recursively expands composite layers into
// sub-layers, and finalizes layers that no longer appear.
//
// Layer variants supply behavior through the Behavior capability
// interface (InitializeState, ShouldUpdateState, UpdateState,
// FinalizeState) and, for composite variants, SubLayerer. Dispatch is by
// interface value; there are no embedding chains to override.
//
// Reconciliation is synchronous; the caller serializes SetLayers calls.
// Asynchronous property loads complete on background goroutines and
// install results under last-request-wins semantics (see AsyncState).
package layer
