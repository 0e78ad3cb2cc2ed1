package layer

// Lifecycle identifies where a layer is in its life across frames.
//
// Transitions are monotonic per logical id within a frame:
//
//	NoState → Initialized → Matched ⇄ Matched → AwaitingGC
//	Initialized/Matched → AwaitingFinalization → Finalized
//
// Finalized is terminal; finalizing a layer twice is a programming
// error and panics.
type Lifecycle uint8

// Lifecycle states.
const (
	// LifecycleNoState is a freshly constructed descriptor, not yet
	// seen by the manager.
	LifecycleNoState Lifecycle = iota

	// LifecycleInitialized means state was allocated and
	// InitializeState ran (possibly with a caught error).
	LifecycleInitialized

	// LifecycleMatched means the layer inherited state from a
	// predecessor in a reconciliation pass.
	LifecycleMatched

	// LifecycleAwaitingGC is a predecessor whose state was moved to
	// its successor; the shell awaits garbage collection.
	LifecycleAwaitingGC

	// LifecycleAwaitingFinalization is an unmatched layer whose
	// FinalizeState is about to run.
	LifecycleAwaitingFinalization

	// LifecycleFinalized is terminal.
	LifecycleFinalized
)

// String returns a human-readable name for the lifecycle state.
func (l Lifecycle) String() string {
	switch l {
	case LifecycleNoState:
		return "NoState"
	case LifecycleInitialized:
		return "Initialized"
	case LifecycleMatched:
		return "Matched"
	case LifecycleAwaitingGC:
		return "AwaitingGC"
	case LifecycleAwaitingFinalization:
		return "AwaitingFinalization"
	case LifecycleFinalized:
		return "Finalized"
	default:
		return "Unknown"
	}
}
