package deck

import "fmt"

// Phase identifies the lifecycle phase in which a layer error occurred.
type Phase uint8

// Lifecycle phases for error reporting.
const (
	// PhaseInitialize covers InitializeState and the first update pass.
	PhaseInitialize Phase = iota

	// PhaseUpdate covers ShouldUpdateState/UpdateState on matched layers.
	PhaseUpdate

	// PhaseFinalize covers FinalizeState on retired layers.
	PhaseFinalize
)

// String returns a human-readable name for the phase.
func (p Phase) String() string {
	switch p {
	case PhaseInitialize:
		return "initialize"
	case PhaseUpdate:
		return "update"
	case PhaseFinalize:
		return "finalize"
	default:
		return "unknown"
	}
}

// PreconditionError reports that an operation was invoked before its
// required shared context was established, e.g. SetLayers before a
// viewport was activated. It is returned synchronously to the caller
// and aborts the operation.
type PreconditionError struct {
	// Op is the operation that failed.
	Op string

	// Missing names the absent precondition.
	Missing string
}

// Error implements the error interface.
func (e *PreconditionError) Error() string {
	return fmt.Sprintf("deck: %s requires %s", e.Op, e.Missing)
}

// LayerError wraps an error raised by a single layer's lifecycle hook.
// Layer errors are caught at the point of occurrence so that one bad
// layer cannot abort reconciliation of its siblings; the first one seen
// is returned once the full pass completes.
type LayerError struct {
	// LayerID identifies the offending layer.
	LayerID string

	// Phase is the lifecycle phase that failed.
	Phase Phase

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *LayerError) Error() string {
	return fmt.Sprintf("deck: layer %q failed during %s: %v", e.LayerID, e.Phase, e.Err)
}

// Unwrap returns the underlying cause for errors.Is/errors.As.
func (e *LayerError) Unwrap() error {
	return e.Err
}
